package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/schedai/internal/scheduler"
	"github.com/teemow/schedai/internal/timeparse"
	"github.com/teemow/schedai/internal/tools"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate tool documentation",
		Long: `Generate markdown documentation for the calendar tools.
The tools are registered on an MCP server exactly as "schedai mcp" does and
documented from the schemas clients receive, so the output always matches
the implementation.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerateDocs(cmd.OutOrStdout(), outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

// docsServer registers the tool table on an MCP server. No calendar is
// reachable from it.
func docsServer() (*mcpserver.MCPServer, error) {
	normalizer, err := timeparse.New(timeparse.DefaultTimeZone)
	if err != nil {
		return nil, err
	}
	registry, err := tools.NewRegistry(scheduler.New(nil, nil, normalizer))
	if err != nil {
		return nil, err
	}

	mcpSrv := mcpserver.NewMCPServer("schedai", version,
		mcpserver.WithToolCapabilities(true),
	)
	if err := tools.NewDispatcher(registry).RegisterMCP(mcpSrv); err != nil {
		return nil, err
	}
	return mcpSrv, nil
}

func runGenerateDocs(stdout io.Writer, outputFile string) error {
	mcpSrv, err := docsServer()
	if err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	serverTools := mcpSrv.ListTools()
	list := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		list = append(list, serverTool.Tool)
	}

	markdown, err := generateToolsMarkdown(list)
	if err != nil {
		return err
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
		return nil
	}
	_, err = io.WriteString(stdout, markdown)
	return err
}

func generateToolsMarkdown(list []mcp.Tool) (string, error) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})

	var sb strings.Builder

	sb.WriteString("# Calendar Tools Reference\n\n")
	sb.WriteString("This document lists the tools schedai offers to MCP clients and to its own agent.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	sb.WriteString("## Table of Contents\n\n")
	for _, tool := range list {
		sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", tool.Name, tool.Name))
	}
	sb.WriteString("\n")

	sb.WriteString("## Multi-Account Support\n\n")
	sb.WriteString("Every tool takes an optional `account` parameter naming the Google account to use:\n\n")
	sb.WriteString("- **Default behavior:** If `account` is not specified, the `default` account is used\n")
	sb.WriteString("- **Multiple accounts:** Log in once per account via `/auth/login?account=NAME`\n")
	sb.WriteString("- **Pinned account:** `schedai mcp --account NAME` ignores the parameter\n\n")

	sb.WriteString("## Tools\n\n")
	for _, tool := range list {
		md, err := generateToolMarkdown(tool)
		if err != nil {
			return "", err
		}
		sb.WriteString(md)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

func generateToolMarkdown(tool mcp.Tool) (string, error) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("### %s\n\n", tool.Name))
	if tool.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", tool.Description))
	}

	var schema jsonschema.Schema
	if len(tool.RawInputSchema) > 0 {
		if err := json.Unmarshal(tool.RawInputSchema, &schema); err != nil {
			return "", fmt.Errorf("invalid schema for %s: %w", tool.Name, err)
		}
	}
	if len(schema.Properties) == 0 {
		return sb.String(), nil
	}

	sb.WriteString("**Arguments:**\n")

	propNames := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		propNames = append(propNames, name)
	}
	sort.Strings(propNames)

	for _, name := range propNames {
		prop := schema.Properties[name]

		requiredStr := "optional"
		if slices.Contains(schema.Required, name) {
			requiredStr = "required"
		}

		sb.WriteString(fmt.Sprintf("- `%s` (%s, %s): ", name, propertyType(prop), requiredStr))
		if prop.Description != "" {
			sb.WriteString(prop.Description)
		} else {
			sb.WriteString(fmt.Sprintf("%s parameter", propertyType(prop)))
		}
		if len(prop.Enum) > 0 {
			values := make([]string, 0, len(prop.Enum))
			for _, v := range prop.Enum {
				values = append(values, fmt.Sprintf("`%v`", v))
			}
			sb.WriteString(" One of " + strings.Join(values, ", ") + ".")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	return sb.String(), nil
}

func propertyType(prop *jsonschema.Schema) string {
	if prop.Type != "" {
		return prop.Type
	}
	return "any"
}
