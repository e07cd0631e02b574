package resources

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/schedai/internal/google"
	"github.com/teemow/schedai/internal/instrumentation"
	"github.com/teemow/schedai/internal/scheduler"
	"github.com/teemow/schedai/internal/tools"
)

// UpcomingURI is the resource listing the next events of the session account.
const UpcomingURI = "calendar://events/upcoming"

// Lister renders upcoming events.
type Lister interface {
	List(ctx context.Context, in scheduler.ListInput) scheduler.Result
}

// RegisterCalendarResources registers the calendar resources on s.
func RegisterCalendarResources(s *mcpserver.MCPServer, lister Lister) {
	upcoming := mcp.NewResource(
		UpcomingURI,
		"Upcoming Events",
		mcp.WithResourceDescription("The next events on the calendar of the current account"),
		mcp.WithMIMEType("text/plain"),
	)

	s.AddResource(upcoming, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleUpcoming(ctx, request, lister)
	})
}

// accountFromContext falls back to the default account when no account is
// pinned to the session.
func accountFromContext(ctx context.Context) string {
	if account, ok := tools.BoundAccount(ctx); ok {
		return account
	}
	return google.DefaultAccount
}

func handleUpcoming(ctx context.Context, request mcp.ReadResourceRequest, lister Lister) ([]mcp.ResourceContents, error) {
	account := accountFromContext(ctx)

	result := lister.List(google.ContextWithAccount(ctx, account), scheduler.ListInput{})
	if result.Outcome() != instrumentation.OutcomeSuccess {
		return nil, fmt.Errorf("failed to list events for account %s: %s", account, result.Text())
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/plain",
			Text:     result.Text(),
		},
	}, nil
}
