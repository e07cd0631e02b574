package tools

import (
	"context"

	"github.com/teemow/schedai/internal/google"
)

// accountArg is the optional argument MCP callers use to pick an account.
const accountArg = "account"

// accountFromArgs picks the account for an MCP call and removes the account
// argument from args. An account already bound to ctx wins over the argument.
func accountFromArgs(ctx context.Context, args map[string]any) (string, error) {
	raw, present := args[accountArg]
	delete(args, accountArg)

	if account, ok := BoundAccount(ctx); ok {
		return account, nil
	}

	account, _ := raw.(string)
	if !present || account == "" {
		return google.DefaultAccount, nil
	}
	if err := google.ValidateAccountName(account); err != nil {
		return "", err
	}
	return account, nil
}

type boundAccountKey struct{}

// BindAccount pins the account of every MCP call made with ctx, ignoring any
// account argument.
func BindAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, boundAccountKey{}, account)
}

// BoundAccount returns the account pinned by BindAccount.
func BoundAccount(ctx context.Context) (string, bool) {
	account, ok := ctx.Value(boundAccountKey{}).(string)
	return account, ok && account != ""
}
