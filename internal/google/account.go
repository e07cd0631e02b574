package google

import (
	"context"
	"fmt"
	"regexp"
)

// DefaultAccount is used when a request does not name an account.
const DefaultAccount = "default"

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateAccountName ensures the account name is safe for use in file paths and keys.
func ValidateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if len(account) > 64 {
		return fmt.Errorf("account name too long (max 64 characters)")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("account name %q contains invalid characters (only letters, digits, '-' and '_' are allowed)", account)
	}
	return nil
}

type accountKey struct{}

// ContextWithAccount returns a context carrying the account whose credential
// should be used for calendar calls.
func ContextWithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, accountKey{}, account)
}

// AccountFromContext returns the account stored in ctx, or DefaultAccount.
func AccountFromContext(ctx context.Context) string {
	if account, ok := ctx.Value(accountKey{}).(string); ok && account != "" {
		return account
	}
	return DefaultAccount
}
