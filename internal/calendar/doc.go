// Package calendar is a thin client for event operations on one Google calendar.
//
// Every operation borrows an OAuth token for the duration of the call and
// never stores it. Backend failures are returned as *ProviderError; FindByTitle
// additionally distinguishes "no match" (ErrNotFound) from a failed lookup.
//
// Example usage:
//
//	client := calendar.NewClient(calendar.NewOAuthServiceFactory(conf),
//	    calendar.WithDefaultTimeZone("Asia/Dhaka"))
//
//	events, err := client.List(ctx, token, time.Now(), 5)
//	if err != nil {
//	    return err
//	}
package calendar
