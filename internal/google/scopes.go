package google

// DefaultOAuthScopes are the Google OAuth scopes requested at login.
//
// The scopes provide access to:
//   - Google Calendar: read and write events
//   - User info: the email shown on the callback confirmation
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Google Calendar scope
	"https://www.googleapis.com/auth/calendar",
}
