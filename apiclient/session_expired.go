package apiclient

// LoginRoute is where the host navigates when the session ends
const LoginRoute = "/login"

// Reason says why a session ended
type Reason string

const (
	ReasonRefreshFailed Reason = "refresh_failed"
	ReasonLogout        Reason = "logout"
)

// SessionExpired tells the host to navigate to RedirectTo. The credential is
// already cleared when it is emitted.
type SessionExpired struct {
	RedirectTo string
	Reason     Reason
}
