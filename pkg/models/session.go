package models

// Session is what a successful code verification hands back to the caller.
// The server itself keeps no session state; the JWT issued alongside it is
// the only thing a client has to present.
type Session struct {
	User     User `json:"user"`
	LoggedIn bool `json:"logged_in"`
}
