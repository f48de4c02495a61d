package model

// Session is an identity-service password session. Secret is the opaque
// value carried by the session cookie; expiry is owned by the remote
// service, not tracked here.
type Session struct {
	ID     string `json:"$id"`
	UserID string `json:"userId"`
	Secret string `json:"secret"`
}
