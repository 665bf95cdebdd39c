package domain

// Session is the client-held record of an authenticated customer and the
// bearer credential presented on every authenticated request.
type Session struct {
	SessionID                string    `json:"sessionId"`
	Customer                 *Customer `json:"customer"`
	IsEmailConfirmed         bool      `json:"isEmailConfirmed"`
	PendingVerificationEmail string    `json:"pendingVerificationEmail,omitempty"`
}

// IsAuthenticated is derived: true iff a bearer credential is present.
func (s Session) IsAuthenticated() bool {
	return s.SessionID != ""
}

// EmptySession returns the unauthenticated default state.
func EmptySession() Session {
	return Session{}
}
