package dto

type ToggleRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// Enables reports whether the body asks to turn the link on. Malformed
// bodies report false and are rejected by the handler instead.
func (r ToggleRequest) Enables() bool {
	return r.Enabled != nil && *r.Enabled
}

// SubmitRequest: the PIN stays a string so leading zeros survive.
type SubmitRequest struct {
	PIN      string `json:"pin"`
	MemberID string `json:"memberId"`
}

type MembersRequest struct {
	EventURL string `json:"eventUrl"`
	Search   string `json:"search"`
}
