package dto

// ========================
// Calendar DTOs
// ========================

type CalendarStatus struct {
	Connected  bool   `json:"connected"`
	Provider   string `json:"provider"`
	CalendarID string `json:"calendar_id,omitempty"`
	Email      string `json:"email,omitempty"`
	Scope      string `json:"scope,omitempty"`
}

type CalendarConnectResponse struct {
	AuthURL string `json:"auth_url"`
}
