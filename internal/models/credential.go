package models

import "time"

const CalendarProviderGoogle = "google"

// OAuthCredential holds one user's calendar grant. Token columns hold sealed
// ciphertext when an encryption key is configured.
type OAuthCredential struct {
	BaseModel
	UserID       string    `gorm:"uniqueIndex:idx_credential_user_provider;not null" json:"user_id"`
	Provider     string    `gorm:"uniqueIndex:idx_credential_user_provider;type:varchar(32);not null" json:"provider"`
	AccessToken  string    `gorm:"not null" json:"-"`
	RefreshToken string    `json:"-"`
	TokenType    string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	Scope        string    `json:"scope"`
	CalendarID   string    `gorm:"default:'primary'" json:"calendar_id"`
	Email        string    `json:"email"`
}

// Expired reports whether the access token is past its expiry at now.
func (c *OAuthCredential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}
