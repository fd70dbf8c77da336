package domain

import (
	"strings"
	"time"
)

// Claims are the fields read from a verified identity-provider token.
type Claims struct {
	Subject   string
	Email     string
	FullName  string
	ExpiresAt time.Time
}

type Identity struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name,omitempty"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	SignedInAt  time.Time `json:"signed_in_at"`
}

func (i Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// DisplayName prefers the full name, then the email local part.
func (i Identity) DisplayName() string {
	if name := strings.TrimSpace(i.FullName); name != "" {
		return name
	}
	if local, _, ok := strings.Cut(i.Email, "@"); ok && local != "" {
		return local
	}
	return "User"
}

type Preferences struct {
	EmailNotifications   bool `yaml:"email_notifications"`
	DefaultTimerDuration int  `yaml:"default_timer_duration"`
	BreakDuration        int  `yaml:"break_duration"`
}

func DefaultPreferences() Preferences {
	return Preferences{EmailNotifications: true, DefaultTimerDuration: 1500, BreakDuration: 300}
}
