package dto

import "time"

type IdentityOutput struct {
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type SignInOutput struct {
	Identity    IdentityOutput
	FirstSignIn bool
}

type PreferencesOutput struct {
	EmailNotifications   bool `json:"emailNotifications"`
	DefaultTimerDuration int  `json:"defaultTimerDuration"`
	BreakDuration        int  `json:"breakDuration"`
}

// UpdatePreferencesInput leaves nil fields unchanged.
type UpdatePreferencesInput struct {
	EmailNotifications   *bool
	DefaultTimerDuration *int
	BreakDuration        *int
}
