package model

import "time"

// User is a registered account.
//
// Accounts are created either with a username/password pair or through GitHub
// OAuth. GitHubID is nil for password accounts and PasswordHash is empty for
// GitHub accounts; neither is ever serialized.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	GitHubID     *int64    `json:"-"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserSummary is the public projection used to resolve review author names.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}
