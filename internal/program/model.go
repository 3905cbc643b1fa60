package program

import "time"

// Visibility controls inclusion in filtered listings.
type Visibility string

const (
	VisibilityPrivate  Visibility = "private"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPublic   Visibility = "public"
)

// Valid reports whether v is one of the three enumerated tiers.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityUnlisted, VisibilityPublic:
		return true
	}
	return false
}

// Program is a stored Logo program artifact.
type Program struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Code        string     `json:"code"`
	Description *string    `json:"description"`
	Visibility  Visibility `json:"visibility"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
