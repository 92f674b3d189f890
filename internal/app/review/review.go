// Package review holds the feedback and rating records submitted from the site.
package review

import (
	"time"

	"github.com/google/uuid"
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is a contact-form submission.
type Feedback struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	MobileNumber string    `json:"mobileNumber"`
	EmailSubject string    `json:"emailSubject"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Rating is a 1-5 site rating left by an account.
type Rating struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidRating reports whether r lies within MinRating..MaxRating.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
