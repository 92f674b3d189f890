package mongo

import (
	"time"

	"github.com/google/uuid"

	"backbench/internal/app/review"
	"backbench/internal/app/user"
)

type userModel struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	OTP          string    `bson:"otp,omitempty"`
	Verified     bool      `bson:"verified"`
	CreatedAt    time.Time `bson:"created_at"`
}

func toUserModel(u *user.User) *userModel {
	return &userModel{
		ID:           u.ID.String(),
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		OTP:          u.OTP,
		Verified:     u.Verified,
		CreatedAt:    u.CreatedAt.UTC(),
	}
}

func fromUserModel(m *userModel) (*user.User, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	return &user.User{
		ID:           id,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		OTP:          m.OTP,
		Verified:     m.Verified,
		CreatedAt:    m.CreatedAt,
	}, nil
}

type feedbackModel struct {
	ID           string    `bson:"_id"`
	FullName     string    `bson:"full_name"`
	Email        string    `bson:"email"`
	MobileNumber string    `bson:"mobile_number"`
	EmailSubject string    `bson:"email_subject"`
	Message      string    `bson:"message"`
	CreatedAt    time.Time `bson:"created_at"`
}

func toFeedbackModel(f *review.Feedback) *feedbackModel {
	return &feedbackModel{
		ID:           f.ID.String(),
		FullName:     f.FullName,
		Email:        f.Email,
		MobileNumber: f.MobileNumber,
		EmailSubject: f.EmailSubject,
		Message:      f.Message,
		CreatedAt:    f.CreatedAt.UTC(),
	}
}

type ratingModel struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Rating    int       `bson:"rating"`
	CreatedAt time.Time `bson:"created_at"`
}

func toRatingModel(r *review.Rating) *ratingModel {
	return &ratingModel{
		ID:        r.ID.String(),
		UserID:    r.UserID.String(),
		Rating:    r.Rating,
		CreatedAt: r.CreatedAt.UTC(),
	}
}
