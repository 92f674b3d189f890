package handler

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"backbench/internal/app/review"
	"backbench/internal/pkg/errs"
	"backbench/internal/pkg/logx"
	"backbench/internal/pkg/randx"
	"backbench/internal/pkg/req"
	"backbench/internal/pkg/resp"
)

// maxFeedbackRunes bounds the feedback message.
const maxFeedbackRunes = 5000

type FeedbackInput struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
	EmailSubject string `json:"emailSubject"`
	Message      string `json:"message"`
}

// HandleFeedback stores a contact-form submission.
func HandleFeedback(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input FeedbackInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		message := strings.TrimSpace(input.Message)
		if message == "" || utf8.RuneCountInString(message) > maxFeedbackRunes {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		feedback := &review.Feedback{
			ID:           randx.NewID(),
			FullName:     strings.TrimSpace(input.FullName),
			Email:        strings.TrimSpace(input.Email),
			MobileNumber: strings.TrimSpace(input.MobileNumber),
			EmailSubject: strings.TrimSpace(input.EmailSubject),
			Message:      message,
			CreatedAt:    deps.now(),
		}

		if err := deps.Store.SaveFeedback(r.Context(), feedback); err != nil {
			resp.RespondError(w, r, storeError(err, "feedback: failed to save"))
			return
		}

		logx.Info("Feedback saved", "feedback_id", feedback.ID.String())
		resp.RespondSuccess(w, r, map[string]any{"id": feedback.ID})
	}
}

type RatingInput struct {
	UserID string `json:"userId"`
	Rating int    `json:"rating"`
}

// HandleRating stores a 1-5 site rating.
func HandleRating(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RatingInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		userID, err := uuid.Parse(input.UserID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if !review.ValidRating(input.Rating) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidRating, review.MinRating, review.MaxRating))
			return
		}

		rating := &review.Rating{
			ID:        randx.NewID(),
			UserID:    userID,
			Rating:    input.Rating,
			CreatedAt: deps.now(),
		}

		if err := deps.Store.SaveRating(r.Context(), rating); err != nil {
			resp.RespondError(w, r, storeError(err, "rating: failed to save", "user_id", userID.String()))
			return
		}

		logx.Info("Rating saved", "user_id", userID.String(), "rating", input.Rating)
		resp.RespondSuccess(w, r, map[string]any{"id": rating.ID})
	}
}
