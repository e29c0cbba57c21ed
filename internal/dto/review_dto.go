package dto

import (
	"time"

	"bookhub/internal/models"
)

// CreateReviewDTO used for POST /api/reviews.
type CreateReviewDTO struct {
	BookID     int64  `json:"bookId" binding:"required"`
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	ReviewText string `json:"reviewText" binding:"required"`
}

// UpdateReviewDTO used for PUT /api/reviews/:id (partial updates allowed).
type UpdateReviewDTO struct {
	Rating     *int    `json:"rating,omitempty" binding:"omitempty,min=1,max=5"`
	ReviewText *string `json:"reviewText,omitempty"`
}

func (d UpdateReviewDTO) ApplyTo(r *models.Review) {
	if d.Rating != nil {
		r.Rating = *d.Rating
	}
	if d.ReviewText != nil {
		r.ReviewText = *d.ReviewText
	}
}

// ReviewResponse is the wire shape of a review. Author.Name is filled when
// the review was loaded with its user for enrichment.
type ReviewResponse struct {
	ID         int64     `json:"id"`
	BookID     int64     `json:"bookId"`
	Rating     int       `json:"rating"`
	ReviewText string    `json:"reviewText"`
	Author     OwnerRef  `json:"author"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func FromReview(r models.Review) ReviewResponse {
	resp := ReviewResponse{
		ID:         r.ID,
		BookID:     r.BookID,
		Rating:     r.Rating,
		ReviewText: r.ReviewText,
		Author:     OwnerRef{ID: r.UserID},
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.User.ID != "" {
		resp.Author.Name = r.User.Name
	}
	return resp
}
