package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"bookhub/internal/dto"
	"bookhub/internal/models"
	"bookhub/internal/repository"
)

type ReviewService interface {
	ListMine(ctx context.Context, userID string) ([]dto.ReviewResponse, error)
	Create(ctx context.Context, userID string, req dto.CreateReviewDTO) (*dto.ReviewResponse, error)
	Update(ctx context.Context, userID string, reviewID int64, req dto.UpdateReviewDTO) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, userID string, reviewID int64) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	bookRepo   repository.BookRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, bookRepo repository.BookRepository) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		bookRepo:   bookRepo,
	}
}

// ListMine returns the caller's reviews, newest first, without enrichment.
func (s *reviewService) ListMine(ctx context.Context, userID string) ([]dto.ReviewResponse, error) {
	reviews, err := s.reviewRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		responses = append(responses, dto.FromReview(r))
	}
	return responses, nil
}

// Create stores a new review for the caller. The store's unique index is the
// authority for the one-review-per-(book,user) invariant; a violation comes
// back as ErrDuplicateReview.
func (s *reviewService) Create(ctx context.Context, userID string, req dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	if err := validateRating(req.Rating); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(req.ReviewText)
	if text == "" {
		return nil, fmt.Errorf("%w: reviewText is required", ErrValidation)
	}

	// Check the book resolves before writing.
	if _, err := s.bookRepo.GetByID(ctx, req.BookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	review := &models.Review{
		BookID:     req.BookID,
		UserID:     userID,
		Rating:     req.Rating,
		ReviewText: text,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, ErrDuplicateReview
		}
		return nil, err
	}

	// Reload with the author for name enrichment.
	review, err := s.reviewRepo.GetByID(ctx, review.ID)
	if err != nil {
		return nil, err
	}

	resp := dto.FromReview(*review)
	return &resp, nil
}

// Update applies a partial update of rating/text after the authorship check.
func (s *reviewService) Update(ctx context.Context, userID string, reviewID int64, req dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	if review.UserID != userID {
		return nil, ErrNotReviewAuthor
	}

	req.ApplyTo(review)
	if err := validateRating(review.Rating); err != nil {
		return nil, err
	}
	review.ReviewText = strings.TrimSpace(review.ReviewText)
	if review.ReviewText == "" {
		return nil, fmt.Errorf("%w: reviewText is required", ErrValidation)
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	review, err = s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	resp := dto.FromReview(*review)
	return &resp, nil
}

// Delete removes the review after the authorship check.
func (s *reviewService) Delete(ctx context.Context, userID string, reviewID int64) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}

	if review.UserID != userID {
		return ErrNotReviewAuthor
	}

	return s.reviewRepo.Delete(ctx, reviewID)
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be an integer between 1 and 5", ErrValidation)
	}
	return nil
}
