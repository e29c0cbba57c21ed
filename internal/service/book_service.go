package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bookhub/internal/dto"
	"bookhub/internal/models"
	"bookhub/internal/repository"
)

// BookPageSize is the fixed page size of the public catalogue listing.
const BookPageSize = 5

type BookService interface {
	ListMine(ctx context.Context, userID string) ([]dto.BookResponse, error)
	ListPage(ctx context.Context, page int) (*dto.BookListResponse, error)
	GetDetail(ctx context.Context, bookID int64) (*dto.BookDetailResponse, error)
	Create(ctx context.Context, userID string, req dto.CreateBookDTO) (*dto.BookResponse, error)
	Update(ctx context.Context, userID string, bookID int64, req dto.UpdateBookDTO) (*dto.BookResponse, error)
	Delete(ctx context.Context, userID string, bookID int64) error
}

type bookService struct {
	bookRepo   repository.BookRepository
	reviewRepo repository.ReviewRepository
	logger     *zap.Logger
}

func NewBookService(bookRepo repository.BookRepository, reviewRepo repository.ReviewRepository, logger *zap.Logger) BookService {
	return &bookService{
		bookRepo:   bookRepo,
		reviewRepo: reviewRepo,
		logger:     logger,
	}
}

// ListMine returns the caller's books, newest first, without enrichment.
func (s *bookService) ListMine(ctx context.Context, userID string) ([]dto.BookResponse, error) {
	books, err := s.bookRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.BookResponse, 0, len(books))
	for _, b := range books {
		responses = append(responses, dto.FromBook(b))
	}
	return responses, nil
}

// ListPage returns one fixed-size page of the catalogue with owner names and
// average ratings attached. An out-of-range page yields an empty list, not an
// error; anything below 1 is treated as page 1.
func (s *bookService) ListPage(ctx context.Context, page int) (*dto.BookListResponse, error) {
	if page < 1 {
		page = 1
	}

	books, total, err := s.bookRepo.GetPage(ctx, page, BookPageSize)
	if err != nil {
		return nil, err
	}

	// batch enrichment: one grouped AVG query over the page's book ids
	ids := make([]int64, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	averages, err := s.reviewRepo.AverageForBooks(ctx, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.BookResponse, 0, len(books))
	for _, b := range books {
		resp := dto.FromBook(b)
		avg := roundRating(averages[b.ID]) // missing key means no reviews, avg 0
		resp.AvgRating = &avg
		responses = append(responses, resp)
	}

	totalPages := int((total + BookPageSize - 1) / BookPageSize)

	return &dto.BookListResponse{
		Books:       responses,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalBooks:  total,
	}, nil
}

// GetDetail returns the book with its owner name, its reviews newest first
// with author names, and the rounded average rating.
func (s *bookService) GetDetail(ctx context.Context, bookID int64) (*dto.BookDetailResponse, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	reviews, err := s.reviewRepo.GetByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	avg, err := s.reviewRepo.AverageForBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	reviewResponses := make([]dto.ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		reviewResponses = append(reviewResponses, dto.FromReview(r))
	}

	return &dto.BookDetailResponse{
		Book:      dto.FromBook(*book),
		Reviews:   reviewResponses,
		AvgRating: roundRating(avg),
	}, nil
}

// Create validates the fields, stores the book owned by userID and returns it
// enriched with the owner's name.
func (s *bookService) Create(ctx context.Context, userID string, req dto.CreateBookDTO) (*dto.BookResponse, error) {
	book := &models.Book{
		Title:       strings.TrimSpace(req.Title),
		Author:      strings.TrimSpace(req.Author),
		Description: strings.TrimSpace(req.Description),
		Genre:       strings.TrimSpace(req.Genre),
		Year:        req.Year,
		AddedByID:   userID,
	}
	if err := validateBook(book); err != nil {
		return nil, err
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}

	// Reload with the owner for name enrichment.
	book, err := s.bookRepo.GetByID(ctx, book.ID)
	if err != nil {
		return nil, err
	}

	resp := dto.FromBook(*book)
	return &resp, nil
}

// Update applies a partial update after the ownership check and re-validates
// the merged record.
func (s *bookService) Update(ctx context.Context, userID string, bookID int64, req dto.UpdateBookDTO) (*dto.BookResponse, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	if book.AddedByID != userID {
		return nil, ErrNotBookOwner
	}

	req.ApplyTo(book)
	if err := validateBook(book); err != nil {
		return nil, err
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}

	book, err = s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	resp := dto.FromBook(*book)
	return &resp, nil
}

// Delete removes the book after the ownership check, then deletes its reviews.
// The cleanup is best-effort: a failure there is logged and the delete still
// counts as successful, accepting a window with orphaned reviews.
func (s *bookService) Delete(ctx context.Context, userID string, bookID int64) error {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	if book.AddedByID != userID {
		return ErrNotBookOwner
	}

	if err := s.bookRepo.Delete(ctx, bookID); err != nil {
		return err
	}

	if err := s.reviewRepo.DeleteByBook(ctx, bookID); err != nil {
		s.logger.Error("review cleanup after book delete failed",
			zap.Int64("book_id", bookID),
			zap.Error(err),
		)
	}

	return nil
}

func validateBook(b *models.Book) error {
	switch {
	case b.Title == "":
		return fmt.Errorf("%w: title is required", ErrValidation)
	case b.Author == "":
		return fmt.Errorf("%w: author is required", ErrValidation)
	case b.Description == "":
		return fmt.Errorf("%w: description is required", ErrValidation)
	case b.Genre == "":
		return fmt.Errorf("%w: genre is required", ErrValidation)
	case b.Year == 0:
		return fmt.Errorf("%w: year is required", ErrValidation)
	}
	return nil
}

// roundRating rounds an average rating to one decimal place for display.
// Stored ratings stay full-precision integers.
func roundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
