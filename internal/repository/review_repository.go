package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"bookhub/internal/models"
)

// ErrDuplicateReview is returned when the (book_id, user_id) unique index
// rejects a second review from the same user.
var ErrDuplicateReview = errors.New("duplicate review")

// ReviewRepository defines the data operations for reviews, including the
// aggregate-average queries the book listings need.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id int64) (*models.Review, error)
	GetByUser(ctx context.Context, userID string) ([]models.Review, error)
	GetByBook(ctx context.Context, bookID int64) ([]models.Review, error)
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id int64) error
	DeleteByBook(ctx context.Context, bookID int64) error
	AverageForBook(ctx context.Context, bookID int64) (float64, error)
	AverageForBooks(ctx context.Context, bookIDs []int64) (map[int64]float64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts the review, relying on the unique index for the
// one-review-per-(book,user) invariant. No pre-check read, so the invariant
// holds under concurrent creates.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateReview
		}
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// GetByID loads a review together with its author for name enrichment.
func (r *reviewRepository) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).Preload("User").First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) GetByUser(ctx context.Context, userID string) ([]models.Review, error) {
	var list []models.Review
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list reviews by user: %w", err)
	}
	return list, nil
}

func (r *reviewRepository) GetByBook(ctx context.Context, bookID int64) ([]models.Review, error) {
	var list []models.Review
	err := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Preload("User").
		Order("created_at DESC, id DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list reviews by book: %w", err)
	}
	return list, nil
}

func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Save(review).Error; err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&models.Review{}, id).Error; err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}

// DeleteByBook removes every review referencing the book. Used by the
// best-effort cascade after a book delete.
func (r *reviewRepository) DeleteByBook(ctx context.Context, bookID int64) error {
	if err := r.db.WithContext(ctx).Where("book_id = ?", bookID).Delete(&models.Review{}).Error; err != nil {
		return fmt.Errorf("delete reviews for book: %w", err)
	}
	return nil
}

// AverageForBook returns the plain average of all ratings for the book,
// 0 when there are none. Rounding for display happens at the service layer.
func (r *reviewRepository) AverageForBook(ctx context.Context, bookID int64) (float64, error) {
	var avg struct {
		Average float64
	}

	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) as average").
		Where("book_id = ?", bookID).
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}

	return avg.Average, nil
}

// AverageForBooks computes averages for a batch of book ids in one grouped
// query. Books without reviews are simply absent from the result map.
func (r *reviewRepository) AverageForBooks(ctx context.Context, bookIDs []int64) (map[int64]float64, error) {
	averages := make(map[int64]float64, len(bookIDs))
	if len(bookIDs) == 0 {
		return averages, nil
	}

	var rows []struct {
		BookID  int64
		Average float64
	}

	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("book_id, AVG(rating) as average").
		Where("book_id IN ?", bookIDs).
		Group("book_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("average ratings: %w", err)
	}

	for _, row := range rows {
		averages[row.BookID] = row.Average
	}
	return averages, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
