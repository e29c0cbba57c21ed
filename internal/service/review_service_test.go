package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhub/internal/dto"
)

func TestReviewCreate(t *testing.T) {
	env := newTestEnv()
	env.store.addUser("owner", "Owner")
	env.store.addUser("reviewer", "Reviewer")
	ctx := context.Background()

	book, err := env.books.Create(ctx, "owner", validBook())
	require.NoError(t, err)

	t.Run("CreatesAndEnrichesAuthorName", func(t *testing.T) {
		review, err := env.reviews.Create(ctx, "reviewer", dto.CreateReviewDTO{
			BookID:     book.ID,
			Rating:     4,
			ReviewText: "a fine read",
		})
		require.NoError(t, err)
		assert.NotZero(t, review.ID)
		assert.Equal(t, book.ID, review.BookID)
		assert.Equal(t, 4, review.Rating)
		assert.Equal(t, "Reviewer", review.Author.Name)
	})

	t.Run("SecondReviewForSameBookConflicts", func(t *testing.T) {
		_, err := env.reviews.Create(ctx, "reviewer", dto.CreateReviewDTO{
			BookID:     book.ID,
			Rating:     5,
			ReviewText: "changed my mind",
		})
		assert.ErrorIs(t, err, ErrDuplicateReview)
	})

	t.Run("DifferentUserMayStillReview", func(t *testing.T) {
		_, err := env.reviews.Create(ctx, "owner", dto.CreateReviewDTO{
			BookID:     book.ID,
			Rating:     5,
			ReviewText: "my own book is great",
		})
		assert.NoError(t, err)
	})

	t.Run("UnknownBookIsNotFound", func(t *testing.T) {
		_, err := env.reviews.Create(ctx, "reviewer", dto.CreateReviewDTO{
			BookID:     9999,
			Rating:     3,
			ReviewText: "ghost book",
		})
		assert.ErrorIs(t, err, ErrBookNotFound)
	})

	t.Run("RejectsBadInput", func(t *testing.T) {
		for name, req := range map[string]dto.CreateReviewDTO{
			"rating too low":  {BookID: book.ID, Rating: 0, ReviewText: "x"},
			"rating too high": {BookID: book.ID, Rating: 6, ReviewText: "x"},
			"empty text":      {BookID: book.ID, Rating: 3, ReviewText: "   "},
		} {
			_, err := env.reviews.Create(ctx, "reviewer", req)
			assert.ErrorIs(t, err, ErrValidation, name)
		}
	})
}

func TestReviewListMine(t *testing.T) {
	env := newTestEnv()
	env.store.addUser("owner", "Owner")
	env.store.addUser("reviewer", "Reviewer")
	ctx := context.Background()

	first, err := env.books.Create(ctx, "owner", validBook())
	require.NoError(t, err)
	second, err := env.books.Create(ctx, "owner", validBook())
	require.NoError(t, err)

	_, err = env.reviews.Create(ctx, "reviewer", dto.CreateReviewDTO{BookID: first.ID, Rating: 3, ReviewText: "ok"})
	require.NoError(t, err)
	_, err = env.reviews.Create(ctx, "reviewer", dto.CreateReviewDTO{BookID: second.ID, Rating: 5, ReviewText: "great"})
	require.NoError(t, err)

	mine, err := env.reviews.ListMine(ctx, "reviewer")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].BookID, "newest review first")
	assert.Equal(t, first.ID, mine[1].BookID)

	other, err := env.reviews.ListMine(ctx, "owner")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestReviewUpdate(t *testing.T) {
	env := newTestEnv()
	env.store.addUser("owner", "Owner")
	env.store.addUser("author", "Author")
	env.store.addUser("intruder", "Intruder")
	ctx := context.Background()

	book, err := env.books.Create(ctx, "owner", validBook())
	require.NoError(t, err)
	review, err := env.reviews.Create(ctx, "author", dto.CreateReviewDTO{BookID: book.ID, Rating: 2, ReviewText: "meh"})
	require.NoError(t, err)

	t.Run("NonAuthorIsForbidden", func(t *testing.T) {
		rating := 5
		_, err := env.reviews.Update(ctx, "intruder", review.ID, dto.UpdateReviewDTO{Rating: &rating})
		assert.ErrorIs(t, err, ErrNotReviewAuthor)
	})

	t.Run("PartialUpdateOfRating", func(t *testing.T) {
		rating := 4
		updated, err := env.reviews.Update(ctx, "author", review.ID, dto.UpdateReviewDTO{Rating: &rating})
		require.NoError(t, err)
		assert.Equal(t, 4, updated.Rating)
		assert.Equal(t, "meh", updated.ReviewText)
	})

	t.Run("RejectsBadRating", func(t *testing.T) {
		rating := 9
		_, err := env.reviews.Update(ctx, "author", review.ID, dto.UpdateReviewDTO{Rating: &rating})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("UnknownReviewIsNotFound", func(t *testing.T) {
		rating := 3
		_, err := env.reviews.Update(ctx, "author", 9999, dto.UpdateReviewDTO{Rating: &rating})
		assert.ErrorIs(t, err, ErrReviewNotFound)
	})
}

func TestReviewDelete(t *testing.T) {
	env := newTestEnv()
	env.store.addUser("owner", "Owner")
	env.store.addUser("author", "Author")
	env.store.addUser("intruder", "Intruder")
	ctx := context.Background()

	book, err := env.books.Create(ctx, "owner", validBook())
	require.NoError(t, err)
	review, err := env.reviews.Create(ctx, "author", dto.CreateReviewDTO{BookID: book.ID, Rating: 2, ReviewText: "meh"})
	require.NoError(t, err)

	assert.ErrorIs(t, env.reviews.Delete(ctx, "intruder", review.ID), ErrNotReviewAuthor)
	assert.NoError(t, env.reviews.Delete(ctx, "author", review.ID))
	assert.ErrorIs(t, env.reviews.Delete(ctx, "author", review.ID), ErrReviewNotFound)
}

// TestCatalogueLifecycle walks the whole flow: add a book, review it, hit the
// duplicate guard, delete the book and watch the review disappear.
func TestCatalogueLifecycle(t *testing.T) {
	env := newTestEnv()
	env.store.addUser("user-a", "Ann")
	env.store.addUser("user-b", "Ben")
	ctx := context.Background()

	book, err := env.books.Create(ctx, "user-a", dto.CreateBookDTO{
		Title: "T", Author: "Au", Description: "D", Genre: "G", Year: 2020,
	})
	require.NoError(t, err)

	detail, err := env.books.GetDetail(ctx, book.ID)
	require.NoError(t, err)
	assert.Zero(t, detail.AvgRating)
	assert.Empty(t, detail.Reviews)

	_, err = env.reviews.Create(ctx, "user-b", dto.CreateReviewDTO{BookID: book.ID, Rating: 4, ReviewText: "solid"})
	require.NoError(t, err)

	detail, err = env.books.GetDetail(ctx, book.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, detail.AvgRating, 1e-9)

	_, err = env.reviews.Create(ctx, "user-b", dto.CreateReviewDTO{BookID: book.ID, Rating: 5, ReviewText: "again"})
	assert.ErrorIs(t, err, ErrDuplicateReview)

	require.NoError(t, env.books.Delete(ctx, "user-a", book.ID))

	_, err = env.books.GetDetail(ctx, book.ID)
	assert.ErrorIs(t, err, ErrBookNotFound)

	mine, err := env.reviews.ListMine(ctx, "user-b")
	require.NoError(t, err)
	assert.Empty(t, mine)
}
