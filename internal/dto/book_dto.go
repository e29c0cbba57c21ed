package dto

import (
	"time"

	"bookhub/internal/models"
)

// OwnerRef is the enriched owner/author reference attached to responses.
// Name is filled only when the association was loaded for enrichment.
type OwnerRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// CreateBookDTO used for POST /api/books. Every field is required.
type CreateBookDTO struct {
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author" binding:"required"`
	Description string `json:"description" binding:"required"`
	Genre       string `json:"genre" binding:"required"`
	Year        int    `json:"year" binding:"required"`
}

// UpdateBookDTO used for PUT /api/books/:id (partial updates allowed).
type UpdateBookDTO struct {
	Title       *string `json:"title,omitempty"`
	Author      *string `json:"author,omitempty"`
	Description *string `json:"description,omitempty"`
	Genre       *string `json:"genre,omitempty"`
	Year        *int    `json:"year,omitempty"`
}

// ApplyTo merges the provided fields onto an existing book.
func (d UpdateBookDTO) ApplyTo(b *models.Book) {
	if d.Title != nil {
		b.Title = *d.Title
	}
	if d.Author != nil {
		b.Author = *d.Author
	}
	if d.Description != nil {
		b.Description = *d.Description
	}
	if d.Genre != nil {
		b.Genre = *d.Genre
	}
	if d.Year != nil {
		b.Year = *d.Year
	}
}

// BookResponse is the wire shape of a book. AvgRating is attached only on the
// paginated listing; the detail view reports the average at the top level.
type BookResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	Genre       string    `json:"genre"`
	Year        int       `json:"year"`
	AddedBy     OwnerRef  `json:"addedBy"`
	AvgRating   *float64  `json:"avgRating,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func FromBook(b models.Book) BookResponse {
	resp := BookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		Genre:       b.Genre,
		Year:        b.Year,
		AddedBy:     OwnerRef{ID: b.AddedByID},
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if b.Owner.ID != "" {
		resp.AddedBy.Name = b.Owner.Name
	}
	return resp
}

// BookListResponse is one page of the public catalogue.
type BookListResponse struct {
	Books       []BookResponse `json:"books"`
	CurrentPage int            `json:"currentPage"`
	TotalPages  int            `json:"totalPages"`
	TotalBooks  int64          `json:"totalBooks"`
}

// BookDetailResponse is the single-book view with its reviews.
type BookDetailResponse struct {
	Book      BookResponse     `json:"book"`
	Reviews   []ReviewResponse `json:"reviews"`
	AvgRating float64          `json:"avgRating"`
}
