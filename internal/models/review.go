package models

import "time"

// Review holds both the star rating and the free-text body. At most one
// review may exist per (book, user) pair; the composite unique index is the
// authority for that invariant.
type Review struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	BookID     int64     `json:"bookId" gorm:"not null;uniqueIndex:idx_reviews_book_user"`
	UserID     string    `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_book_user"`
	Rating     int       `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	ReviewText string    `json:"reviewText" gorm:"not null;type:text"`
	CreatedAt  time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	// Association for author-name enrichment. There is intentionally no Book
	// association: book deletion cascades to reviews at the service layer.
	User User `json:"-" gorm:"foreignKey:UserID"`
}

func (Review) TableName() string {
	return "reviews"
}
