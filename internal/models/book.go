package models

import "time"

type Book struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"not null"`
	Author      string    `json:"author" gorm:"not null"`
	Description string    `json:"description" gorm:"not null;type:text"`
	Genre       string    `json:"genre" gorm:"not null"`
	Year        int       `json:"year" gorm:"not null"`
	AddedByID   string    `json:"addedBy" gorm:"column:added_by;type:uuid;not null;index"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	// association for owner-name enrichment
	Owner User `json:"-" gorm:"foreignKey:AddedByID"`
}

func (Book) TableName() string {
	return "books"
}
