package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product keeps Category as a denormalized label so it survives a rename or
// removal of the category row. CategoryName and CategorySlug are only filled
// by reads that join the categories table.
type Product struct {
	ID           uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string          `json:"name" gorm:"size:255;not null"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Image        []byte          `json:"image" gorm:"type:longblob;not null"`
	Category     string          `json:"category" gorm:"size:255;not null"`
	CategoryID   *uint64         `json:"categoryId" gorm:"index"`
	CategoryName *string         `json:"categoryName" gorm:"->;-:migration"`
	CategorySlug *string         `json:"categorySlug" gorm:"->;-:migration"`
	Rating       decimal.Decimal `json:"rating" gorm:"type:decimal(2,1);not null"`
	Reviews      int             `json:"reviews" gorm:"not null"`
	InStock      bool            `json:"inStock" gorm:"not null"`
	Featured     bool            `json:"featured" gorm:"not null"`
	Description  *string         `json:"description" gorm:"type:text"`
	CreatedAt    time.Time       `json:"createdAt" gorm:"autoCreateTime;index"`
}

type ProductFilter struct {
	FeaturedOnly bool
	CategoryID   *uint64
	CategorySlug string
}

// CategoryAssignment is the label and optional category id written together
// whenever a product's category is set.
type CategoryAssignment struct {
	Label string
	ID    *uint64
}

// ProductChanges carries a partial product update. Nil fields are left
// untouched, and Image is only written when non-empty.
type ProductChanges struct {
	Name        *string
	Price       *decimal.Decimal
	Image       []byte
	Category    *CategoryAssignment
	Rating      *decimal.Decimal
	Reviews     *int
	InStock     *bool
	Featured    *bool
	Description *string
}

func (c ProductChanges) Empty() bool {
	return c.Name == nil && c.Price == nil && len(c.Image) == 0 && c.Category == nil &&
		c.Rating == nil && c.Reviews == nil && c.InStock == nil &&
		c.Featured == nil && c.Description == nil
}
