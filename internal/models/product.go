package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"         json:"id"`
	Title             string          `gorm:"not null"                     json:"title"`
	Description       string          `gorm:"not null"                     json:"description"`
	Price             decimal.Decimal `gorm:"type:numeric(12,2);not null"  json:"price"`
	Image             string          `gorm:"not null"                     json:"image"`
	Category          string          `gorm:"index;not null"               json:"category"`
	Sizes             []string        `gorm:"serializer:json;type:text"    json:"sizes"`
	Colors            []string        `gorm:"serializer:json;type:text"    json:"colors"`
	Variants          []Variant       `gorm:"foreignKey:ProductID"         json:"variants"`
	Rating            float64         `gorm:"not null;default:0"           json:"rating"`
	AvailableQuantity int             `gorm:"not null;default:0"           json:"available_quantity"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Variant is one purchasable color×size combination.
type Variant struct {
	ID        uint            `gorm:"primaryKey"                   json:"-"`
	ProductID uuid.UUID       `gorm:"type:uuid;index;not null"     json:"-"`
	Position  int             `gorm:"not null;default:0"           json:"-"`
	Color     string          `gorm:"not null"                     json:"color"`
	Size      string          `gorm:"not null"                     json:"size"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"  json:"price"`
	Stock     int             `gorm:"not null;check:stock >= 0"    json:"stock"`
}

func (p *Product) FindVariant(color, size string) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].Color == color && p.Variants[i].Size == size {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

func SumStock(variants []Variant) int {
	total := 0
	for _, v := range variants {
		total += v.Stock
	}
	return total
}
