package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"          json:"id"`
	CustomerID      uuid.UUID       `gorm:"type:uuid;index;not null"      json:"customerId"`
	CustomerName    string          `gorm:"not null"                      json:"customerName"`
	CustomerAddress string          `gorm:"not null"                      json:"customerAddress"`
	CustomerPhone   string          `gorm:"not null"                      json:"customerPhone"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID"            json:"items"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(14,2);not null"   json:"totalAmount"`
	Status          OrderStatus     `gorm:"type:varchar(16);index;not null" json:"status"`
	RiderID         *uuid.UUID      `gorm:"type:uuid;index"               json:"riderId,omitempty"`
	RiderName       string          `json:"riderName,omitempty"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(8);not null"      json:"paymentMethod"`
	CreatedAt       time.Time       `gorm:"index"                         json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = StatusPaid
	}
	if o.PaymentMethod == "" {
		o.PaymentMethod = PaymentCard
	}
	return nil
}

func (o *Order) AssignedTo(userID uuid.UUID) bool {
	return o.RiderID != nil && *o.RiderID == userID
}

type OrderItem struct {
	ID          uint            `gorm:"primaryKey"                   json:"-"`
	OrderID     uuid.UUID       `gorm:"type:uuid;index;not null"     json:"-"`
	Position    int             `gorm:"not null;default:0"           json:"-"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"           json:"productId"`
	ProductName string          `gorm:"not null"                     json:"productName"`
	Color       string          `gorm:"not null"                     json:"color"`
	Size        string          `gorm:"not null"                     json:"size"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"  json:"price"`
	Quantity    int             `gorm:"not null;check:quantity >= 1" json:"quantity"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}
