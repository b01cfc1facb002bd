package transport

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/delivery_shop/internal/models"
)

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleTokenRequest struct {
	Credential string `json:"credential" validate:"required"`
}

type AuthResponse struct {
	Token string       `json:"token,omitempty"`
	User  *models.User `json:"user"`
}

type OrderItemRequest struct {
	ProductID   uuid.UUID        `json:"productId"   validate:"required"`
	ProductName string           `json:"productName"`
	Color       string           `json:"color"       validate:"required"`
	Size        string           `json:"size"        validate:"required"`
	Quantity    int              `json:"quantity"    validate:"required,min=1"`
	Price       *decimal.Decimal `json:"price"`
	ImageURL    string           `json:"imageUrl"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items"           validate:"required,min=1,dive"`
	CustomerAddress string             `json:"customerAddress" validate:"required"`
	CustomerPhone   string             `json:"customerPhone"   validate:"required"`
	PaymentMethod   string             `json:"paymentMethod"`
}

type AssignRiderRequest struct {
	RiderID   uuid.UUID `json:"riderId"   validate:"required"`
	RiderName string    `json:"riderName" validate:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type AdminUpdateRequest struct {
	Status  *string    `json:"status"`
	RiderID *uuid.UUID `json:"riderId"`
}

type AutoAssignResponse struct {
	Assigned int            `json:"assigned"`
	Orders   []models.Order `json:"orders"`
}

type VariantRequest struct {
	Color string          `json:"color" validate:"required"`
	Size  string          `json:"size"  validate:"required"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock" validate:"min=0"`
}

type CreateProductRequest struct {
	Title       string           `json:"title"    validate:"required"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	Image       string           `json:"image"`
	Category    string           `json:"category" validate:"required"`
	Sizes       []string         `json:"sizes"`
	Colors      []string         `json:"colors"`
	Variants    []VariantRequest `json:"variants" validate:"dive"`
	Rating      float64          `json:"rating"   validate:"min=0,max=5"`
}

// UpdateProductRequest is a partial update; a non-nil Variants replaces the whole list.
type UpdateProductRequest struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Price       *decimal.Decimal  `json:"price"`
	Image       *string           `json:"image"`
	Category    *string           `json:"category"`
	Sizes       *[]string         `json:"sizes"`
	Colors      *[]string         `json:"colors"`
	Variants    *[]VariantRequest `json:"variants" validate:"omitempty,dive"`
	Rating      *float64          `json:"rating"   validate:"omitempty,min=0,max=5"`
}
