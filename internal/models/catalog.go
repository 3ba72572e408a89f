package models

import "time"

// Category - раздел каталога.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product - товар каталога. Категория разворачивается при чтении
// (в БД хранится только ссылка category_id).
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	Price       float64   `json:"price" validate:"gt=0"`
	Quantity    int       `json:"quantity"`
	ImageURL    string    `json:"imageUrl"`
	Category    *Category `json:"category,omitempty"`
}

// Coupon - купон на скидку. Для этого сервиса купоны read-only,
// управление ими живет в админке.
type Coupon struct {
	ID            string     `json:"id"`
	Code          string     `json:"code"`
	PercentageOff float64    `json:"percentageOff"`
	IsActive      bool       `json:"isActive"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}
