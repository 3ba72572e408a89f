package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/RussoPy/Claude-s-Store/internal/models"
)

type CouponRepository struct {
	db *sql.DB
}

func NewCouponRepository(db *sql.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

// FindActive ищет активный купон по коду. Неактивные купоны для сервиса
// не существуют: возвращается (nil, nil), как и при отсутствии кода.
// Срок действия здесь не проверяется - это решение уровня прайсинга.
func (r *CouponRepository) FindActive(ctx context.Context, code string) (*models.Coupon, error) {
	var (
		coupon    models.Coupon
		expiresAt sql.NullTime
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT id, code, percentage_off, is_active, expires_at
         FROM coupons WHERE code=$1 AND is_active=true LIMIT 1`,
		code).Scan(&coupon.ID, &coupon.Code, &coupon.PercentageOff, &coupon.IsActive, &expiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка при поиске купона: %w", err)
	}

	if expiresAt.Valid {
		t := expiresAt.Time
		coupon.ExpiresAt = &t
	}

	return &coupon, nil
}
