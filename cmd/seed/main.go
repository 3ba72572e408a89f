// Наполняет каталог тестовыми данными: разделы, товары и пара купонов.
// Использовать только на дев-стенде.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/RussoPy/Claude-s-Store/internal/config"
	"github.com/RussoPy/Claude-s-Store/internal/db/conn"

	"github.com/brianvoe/gofakeit"
)

const productsPerCategory = 8

var categoryNames = []string{"שמנים", "קרמים", "סבונים", "מתנות"}

func main() {
	cfg := config.LoadConfig()

	dbConn, err := conn.Connection(&cfg.DB)
	if err != nil {
		log.Fatalf("подключение к БД: %v", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			log.Printf("ошибка при закрытии соединения: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gofakeit.Seed(time.Now().UnixNano())

	if err := seed(ctx, dbConn); err != nil {
		log.Fatalf("ошибка при наполнении каталога: %v", err)
	}

	log.Println("Каталог наполнен")
}

func seed(ctx context.Context, db *sql.DB) error {
	for _, name := range categoryNames {
		var categoryID string
		err := db.QueryRowContext(ctx,
			`INSERT INTO categories (name) VALUES ($1)
             ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
             RETURNING id`, name).Scan(&categoryID)
		if err != nil {
			return fmt.Errorf("категория %q: %w", name, err)
		}

		for i := 0; i < productsPerCategory; i++ {
			_, err := db.ExecContext(ctx,
				`INSERT INTO products (name, description, price, quantity, image_url, category_id)
                 VALUES ($1, $2, $3, $4, $5, $6)`,
				gofakeit.HipsterWord()+" "+gofakeit.Word(),
				gofakeit.HipsterSentence(8),
				float64(gofakeit.Number(1500, 25000))/100,
				gofakeit.Number(0, 50),
				gofakeit.ImageURL(640, 480),
				categoryID,
			)
			if err != nil {
				return fmt.Errorf("товар в категории %q: %w", name, err)
			}
		}
	}

	expires := time.Now().AddDate(0, 1, 0)
	coupons := []struct {
		code      string
		off       float64
		active    bool
		expiresAt *time.Time
	}{
		{"WELCOME10", 10, true, &expires},
		{"VIP25", 25, true, nil},
		{"OLD50", 50, false, nil},
	}
	for _, c := range coupons {
		_, err := db.ExecContext(ctx,
			`INSERT INTO coupons (code, percentage_off, is_active, expires_at)
             VALUES ($1, $2, $3, $4)
             ON CONFLICT (code) DO UPDATE SET percentage_off = EXCLUDED.percentage_off,
                 is_active = EXCLUDED.is_active, expires_at = EXCLUDED.expires_at`,
			c.code, c.off, c.active, c.expiresAt)
		if err != nil {
			return fmt.Errorf("купон %q: %w", c.code, err)
		}
	}

	return nil
}
