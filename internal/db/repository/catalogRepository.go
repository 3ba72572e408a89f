package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/RussoPy/Claude-s-Store/internal/models"
)

type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListProducts - список товаров с развернутой категорией.
// categoryID фильтрует по разделу, namePrefix - поиск "начинается с".
func (r *CatalogRepository) ListProducts(ctx context.Context, categoryID, namePrefix string) ([]models.Product, error) {
	query := `SELECT p.id, p.name, p.description, p.price, p.quantity, p.image_url, c.id, c.name
              FROM products p JOIN categories c ON c.id = p.category_id`
	args := []any{}

	where := ""
	if categoryID != "" {
		args = append(args, categoryID)
		where = fmt.Sprintf(" WHERE p.category_id = $%d", len(args))
	}
	if namePrefix != "" {
		args = append(args, namePrefix+"%")
		if where == "" {
			where = fmt.Sprintf(" WHERE p.name LIKE $%d", len(args))
		} else {
			where += fmt.Sprintf(" AND p.name LIKE $%d", len(args))
		}
	}

	rows, err := r.db.QueryContext(ctx, query+where+" ORDER BY p.name", args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении товаров: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			log.Printf("ошибка при закрытии rows: %v", err)
		}
	}()

	var products []models.Product
	for rows.Next() {
		var (
			p models.Product
			c models.Category
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.ImageURL, &c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("ошибка при чтении товара: %w", err)
		}
		p.Category = &c
		products = append(products, p)
	}

	return products, nil
}

// GetProduct - один товар по id, с категорией.
func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (models.Product, error) {
	var (
		p models.Product
		c models.Category
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT p.id, p.name, p.description, p.price, p.quantity, p.image_url, c.id, c.name
         FROM products p JOIN categories c ON c.id = p.category_id WHERE p.id=$1`,
		id).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.ImageURL, &c.ID, &c.Name)
	if err != nil {
		return models.Product{}, fmt.Errorf("error при получении product: %w", err)
	}
	p.Category = &c

	return p, nil
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении категорий: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			log.Printf("ошибка при закрытии rows: %v", err)
		}
	}()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("ошибка при чтении категории: %w", err)
		}
		categories = append(categories, c)
	}

	return categories, nil
}

func (r *CatalogRepository) GetCategory(ctx context.Context, id string) (models.Category, error) {
	var c models.Category

	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM categories WHERE id=$1", id).Scan(&c.ID, &c.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Category{}, fmt.Errorf("категория не найдена")
		}
		return models.Category{}, fmt.Errorf("error при получении category: %w", err)
	}

	return c, nil
}
