package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gocart-backend/internal/apperr"
	"gocart-backend/internal/models"
)

// CartService handles the server-side shopping cart. The cart is a
// convenience store of intent; stock and prices are only enforced at order
// creation time.
type CartService struct {
	db *sql.DB
}

// NewCartService creates a new cart service
func NewCartService(db *sql.DB) *CartService {
	return &CartService{db: db}
}

// CartItem is a cart entry with its product attached
type CartItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Product   *models.Product `json:"product,omitempty"`
}

// SetItem upserts a cart entry. A zero or negative quantity removes it.
func (s *CartService) SetItem(userID, productID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(userID, productID)
	}

	var exists bool
	err := s.db.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM products WHERE id = ? AND status = 'approved')",
		productID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return apperr.NotFoundf("product not found")
	}

	now := time.Now()
	_, err = s.db.Exec(`
		INSERT INTO cart_items (id, user_id, product_id, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, product_id)
		DO UPDATE SET quantity = excluded.quantity, updated_at = excluded.updated_at`,
		uuid.New().String(), userID, productID, quantity, now, now)
	if err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}
	return nil
}

// RemoveItem removes a product from the cart
func (s *CartService) RemoveItem(userID, productID string) error {
	_, err := s.db.Exec("DELETE FROM cart_items WHERE user_id = ? AND product_id = ?",
		userID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

// GetCart returns the user's cart with current product data attached.
// Entries whose product has since become invisible are still returned; the
// order path is what rejects them.
func (s *CartService) GetCart(userID string) ([]CartItem, error) {
	rows, err := s.db.Query(`
		SELECT ci.id, ci.product_id, ci.quantity, `+productColumns+`
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = ?
		ORDER BY ci.created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	defer rows.Close()

	var items []CartItem
	for rows.Next() {
		var item CartItem
		var product models.Product
		var imagesJSON string
		err := rows.Scan(
			&item.ID, &item.ProductID, &item.Quantity,
			&product.ID, &product.StoreID, &product.Name, &product.Description,
			&product.Category, &product.MRP, &product.Price, &imagesJSON,
			&product.StockQuantity, &product.InStock, &product.Status,
			&product.ReviewerID, &product.AdminNote, &product.ReviewedAt,
			&product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		if err := product.SetImagesFromJSON(imagesJSON); err != nil {
			return nil, fmt.Errorf("failed to decode product images: %w", err)
		}
		item.Product = &product
		items = append(items, item)
	}
	return items, rows.Err()
}

// ClearCart removes all of the user's cart entries
func (s *CartService) ClearCart(userID string) error {
	_, err := s.db.Exec("DELETE FROM cart_items WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
