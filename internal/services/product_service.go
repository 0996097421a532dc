package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gocart-backend/internal/apperr"
	"gocart-backend/internal/metrics"
	"gocart-backend/internal/models"
	"gocart-backend/internal/utils"
)

// visibleProductsWhere is the marketplace visibility gate, defined once.
// A product is buyable only when it is approved, has stock, and its store
// is both approved and active.
const visibleProductsWhere = `
	p.status = 'approved' AND p.stock_quantity > 0
	AND s.status = 'approved' AND s.is_active = 1`

// ProductService handles product catalog operations
type ProductService struct {
	db       *sql.DB
	notifier CatalogNotifier
}

// NewProductService creates a new product service
func NewProductService(db *sql.DB, notifier CatalogNotifier) *ProductService {
	return &ProductService{db: db, notifier: notifier}
}

const productColumns = `p.id, p.store_id, p.name, p.description, p.category, p.mrp, p.price,
	p.images, p.stock_quantity, p.in_stock, p.status, p.reviewer_id, p.admin_note,
	p.reviewed_at, p.created_at, p.updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (*models.Product, error) {
	var product models.Product
	var imagesJSON string
	err := row.Scan(
		&product.ID, &product.StoreID, &product.Name, &product.Description,
		&product.Category, &product.MRP, &product.Price, &imagesJSON,
		&product.StockQuantity, &product.InStock, &product.Status,
		&product.ReviewerID, &product.AdminNote, &product.ReviewedAt,
		&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := product.SetImagesFromJSON(imagesJSON); err != nil {
		return nil, fmt.Errorf("failed to decode product images: %w", err)
	}
	return &product, nil
}

// CreateProduct creates a new product in pending status for the caller's
// store. The in-stock flag is derived from the quantity, never taken from
// the request.
func (s *ProductService) CreateProduct(userID string, creation *models.ProductCreation) (*models.Product, error) {
	var storeID string
	err := s.db.QueryRow("SELECT id FROM stores WHERE user_id = ?", userID).Scan(&storeID)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("you do not have a store")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store: %w", err)
	}

	if creation.Price > creation.MRP {
		return nil, apperr.Validationf("price cannot exceed MRP")
	}

	product := &models.Product{
		ID:            uuid.New().String(),
		StoreID:       storeID,
		Name:          creation.Name,
		Description:   creation.Description,
		Category:      creation.Category,
		MRP:           creation.MRP,
		Price:         creation.Price,
		Images:        creation.Images,
		StockQuantity: utils.ClampStock(creation.StockQuantity),
		Status:        models.ProductStatusPending,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	product.DeriveInStock()

	imagesJSON, err := product.GetImagesJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode product images: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO products (id, store_id, name, description, category, mrp, price,
			images, stock_quantity, in_stock, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID, product.StoreID, product.Name, product.Description,
		product.Category, product.MRP, product.Price, imagesJSON,
		product.StockQuantity, product.InStock, product.Status,
		product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	metrics.ProductSubmissions.Inc()
	return product, nil
}

// ListMarketplace returns all buyable products with their stores attached.
// Category and search filters are optional.
func (s *ProductService) ListMarketplace(category, search string) ([]models.Product, error) {
	query := `
		SELECT ` + productColumns + `,
			s.id, s.name, s.username, s.description, s.email, s.contact, s.address, s.logo,
			s.status, s.is_active, s.user_id, s.reviewer_id, s.review_note, s.reviewed_at,
			s.created_at, s.updated_at
		FROM products p
		JOIN stores s ON s.id = p.store_id
		WHERE ` + visibleProductsWhere
	args := []interface{}{}

	if category != "" {
		query += " AND p.category = ?"
		args = append(args, category)
	}
	if search != "" {
		query += " AND (p.name LIKE ? OR p.description LIKE ?)"
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	query += " ORDER BY p.created_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var product models.Product
		var store models.Store
		var imagesJSON string
		err := rows.Scan(
			&product.ID, &product.StoreID, &product.Name, &product.Description,
			&product.Category, &product.MRP, &product.Price, &imagesJSON,
			&product.StockQuantity, &product.InStock, &product.Status,
			&product.ReviewerID, &product.AdminNote, &product.ReviewedAt,
			&product.CreatedAt, &product.UpdatedAt,
			&store.ID, &store.Name, &store.Username, &store.Description,
			&store.Email, &store.Contact, &store.Address, &store.Logo,
			&store.Status, &store.IsActive, &store.UserID,
			&store.ReviewerID, &store.ReviewNote, &store.ReviewedAt,
			&store.CreatedAt, &store.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if err := product.SetImagesFromJSON(imagesJSON); err != nil {
			return nil, fmt.Errorf("failed to decode product images: %w", err)
		}
		product.Store = &store
		products = append(products, product)
	}
	return products, rows.Err()
}

// GetProductByID returns an approved product by ID. Unlike the marketplace
// listing, a direct lookup does not check the store's visibility, so a
// shared product link keeps working while a store is briefly deactivated.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	product, err := scanProduct(s.db.QueryRow(
		"SELECT "+productColumns+" FROM products p WHERE p.id = ? AND p.status = 'approved'", id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// GetStoreProducts returns all products of the caller's store, any status
func (s *ProductService) GetStoreProducts(userID string) ([]models.Product, error) {
	rows, err := s.db.Query(`
		SELECT `+productColumns+`
		FROM products p
		JOIN stores s ON s.id = p.store_id
		WHERE s.user_id = ?
		ORDER BY p.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list store products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *product)
	}
	return products, rows.Err()
}

// ListPendingProducts returns products awaiting review. Admin-facing.
func (s *ProductService) ListPendingProducts() ([]models.Product, error) {
	rows, err := s.db.Query(
		"SELECT " + productColumns + " FROM products p WHERE p.status = 'pending' ORDER BY p.created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list pending products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *product)
	}
	return products, rows.Err()
}

// ReviewProduct approves or rejects a pending product. Approving a product
// with zero stock assigns DefaultRestockQuantity so approval never publishes
// an unbuyable listing. The update is guarded on the pending status so two
// concurrent reviewers cannot both win.
func (s *ProductService) ReviewProduct(reviewerID, productID string, approve bool, note string) (*models.Product, error) {
	status := models.ProductStatusRejected
	if approve {
		status = models.ProductStatusApproved
	}

	now := time.Now()
	var result sql.Result
	var err error
	if approve {
		result, err = s.db.Exec(`
			UPDATE products
			SET status = ?, reviewer_id = ?, admin_note = ?, reviewed_at = ?, updated_at = ?,
				stock_quantity = CASE WHEN stock_quantity = 0 THEN ? ELSE stock_quantity END,
				in_stock = 1
			WHERE id = ? AND status = 'pending'`,
			status, reviewerID, nullIfEmpty(note), now, now,
			models.DefaultRestockQuantity, productID)
	} else {
		result, err = s.db.Exec(`
			UPDATE products
			SET status = ?, reviewer_id = ?, admin_note = ?, reviewed_at = ?, updated_at = ?
			WHERE id = ? AND status = 'pending'`,
			status, reviewerID, nullIfEmpty(note), now, now, productID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to review product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check review result: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)", productID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to check product: %w", err)
		}
		if !exists {
			return nil, apperr.NotFoundf("product not found")
		}
		return nil, apperr.Conflictf("product was already reviewed")
	}

	metrics.ProductReviews.WithLabelValues(string(status)).Inc()
	if s.notifier != nil {
		s.notifier.InvalidateCatalog("product." + string(status))
	}

	product, err := scanProduct(s.db.QueryRow(
		"SELECT "+productColumns+" FROM products p WHERE p.id = ?", productID))
	if err != nil {
		return nil, fmt.Errorf("failed to reload product: %w", err)
	}
	return product, nil
}

// UpdateProduct edits the caller's product. Editing a rejected product
// resubmits it: status returns to pending and the review metadata is cleared.
func (s *ProductService) UpdateProduct(userID, productID string, update *models.ProductUpdate) (*models.Product, error) {
	product, err := s.getOwnedProduct(userID, productID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		product.Name = *update.Name
	}
	if update.Description != nil {
		product.Description = *update.Description
	}
	if update.Category != nil {
		product.Category = *update.Category
	}
	if update.MRP != nil {
		product.MRP = *update.MRP
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if update.Images != nil {
		product.Images = update.Images
	}
	if product.Price > product.MRP {
		return nil, apperr.Validationf("price cannot exceed MRP")
	}

	resubmit := product.Status == models.ProductStatusRejected
	if resubmit {
		product.Status = models.ProductStatusPending
		product.ReviewerID = nil
		product.AdminNote = nil
		product.ReviewedAt = nil
	}

	imagesJSON, err := product.GetImagesJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode product images: %w", err)
	}

	_, err = s.db.Exec(`
		UPDATE products
		SET name = ?, description = ?, category = ?, mrp = ?, price = ?, images = ?,
			status = ?, reviewer_id = ?, admin_note = ?, reviewed_at = ?, updated_at = ?
		WHERE id = ?`,
		product.Name, product.Description, product.Category, product.MRP,
		product.Price, imagesJSON, product.Status, product.ReviewerID,
		product.AdminNote, product.ReviewedAt, time.Now(), product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if resubmit {
		metrics.ProductSubmissions.Inc()
	}
	if s.notifier != nil {
		s.notifier.InvalidateCatalog("product.updated")
	}
	return product, nil
}

// UpdateStock sets the stock quantity of the caller's product. The quantity
// is clamped to zero and the in-stock flag is re-derived in the same update.
func (s *ProductService) UpdateStock(userID, productID string, quantity int) (*models.Product, error) {
	product, err := s.getOwnedProduct(userID, productID)
	if err != nil {
		return nil, err
	}

	quantity = utils.ClampStock(quantity)
	_, err = s.db.Exec(`
		UPDATE products
		SET stock_quantity = ?, in_stock = ?, updated_at = ?
		WHERE id = ?`,
		quantity, quantity > 0, time.Now(), product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	product.StockQuantity = quantity
	product.DeriveInStock()

	if s.notifier != nil {
		s.notifier.InvalidateCatalog("product.stock")
	}
	return product, nil
}

// SetInStock handles the explicit in-stock toggle. Marking a product in
// stock with a zero quantity would break the stock invariant and is
// rejected; marking it out of stock zeroes the quantity instead.
func (s *ProductService) SetInStock(userID, productID string, inStock bool) (*models.Product, error) {
	product, err := s.getOwnedProduct(userID, productID)
	if err != nil {
		return nil, err
	}

	if inStock {
		if product.StockQuantity == 0 {
			return nil, apperr.Validationf("cannot mark a product in stock with zero quantity; set a stock quantity instead")
		}
		// Quantity is positive, so the flag is already true. No-op.
		return product, nil
	}

	_, err = s.db.Exec(`
		UPDATE products SET stock_quantity = 0, in_stock = 0, updated_at = ? WHERE id = ?`,
		time.Now(), product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	product.StockQuantity = 0
	product.InStock = false

	if s.notifier != nil {
		s.notifier.InvalidateCatalog("product.stock")
	}
	return product, nil
}

func (s *ProductService) getOwnedProduct(userID, productID string) (*models.Product, error) {
	product, err := scanProduct(s.db.QueryRow(`
		SELECT `+productColumns+`
		FROM products p
		JOIN stores s ON s.id = p.store_id
		WHERE p.id = ? AND s.user_id = ?`, productID, userID))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}
