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

// OrderService handles order creation and fulfilment
type OrderService struct {
	db       *sql.DB
	coupons  *CouponService
	notifier CatalogNotifier
}

// NewOrderService creates a new order service
func NewOrderService(db *sql.DB, coupons *CouponService, notifier CatalogNotifier) *OrderService {
	return &OrderService{db: db, coupons: coupons, notifier: notifier}
}

// CreateOrder creates an order atomically with its line items. Prices are
// snapshotted from the database, never taken from the client. Stock is
// decremented with a quantity guard so two concurrent orders cannot
// oversell, and the in-stock flag is re-derived in the same statement.
func (s *OrderService) CreateOrder(userID string, creation *models.OrderCreation) (*models.Order, error) {
	if len(creation.Items) == 0 {
		return nil, apperr.Validationf("order must contain at least one item")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Snapshot each line from the catalog and reserve its stock.
	var items []models.OrderItem
	var lines []models.CartLine
	subtotal := 0.0
	for _, line := range creation.Items {
		if line.Quantity <= 0 {
			return nil, apperr.Validationf("item quantity must be positive")
		}

		var name, storeID string
		var price float64
		err := tx.QueryRow(`
			SELECT p.name, p.price, p.store_id
			FROM products p
			JOIN stores s ON s.id = p.store_id
			WHERE p.id = ? AND `+visibleProductsWhere, line.ProductID).
			Scan(&name, &price, &storeID)
		if err == sql.ErrNoRows {
			return nil, apperr.NotFoundf("product is not available")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load product: %w", err)
		}

		result, err := tx.Exec(`
			UPDATE products
			SET stock_quantity = stock_quantity - ?,
				in_stock = CASE WHEN stock_quantity - ? > 0 THEN 1 ELSE 0 END,
				updated_at = ?
			WHERE id = ? AND stock_quantity >= ?`,
			line.Quantity, line.Quantity, time.Now(), line.ProductID, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to reserve stock: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to check stock reservation: %w", err)
		}
		if affected == 0 {
			return nil, apperr.Conflictf("insufficient stock for %q", name)
		}

		items = append(items, models.OrderItem{
			ID:        uuid.New().String(),
			ProductID: line.ProductID,
			StoreID:   storeID,
			Name:      name,
			Price:     price,
			Quantity:  line.Quantity,
		})
		lines = append(lines, models.CartLine{
			ProductID: line.ProductID,
			StoreID:   storeID,
			Price:     price,
			Quantity:  line.Quantity,
		})
		subtotal += price * float64(line.Quantity)
	}
	subtotal = utils.RoundCurrency(subtotal)

	// Apply the coupon against the snapshotted prices, then burn a use
	// inside the same transaction.
	discount := 0.0
	var couponCode *string
	if creation.CouponCode != nil && *creation.CouponCode != "" {
		_, resultSet, err := s.coupons.ValidateCoupon(userID, *creation.CouponCode, lines)
		if err != nil {
			return nil, err
		}
		if err := s.coupons.RedeemCoupon(tx, *creation.CouponCode); err != nil {
			return nil, err
		}
		discount = resultSet.Discount
		normalized := utils.NormalizeCouponCode(*creation.CouponCode)
		couponCode = &normalized
	}

	total := subtotal - discount
	if total < 0 {
		total = 0
	}

	order := &models.Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Subtotal:        subtotal,
		Discount:        discount,
		Total:           total,
		CouponCode:      couponCode,
		Status:          models.OrderStatusPending,
		PaymentMethod:   creation.PaymentMethod,
		DeliveryAddress: creation.DeliveryAddress,
		DeliveryPhone:   creation.DeliveryPhone,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	_, err = tx.Exec(`
		INSERT INTO orders (id, user_id, subtotal, discount, total, coupon_code, status,
			payment_method, delivery_address, delivery_phone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.UserID, order.Subtotal, order.Discount, order.Total,
		order.CouponCode, order.Status, order.PaymentMethod,
		order.DeliveryAddress, order.DeliveryPhone, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
		_, err = tx.Exec(`
			INSERT INTO order_items (id, order_id, product_id, store_id, name, price, quantity)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			items[i].ID, items[i].OrderID, items[i].ProductID,
			items[i].StoreID, items[i].Name, items[i].Price, items[i].Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
	}

	// Clear the user's cart along with the order so a page refresh cannot
	// resubmit the same lines.
	if _, err := tx.Exec("DELETE FROM cart_items WHERE user_id = ?", userID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	order.Items = items
	metrics.OrdersCreated.Inc()
	metrics.OrderRevenue.Add(order.Total)
	if s.notifier != nil {
		s.notifier.InvalidateCatalog("order.created")
	}
	return order, nil
}

// GetOrders returns the caller's orders with their items, newest first
func (s *OrderService) GetOrders(userID string) ([]models.Order, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, subtotal, discount, total, coupon_code, status,
			payment_method, payment_id, delivery_address, delivery_phone,
			created_at, updated_at
		FROM orders WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		err := rows.Scan(
			&order.ID, &order.UserID, &order.Subtotal, &order.Discount,
			&order.Total, &order.CouponCode, &order.Status,
			&order.PaymentMethod, &order.PaymentID, &order.DeliveryAddress,
			&order.DeliveryPhone, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := s.getOrderItems(orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

// GetOrderByID returns one of the caller's orders with its items
func (s *OrderService) GetOrderByID(userID, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.QueryRow(`
		SELECT id, user_id, subtotal, discount, total, coupon_code, status,
			payment_method, payment_id, delivery_address, delivery_phone,
			created_at, updated_at
		FROM orders WHERE id = ? AND user_id = ?`, orderID, userID).Scan(
		&order.ID, &order.UserID, &order.Subtotal, &order.Discount,
		&order.Total, &order.CouponCode, &order.Status,
		&order.PaymentMethod, &order.PaymentID, &order.DeliveryAddress,
		&order.DeliveryPhone, &order.CreatedAt, &order.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := s.getOrderItems(order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

// GetStoreOrders returns orders that contain at least one item from the
// caller's store. Only that store's items are attached.
func (s *OrderService) GetStoreOrders(userID string) ([]models.Order, error) {
	rows, err := s.db.Query(`
		SELECT DISTINCT o.id, o.user_id, o.subtotal, o.discount, o.total, o.coupon_code,
			o.status, o.payment_method, o.payment_id, o.delivery_address, o.delivery_phone,
			o.created_at, o.updated_at
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN stores s ON s.id = oi.store_id
		WHERE s.user_id = ?
		ORDER BY o.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list store orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		err := rows.Scan(
			&order.ID, &order.UserID, &order.Subtotal, &order.Discount,
			&order.Total, &order.CouponCode, &order.Status,
			&order.PaymentMethod, &order.PaymentID, &order.DeliveryAddress,
			&order.DeliveryPhone, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := s.getOrderItemsForOwner(orders[i].ID, userID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

// UpdateOrderStatus lets a store owner move an order to any recognized
// status, provided the order contains at least one of their items. There is
// no enforced transition graph beyond membership in the status set.
func (s *OrderService) UpdateOrderStatus(userID, orderID string, status models.OrderStatus) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, apperr.Validationf("unknown order status %q", status)
	}

	result, err := s.db.Exec(`
		UPDATE orders SET status = ?, updated_at = ?
		WHERE id = ? AND id IN (
			SELECT oi.order_id FROM order_items oi
			JOIN stores s ON s.id = oi.store_id
			WHERE s.user_id = ?)`,
		status, time.Now(), orderID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check status update: %w", err)
	}
	if affected == 0 {
		return nil, apperr.NotFoundf("order not found")
	}

	var order models.Order
	err = s.db.QueryRow(`
		SELECT id, user_id, subtotal, discount, total, coupon_code, status,
			payment_method, payment_id, delivery_address, delivery_phone,
			created_at, updated_at
		FROM orders WHERE id = ?`, orderID).Scan(
		&order.ID, &order.UserID, &order.Subtotal, &order.Discount,
		&order.Total, &order.CouponCode, &order.Status,
		&order.PaymentMethod, &order.PaymentID, &order.DeliveryAddress,
		&order.DeliveryPhone, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	return &order, nil
}

func (s *OrderService) getOrderItems(orderID string) ([]models.OrderItem, error) {
	return s.queryOrderItems(`
		SELECT id, order_id, product_id, store_id, name, price, quantity
		FROM order_items WHERE order_id = ?`, orderID)
}

func (s *OrderService) getOrderItemsForOwner(orderID, userID string) ([]models.OrderItem, error) {
	return s.queryOrderItems(`
		SELECT oi.id, oi.order_id, oi.product_id, oi.store_id, oi.name, oi.price, oi.quantity
		FROM order_items oi
		JOIN stores s ON s.id = oi.store_id
		WHERE oi.order_id = ? AND s.user_id = ?`, orderID, userID)
}

func (s *OrderService) queryOrderItems(query string, args ...interface{}) ([]models.OrderItem, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.StoreID, &item.Name, &item.Price, &item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
