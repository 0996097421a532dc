package models

import "time"

// OrderStatus represents order status. Store owners may set any of these
// values for orders containing their products; there is no enforced
// transition graph beyond membership in this set.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is a recognized order status
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is a line item within an order. Price is the price at purchase
// time and is immutable after creation.
type OrderItem struct {
	ID        string  `json:"id" db:"id"`
	OrderID   string  `json:"orderId" db:"order_id"`
	ProductID string  `json:"productId" db:"product_id"`
	StoreID   string  `json:"storeId" db:"store_id"`
	Name      string  `json:"name" db:"name"`
	Price     float64 `json:"price" db:"price"`
	Quantity  int     `json:"quantity" db:"quantity"`
}

// Order is a snapshot of a purchase, created atomically with its items
type Order struct {
	ID              string      `json:"id" db:"id"`
	UserID          string      `json:"userId" db:"user_id"`
	Subtotal        float64     `json:"subtotal" db:"subtotal"`
	Discount        float64     `json:"discount" db:"discount"`
	Total           float64     `json:"total" db:"total"`
	CouponCode      *string     `json:"couponCode,omitempty" db:"coupon_code"`
	Status          OrderStatus `json:"status" db:"status"`
	PaymentMethod   string      `json:"paymentMethod" db:"payment_method"`
	PaymentID       *string     `json:"paymentId,omitempty" db:"payment_id"`
	DeliveryAddress string      `json:"deliveryAddress" db:"delivery_address"`
	DeliveryPhone   string      `json:"deliveryPhone" db:"delivery_phone"`
	Warning         string      `json:"warning,omitempty" db:"-"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time   `json:"updatedAt" db:"updated_at"`

	// Joined data (populated when needed)
	Items []OrderItem `json:"items,omitempty"`
}

// OrderCreation represents data for creating a new order
type OrderCreation struct {
	Items           []CartLine `json:"items" validate:"required,min=1"`
	CouponCode      *string    `json:"couponCode,omitempty"`
	PaymentMethod   string     `json:"paymentMethod" validate:"required"`
	DeliveryAddress string     `json:"deliveryAddress" validate:"required"`
	DeliveryPhone   string     `json:"deliveryPhone" validate:"required"`
}

// GetTotalItems returns the total number of units in the order
func (o *Order) GetTotalItems() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}
