package models

import "time"

// DiscountType represents how a coupon discount is computed
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// CouponStatus represents the moderation status of a store coupon.
// Global coupons are admin-created and carry no moderation state.
type CouponStatus string

const (
	CouponStatusPending  CouponStatus = "pending"
	CouponStatusApproved CouponStatus = "approved"
	CouponStatusRejected CouponStatus = "rejected"
)

// Coupon represents a discount rule. StoreID nil means a global coupon that
// applies to the whole cart; non-nil scopes the discount to that store's
// cart lines and subjects the coupon to admin moderation.
type Coupon struct {
	ID                string       `json:"id" db:"id"`
	Code              string       `json:"code" db:"code"`
	StoreID           *string      `json:"storeId,omitempty" db:"store_id"`
	Description       string       `json:"description" db:"description"`
	DiscountType      DiscountType `json:"discountType" db:"discount_type"`
	DiscountValue     float64      `json:"discountValue" db:"discount_value"`
	MaxDiscountAmount *float64     `json:"maxDiscountAmount,omitempty" db:"max_discount_amount"`
	MinOrderAmount    float64      `json:"minOrderAmount" db:"min_order_amount"`
	ForNewUser        bool         `json:"forNewUser" db:"for_new_user"`
	ForMember         bool         `json:"forMember" db:"for_member"`
	IsPublic          bool         `json:"isPublic" db:"is_public"`
	UsageLimit        int          `json:"usageLimit" db:"usage_limit"`
	UsedCount         int          `json:"usedCount" db:"used_count"`
	IsActive          bool         `json:"isActive" db:"is_active"`
	Status            CouponStatus `json:"status" db:"status"`
	ReviewerID        *string      `json:"reviewerId,omitempty" db:"reviewer_id"`
	ExpiresAt         time.Time    `json:"expiresAt" db:"expires_at"`
	CreatedAt         time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time    `json:"updatedAt" db:"updated_at"`
}

// CouponCreation represents data for creating a coupon
type CouponCreation struct {
	Code              string       `json:"code" validate:"required,min=3"`
	Description       string       `json:"description"`
	DiscountType      DiscountType `json:"discountType" validate:"required"`
	DiscountValue     float64      `json:"discountValue" validate:"required,gt=0"`
	MaxDiscountAmount *float64     `json:"maxDiscountAmount,omitempty"`
	MinOrderAmount    float64      `json:"minOrderAmount" validate:"gte=0"`
	ForNewUser        bool         `json:"forNewUser"`
	ForMember         bool         `json:"forMember"`
	IsPublic          bool         `json:"isPublic"`
	UsageLimit        int          `json:"usageLimit" validate:"gte=0"`
	ExpiresAt         time.Time    `json:"expiresAt" validate:"required"`
}

// CouponUpdate represents a partial coupon edit; nil fields are untouched
type CouponUpdate struct {
	Code              *string       `json:"code,omitempty"`
	Description       *string       `json:"description,omitempty"`
	DiscountType      *DiscountType `json:"discountType,omitempty"`
	DiscountValue     *float64      `json:"discountValue,omitempty"`
	MaxDiscountAmount *float64      `json:"maxDiscountAmount,omitempty"`
	MinOrderAmount    *float64      `json:"minOrderAmount,omitempty"`
	ForNewUser        *bool         `json:"forNewUser,omitempty"`
	ForMember         *bool         `json:"forMember,omitempty"`
	IsPublic          *bool         `json:"isPublic,omitempty"`
	UsageLimit        *int          `json:"usageLimit,omitempty"`
	IsActive          *bool         `json:"isActive,omitempty"`
	ExpiresAt         *time.Time    `json:"expiresAt,omitempty"`
}

// CartLine is one cart entry submitted for coupon validation or ordering
type CartLine struct {
	ProductID string  `json:"productId" validate:"required"`
	StoreID   string  `json:"storeId"`
	Price     float64 `json:"price" validate:"gte=0"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
}

// Amount returns the line total
func (l CartLine) Amount() float64 {
	return l.Price * float64(l.Quantity)
}

// DiscountResult is the outcome of a successful coupon validation
type DiscountResult struct {
	Discount         float64    `json:"discount"`
	ApplicableAmount float64    `json:"applicableAmount"`
	ApplicableItems  []CartLine `json:"applicableItems"`
}

// IsGlobal reports whether the coupon applies to the whole cart
func (c *Coupon) IsGlobal() bool {
	return c.StoreID == nil
}

// IsExpired reports whether the coupon has expired at the given time
func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ExpiresAt.Before(now)
}

// IsExhausted reports whether the usage limit has been reached
func (c *Coupon) IsExhausted() bool {
	return c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit
}
