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

// CouponService handles coupon creation, moderation and validation
type CouponService struct {
	db *sql.DB
}

// NewCouponService creates a new coupon service
func NewCouponService(db *sql.DB) *CouponService {
	return &CouponService{db: db}
}

const couponColumns = `id, code, store_id, description, discount_type, discount_value,
	max_discount_amount, min_order_amount, for_new_user, for_member, is_public,
	usage_limit, used_count, is_active, status, reviewer_id, expires_at,
	created_at, updated_at`

func scanCoupon(row interface{ Scan(...interface{}) error }) (*models.Coupon, error) {
	var coupon models.Coupon
	err := row.Scan(
		&coupon.ID, &coupon.Code, &coupon.StoreID, &coupon.Description,
		&coupon.DiscountType, &coupon.DiscountValue, &coupon.MaxDiscountAmount,
		&coupon.MinOrderAmount, &coupon.ForNewUser, &coupon.ForMember,
		&coupon.IsPublic, &coupon.UsageLimit, &coupon.UsedCount,
		&coupon.IsActive, &coupon.Status, &coupon.ReviewerID,
		&coupon.ExpiresAt, &coupon.CreatedAt, &coupon.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func validateDiscount(discountType models.DiscountType, value float64) error {
	switch discountType {
	case models.DiscountTypePercentage:
		if value < 0 || value > 100 {
			return apperr.Validationf("percentage discount must be between 0 and 100")
		}
	case models.DiscountTypeFixed:
		if value <= 0 {
			return apperr.Validationf("fixed discount must be positive")
		}
	default:
		return apperr.Validationf("unknown discount type %q", discountType)
	}
	return nil
}

func validateCouponCreation(creation *models.CouponCreation) error {
	return validateDiscount(creation.DiscountType, creation.DiscountValue)
}

// CreateGlobalCoupon creates an admin-owned coupon that applies to the whole
// cart. Global coupons skip moderation.
func (s *CouponService) CreateGlobalCoupon(creation *models.CouponCreation) (*models.Coupon, error) {
	return s.createCoupon(nil, creation, models.CouponStatusApproved)
}

// CreateStoreCoupon creates a coupon scoped to the caller's store. Store
// coupons start pending and must be approved before they validate.
func (s *CouponService) CreateStoreCoupon(userID string, creation *models.CouponCreation) (*models.Coupon, error) {
	var storeID string
	err := s.db.QueryRow("SELECT id FROM stores WHERE user_id = ?", userID).Scan(&storeID)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("you do not have a store")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store: %w", err)
	}
	return s.createCoupon(&storeID, creation, models.CouponStatusPending)
}

func (s *CouponService) createCoupon(storeID *string, creation *models.CouponCreation, status models.CouponStatus) (*models.Coupon, error) {
	if err := validateCouponCreation(creation); err != nil {
		return nil, err
	}

	code := utils.NormalizeCouponCode(creation.Code)

	// One table holds both kinds, so this check covers global and
	// store-scoped codes in a single query.
	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM coupons WHERE code = ?)", code).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check coupon code: %w", err)
	}
	if exists {
		return nil, apperr.Conflictf("coupon code %q already exists", code)
	}

	coupon := &models.Coupon{
		ID:                uuid.New().String(),
		Code:              code,
		StoreID:           storeID,
		Description:       creation.Description,
		DiscountType:      creation.DiscountType,
		DiscountValue:     creation.DiscountValue,
		MaxDiscountAmount: creation.MaxDiscountAmount,
		MinOrderAmount:    creation.MinOrderAmount,
		ForNewUser:        creation.ForNewUser,
		ForMember:         creation.ForMember,
		IsPublic:          creation.IsPublic,
		UsageLimit:        creation.UsageLimit,
		IsActive:          true,
		Status:            status,
		ExpiresAt:         creation.ExpiresAt,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	_, err = s.db.Exec(`
		INSERT INTO coupons (id, code, store_id, description, discount_type, discount_value,
			max_discount_amount, min_order_amount, for_new_user, for_member, is_public,
			usage_limit, used_count, is_active, status, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?, ?)`,
		coupon.ID, coupon.Code, coupon.StoreID, coupon.Description,
		coupon.DiscountType, coupon.DiscountValue, coupon.MaxDiscountAmount,
		coupon.MinOrderAmount, coupon.ForNewUser, coupon.ForMember,
		coupon.IsPublic, coupon.UsageLimit, coupon.IsActive, coupon.Status,
		coupon.ExpiresAt, coupon.CreatedAt, coupon.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	return coupon, nil
}

// UpdateGlobalCoupon edits an admin-owned coupon. Global coupons stay
// approved; the discount and code rules from creation apply unchanged.
func (s *CouponService) UpdateGlobalCoupon(couponID string, upd *models.CouponUpdate) (*models.Coupon, error) {
	coupon, err := scanCoupon(s.db.QueryRow(
		"SELECT "+couponColumns+" FROM coupons WHERE id = ? AND store_id IS NULL", couponID))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("coupon not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return s.updateCoupon(coupon, upd, coupon.Status)
}

// UpdateStoreCoupon edits a coupon belonging to the caller's store. Edits
// re-enter moderation, so the coupon drops back to pending.
func (s *CouponService) UpdateStoreCoupon(userID, couponID string, upd *models.CouponUpdate) (*models.Coupon, error) {
	coupon, err := scanCoupon(s.db.QueryRow(`
		SELECT `+couponColumns+` FROM coupons
		WHERE id = ? AND store_id IN (SELECT id FROM stores WHERE user_id = ?)`,
		couponID, userID))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("coupon not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return s.updateCoupon(coupon, upd, models.CouponStatusPending)
}

func (s *CouponService) updateCoupon(coupon *models.Coupon, upd *models.CouponUpdate, status models.CouponStatus) (*models.Coupon, error) {
	if upd.Code != nil {
		code := utils.NormalizeCouponCode(*upd.Code)
		if code != coupon.Code {
			var exists bool
			err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM coupons WHERE code = ? AND id != ?)", code, coupon.ID).Scan(&exists)
			if err != nil {
				return nil, fmt.Errorf("failed to check coupon code: %w", err)
			}
			if exists {
				return nil, apperr.Conflictf("coupon code %q already exists", code)
			}
			coupon.Code = code
		}
	}
	if upd.Description != nil {
		coupon.Description = *upd.Description
	}
	if upd.DiscountType != nil {
		coupon.DiscountType = *upd.DiscountType
	}
	if upd.DiscountValue != nil {
		coupon.DiscountValue = *upd.DiscountValue
	}
	if upd.MaxDiscountAmount != nil {
		coupon.MaxDiscountAmount = upd.MaxDiscountAmount
	}
	if upd.MinOrderAmount != nil {
		if *upd.MinOrderAmount < 0 {
			return nil, apperr.Validationf("minimum order amount cannot be negative")
		}
		coupon.MinOrderAmount = *upd.MinOrderAmount
	}
	if upd.ForNewUser != nil {
		coupon.ForNewUser = *upd.ForNewUser
	}
	if upd.ForMember != nil {
		coupon.ForMember = *upd.ForMember
	}
	if upd.IsPublic != nil {
		coupon.IsPublic = *upd.IsPublic
	}
	if upd.UsageLimit != nil {
		if *upd.UsageLimit < 0 {
			return nil, apperr.Validationf("usage limit cannot be negative")
		}
		coupon.UsageLimit = *upd.UsageLimit
	}
	if upd.IsActive != nil {
		coupon.IsActive = *upd.IsActive
	}
	if upd.ExpiresAt != nil {
		coupon.ExpiresAt = *upd.ExpiresAt
	}

	if err := validateDiscount(coupon.DiscountType, coupon.DiscountValue); err != nil {
		return nil, err
	}

	coupon.Status = status
	if status == models.CouponStatusPending {
		coupon.ReviewerID = nil
	}
	coupon.UpdatedAt = time.Now()

	_, err := s.db.Exec(`
		UPDATE coupons
		SET code = ?, description = ?, discount_type = ?, discount_value = ?,
			max_discount_amount = ?, min_order_amount = ?, for_new_user = ?,
			for_member = ?, is_public = ?, usage_limit = ?, is_active = ?,
			status = ?, reviewer_id = ?, expires_at = ?, updated_at = ?
		WHERE id = ?`,
		coupon.Code, coupon.Description, coupon.DiscountType, coupon.DiscountValue,
		coupon.MaxDiscountAmount, coupon.MinOrderAmount, coupon.ForNewUser,
		coupon.ForMember, coupon.IsPublic, coupon.UsageLimit, coupon.IsActive,
		coupon.Status, coupon.ReviewerID, coupon.ExpiresAt, coupon.UpdatedAt,
		coupon.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update coupon: %w", err)
	}

	return coupon, nil
}

// ReviewStoreCoupon approves or rejects a pending store coupon. Guarded on
// the pending status so the second of two concurrent reviews fails.
func (s *CouponService) ReviewStoreCoupon(reviewerID, couponID string, approve bool) (*models.Coupon, error) {
	status := models.CouponStatusRejected
	if approve {
		status = models.CouponStatusApproved
	}

	result, err := s.db.Exec(`
		UPDATE coupons
		SET status = ?, reviewer_id = ?, updated_at = ?
		WHERE id = ? AND store_id IS NOT NULL AND status = 'pending'`,
		status, reviewerID, time.Now(), couponID)
	if err != nil {
		return nil, fmt.Errorf("failed to review coupon: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check review result: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM coupons WHERE id = ? AND store_id IS NOT NULL)", couponID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to check coupon: %w", err)
		}
		if !exists {
			return nil, apperr.NotFoundf("coupon not found")
		}
		return nil, apperr.Conflictf("coupon was already reviewed")
	}

	coupon, err := scanCoupon(s.db.QueryRow(
		"SELECT "+couponColumns+" FROM coupons WHERE id = ?", couponID))
	if err != nil {
		return nil, fmt.Errorf("failed to reload coupon: %w", err)
	}
	return coupon, nil
}

// ListStoreCoupons returns the coupons of the caller's store, any status
func (s *CouponService) ListStoreCoupons(userID string) ([]models.Coupon, error) {
	return s.listCoupons(`
		SELECT `+couponColumns+` FROM coupons
		WHERE store_id IN (SELECT id FROM stores WHERE user_id = ?)
		ORDER BY created_at DESC`, userID)
}

// ListPendingStoreCoupons returns store coupons awaiting review. Admin-facing.
func (s *CouponService) ListPendingStoreCoupons() ([]models.Coupon, error) {
	return s.listCoupons(`
		SELECT ` + couponColumns + ` FROM coupons
		WHERE store_id IS NOT NULL AND status = 'pending'
		ORDER BY created_at ASC`)
}

// ListPublicCoupons returns active public global coupons for display
func (s *CouponService) ListPublicCoupons() ([]models.Coupon, error) {
	return s.listCoupons(`
		SELECT `+couponColumns+` FROM coupons
		WHERE store_id IS NULL AND is_public = 1 AND is_active = 1 AND expires_at >= ?
		ORDER BY created_at DESC`, time.Now())
}

func (s *CouponService) listCoupons(query string, args ...interface{}) ([]models.Coupon, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	defer rows.Close()

	var coupons []models.Coupon
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, *coupon)
	}
	return coupons, rows.Err()
}

// ValidateCoupon runs the discount engine against a cart. It never mutates
// used_count; redemption happens transactionally when an order is created.
// userID may be empty for anonymous validation, in which case new-user
// restricted coupons are rejected.
func (s *CouponService) ValidateCoupon(userID, code string, cart []models.CartLine) (*models.Coupon, *models.DiscountResult, error) {
	if len(cart) == 0 {
		return nil, nil, apperr.Validationf("cart is empty")
	}

	code = utils.NormalizeCouponCode(code)
	now := time.Now()

	coupon, err := s.lookupCoupon(code, now)
	if err != nil {
		metrics.CouponValidations.WithLabelValues("not_found").Inc()
		return nil, nil, err
	}

	applicable := cart
	if !coupon.IsGlobal() {
		applicable = nil
		for _, line := range cart {
			if line.StoreID == *coupon.StoreID {
				applicable = append(applicable, line)
			}
		}
		if len(applicable) == 0 {
			metrics.CouponValidations.WithLabelValues("not_applicable").Inc()
			return nil, nil, apperr.New(apperr.KindApplicability,
				fmt.Sprintf("coupon %s only applies to products from its store", coupon.Code))
		}
	}

	applicableAmount := 0.0
	for _, line := range applicable {
		applicableAmount += line.Amount()
	}

	if coupon.IsExpired(now) {
		metrics.CouponValidations.WithLabelValues("expired").Inc()
		return nil, nil, apperr.New(apperr.KindExpired, "this coupon has expired")
	}
	if applicableAmount < coupon.MinOrderAmount {
		metrics.CouponValidations.WithLabelValues("below_threshold").Inc()
		return nil, nil, apperr.New(apperr.KindThreshold,
			fmt.Sprintf("order must be at least %.0f to use this coupon", coupon.MinOrderAmount))
	}
	if coupon.IsExhausted() {
		metrics.CouponValidations.WithLabelValues("exhausted").Inc()
		return nil, nil, apperr.New(apperr.KindExhausted, "this coupon has reached its usage limit")
	}

	if coupon.ForNewUser {
		if userID == "" {
			return nil, nil, apperr.New(apperr.KindApplicability, "this coupon is for new customers only")
		}
		var hasOrders bool
		err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM orders WHERE user_id = ?)", userID).Scan(&hasOrders)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check order history: %w", err)
		}
		if hasOrders {
			metrics.CouponValidations.WithLabelValues("not_applicable").Inc()
			return nil, nil, apperr.New(apperr.KindApplicability, "this coupon is for new customers only")
		}
	}

	var discount float64
	switch coupon.DiscountType {
	case models.DiscountTypePercentage:
		discount = applicableAmount * coupon.DiscountValue / 100
		if coupon.MaxDiscountAmount != nil && discount > *coupon.MaxDiscountAmount {
			discount = *coupon.MaxDiscountAmount
		}
	case models.DiscountTypeFixed:
		discount = coupon.DiscountValue
		if discount > applicableAmount {
			discount = applicableAmount
		}
	}
	discount = utils.RoundCurrency(discount)

	metrics.CouponValidations.WithLabelValues("ok").Inc()
	return coupon, &models.DiscountResult{
		Discount:         discount,
		ApplicableAmount: applicableAmount,
		ApplicableItems:  applicable,
	}, nil
}

// lookupCoupon finds the coupon for a code. Global coupons are found
// regardless of expiry so a stale code reports "expired" rather than
// "invalid"; store coupons are pre-filtered the way shoppers see them, so a
// rejected or expired store code is simply an invalid code.
func (s *CouponService) lookupCoupon(code string, now time.Time) (*models.Coupon, error) {
	coupon, err := scanCoupon(s.db.QueryRow(
		"SELECT "+couponColumns+" FROM coupons WHERE code = ? AND store_id IS NULL AND is_active = 1", code))
	if err == nil {
		return coupon, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}

	coupon, err = scanCoupon(s.db.QueryRow(`
		SELECT `+couponColumns+` FROM coupons
		WHERE code = ? AND store_id IS NOT NULL
			AND status = 'approved' AND is_active = 1 AND expires_at >= ?`, code, now))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("invalid coupon code")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}
	return coupon, nil
}

// RedeemCoupon increments used_count inside an order transaction. The usage
// limit is re-checked in the same statement so two concurrent orders cannot
// both consume the last use.
func (s *CouponService) RedeemCoupon(tx *sql.Tx, code string) error {
	result, err := tx.Exec(`
		UPDATE coupons
		SET used_count = used_count + 1, updated_at = ?
		WHERE code = ? AND (usage_limit = 0 OR used_count < usage_limit)`,
		time.Now(), utils.NormalizeCouponCode(code))
	if err != nil {
		return fmt.Errorf("failed to redeem coupon: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check redemption: %w", err)
	}
	if affected == 0 {
		return apperr.New(apperr.KindExhausted, "this coupon has reached its usage limit")
	}
	metrics.CouponRedemptions.Inc()
	return nil
}
