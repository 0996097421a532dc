package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gocart-backend/internal/models"
	"gocart-backend/internal/services"
	"gocart-backend/internal/utils"
)

// CouponHandlers contains coupon creation, moderation and validation handlers
type CouponHandlers struct {
	couponService *services.CouponService
}

// NewCouponHandlers creates new coupon handlers
func NewCouponHandlers(couponService *services.CouponService) *CouponHandlers {
	return &CouponHandlers{couponService: couponService}
}

// ValidateCoupon runs the discount engine against a submitted cart
func (h *CouponHandlers) ValidateCoupon(c *gin.Context) {
	var req struct {
		Code      string            `json:"code" validate:"required"`
		CartItems []models.CartLine `json:"cartItems" validate:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	coupon, result, err := h.couponService.ValidateCoupon(currentUserID(c), req.Code, req.CartItems)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"coupon":           coupon,
		"discount":         result.Discount,
		"applicableAmount": result.ApplicableAmount,
		"applicableItems":  result.ApplicableItems,
	})
}

// ListPublicCoupons returns active public global coupons
func (h *CouponHandlers) ListPublicCoupons(c *gin.Context) {
	coupons, err := h.couponService.ListPublicCoupons()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, coupons)
}

// CreateGlobalCoupon creates an admin coupon that applies to the whole cart
func (h *CouponHandlers) CreateGlobalCoupon(c *gin.Context) {
	var req models.CouponCreation
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	coupon, err := h.couponService.CreateGlobalCoupon(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, coupon)
}

// CreateStoreCoupon creates a pending coupon scoped to the caller's store
func (h *CouponHandlers) CreateStoreCoupon(c *gin.Context) {
	var req models.CouponCreation
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	coupon, err := h.couponService.CreateStoreCoupon(currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, coupon)
}

// UpdateGlobalCoupon edits an admin coupon
func (h *CouponHandlers) UpdateGlobalCoupon(c *gin.Context) {
	var req models.CouponUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	coupon, err := h.couponService.UpdateGlobalCoupon(c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, coupon)
}

// UpdateStoreCoupon edits a coupon of the caller's store; the edit resubmits
// the coupon for review
func (h *CouponHandlers) UpdateStoreCoupon(c *gin.Context) {
	var req models.CouponUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	coupon, err := h.couponService.UpdateStoreCoupon(currentUserID(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, coupon)
}

// ListStoreCoupons returns the caller's store coupons, any status
func (h *CouponHandlers) ListStoreCoupons(c *gin.Context) {
	coupons, err := h.couponService.ListStoreCoupons(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, coupons)
}

// ListPendingStoreCoupons returns store coupons awaiting review
func (h *CouponHandlers) ListPendingStoreCoupons(c *gin.Context) {
	coupons, err := h.couponService.ListPendingStoreCoupons()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, coupons)
}

// ReviewStoreCoupon approves or rejects a pending store coupon
func (h *CouponHandlers) ReviewStoreCoupon(c *gin.Context) {
	var req struct {
		Approve *bool `json:"approve"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Approve == nil {
		respondBadRequest(c, "approve is required")
		return
	}

	coupon, err := h.couponService.ReviewStoreCoupon(currentUserID(c), c.Param("id"), *req.Approve)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, coupon)
}
