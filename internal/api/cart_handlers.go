package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gocart-backend/internal/services"
)

// CartHandlers contains shopping cart handlers
type CartHandlers struct {
	cartService *services.CartService
}

// NewCartHandlers creates new cart handlers
func NewCartHandlers(cartService *services.CartService) *CartHandlers {
	return &CartHandlers{cartService: cartService}
}

// GetCart returns the caller's cart with product data and totals
func (h *CartHandlers) GetCart(c *gin.Context) {
	items, err := h.cartService.GetCart(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	var totalAmount float64
	var totalItems int
	for _, item := range items {
		if item.Product != nil {
			totalAmount += item.Product.Price * float64(item.Quantity)
		}
		totalItems += item.Quantity
	}

	respondOK(c, http.StatusOK, gin.H{
		"items":       items,
		"totalItems":  totalItems,
		"totalAmount": totalAmount,
	})
}

// SetCartItem upserts a cart entry; zero quantity removes it
func (h *CartHandlers) SetCartItem(c *gin.Context) {
	var req struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  *int   `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		respondBadRequest(c, "productId and quantity are required")
		return
	}

	if err := h.cartService.SetItem(currentUserID(c), req.ProductID, *req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "Cart updated"})
}

// RemoveCartItem removes a product from the cart
func (h *CartHandlers) RemoveCartItem(c *gin.Context) {
	if err := h.cartService.RemoveItem(currentUserID(c), c.Param("productId")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "Item removed"})
}

// ClearCart removes all cart entries
func (h *CartHandlers) ClearCart(c *gin.Context) {
	if err := h.cartService.ClearCart(currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "Cart cleared"})
}
