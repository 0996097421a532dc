package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"gocart-backend/internal/models"
	"gocart-backend/internal/services"
	"gocart-backend/internal/utils"
)

// ProductHandlers contains product catalog handlers
type ProductHandlers struct {
	productService *services.ProductService
	storeService   *services.StoreService
	emailService   *services.EmailService
}

// NewProductHandlers creates new product handlers
func NewProductHandlers(productService *services.ProductService, storeService *services.StoreService, emailService *services.EmailService) *ProductHandlers {
	return &ProductHandlers{
		productService: productService,
		storeService:   storeService,
		emailService:   emailService,
	}
}

// ListMarketplace returns all buyable products, the public browse endpoint
func (h *ProductHandlers) ListMarketplace(c *gin.Context) {
	products, err := h.productService.ListMarketplace(c.Query("category"), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, products)
}

// GetProduct returns an approved product by ID
func (h *ProductHandlers) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProductByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, product)
}

// CreateProduct submits a new product for the caller's store
func (h *ProductHandlers) CreateProduct(c *gin.Context) {
	var req models.ProductCreation
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	product, err := h.productService.CreateProduct(currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, product)
}

// GetStoreProducts returns the caller's products, any status
func (h *ProductHandlers) GetStoreProducts(c *gin.Context) {
	products, err := h.productService.GetStoreProducts(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, products)
}

// UpdateProduct edits a product; editing a rejected product resubmits it
func (h *ProductHandlers) UpdateProduct(c *gin.Context) {
	var req models.ProductUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	product, err := h.productService.UpdateProduct(currentUserID(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, product)
}

// UpdateStock sets a product's stock quantity
func (h *ProductHandlers) UpdateStock(c *gin.Context) {
	var req struct {
		StockQuantity *int `json:"stockQuantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.StockQuantity == nil {
		respondBadRequest(c, "stockQuantity is required")
		return
	}

	product, err := h.productService.UpdateStock(currentUserID(c), c.Param("id"), *req.StockQuantity)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, product)
}

// SetInStock toggles a product's in-stock flag
func (h *ProductHandlers) SetInStock(c *gin.Context) {
	var req struct {
		InStock *bool `json:"inStock"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.InStock == nil {
		respondBadRequest(c, "inStock is required")
		return
	}

	product, err := h.productService.SetInStock(currentUserID(c), c.Param("id"), *req.InStock)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, product)
}

// ListPendingProducts returns products awaiting review
func (h *ProductHandlers) ListPendingProducts(c *gin.Context) {
	products, err := h.productService.ListPendingProducts()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, products)
}

// ReviewProduct approves or rejects a pending product
func (h *ProductHandlers) ReviewProduct(c *gin.Context) {
	var req struct {
		Approve *bool  `json:"approve"`
		Note    string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Approve == nil {
		respondBadRequest(c, "approve is required")
		return
	}

	product, err := h.productService.ReviewProduct(currentUserID(c), c.Param("id"), *req.Approve, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}

	// Notification is best-effort; a failed email never fails the review.
	if store, err := h.storeService.GetStoreByID(product.StoreID); err == nil && store.Email != "" {
		if err := h.emailService.NotifyProductReviewed(store.Email, product.Name, string(product.Status), req.Note); err != nil {
			log.Printf("failed to notify store %s: %v", store.ID, err)
		}
	}

	respondOK(c, http.StatusOK, product)
}
