package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"gocart-backend/internal/models"
	"gocart-backend/internal/services"
	"gocart-backend/internal/utils"
)

// StoreHandlers contains store lifecycle handlers
type StoreHandlers struct {
	storeService *services.StoreService
	userService  *services.UserService
	emailService *services.EmailService
}

// NewStoreHandlers creates new store handlers
func NewStoreHandlers(storeService *services.StoreService, userService *services.UserService, emailService *services.EmailService) *StoreHandlers {
	return &StoreHandlers{
		storeService: storeService,
		userService:  userService,
		emailService: emailService,
	}
}

// SubmitStore handles a new store application
func (h *StoreHandlers) SubmitStore(c *gin.Context) {
	var req models.StoreSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	var userID *string
	if id := currentUserID(c); id != "" {
		userID = &id
	}

	store, err := h.storeService.SubmitStore(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, store)
}

// GetStore returns a visible store by its public username
func (h *StoreHandlers) GetStore(c *gin.Context) {
	store, err := h.storeService.GetStoreByUsername(c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, store)
}

// GetMyStore returns the caller's store, any status
func (h *StoreHandlers) GetMyStore(c *gin.Context) {
	store, err := h.storeService.GetMyStore(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, store)
}

// SetStoreActive flips the activity switch on an arbitrary store. Admin-only.
func (h *StoreHandlers) SetStoreActive(c *gin.Context) {
	var req struct {
		IsActive *bool `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		respondBadRequest(c, "isActive is required")
		return
	}

	store, err := h.storeService.SetActive(c.Param("id"), *req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, store)
}

// SetMyActive toggles the caller's store between active and inactive
func (h *StoreHandlers) SetMyActive(c *gin.Context) {
	var req struct {
		IsActive *bool `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		respondBadRequest(c, "isActive is required")
		return
	}

	store, err := h.storeService.SetMyActive(currentUserID(c), *req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, store)
}

// ListStores lists stores for review, optionally filtered by status
func (h *StoreHandlers) ListStores(c *gin.Context) {
	stores, err := h.storeService.ListStores(c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, stores)
}

// ReviewStore moves a store to a new lifecycle status
func (h *StoreHandlers) ReviewStore(c *gin.Context) {
	var req struct {
		Status models.StoreStatus `json:"status" validate:"required"`
		Note   string             `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	store, err := h.storeService.ReviewStore(currentUserID(c), c.Param("id"), req.Status, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}

	// Notification is best-effort; a failed email never fails the review.
	if store.Email != "" {
		if err := h.emailService.NotifyStoreReviewed(store.Email, store.Name, string(store.Status)); err != nil {
			log.Printf("failed to notify store %s: %v", store.ID, err)
		}
	}

	respondOK(c, http.StatusOK, store)
}
