package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gocart-backend/internal/models"
	"gocart-backend/internal/services"
	"gocart-backend/internal/utils"
)

// OrderHandlers contains order handlers for shoppers and store owners
type OrderHandlers struct {
	orderService *services.OrderService
}

// NewOrderHandlers creates new order handlers
func NewOrderHandlers(orderService *services.OrderService) *OrderHandlers {
	return &OrderHandlers{orderService: orderService}
}

// CreateOrder places an order from the submitted cart lines
func (h *OrderHandlers) CreateOrder(c *gin.Context) {
	var req models.OrderCreation
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.CreateOrder(currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, order)
}

// GetOrders returns the caller's orders
func (h *OrderHandlers) GetOrders(c *gin.Context) {
	orders, err := h.orderService.GetOrders(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, orders)
}

// GetOrder returns one of the caller's orders
func (h *OrderHandlers) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrderByID(currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, order)
}

// GetStoreOrders returns orders containing the caller's store items
func (h *OrderHandlers) GetStoreOrders(c *gin.Context) {
	orders, err := h.orderService.GetStoreOrders(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, orders)
}

// UpdateOrderStatus lets a store owner progress an order's status
func (h *OrderHandlers) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status models.OrderStatus `json:"status" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	order, err := h.orderService.UpdateOrderStatus(currentUserID(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, order)
}
