package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/auth"
	"storefront/internal/orders"
)

type OrdersHandler struct {
	orders *orders.Service
	log    logrus.FieldLogger
}

func NewOrdersHandler(svc *orders.Service, log logrus.FieldLogger) *OrdersHandler {
	return &OrdersHandler{orders: svc, log: log.WithField("handler", "orders")}
}

// Place handles POST /api/orders. Without items in the body the session
// cart is ordered and then emptied.
func (h *OrdersHandler) Place(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		errorJSON(c, http.StatusUnauthorized, "Not logged in")
		return
	}

	var in orders.PlaceInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			errorJSON(c, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	fromCart := false
	if len(in.Items) == 0 {
		items, err := h.orders.ItemsFromCart(c.Request.Context(), getCart(c))
		if err != nil {
			serverError(c, h.log, err, "Failed to place order")
			return
		}
		in.Items = items
		fromCart = true
	}

	id, err := h.orders.Place(c.Request.Context(), userID, in)
	if errors.Is(err, orders.ErrNoItems) {
		errorJSON(c, http.StatusBadRequest, "No items in order")
		return
	}
	if err != nil {
		serverError(c, h.log, err, "Failed to place order")
		return
	}

	if fromCart {
		if err := clearCart(c); err != nil {
			h.log.WithError(err).WithField("order_id", id).Warn("cart not cleared after order")
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order placed successfully", "orderId": id})
}

// Mine handles GET /api/orders/my.
func (h *OrdersHandler) Mine(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		errorJSON(c, http.StatusUnauthorized, "Not logged in")
		return
	}
	list, err := h.orders.ListForUser(c.Request.Context(), userID)
	if err != nil {
		serverError(c, h.log, err, "Failed to load orders")
		return
	}
	c.JSON(http.StatusOK, list)
}

// Get handles GET /api/orders/:id.
func (h *OrdersHandler) Get(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		errorJSON(c, http.StatusUnauthorized, "Not logged in")
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		errorJSON(c, http.StatusBadRequest, "Invalid order id")
		return
	}

	order, items, err := h.orders.Get(c.Request.Context(), userID, id)
	if errors.Is(err, orders.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		serverError(c, h.log, err, "Failed to fetch order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "items": items})
}
