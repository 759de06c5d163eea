package handlers

import (
	"encoding/gob"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"storefront/internal/catalog"
	"storefront/internal/orders"
)

const (
	SessionName = "mp_session"
	cartKey     = "cart" // map[string]int, product id → quantity
)

func init() {
	// The cookie store encodes session values with gob.
	gob.Register(map[string]int{})
}

func getCart(c *gin.Context) map[string]int {
	sess := sessions.Default(c)
	raw := sess.Get(cartKey)
	if raw == nil {
		return map[string]int{}
	}
	m, ok := raw.(map[string]int)
	if !ok {
		return map[string]int{}
	}
	return m
}

func saveCart(c *gin.Context, cart map[string]int) error {
	sess := sessions.Default(c)
	sess.Set(cartKey, cart)
	return sess.Save()
}

func clearCart(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Delete(cartKey)
	return sess.Save()
}

type CartHandler struct {
	products *catalog.Store
	orders   *orders.Service
	log      logrus.FieldLogger
}

func NewCartHandler(products *catalog.Store, svc *orders.Service, log logrus.FieldLogger) *CartHandler {
	return &CartHandler{products: products, orders: svc, log: log.WithField("handler", "cart")}
}

type cartRequest struct {
	ProductID uint `json:"productId" form:"productId"`
	Quantity  int  `json:"quantity" form:"quantity"`
}

type cartLine struct {
	ProductID uint            `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Show handles GET /api/cart.
func (h *CartHandler) Show(c *gin.Context) {
	h.render(c, getCart(c))
}

// Add handles POST /api/cart. Quantity defaults to 1.
func (h *CartHandler) Add(c *gin.Context) {
	var req cartRequest
	if err := c.ShouldBind(&req); err != nil || req.ProductID == 0 {
		errorJSON(c, http.StatusBadRequest, "productId is required")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	p, err := h.products.Get(c.Request.Context(), req.ProductID)
	if errors.Is(err, catalog.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		serverError(c, h.log, err, "Failed to update cart")
		return
	}
	if p.Stock != nil && *p.Stock <= 0 {
		errorJSON(c, http.StatusBadRequest, "Out of stock")
		return
	}

	cart := getCart(c)
	cart[cartKeyFor(req.ProductID)] += req.Quantity
	h.store(c, cart)
}

// Update handles POST /api/cart/update. A quantity of 0 or less removes
// the line.
func (h *CartHandler) Update(c *gin.Context) {
	var req cartRequest
	if err := c.ShouldBind(&req); err != nil || req.ProductID == 0 {
		errorJSON(c, http.StatusBadRequest, "productId is required")
		return
	}

	cart := getCart(c)
	if req.Quantity <= 0 {
		delete(cart, cartKeyFor(req.ProductID))
	} else {
		cart[cartKeyFor(req.ProductID)] = req.Quantity
	}
	h.store(c, cart)
}

// Remove handles POST /api/cart/remove.
func (h *CartHandler) Remove(c *gin.Context) {
	var req cartRequest
	if err := c.ShouldBind(&req); err != nil || req.ProductID == 0 {
		errorJSON(c, http.StatusBadRequest, "productId is required")
		return
	}

	cart := getCart(c)
	delete(cart, cartKeyFor(req.ProductID))
	h.store(c, cart)
}

func (h *CartHandler) store(c *gin.Context, cart map[string]int) {
	if err := saveCart(c, cart); err != nil {
		serverError(c, h.log, err, "Failed to update cart")
		return
	}
	h.render(c, cart)
}

func (h *CartHandler) render(c *gin.Context, cart map[string]int) {
	items, err := h.orders.ItemsFromCart(c.Request.Context(), cart)
	if err != nil {
		serverError(c, h.log, err, "Failed to load cart")
		return
	}

	lines := make([]cartLine, 0, len(items))
	total := decimal.Zero
	count := 0
	for _, it := range items {
		price := it.FinalPrice.Decimal
		sub := price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		lines = append(lines, cartLine{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     price,
			Quantity:  it.Quantity,
			Image:     it.Image,
			Subtotal:  sub,
		})
		total = total.Add(sub)
		count += it.Quantity
	}
	c.JSON(http.StatusOK, gin.H{"items": lines, "total": total, "count": count})
}

func cartKeyFor(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
