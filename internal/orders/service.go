package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"storefront/internal/models"
)

var (
	ErrNoItems  = errors.New("no items in order")
	ErrNotFound = errors.New("order not found")
)

// Item is one order line as posted by the client. Price falls back to
// FinalPrice when the client sent a product object instead of a line.
type Item struct {
	ProductID  uint                `json:"id"`
	Name       string              `json:"name"`
	Price      decimal.NullDecimal `json:"price"`
	FinalPrice decimal.NullDecimal `json:"finalPrice"`
	Quantity   int                 `json:"quantity"`
	Image      string              `json:"image"`
}

func (it Item) unitPrice() decimal.Decimal {
	if it.Price.Valid {
		return it.Price.Decimal
	}
	if it.FinalPrice.Valid {
		return it.FinalPrice.Decimal
	}
	return decimal.Zero
}

func (it Item) quantity() int {
	if it.Quantity < 1 {
		return 1
	}
	return it.Quantity
}

type PlaceInput struct {
	Items         []Item              `json:"items"`
	TotalAmount   decimal.NullDecimal `json:"totalAmount"`
	Address       map[string]any      `json:"address"`
	PaymentMethod string              `json:"paymentMethod"`
}

type Service struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewService(db *gorm.DB, log logrus.FieldLogger) *Service {
	return &Service{db: db, log: log.WithField("component", "orders")}
}

// Place stores the order and its lines in one transaction. A missing total
// is computed from the lines.
func (s *Service) Place(ctx context.Context, userID uint, in PlaceInput) (uint, error) {
	if len(in.Items) == 0 {
		return 0, ErrNoItems
	}

	order := models.Order{
		UserID:        userID,
		PaymentMethod: in.PaymentMethod,
		Address:       datatypes.JSONMap{},
	}
	for k, v := range in.Address {
		order.Address[k] = v
	}

	total := decimal.Zero
	for _, it := range in.Items {
		line := models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.unitPrice(),
			Quantity:  it.quantity(),
			Image:     it.Image,
		}
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		order.Items = append(order.Items, line)
	}
	if in.TotalAmount.Valid {
		order.TotalAmount = in.TotalAmount.Decimal
	} else {
		order.TotalAmount = total
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&order).Error
	})
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"user_id":  userID,
		"items":    len(order.Items),
	}).Info("order placed")
	return order.ID, nil
}

// ListForUser returns the user's orders, newest first, without lines.
func (s *Service) ListForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	out := []models.Order{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").Order("id desc").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

// Get returns one of the user's orders with its lines. Orders of other
// users are reported as not found.
func (s *Service) Get(ctx context.Context, userID, id uint) (*models.Order, []models.OrderItem, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get order %d: %w", id, err)
	}

	items := order.Items
	if items == nil {
		items = []models.OrderItem{}
	}
	return &order, items, nil
}

// ItemsFromCart turns a session cart (product id → quantity) into order
// lines priced from the catalog. Unknown products are skipped.
func (s *Service) ItemsFromCart(ctx context.Context, cart map[string]int) ([]Item, error) {
	ids := make([]uint, 0, len(cart))
	for key, qty := range cart {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil || qty < 1 {
			continue
		}
		ids = append(ids, uint(id))
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var products []models.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("load cart products: %w", err)
	}

	items := make([]Item, 0, len(products))
	for _, p := range products {
		it := Item{
			ProductID:  p.ID,
			Quantity:   cart[strconv.FormatUint(uint64(p.ID), 10)],
			FinalPrice: p.FinalPrice,
		}
		if !p.FinalPrice.Valid {
			it.FinalPrice = p.ActualPrice
		}
		if p.Name != nil {
			it.Name = *p.Name
		}
		if len(p.Images) > 0 {
			it.Image = p.Images[0]
		}
		items = append(items, it)
	}
	return items, nil
}
