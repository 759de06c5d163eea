package orders

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/db"
	"storefront/internal/models"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	log, _ := test.NewNullLogger()
	return NewService(conn, log), conn
}

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestPlaceAndGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.Place(ctx, 7, PlaceInput{
		Items: []Item{
			{ProductID: 1, Name: "Shirt", Price: price("10.50"), Quantity: 2, Image: "/uploads/a.jpg"},
			{ProductID: 2, Name: "Cap", FinalPrice: price("4.00")},
		},
		Address:       map[string]any{"city": "Pune"},
		PaymentMethod: "cod",
	})
	require.NoError(t, err)

	order, items, err := svc.Get(ctx, 7, id)
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, "cod", order.PaymentMethod)
	assert.Equal(t, "Pune", order.Address["city"])
	require.Len(t, items, 2)
	assert.Equal(t, "Shirt", items[0].Name)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
	assert.True(t, items[1].Price.Equal(decimal.NewFromInt(4)))
}

func TestPlaceKeepsGivenTotal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.Place(ctx, 1, PlaceInput{
		Items:       []Item{{ProductID: 1, Price: price("10"), Quantity: 1}},
		TotalAmount: price("12.99"),
	})
	require.NoError(t, err)

	order, _, err := svc.Get(ctx, 1, id)
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("12.99")))
}

func TestPlaceRejectsEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Place(context.Background(), 1, PlaceInput{})
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestGetScopedToOwner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.Place(ctx, 1, PlaceInput{Items: []Item{{ProductID: 1, Price: price("1")}}})
	require.NoError(t, err)

	_, _, err = svc.Get(ctx, 2, id)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = svc.Get(ctx, 1, id+1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListForUserNewestFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Place(ctx, 3, PlaceInput{Items: []Item{{ProductID: 1, Price: price("1")}}})
	require.NoError(t, err)
	second, err := svc.Place(ctx, 3, PlaceInput{Items: []Item{{ProductID: 2, Price: price("2")}}})
	require.NoError(t, err)
	_, err = svc.Place(ctx, 4, PlaceInput{Items: []Item{{ProductID: 3, Price: price("3")}}})
	require.NoError(t, err)

	list, err := svc.ListForUser(ctx, 3)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID)
	assert.Equal(t, first, list[1].ID)

	empty, err := svc.ListForUser(ctx, 99)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestItemsFromCart(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	name := "Kurta"
	p := models.Product{
		Name:        &name,
		ActualPrice: price("20"),
		Images:      models.ImageList{"/uploads/k1.jpg", "/uploads/k2.jpg"},
	}
	require.NoError(t, conn.Create(&p).Error)

	items, err := svc.ItemsFromCart(ctx, map[string]int{
		"1":   2,
		"404": 1,
		"x":   3,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, p.ID, items[0].ProductID)
	assert.Equal(t, "Kurta", items[0].Name)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "/uploads/k1.jpg", items[0].Image)
	assert.True(t, items[0].unitPrice().Equal(decimal.NewFromInt(20)))

	none, err := svc.ItemsFromCart(ctx, map[string]int{})
	require.NoError(t, err)
	assert.Empty(t, none)
}
