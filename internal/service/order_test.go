package service_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linemk/ld-shop/internal/domain/models"
	"github.com/linemk/ld-shop/internal/events"
	"github.com/linemk/ld-shop/internal/service"
)

func scenarioCart() *models.Cart {
	return &models.Cart{Lines: []models.CartLine{
		{ProductID: 1, Name: "Product A", Price: decimal.RequireFromString("10.00"), Qty: 2},
		{ProductID: 2, Name: "Product B", Price: decimal.RequireFromString("5.00"), Qty: 1},
	}}
}

func TestOrderService_Checkout_Success(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// заказ и позиции пишутся в одной транзакции
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	orderRepo := newFakeOrderRepo()
	publisher := new(mockPublisher)
	publisher.On("Publish", mock.Anything, events.OrderCreated, mock.Anything).Return(nil).Once()

	orderSvc := service.NewOrderService(newTestLogger(), db, orderRepo, publisher)
	cart := scenarioCart()

	orderID, err := orderSvc.Checkout(context.Background(), 7, cart, "  tg @bob ", "leave at door")
	require.NoError(t, err)

	order := orderRepo.orders[orderID]
	require.NotNil(t, order)
	assert.Equal(t, "25.00", order.Total.StringFixed(2))
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "tg @bob", order.Contact)
	assert.Equal(t, int64(7), order.UserID)

	items := orderRepo.items[orderID]
	require.Len(t, items, 2)
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}
	assert.True(t, sum.Equal(order.Total), "Order total must equal the sum of its items")
	assert.Equal(t, "Product A", items[0].ProductName)

	assert.True(t, cart.IsEmpty(), "Cart must be empty after checkout")
	assert.NoError(t, dbMock.ExpectationsWereMet())
	publisher.AssertExpectations(t)
}

func TestOrderService_Checkout_EmptyCart(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orderRepo := newFakeOrderRepo()
	orderSvc := service.NewOrderService(newTestLogger(), db, orderRepo, events.NopPublisher{})

	_, err = orderSvc.Checkout(context.Background(), 1, &models.Cart{}, "", "")
	assert.ErrorIs(t, err, service.ErrEmptyCart)
	assert.Empty(t, orderRepo.orders)
	assert.NoError(t, dbMock.ExpectationsWereMet(), "No transaction should be opened")
}

func TestOrderService_Checkout_ItemFailureRollsBack(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbMock.ExpectBegin()
	dbMock.ExpectRollback()

	orderRepo := newFakeOrderRepo()
	orderRepo.failItem = true
	publisher := new(mockPublisher)

	orderSvc := service.NewOrderService(newTestLogger(), db, orderRepo, publisher)
	cart := scenarioCart()

	_, err = orderSvc.Checkout(context.Background(), 1, cart, "", "")
	assert.Error(t, err)
	assert.Len(t, cart.Lines, 2, "Cart is kept when checkout fails")
	assert.NoError(t, dbMock.ExpectationsWereMet())
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_Checkout_PublishFailureIsIgnored(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	publisher := new(mockPublisher)
	publisher.On("Publish", mock.Anything, events.OrderCreated, mock.Anything).Return(assert.AnError)

	orderSvc := service.NewOrderService(newTestLogger(), db, newFakeOrderRepo(), publisher)
	orderID, err := orderSvc.Checkout(context.Background(), 1, scenarioCart(), "", "")
	assert.NoError(t, err)
	assert.NotZero(t, orderID)
}

func TestOrderService_Checkout_InvalidLine(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orderSvc := service.NewOrderService(newTestLogger(), db, newFakeOrderRepo(), events.NopPublisher{})

	for _, qty := range []int{0, -2, models.MaxLineQty + 1} {
		cart := &models.Cart{Lines: []models.CartLine{{ProductID: 1, Name: "x", Price: decimal.RequireFromString("1.00"), Qty: qty}}}

		_, err = orderSvc.Checkout(context.Background(), 1, cart, "", "")
		assert.ErrorIs(t, err, service.ErrValidation, "qty %d", qty)
		assert.False(t, cart.IsEmpty())
	}
}

func TestOrderService_ListAndGet(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	orderRepo.orders[1] = &models.Order{ID: 1, UserID: 1, Total: decimal.NewFromInt(3)}
	orderRepo.orders[2] = &models.Order{ID: 2, UserID: 1, Total: decimal.NewFromInt(4)}
	orderRepo.orders[3] = &models.Order{ID: 3, UserID: 2, Total: decimal.NewFromInt(5)}
	orderRepo.items[2] = []*models.OrderItem{{ID: 1, OrderID: 2, ProductName: "A", Quantity: 1, Price: decimal.NewFromInt(4)}}

	orderSvc := service.NewOrderService(newTestLogger(), nil, orderRepo, events.NopPublisher{})
	ctx := context.Background()

	orders, err := orderSvc.ListForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, int64(2), orders[0].ID, "Newest order first")

	order, items, err := orderSvc.Get(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), order.ID)
	assert.Len(t, items, 1)

	_, _, err = orderSvc.Get(ctx, 3, 1)
	assert.ErrorIs(t, err, service.ErrNotFound, "Foreign order is not visible")
}
