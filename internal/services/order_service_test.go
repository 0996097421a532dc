package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"gocart-backend/internal/apperr"
	"gocart-backend/internal/models"
)

type OrderServiceTestSuite struct {
	suite.Suite
	service *OrderService
	buyerID string
	ownerID string
	storeID string
}

func (suite *OrderServiceTestSuite) SetupTest() {
	db := newTestDB(suite.T())
	suite.service = NewOrderService(db, NewCouponService(db), nil)
	suite.buyerID = seedUser(suite.T(), db, models.UserRoleCustomer)
	suite.ownerID = seedUser(suite.T(), db, models.UserRoleCustomer)
	suite.storeID = seedStore(suite.T(), db, suite.ownerID, models.StoreStatusApproved, true)
}

func (suite *OrderServiceTestSuite) orderFor(productID string, quantity int) *models.OrderCreation {
	return &models.OrderCreation{
		Items:           []models.CartLine{{ProductID: productID, Quantity: quantity}},
		PaymentMethod:   "cod",
		DeliveryAddress: "1 Main St",
		DeliveryPhone:   "+1111111",
	}
}

func (suite *OrderServiceTestSuite) TestOrderSnapshotsDatabasePrice() {
	productID := seedProduct(suite.T(), suite.service.db, suite.storeID, models.ProductStatusApproved, 10, 250)

	// The client-supplied price is ignored
	creation := suite.orderFor(productID, 2)
	creation.Items[0].Price = 1

	order, err := suite.service.CreateOrder(suite.buyerID, creation)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), 500.0, order.Subtotal)
	assert.Equal(suite.T(), 500.0, order.Total)
	suite.Require().Len(order.Items, 1)
	assert.Equal(suite.T(), 250.0, order.Items[0].Price)
	assert.Equal(suite.T(), suite.storeID, order.Items[0].StoreID)
}

func (suite *OrderServiceTestSuite) TestOrderDecrementsStockAndDerivesFlag() {
	productID := seedProduct(suite.T(), suite.service.db, suite.storeID, models.ProductStatusApproved, 3, 100)

	_, err := suite.service.CreateOrder(suite.buyerID, suite.orderFor(productID, 3))
	suite.Require().NoError(err)

	quantity, inStock := productStock(suite.T(), suite.service.db, productID)
	assert.Equal(suite.T(), 0, quantity)
	assert.False(suite.T(), inStock)
}

func (suite *OrderServiceTestSuite) TestInsufficientStockConflicts() {
	productID := seedProduct(suite.T(), suite.service.db, suite.storeID, models.ProductStatusApproved, 2, 100)

	_, err := suite.service.CreateOrder(suite.buyerID, suite.orderFor(productID, 5))
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindConflict))

	// The failed order left the stock untouched
	quantity, inStock := productStock(suite.T(), suite.service.db, productID)
	assert.Equal(suite.T(), 2, quantity)
	assert.True(suite.T(), inStock)
}

func (suite *OrderServiceTestSuite) TestInvisibleProductNotOrderable() {
	productID := seedProduct(suite.T(), suite.service.db, suite.storeID, models.ProductStatusPending, 5, 100)

	_, err := suite.service.CreateOrder(suite.buyerID, suite.orderFor(productID, 1))
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindNotFound))
}

func (suite *OrderServiceTestSuite) TestCouponAppliedAndRedeemed() {
	productID := seedProduct(suite.T(), suite.service.db, suite.storeID, models.ProductStatusApproved, 10, 1000)
	seedGlobalCoupon(suite.T(), suite.service.db, "TENOFF", models.Coupon{
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 10,
		UsageLimit:    5,
	})

	code := "TENOFF"
	creation := suite.orderFor(productID, 1)
	creation.CouponCode = &code

	order, err := suite.service.CreateOrder(suite.buyerID, creation)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), 1000.0, order.Subtotal)
	assert.Equal(suite.T(), 100.0, order.Discount)
	assert.Equal(suite.T(), 900.0, order.Total)
	suite.Require().NotNil(order.CouponCode)
	assert.Equal(suite.T(), "TENOFF", *order.CouponCode)

	var used int
	err = suite.service.db.QueryRow("SELECT used_count FROM coupons WHERE code = 'TENOFF'").Scan(&used)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 1, used)
}

func (suite *OrderServiceTestSuite) TestFailedCouponAbortsWholeOrder() {
	productID := seedProduct(suite.T(), suite.service.db, suite.storeID, models.ProductStatusApproved, 10, 100)

	code := "NOPE"
	creation := suite.orderFor(productID, 1)
	creation.CouponCode = &code

	_, err := suite.service.CreateOrder(suite.buyerID, creation)
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindNotFound))

	// Stock reservation was rolled back with the order
	quantity, _ := productStock(suite.T(), suite.service.db, productID)
	assert.Equal(suite.T(), 10, quantity)

	var orders int
	err = suite.service.db.QueryRow("SELECT COUNT(*) FROM orders").Scan(&orders)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 0, orders)
}

func (suite *OrderServiceTestSuite) TestItemPricesImmutableAfterCreation() {
	productID := seedProduct(suite.T(), suite.service.db, suite.storeID, models.ProductStatusApproved, 10, 300)

	order, err := suite.service.CreateOrder(suite.buyerID, suite.orderFor(productID, 1))
	suite.Require().NoError(err)

	_, err = suite.service.db.Exec("UPDATE products SET price = 999 WHERE id = ?", productID)
	suite.Require().NoError(err)

	reloaded, err := suite.service.GetOrderByID(suite.buyerID, order.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 300.0, reloaded.Items[0].Price)
}

func (suite *OrderServiceTestSuite) TestStoreOwnerSeesOnlyOwnItems() {
	otherOwner := seedUser(suite.T(), suite.service.db, models.UserRoleCustomer)
	otherStore := seedStore(suite.T(), suite.service.db, otherOwner, models.StoreStatusApproved, true)

	mine := seedProduct(suite.T(), suite.service.db, suite.storeID, models.ProductStatusApproved, 10, 100)
	theirs := seedProduct(suite.T(), suite.service.db, otherStore, models.ProductStatusApproved, 10, 200)

	creation := &models.OrderCreation{
		Items: []models.CartLine{
			{ProductID: mine, Quantity: 1},
			{ProductID: theirs, Quantity: 1},
		},
		PaymentMethod:   "cod",
		DeliveryAddress: "1 Main St",
		DeliveryPhone:   "+1111111",
	}
	_, err := suite.service.CreateOrder(suite.buyerID, creation)
	suite.Require().NoError(err)

	orders, err := suite.service.GetStoreOrders(suite.ownerID)
	suite.Require().NoError(err)
	suite.Require().Len(orders, 1)
	suite.Require().Len(orders[0].Items, 1)
	assert.Equal(suite.T(), mine, orders[0].Items[0].ProductID)
}

func (suite *OrderServiceTestSuite) TestStatusUpdateByStoreOwner() {
	productID := seedProduct(suite.T(), suite.service.db, suite.storeID, models.ProductStatusApproved, 10, 100)
	order, err := suite.service.CreateOrder(suite.buyerID, suite.orderFor(productID, 1))
	suite.Require().NoError(err)

	updated, err := suite.service.UpdateOrderStatus(suite.ownerID, order.ID, models.OrderStatusShipped)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.OrderStatusShipped, updated.Status)

	_, err = suite.service.UpdateOrderStatus(suite.ownerID, order.ID, models.OrderStatus("lost"))
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindValidation))

	stranger := seedUser(suite.T(), suite.service.db, models.UserRoleCustomer)
	_, err = suite.service.UpdateOrderStatus(stranger, order.ID, models.OrderStatusCancelled)
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindNotFound))
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
