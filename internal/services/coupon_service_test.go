package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"gocart-backend/internal/apperr"
	"gocart-backend/internal/models"
)

type CouponServiceTestSuite struct {
	suite.Suite
	service *CouponService
	ownerID string
	storeID string
}

func (suite *CouponServiceTestSuite) SetupTest() {
	db := newTestDB(suite.T())
	suite.service = NewCouponService(db)
	suite.ownerID = seedUser(suite.T(), db, models.UserRoleCustomer)
	suite.storeID = seedStore(suite.T(), db, suite.ownerID, models.StoreStatusApproved, true)
}

func cart(lines ...models.CartLine) []models.CartLine {
	return lines
}

func (suite *CouponServiceTestSuite) TestPercentageDiscountWithCap() {
	cap := 500.0
	seedGlobalCoupon(suite.T(), suite.service.db, "SAVE20", models.Coupon{
		DiscountType:      models.DiscountTypePercentage,
		DiscountValue:     20,
		MaxDiscountAmount: &cap,
	})

	_, result, err := suite.service.ValidateCoupon("", "SAVE20",
		cart(models.CartLine{ProductID: "p1", Price: 3000, Quantity: 1}))
	suite.Require().NoError(err)

	// 20% of 3000 is 600, capped at 500
	assert.Equal(suite.T(), 500.0, result.Discount)
	assert.Equal(suite.T(), 3000.0, result.ApplicableAmount)
}

func (suite *CouponServiceTestSuite) TestFixedDiscountNeverExceedsCart() {
	seedGlobalCoupon(suite.T(), suite.service.db, "FLAT200", models.Coupon{
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 200,
	})

	_, result, err := suite.service.ValidateCoupon("", "FLAT200",
		cart(models.CartLine{ProductID: "p1", Price: 150, Quantity: 1}))
	suite.Require().NoError(err)

	assert.Equal(suite.T(), 150.0, result.Discount)
}

func (suite *CouponServiceTestSuite) TestUnknownCode() {
	_, _, err := suite.service.ValidateCoupon("", "NOPE",
		cart(models.CartLine{ProductID: "p1", Price: 100, Quantity: 1}))
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindNotFound))
}

func (suite *CouponServiceTestSuite) TestExpiredGlobalCouponReportsExpired() {
	seedGlobalCoupon(suite.T(), suite.service.db, "OLD", models.Coupon{
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 50,
		ExpiresAt:     time.Now().Add(-time.Hour),
	})

	_, _, err := suite.service.ValidateCoupon("", "OLD",
		cart(models.CartLine{ProductID: "p1", Price: 100, Quantity: 1}))
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindExpired))
}

func (suite *CouponServiceTestSuite) TestExpiredStoreCouponIsInvisible() {
	seedCoupon(suite.T(), suite.service.db, "STOREOLD", &suite.storeID, models.Coupon{
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 50,
		ExpiresAt:     time.Now().Add(-time.Hour),
	})

	// Shoppers never saw this coupon as valid, so the code reads as invalid
	// rather than expired.
	_, _, err := suite.service.ValidateCoupon("", "STOREOLD",
		cart(models.CartLine{ProductID: "p1", StoreID: suite.storeID, Price: 100, Quantity: 1}))
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindNotFound))
}

func (suite *CouponServiceTestSuite) TestPendingStoreCouponIsInvisible() {
	seedCoupon(suite.T(), suite.service.db, "SOON", &suite.storeID, models.Coupon{
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 50,
		Status:        models.CouponStatusPending,
	})

	_, _, err := suite.service.ValidateCoupon("", "SOON",
		cart(models.CartLine{ProductID: "p1", StoreID: suite.storeID, Price: 100, Quantity: 1}))
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindNotFound))
}

func (suite *CouponServiceTestSuite) TestStoreCouponRestrictsToStoreLines() {
	seedCoupon(suite.T(), suite.service.db, "MINE10", &suite.storeID, models.Coupon{
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 10,
	})

	_, result, err := suite.service.ValidateCoupon("", "MINE10", cart(
		models.CartLine{ProductID: "p1", StoreID: suite.storeID, Price: 200, Quantity: 2},
		models.CartLine{ProductID: "p2", StoreID: "other-store", Price: 1000, Quantity: 1},
	))
	suite.Require().NoError(err)

	assert.Equal(suite.T(), 400.0, result.ApplicableAmount)
	assert.Equal(suite.T(), 40.0, result.Discount)
	assert.Len(suite.T(), result.ApplicableItems, 1)
}

func (suite *CouponServiceTestSuite) TestStoreCouponWithNoMatchingLines() {
	seedCoupon(suite.T(), suite.service.db, "MINE10", &suite.storeID, models.Coupon{
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 10,
	})

	_, _, err := suite.service.ValidateCoupon("", "MINE10",
		cart(models.CartLine{ProductID: "p2", StoreID: "other-store", Price: 1000, Quantity: 1}))
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindApplicability))
}

func (suite *CouponServiceTestSuite) TestMinOrderThreshold() {
	seedGlobalCoupon(suite.T(), suite.service.db, "BIG", models.Coupon{
		DiscountType:   models.DiscountTypeFixed,
		DiscountValue:  100,
		MinOrderAmount: 1000,
	})

	_, _, err := suite.service.ValidateCoupon("", "BIG",
		cart(models.CartLine{ProductID: "p1", Price: 999, Quantity: 1}))
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindThreshold))
}

func (suite *CouponServiceTestSuite) TestUsageLimitExhausted() {
	seedGlobalCoupon(suite.T(), suite.service.db, "LIMITED", models.Coupon{
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 50,
		UsageLimit:    3,
		UsedCount:     3,
	})

	_, _, err := suite.service.ValidateCoupon("", "LIMITED",
		cart(models.CartLine{ProductID: "p1", Price: 100, Quantity: 1}))
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindExhausted))
}

func (suite *CouponServiceTestSuite) TestValidationNeverMutatesUsedCount() {
	seedGlobalCoupon(suite.T(), suite.service.db, "COUNT", models.Coupon{
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 50,
		UsageLimit:    10,
	})

	for i := 0; i < 5; i++ {
		_, _, err := suite.service.ValidateCoupon("", "COUNT",
			cart(models.CartLine{ProductID: "p1", Price: 100, Quantity: 1}))
		suite.Require().NoError(err)
	}

	var used int
	err := suite.service.db.QueryRow("SELECT used_count FROM coupons WHERE code = 'COUNT'").Scan(&used)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 0, used)
}

func (suite *CouponServiceTestSuite) TestCodeIsCaseInsensitive() {
	seedGlobalCoupon(suite.T(), suite.service.db, "SAVE10", models.Coupon{
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 10,
	})

	_, result, err := suite.service.ValidateCoupon("", "  save10 ",
		cart(models.CartLine{ProductID: "p1", Price: 100, Quantity: 1}))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 10.0, result.Discount)
}

func (suite *CouponServiceTestSuite) TestDuplicateCodeAcrossKindsRejected() {
	_, err := suite.service.CreateGlobalCoupon(&models.CouponCreation{
		Code:          "SAVE10",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 10,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
	})
	suite.Require().NoError(err)

	_, err = suite.service.CreateStoreCoupon(suite.ownerID, &models.CouponCreation{
		Code:          "save10",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 100,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
	})
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindConflict))
}

func (suite *CouponServiceTestSuite) TestPercentageRangeEnforced() {
	_, err := suite.service.CreateGlobalCoupon(&models.CouponCreation{
		Code:          "TOOMUCH",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 120,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
	})
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindValidation))
}

func (suite *CouponServiceTestSuite) TestStoreCouponStartsPendingAndReviewConflicts() {
	coupon, err := suite.service.CreateStoreCoupon(suite.ownerID, &models.CouponCreation{
		Code:          "STORE5",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 5,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.CouponStatusPending, coupon.Status)

	admin := seedUser(suite.T(), suite.service.db, models.UserRoleAdmin)
	reviewed, err := suite.service.ReviewStoreCoupon(admin, coupon.ID, true)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.CouponStatusApproved, reviewed.Status)

	_, err = suite.service.ReviewStoreCoupon(admin, coupon.ID, false)
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindConflict))
}

func (suite *CouponServiceTestSuite) TestUpdateGlobalCouponAppliesCreationRules() {
	coupon, err := suite.service.CreateGlobalCoupon(&models.CouponCreation{
		Code:          "EDITME",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 10,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
	})
	suite.Require().NoError(err)

	over := 150.0
	_, err = suite.service.UpdateGlobalCoupon(coupon.ID, &models.CouponUpdate{
		DiscountValue: &over,
	})
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindValidation))

	value := 25.0
	updated, err := suite.service.UpdateGlobalCoupon(coupon.ID, &models.CouponUpdate{
		DiscountValue: &value,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 25.0, updated.DiscountValue)
	assert.Equal(suite.T(), models.CouponStatusApproved, updated.Status)

	_, result, err := suite.service.ValidateCoupon("", "EDITME",
		cart(models.CartLine{ProductID: "p1", Price: 100, Quantity: 1}))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 25.0, result.Discount)
}

func (suite *CouponServiceTestSuite) TestUpdateCouponCodeMustStayUnique() {
	seedGlobalCoupon(suite.T(), suite.service.db, "TAKEN", models.Coupon{
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 10,
	})
	coupon, err := suite.service.CreateStoreCoupon(suite.ownerID, &models.CouponCreation{
		Code:          "RENAMEME",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 10,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
	})
	suite.Require().NoError(err)

	taken := "taken"
	_, err = suite.service.UpdateStoreCoupon(suite.ownerID, coupon.ID, &models.CouponUpdate{
		Code: &taken,
	})
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindConflict))

	// Re-submitting the coupon's own code is not a conflict
	same := "renameme"
	updated, err := suite.service.UpdateStoreCoupon(suite.ownerID, coupon.ID, &models.CouponUpdate{
		Code: &same,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "RENAMEME", updated.Code)
}

func (suite *CouponServiceTestSuite) TestUpdateStoreCouponResubmitsForReview() {
	coupon, err := suite.service.CreateStoreCoupon(suite.ownerID, &models.CouponCreation{
		Code:          "STOREEDIT",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 50,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
	})
	suite.Require().NoError(err)

	admin := seedUser(suite.T(), suite.service.db, models.UserRoleAdmin)
	approved, err := suite.service.ReviewStoreCoupon(admin, coupon.ID, true)
	suite.Require().NoError(err)
	suite.Require().Equal(models.CouponStatusApproved, approved.Status)

	value := 75.0
	updated, err := suite.service.UpdateStoreCoupon(suite.ownerID, coupon.ID, &models.CouponUpdate{
		DiscountValue: &value,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.CouponStatusPending, updated.Status)
	assert.Nil(suite.T(), updated.ReviewerID)

	// Back in moderation, the code stops validating for shoppers
	_, _, err = suite.service.ValidateCoupon("", "STOREEDIT",
		cart(models.CartLine{ProductID: "p1", StoreID: suite.storeID, Price: 100, Quantity: 1}))
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindNotFound))
}

func (suite *CouponServiceTestSuite) TestUpdateStoreCouponRequiresOwnership() {
	coupon, err := suite.service.CreateStoreCoupon(suite.ownerID, &models.CouponCreation{
		Code:          "NOTYOURS",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 50,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
	})
	suite.Require().NoError(err)

	stranger := seedUser(suite.T(), suite.service.db, models.UserRoleCustomer)
	value := 10.0
	_, err = suite.service.UpdateStoreCoupon(stranger, coupon.ID, &models.CouponUpdate{
		DiscountValue: &value,
	})
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindNotFound))

	// Global coupons are not reachable through the store update path either
	seedGlobalCoupon(suite.T(), suite.service.db, "GLOBAL1", models.Coupon{
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 10,
	})
	var globalID string
	suite.Require().NoError(suite.service.db.QueryRow(
		"SELECT id FROM coupons WHERE code = 'GLOBAL1'").Scan(&globalID))
	_, err = suite.service.UpdateStoreCoupon(suite.ownerID, globalID, &models.CouponUpdate{
		DiscountValue: &value,
	})
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindNotFound))
}

func (suite *CouponServiceTestSuite) TestRedeemStopsAtLimit() {
	seedGlobalCoupon(suite.T(), suite.service.db, "LAST1", models.Coupon{
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 10,
		UsageLimit:    1,
	})

	tx, err := suite.service.db.Begin()
	suite.Require().NoError(err)
	suite.Require().NoError(suite.service.RedeemCoupon(tx, "LAST1"))
	suite.Require().NoError(tx.Commit())

	tx, err = suite.service.db.Begin()
	suite.Require().NoError(err)
	defer tx.Rollback()
	err = suite.service.RedeemCoupon(tx, "LAST1")
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindExhausted))
}

func TestCouponServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CouponServiceTestSuite))
}
