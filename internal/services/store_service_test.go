package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"gocart-backend/internal/apperr"
	"gocart-backend/internal/models"
)

type StoreServiceTestSuite struct {
	suite.Suite
	service *StoreService
	adminID string
}

func (suite *StoreServiceTestSuite) SetupTest() {
	db := newTestDB(suite.T())
	suite.service = NewStoreService(db, nil)
	suite.adminID = seedUser(suite.T(), db, models.UserRoleAdmin)
}

func (suite *StoreServiceTestSuite) submission(username string) *models.StoreSubmission {
	return &models.StoreSubmission{
		Name:        "Acme Goods",
		Username:    username,
		Description: "Everything",
		Email:       "owner@acme.example",
		Contact:     "+1111111",
		Address:     "1 Main St",
	}
}

func (suite *StoreServiceTestSuite) TestSubmitStartsPending() {
	ownerID := seedUser(suite.T(), suite.service.db, models.UserRoleCustomer)
	store, err := suite.service.SubmitStore(&ownerID, suite.submission("Acme-Goods"))
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.StoreStatusPending, store.Status)
	assert.Equal(suite.T(), "acme-goods", store.Username)
	assert.False(suite.T(), store.IsVisible())
}

func (suite *StoreServiceTestSuite) TestUsernameConflict() {
	_, err := suite.service.SubmitStore(nil, suite.submission("acme"))
	suite.Require().NoError(err)

	_, err = suite.service.SubmitStore(nil, suite.submission("ACME"))
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindConflict))
}

func (suite *StoreServiceTestSuite) TestOneStorePerOwner() {
	ownerID := seedUser(suite.T(), suite.service.db, models.UserRoleCustomer)
	_, err := suite.service.SubmitStore(&ownerID, suite.submission("first"))
	suite.Require().NoError(err)

	_, err = suite.service.SubmitStore(&ownerID, suite.submission("second"))
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindConflict))
}

func (suite *StoreServiceTestSuite) TestAnonymousStoreNeverClaimed() {
	_, err := suite.service.SubmitStore(nil, suite.submission("ghost"))
	suite.Require().NoError(err)

	userID := seedUser(suite.T(), suite.service.db, models.UserRoleCustomer)
	_, err = suite.service.GetMyStore(userID)
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindNotFound))
}

func (suite *StoreServiceTestSuite) TestLifecycleTransitions() {
	ownerID := seedUser(suite.T(), suite.service.db, models.UserRoleCustomer)
	store, err := suite.service.SubmitStore(&ownerID, suite.submission("cycle"))
	suite.Require().NoError(err)

	approved, err := suite.service.ReviewStore(suite.adminID, store.ID, models.StoreStatusApproved, "looks good")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.StoreStatusApproved, approved.Status)
	assert.NotNil(suite.T(), approved.ReviewedAt)
	assert.True(suite.T(), approved.IsVisible())

	suspended, err := suite.service.ReviewStore(suite.adminID, store.ID, models.StoreStatusSuspended, "complaints")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.StoreStatusSuspended, suspended.Status)

	reinstated, err := suite.service.ReviewStore(suite.adminID, store.ID, models.StoreStatusApproved, "")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.StoreStatusApproved, reinstated.Status)
}

func (suite *StoreServiceTestSuite) TestIllegalTransitionConflicts() {
	ownerID := seedUser(suite.T(), suite.service.db, models.UserRoleCustomer)
	store, err := suite.service.SubmitStore(&ownerID, suite.submission("locked"))
	suite.Require().NoError(err)

	_, err = suite.service.ReviewStore(suite.adminID, store.ID, models.StoreStatusRejected, "no docs")
	suite.Require().NoError(err)

	// Rejected is terminal
	_, err = suite.service.ReviewStore(suite.adminID, store.ID, models.StoreStatusApproved, "")
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindConflict))
}

func (suite *StoreServiceTestSuite) TestSecondReviewConflicts() {
	ownerID := seedUser(suite.T(), suite.service.db, models.UserRoleCustomer)
	store, err := suite.service.SubmitStore(&ownerID, suite.submission("race"))
	suite.Require().NoError(err)

	_, err = suite.service.ReviewStore(suite.adminID, store.ID, models.StoreStatusApproved, "")
	suite.Require().NoError(err)

	_, err = suite.service.ReviewStore(suite.adminID, store.ID, models.StoreStatusRejected, "")
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindConflict))
}

func (suite *StoreServiceTestSuite) TestSetActiveRequiresApproval() {
	ownerID := seedUser(suite.T(), suite.service.db, models.UserRoleCustomer)
	store, err := suite.service.SubmitStore(&ownerID, suite.submission("toggle"))
	suite.Require().NoError(err)

	_, err = suite.service.SetMyActive(ownerID, false)
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindConflict))

	_, err = suite.service.ReviewStore(suite.adminID, store.ID, models.StoreStatusApproved, "")
	suite.Require().NoError(err)

	updated, err := suite.service.SetMyActive(ownerID, false)
	suite.Require().NoError(err)
	assert.False(suite.T(), updated.IsActive)
	assert.Equal(suite.T(), models.StoreStatusApproved, updated.Status)
	assert.False(suite.T(), updated.IsVisible())
}

func (suite *StoreServiceTestSuite) TestAdminDeactivatesArbitraryStore() {
	ownerID := seedUser(suite.T(), suite.service.db, models.UserRoleCustomer)
	store, err := suite.service.SubmitStore(&ownerID, suite.submission("switchable"))
	suite.Require().NoError(err)

	_, err = suite.service.ReviewStore(suite.adminID, store.ID, models.StoreStatusApproved, "")
	suite.Require().NoError(err)

	// The admin holds no store of their own; the toggle works on the
	// store ID directly.
	deactivated, err := suite.service.SetActive(store.ID, false)
	suite.Require().NoError(err)
	assert.False(suite.T(), deactivated.IsActive)
	assert.Equal(suite.T(), models.StoreStatusApproved, deactivated.Status)
	assert.False(suite.T(), deactivated.IsVisible())

	reactivated, err := suite.service.SetActive(store.ID, true)
	suite.Require().NoError(err)
	assert.True(suite.T(), reactivated.IsVisible())

	_, err = suite.service.SetActive("no-such-store", false)
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindNotFound))
}

func (suite *StoreServiceTestSuite) TestReapprovalRestoresActive() {
	ownerID := seedUser(suite.T(), suite.service.db, models.UserRoleCustomer)
	store, err := suite.service.SubmitStore(&ownerID, suite.submission("comeback"))
	suite.Require().NoError(err)

	_, err = suite.service.ReviewStore(suite.adminID, store.ID, models.StoreStatusApproved, "")
	suite.Require().NoError(err)

	_, err = suite.service.SetMyActive(ownerID, false)
	suite.Require().NoError(err)

	_, err = suite.service.ReviewStore(suite.adminID, store.ID, models.StoreStatusSuspended, "complaints")
	suite.Require().NoError(err)

	reinstated, err := suite.service.ReviewStore(suite.adminID, store.ID, models.StoreStatusApproved, "resolved")
	suite.Require().NoError(err)
	assert.True(suite.T(), reinstated.IsActive)
	assert.True(suite.T(), reinstated.IsVisible())
}

func (suite *StoreServiceTestSuite) TestPublicLookupOnlyFindsVisible() {
	ownerID := seedUser(suite.T(), suite.service.db, models.UserRoleCustomer)
	store, err := suite.service.SubmitStore(&ownerID, suite.submission("findme"))
	suite.Require().NoError(err)

	_, err = suite.service.GetStoreByUsername("findme")
	assert.True(suite.T(), apperr.IsKind(err, apperr.KindNotFound))

	_, err = suite.service.ReviewStore(suite.adminID, store.ID, models.StoreStatusApproved, "")
	suite.Require().NoError(err)

	found, err := suite.service.GetStoreByUsername("findme")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), store.ID, found.ID)
}

func TestStoreServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StoreServiceTestSuite))
}
