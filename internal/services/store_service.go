package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gocart-backend/internal/apperr"
	"gocart-backend/internal/models"
	"gocart-backend/internal/utils"
)

// StoreService handles store lifecycle operations
type StoreService struct {
	db       *sql.DB
	notifier CatalogNotifier
}

// NewStoreService creates a new store service
func NewStoreService(db *sql.DB, notifier CatalogNotifier) *StoreService {
	return &StoreService{db: db, notifier: notifier}
}

const storeColumns = `id, name, username, description, email, contact, address, logo,
	status, is_active, user_id, reviewer_id, review_note, reviewed_at, created_at, updated_at`

func scanStore(row interface{ Scan(...interface{}) error }) (*models.Store, error) {
	var store models.Store
	err := row.Scan(
		&store.ID, &store.Name, &store.Username, &store.Description,
		&store.Email, &store.Contact, &store.Address, &store.Logo,
		&store.Status, &store.IsActive, &store.UserID,
		&store.ReviewerID, &store.ReviewNote, &store.ReviewedAt,
		&store.CreatedAt, &store.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// SubmitStore creates a new store in pending status. userID may be nil for
// anonymous submissions; such stores can be reviewed but never managed
// through owner endpoints.
func (s *StoreService) SubmitStore(userID *string, sub *models.StoreSubmission) (*models.Store, error) {
	username := utils.NormalizeUsername(sub.Username)

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM stores WHERE username = ?)", username).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check store username: %w", err)
	}
	if exists {
		return nil, apperr.Conflictf("store username %q is already taken", username)
	}

	if userID != nil {
		err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM stores WHERE user_id = ?)", *userID).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("failed to check store ownership: %w", err)
		}
		if exists {
			return nil, apperr.Conflictf("you already have a store")
		}
	}

	store := &models.Store{
		ID:          uuid.New().String(),
		Name:        sub.Name,
		Username:    username,
		Description: sub.Description,
		Email:       sub.Email,
		Contact:     sub.Contact,
		Address:     sub.Address,
		Logo:        sub.Logo,
		Status:      models.StoreStatusPending,
		IsActive:    true,
		UserID:      userID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	_, err = s.db.Exec(`
		INSERT INTO stores (id, name, username, description, email, contact, address, logo,
			status, is_active, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		store.ID, store.Name, store.Username, store.Description, store.Email,
		store.Contact, store.Address, store.Logo, store.Status, store.IsActive,
		store.UserID, store.CreatedAt, store.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	return store, nil
}

// GetStoreByID retrieves a store by ID
func (s *StoreService) GetStoreByID(id string) (*models.Store, error) {
	store, err := scanStore(s.db.QueryRow(
		"SELECT "+storeColumns+" FROM stores WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("store not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	return store, nil
}

// GetStoreByUsername retrieves a visible store by its public username
func (s *StoreService) GetStoreByUsername(username string) (*models.Store, error) {
	store, err := scanStore(s.db.QueryRow(
		"SELECT "+storeColumns+" FROM stores WHERE username = ? AND status = 'approved' AND is_active = 1",
		utils.NormalizeUsername(username)))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("store not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	return store, nil
}

// GetMyStore retrieves the store owned by the given user. Ownerless stores
// are never returned here.
func (s *StoreService) GetMyStore(userID string) (*models.Store, error) {
	store, err := scanStore(s.db.QueryRow(
		"SELECT "+storeColumns+" FROM stores WHERE user_id = ?", userID))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("you do not have a store")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	return store, nil
}

// ListStores lists stores, optionally filtered by status. Admin-facing.
func (s *StoreService) ListStores(status string) ([]models.Store, error) {
	query := "SELECT " + storeColumns + " FROM stores"
	args := []interface{}{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	defer rows.Close()

	var stores []models.Store
	for rows.Next() {
		store, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, *store)
	}
	return stores, rows.Err()
}

// ReviewStore moves a store to a new lifecycle status. The transition table
// is enforced, and the row update is guarded by the expected current status
// so concurrent reviewers cannot both win.
func (s *StoreService) ReviewStore(reviewerID, storeID string, next models.StoreStatus, note string) (*models.Store, error) {
	store, err := s.GetStoreByID(storeID)
	if err != nil {
		return nil, err
	}

	if !store.CanTransitionTo(next) {
		return nil, apperr.Conflictf("store is %s and cannot move to %s", store.Status, next)
	}

	// Approval always brings the store back online, even if the owner had
	// deactivated it before a suspension.
	now := time.Now()
	result, err := s.db.Exec(`
		UPDATE stores
		SET status = ?, is_active = CASE WHEN ? THEN 1 ELSE is_active END,
			reviewer_id = ?, review_note = ?, reviewed_at = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		next, next == models.StoreStatusApproved, reviewerID, nullIfEmpty(note), now, now, storeID, store.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to review store: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check review result: %w", err)
	}
	if affected == 0 {
		return nil, apperr.Conflictf("store was already reviewed")
	}

	if s.notifier != nil {
		s.notifier.InvalidateCatalog("store." + string(next))
	}

	return s.GetStoreByID(storeID)
}

// SetActive flips the activity switch on any store by ID. Admin-facing; this
// is the suspension lever that leaves the approval status untouched. Only
// approved stores can be toggled.
func (s *StoreService) SetActive(storeID string, active bool) (*models.Store, error) {
	store, err := s.GetStoreByID(storeID)
	if err != nil {
		return nil, err
	}

	if store.Status != models.StoreStatusApproved {
		return nil, apperr.Conflictf("only approved stores can change their active state")
	}

	_, err = s.db.Exec("UPDATE stores SET is_active = ?, updated_at = ? WHERE id = ?",
		active, time.Now(), store.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update store: %w", err)
	}

	if s.notifier != nil {
		s.notifier.InvalidateCatalog("store.active")
	}

	store.IsActive = active
	return store, nil
}

// SetMyActive toggles the activity switch on the caller's own store
func (s *StoreService) SetMyActive(userID string, active bool) (*models.Store, error) {
	store, err := s.GetMyStore(userID)
	if err != nil {
		return nil, err
	}
	return s.SetActive(store.ID, active)
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
