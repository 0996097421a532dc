package services

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"gocart-backend/database"
	"gocart-backend/internal/models"
)

// newTestDB opens a fresh shared in-memory database and runs migrations.
// Each call gets its own namespace so suites do not leak state.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := database.Initialize(dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *sql.DB, role models.UserRole) string {
	t.Helper()

	id := uuid.New().String()
	_, err := db.Exec(`
		INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, "Test User", id+"@example.com", "x", role, time.Now(), time.Now())
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return id
}

func seedStore(t *testing.T, db *sql.DB, userID string, status models.StoreStatus, active bool) string {
	t.Helper()

	id := uuid.New().String()
	_, err := db.Exec(`
		INSERT INTO stores (id, name, username, status, is_active, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, "Test Store", "store-"+id[:8], status, active, userID, time.Now(), time.Now())
	if err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}
	return id
}

func seedProduct(t *testing.T, db *sql.DB, storeID string, status models.ProductStatus, stock int, price float64) string {
	t.Helper()

	id := uuid.New().String()
	_, err := db.Exec(`
		INSERT INTO products (id, store_id, name, category, mrp, price, images,
			stock_quantity, in_stock, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, '[]', ?, ?, ?, ?, ?)`,
		id, storeID, "Test Product", "general", price*2, price,
		stock, stock > 0, status, time.Now(), time.Now())
	if err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return id
}

func seedGlobalCoupon(t *testing.T, db *sql.DB, code string, coupon models.Coupon) string {
	t.Helper()
	return seedCoupon(t, db, code, nil, coupon)
}

func seedCoupon(t *testing.T, db *sql.DB, code string, storeID *string, coupon models.Coupon) string {
	t.Helper()

	id := uuid.New().String()
	status := coupon.Status
	if status == "" {
		status = models.CouponStatusApproved
	}
	expires := coupon.ExpiresAt
	if expires.IsZero() {
		expires = time.Now().Add(24 * time.Hour)
	}
	_, err := db.Exec(`
		INSERT INTO coupons (id, code, store_id, discount_type, discount_value,
			max_discount_amount, min_order_amount, for_new_user, usage_limit,
			used_count, is_active, status, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?, ?)`,
		id, code, storeID, coupon.DiscountType, coupon.DiscountValue,
		coupon.MaxDiscountAmount, coupon.MinOrderAmount, coupon.ForNewUser,
		coupon.UsageLimit, coupon.UsedCount, status, expires,
		time.Now(), time.Now())
	if err != nil {
		t.Fatalf("failed to seed coupon: %v", err)
	}
	return id
}

func productStock(t *testing.T, db *sql.DB, productID string) (int, bool) {
	t.Helper()

	var quantity int
	var inStock bool
	err := db.QueryRow("SELECT stock_quantity, in_stock FROM products WHERE id = ?", productID).
		Scan(&quantity, &inStock)
	if err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	return quantity, inStock
}
