package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Initialize creates and returns a database connection
func Initialize(databaseURL string) (*sql.DB, error) {
	// SQLite-specific parameters for better concurrent access
	if !strings.Contains(databaseURL, "?") && databaseURL != ":memory:" {
		databaseURL += "?_busy_timeout=30000&_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=1"
	}

	db, err := sql.Open("sqlite3", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA busy_timeout = 30000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA temp_store = memory",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			log.Printf("Warning: failed to set pragma %s: %v", pragma, err)
		}
	}

	log.Println("Database connection established")
	return db, nil
}

// Migrate runs database migrations
func Migrate(db *sql.DB) error {
	migrations := []string{
		createUsersTable,
		createStoresTable,
		createProductsTable,
		createCouponsTable,
		createCartItemsTable,
		createOrdersTable,
		createOrderItemsTable,
		createChatMessagesTable,
		createIndexes,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'customer',
	avatar TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

const createStoresTable = `
CREATE TABLE IF NOT EXISTS stores (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	username TEXT UNIQUE NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	contact TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	logo TEXT,
	status TEXT NOT NULL DEFAULT 'pending',
	is_active BOOLEAN NOT NULL DEFAULT 0,
	user_id TEXT,
	reviewer_id TEXT,
	review_note TEXT,
	reviewed_at DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(id),
	FOREIGN KEY (reviewer_id) REFERENCES users(id)
)`

const createProductsTable = `
CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	store_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL,
	mrp REAL NOT NULL,
	price REAL NOT NULL,
	images TEXT NOT NULL DEFAULT '[]',
	stock_quantity INTEGER NOT NULL DEFAULT 0,
	in_stock BOOLEAN NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'pending',
	reviewer_id TEXT,
	admin_note TEXT,
	reviewed_at DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (store_id) REFERENCES stores(id),
	FOREIGN KEY (reviewer_id) REFERENCES users(id)
)`

// Global and store-scoped coupons share one table; store_id NULL means
// global. Uniqueness of code across both kinds falls out of the UNIQUE
// constraint on the shared column.
const createCouponsTable = `
CREATE TABLE IF NOT EXISTS coupons (
	id TEXT PRIMARY KEY,
	code TEXT UNIQUE NOT NULL,
	store_id TEXT,
	description TEXT NOT NULL DEFAULT '',
	discount_type TEXT NOT NULL,
	discount_value REAL NOT NULL,
	max_discount_amount REAL,
	min_order_amount REAL NOT NULL DEFAULT 0,
	for_new_user BOOLEAN NOT NULL DEFAULT 0,
	for_member BOOLEAN NOT NULL DEFAULT 0,
	is_public BOOLEAN NOT NULL DEFAULT 1,
	usage_limit INTEGER NOT NULL DEFAULT 0,
	used_count INTEGER NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	status TEXT NOT NULL DEFAULT 'approved',
	reviewer_id TEXT,
	expires_at DATETIME NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (store_id) REFERENCES stores(id)
)`

const createCartItemsTable = `
CREATE TABLE IF NOT EXISTS cart_items (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	product_id TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(id),
	FOREIGN KEY (product_id) REFERENCES products(id),
	UNIQUE(user_id, product_id)
)`

const createOrdersTable = `
CREATE TABLE IF NOT EXISTS orders (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	subtotal REAL NOT NULL,
	discount REAL NOT NULL DEFAULT 0,
	total REAL NOT NULL,
	coupon_code TEXT,
	status TEXT NOT NULL DEFAULT 'pending',
	payment_method TEXT NOT NULL,
	payment_id TEXT,
	delivery_address TEXT NOT NULL,
	delivery_phone TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(id)
)`

const createOrderItemsTable = `
CREATE TABLE IF NOT EXISTS order_items (
	id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL,
	product_id TEXT NOT NULL,
	store_id TEXT NOT NULL,
	name TEXT NOT NULL,
	price REAL NOT NULL,
	quantity INTEGER NOT NULL,
	FOREIGN KEY (order_id) REFERENCES orders(id),
	FOREIGN KEY (product_id) REFERENCES products(id),
	FOREIGN KEY (store_id) REFERENCES stores(id)
)`

const createChatMessagesTable = `
CREATE TABLE IF NOT EXISTS chat_messages (
	id TEXT PRIMARY KEY,
	store_id TEXT NOT NULL,
	sender_user_id TEXT NOT NULL,
	sender_role TEXT NOT NULL,
	body TEXT NOT NULL,
	read_at DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (store_id) REFERENCES stores(id),
	FOREIGN KEY (sender_user_id) REFERENCES users(id)
)`

const createIndexes = `
CREATE INDEX IF NOT EXISTS idx_products_store_id ON products(store_id);
CREATE INDEX IF NOT EXISTS idx_products_status_stock ON products(status, stock_quantity);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
CREATE INDEX IF NOT EXISTS idx_stores_status_active ON stores(status, is_active);
CREATE INDEX IF NOT EXISTS idx_coupons_store_id ON coupons(store_id);
CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_order_items_store_id ON order_items(store_id);
CREATE INDEX IF NOT EXISTS idx_chat_messages_store_id ON chat_messages(store_id, created_at)`
