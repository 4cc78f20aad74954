package migrations

import (
	"database/sql"
	"time"
)

var tables = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id CHAR(36) PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		registered_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS products (
		id CHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		category VARCHAR(100) NOT NULL,
		price DECIMAL(12,2) NOT NULL,
		stock INT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS orders (
		id CHAR(36) PRIMARY KEY,
		user_id CHAR(36) NOT NULL,
		status VARCHAR(30) NOT NULL,
		total DECIMAL(12,2) NOT NULL,
		shipping_address VARCHAR(255) NOT NULL,
		payment_method VARCHAR(50) NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id CHAR(36) PRIMARY KEY,
		order_id CHAR(36) NOT NULL,
		product_id CHAR(36) NOT NULL,
		quantity INT NOT NULL,
		unit_price DECIMAL(12,2) NOT NULL,
		FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	);`,
}

// AutoMigrate creates the schema if it does not exist, retrying each
// statement in case the database is still starting up.
func AutoMigrate(db *sql.DB, retries int) error {
	for _, query := range tables {
		_, err := db.Exec(query)
		for i := 0; err != nil && i < retries; i++ {
			time.Sleep(1 * time.Second)
			_, err = db.Exec(query)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
