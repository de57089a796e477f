package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL, applies pool settings and verifies the connection.
// The returned *sql.DB is the process-wide pool: created once at startup,
// checked out per request, closed at shutdown.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// WaitFor polls the database until it accepts queries, retrying a bounded
// number of times with a fixed delay. Exhausting the retries returns the last
// error; callers treat that as fatal at startup.
func WaitFor(db *sql.DB, retries int, delay time.Duration) error {
	var err error
	for attempt := 1; attempt <= retries; attempt++ {
		if _, err = db.Exec("SELECT 1"); err == nil {
			return nil
		}
		if attempt == retries {
			break
		}
		log.Printf("database not ready (attempt %d/%d), retrying in %s", attempt, retries, delay)
		time.Sleep(delay)
	}
	return err
}

// Name returns the current schema name, used by the health endpoint.
func Name(ctx context.Context, db *sql.DB) (string, error) {
	var name sql.NullString
	if err := db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&name); err != nil {
		return "", err
	}
	return name.String, nil
}
