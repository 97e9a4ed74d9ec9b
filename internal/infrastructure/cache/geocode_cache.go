package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/99minutos/route-tracking/internal/core/domain"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// SQLGeocodeCache maps normalized addresses to coordinates in a SQL table.
// It works with PostgreSQL (pgx) and SQLite (modernc); only the placeholder
// syntax differs between the two.
type SQLGeocodeCache struct {
	db     *sql.DB
	driver string
}

// Open connects to the cache database and creates the table if needed.
func Open(ctx context.Context, driver, dsn string) (*SQLGeocodeCache, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("geocode cache: unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("geocode cache: open %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		// A single connection keeps in-memory databases shared and avoids
		// SQLITE_BUSY on concurrent writers.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("geocode cache: verify %s connection: %w", driver, err)
	}

	c := &SQLGeocodeCache{db: db, driver: driver}
	if err := c.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

func (c *SQLGeocodeCache) ensureSchema(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address    TEXT PRIMARY KEY,
		lat        DOUBLE PRECISION NOT NULL,
		lon        DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	`)
	if err != nil {
		return fmt.Errorf("geocode cache: create table: %w", err)
	}
	return nil
}

// Get returns the cached coordinate for address and whether it was present.
func (c *SQLGeocodeCache) Get(ctx context.Context, address string) (domain.Coordinate, bool, error) {
	key := Normalize(address)
	if key == "" {
		return domain.Coordinate{}, false, errors.New("geocode cache: empty address key")
	}

	q := c.rebind(`SELECT lat, lon FROM geocode_cache WHERE address = $1;`)

	var coord domain.Coordinate
	err := c.db.QueryRowContext(ctx, q, key).Scan(&coord.Lat, &coord.Lng)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coordinate{}, false, nil
	}
	if err != nil {
		return domain.Coordinate{}, false, fmt.Errorf("get geocode cache: %w", err)
	}
	return coord, true, nil
}

// Put stores or replaces the coordinate for address.
func (c *SQLGeocodeCache) Put(ctx context.Context, address string, coord domain.Coordinate) error {
	key := Normalize(address)
	if key == "" {
		return errors.New("geocode cache: empty address key")
	}

	q := c.rebind(`
	INSERT INTO geocode_cache (address, lat, lon, updated_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (address) DO UPDATE
	SET lat = excluded.lat,
		lon = excluded.lon,
		updated_at = excluded.updated_at;
	`)

	if _, err := c.db.ExecContext(ctx, q, key, coord.Lat, coord.Lng, time.Now().UTC()); err != nil {
		return fmt.Errorf("insert geocode cache address=%q: %w", key, err)
	}
	return nil
}

// Ping reports whether the cache database is reachable.
func (c *SQLGeocodeCache) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *SQLGeocodeCache) Close() error {
	return c.db.Close()
}

// rebind rewrites $N placeholders to ? for SQLite.
func (c *SQLGeocodeCache) rebind(q string) string {
	if c.driver != DriverSQLite {
		return q
	}
	for i := 9; i >= 1; i-- {
		q = strings.ReplaceAll(q, fmt.Sprintf("$%d", i), "?")
	}
	return q
}

// Normalize collapses whitespace and case so equivalent addresses share a key.
func Normalize(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}
