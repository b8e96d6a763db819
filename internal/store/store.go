// Package store persists fetched station datasets as daily snapshots
// in sqlite, with an in-process cache in front of the hot queries.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/patrickmn/go-cache"
	"github.com/tkrajina/gpxgo/gpx"

	"fuelmap/pkg/stations"
)

const (
	cacheExpiry      = 10 * time.Minute
	cacheCleanup     = 30 * time.Minute
	defaultCacheSize = -1024 * 1024 // negative value for pages
	defaultPageSize  = 4096
)

// Store holds the snapshot database.
type Store struct {
	db    *sql.DB
	cache *cache.Cache
	log   *slog.Logger

	closeOnce sync.Once
}

// New opens (creating if needed) the snapshot database at dbPath.
func New(ctx context.Context, dbPath string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := configurePragmas(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating tables: %w", err)
	}

	return &Store{
		db:    db,
		cache: cache.New(cacheExpiry, cacheCleanup),
		log:   logger,
	}, nil
}

func configurePragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 10000;",
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		fmt.Sprintf("PRAGMA cache_size = %d;", defaultCacheSize),
		fmt.Sprintf("PRAGMA page_size = %d;", defaultPageSize),
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("error applying %q: %w", p, err)
		}
	}
	return nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS station_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT UNIQUE NOT NULL,
		data BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_station_snapshots_date ON station_snapshots(date);
	`

	_, err := db.ExecContext(ctx, createTableSQL)
	if err != nil {
		return fmt.Errorf("error creating table: %w", err)
	}
	return nil
}

// Close flushes the cache and closes the database.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if s.cache != nil {
			s.cache.Flush()
		}
	})
	return s.db.Close()
}

// SaveSnapshot stores the dataset under the given date, replacing any
// snapshot already recorded for that day.
func (s *Store) SaveSnapshot(ctx context.Context, date time.Time, list []stations.Station) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("error marshaling stations: %w", err)
	}
	dateStr := date.Format("2006-01-02")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			s.log.Warn("rollback error", "error", err)
		}
	}()

	_, err = tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO station_snapshots (date, data) VALUES (?, ?)", dateStr, data)
	if err != nil {
		return fmt.Errorf("error inserting snapshot: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	s.cache.Flush()
	return nil
}

// HasDate reports whether a snapshot exists for the given day.
func (s *Store) HasDate(ctx context.Context, date time.Time) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM station_snapshots WHERE date = ?",
		date.Format("2006-01-02")).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("error checking date existence: %w", err)
	}
	return count > 0, nil
}

// LatestStations returns the most recent snapshot.
func (s *Store) LatestStations(ctx context.Context) ([]stations.Station, error) {
	const cacheKey = "latest_snapshot"

	if cached, found := s.cache.Get(cacheKey); found {
		s.log.Debug("using cached data", "key", cacheKey)
		return cached.([]stations.Station), nil
	}

	var jsonData []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM station_snapshots ORDER BY date DESC LIMIT 1").Scan(&jsonData)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no data available")
		}
		return nil, fmt.Errorf("error querying database: %w", err)
	}

	var list []stations.Station
	if err := json.Unmarshal(jsonData, &list); err != nil {
		return nil, fmt.Errorf("error unmarshaling data: %w", err)
	}

	s.cache.Set(cacheKey, list, cache.DefaultExpiration)
	return list, nil
}

// LatestDate returns the date of the most recent snapshot, or nil when
// the store is empty.
func (s *Store) LatestDate(ctx context.Context) (*time.Time, error) {
	var dateStr string
	err := s.db.QueryRowContext(ctx,
		"SELECT date FROM station_snapshots ORDER BY date DESC LIMIT 1").Scan(&dateStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying latest date: %w", err)
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("error parsing date %s: %w", dateStr, err)
	}
	return &date, nil
}

// NearbyStations returns stations from the latest snapshot within the
// given distance (meters) of the coordinates.
func (s *Store) NearbyStations(ctx context.Context, lat, lng, distance float64) ([]stations.Station, error) {
	cacheKey := fmt.Sprintf("nearby_%f_%f_%f", lat, lng, distance)

	if cached, found := s.cache.Get(cacheKey); found {
		s.log.Debug("using cached data", "key", cacheKey)
		return cached.([]stations.Station), nil
	}

	list, err := s.LatestStations(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting latest snapshot: %w", err)
	}

	var nearby []stations.Station
	for i := range list {
		st := &list[i]
		d := gpx.Distance2D(lat, lng, st.Location.Lat, st.Location.Lng, true)
		if d <= distance {
			nearby = append(nearby, *st)
		}
	}

	s.cache.Set(cacheKey, nearby, cache.DefaultExpiration)
	return nearby, nil
}
