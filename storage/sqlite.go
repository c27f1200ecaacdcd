package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/4propertygraphs/PDL4/models"
)

// SQLiteStore backs local single-node deployments (no DATABASE_URL) and the
// store tests. Same contract as PostgresStore.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS properties (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		agency_agent_name TEXT NOT NULL DEFAULT '',
		agency_name TEXT NOT NULL DEFAULT '',
		house_location TEXT NOT NULL DEFAULT '',
		house_price TEXT NOT NULL DEFAULT '',
		house_bedrooms INTEGER NOT NULL DEFAULT 0,
		house_bathrooms INTEGER NOT NULL DEFAULT 0,
		house_mt_squared TEXT NOT NULL DEFAULT '',
		house_extra_info_1 TEXT NOT NULL DEFAULT '',
		house_extra_info_2 TEXT NOT NULL DEFAULT '',
		house_extra_info_3 TEXT NOT NULL DEFAULT '',
		house_extra_info_4 TEXT NOT NULL DEFAULT '',
		agency_image_url TEXT NOT NULL DEFAULT '',
		images_url_house TEXT NOT NULL DEFAULT '',
		reference TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_properties_partition ON properties (agency_name, source);

	CREATE TABLE IF NOT EXISTS agencies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		address1 TEXT NOT NULL DEFAULT '',
		address2 TEXT NOT NULL DEFAULT '',
		logo TEXT NOT NULL DEFAULT '',
		site_name TEXT NOT NULL DEFAULT '',
		site_prefix TEXT NOT NULL DEFAULT '',
		myhome_api_key TEXT NOT NULL DEFAULT '',
		daft_api_key TEXT NOT NULL DEFAULT '',
		unique_key TEXT NOT NULL DEFAULT '',
		acquaint_site_prefix TEXT NOT NULL DEFAULT '',
		primary_source TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS import_activity (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL DEFAULT '',
		agency_name TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		added_count INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL DEFAULT '',
		started_at DATETIME,
		finished_at DATETIME,
		duration_sec REAL NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	_, err := s.db.Exec(schema)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPropertyRow(row rowScanner) (*models.Property, error) {
	var p models.Property
	var source string
	err := row.Scan(
		&p.ID, &p.AgentName, &p.AgencyName, &p.Location, &p.Price,
		&p.Bedrooms, &p.Bathrooms, &p.Size,
		&p.ExtraInfo1, &p.ExtraInfo2, &p.ExtraInfo3, &p.ExtraInfo4,
		&p.ImageURL, &p.ImageURLs, &p.Reference, &source,
	)
	if err != nil {
		return nil, err
	}
	p.Source = models.Source(source)
	return &p, nil
}

func (s *SQLiteStore) ReplaceProperties(ctx context.Context, agencyName string, source models.Source, props []*models.Property) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM properties WHERE agency_name = ? AND source = ?`,
		agencyName, string(source),
	); err != nil {
		return 0, fmt.Errorf("delete partition: %w", err)
	}

	insert := `
		INSERT INTO properties (
			agency_agent_name, agency_name, house_location, house_price,
			house_bedrooms, house_bathrooms, house_mt_squared,
			house_extra_info_1, house_extra_info_2, house_extra_info_3, house_extra_info_4,
			agency_image_url, images_url_house, reference, source
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	added := 0
	for _, p := range props {
		res, err := tx.ExecContext(ctx, insert,
			p.AgentName, p.AgencyName, p.Location, p.Price,
			p.Bedrooms, p.Bathrooms, p.Size,
			p.ExtraInfo1, p.ExtraInfo2, p.ExtraInfo3, p.ExtraInfo4,
			p.ImageURL, p.ImageURLs, p.Reference, string(p.Source),
		)
		if err != nil {
			return 0, fmt.Errorf("insert property: %w", err)
		}
		if id, err := res.LastInsertId(); err == nil {
			p.ID = id
		}
		added++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return added, nil
}

const sqlitePropertyColumns = `id, agency_agent_name, agency_name, house_location, house_price,
	house_bedrooms, house_bathrooms, house_mt_squared,
	house_extra_info_1, house_extra_info_2, house_extra_info_3, house_extra_info_4,
	agency_image_url, images_url_house, reference, source`

func (s *SQLiteStore) AllProperties(ctx context.Context) ([]*models.Property, error) {
	return s.queryProperties(ctx, `SELECT `+sqlitePropertyColumns+` FROM properties ORDER BY id`)
}

func (s *SQLiteStore) PropertiesByAgency(ctx context.Context, agencyName string) ([]*models.Property, error) {
	return s.queryProperties(ctx,
		`SELECT `+sqlitePropertyColumns+` FROM properties WHERE agency_name = ? ORDER BY id`, agencyName)
}

func (s *SQLiteStore) queryProperties(ctx context.Context, query string, args ...any) ([]*models.Property, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var props []*models.Property
	for rows.Next() {
		p, err := scanPropertyRow(rows)
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	return props, rows.Err()
}

func (s *SQLiteStore) PropertyByID(ctx context.Context, id int64) (*models.Property, error) {
	p, err := scanPropertyRow(s.db.QueryRowContext(ctx,
		`SELECT `+sqlitePropertyColumns+` FROM properties WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *SQLiteStore) PropertyByReference(ctx context.Context, reference string) (*models.Property, error) {
	p, err := scanPropertyRow(s.db.QueryRowContext(ctx,
		`SELECT `+sqlitePropertyColumns+` FROM properties WHERE reference = ? ORDER BY id LIMIT 1`, reference))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

const sqliteAgencyColumns = `id, name, address1, address2, logo, site_name, site_prefix,
	myhome_api_key, daft_api_key, unique_key, acquaint_site_prefix, primary_source`

func scanAgencyRow(row rowScanner) (*models.Agency, error) {
	var a models.Agency
	err := row.Scan(
		&a.ID, &a.Name, &a.Address1, &a.Address2, &a.Logo, &a.SiteName, &a.SitePrefix,
		&a.MyHomeAPIKey, &a.DaftAPIKey, &a.UniqueKey, &a.AcquaintSitePrefix, &a.PrimarySource,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *SQLiteStore) Agencies(ctx context.Context) ([]*models.Agency, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sqliteAgencyColumns+` FROM agencies ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agencies []*models.Agency
	for rows.Next() {
		a, err := scanAgencyRow(rows)
		if err != nil {
			return nil, err
		}
		agencies = append(agencies, a)
	}
	return agencies, rows.Err()
}

func (s *SQLiteStore) AgencyByKey(ctx context.Context, key string) (*models.Agency, error) {
	a, err := scanAgencyRow(s.db.QueryRowContext(ctx, `
		SELECT `+sqliteAgencyColumns+` FROM agencies
		WHERE unique_key = ? OR myhome_api_key = ? OR daft_api_key = ?
			OR site_prefix = ? OR acquaint_site_prefix = ?
		ORDER BY id LIMIT 1`, key, key, key, key, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

// SeedAgency inserts an agency row. The agencies table is owned by the API
// layer in production; this exists for local mode and tests.
func (s *SQLiteStore) SeedAgency(ctx context.Context, a *models.Agency) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO agencies (
			name, address1, address2, logo, site_name, site_prefix,
			myhome_api_key, daft_api_key, unique_key, acquaint_site_prefix, primary_source
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Name, a.Address1, a.Address2, a.Logo, a.SiteName, a.SitePrefix,
		a.MyHomeAPIKey, a.DaftAPIKey, a.UniqueKey, a.AcquaintSitePrefix, a.PrimarySource,
	)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		a.ID = id
	}
	return nil
}

func (s *SQLiteStore) RecordActivity(ctx context.Context, a *models.ImportActivity) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO import_activity (
			run_id, agency_name, source, added_count, status, message,
			started_at, finished_at, duration_sec
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.RunID, a.AgencyName, string(a.Source), a.AddedCount, string(a.Status), a.Message,
		a.StartedAt, a.FinishedAt, a.DurationSec,
	)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		a.ID = id
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	return nil
}

const sqliteActivityColumns = `id, run_id, agency_name, source, added_count, status, message,
	started_at, finished_at, duration_sec, created_at`

func scanActivityRow(row rowScanner) (*models.ImportActivity, error) {
	var a models.ImportActivity
	var source, status string
	err := row.Scan(
		&a.ID, &a.RunID, &a.AgencyName, &source, &a.AddedCount, &status, &a.Message,
		&a.StartedAt, &a.FinishedAt, &a.DurationSec, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Source = models.Source(source)
	a.Status = models.ActivityStatus(status)
	return &a, nil
}

func (s *SQLiteStore) RecentActivity(ctx context.Context, limit int) ([]*models.ImportActivity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteActivityColumns+` FROM import_activity ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activity []*models.ImportActivity
	for rows.Next() {
		a, err := scanActivityRow(rows)
		if err != nil {
			return nil, err
		}
		activity = append(activity, a)
	}
	return activity, rows.Err()
}

func (s *SQLiteStore) LatestActivity(ctx context.Context) (*models.ImportActivity, error) {
	a, err := scanActivityRow(s.db.QueryRowContext(ctx,
		`SELECT `+sqliteActivityColumns+` FROM import_activity
		 ORDER BY finished_at DESC, id DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}
