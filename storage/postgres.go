package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/4propertygraphs/PDL4/models"
)

// PostgresStore is the production catalog store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS properties (
		id BIGSERIAL PRIMARY KEY,
		agency_agent_name VARCHAR(255) NOT NULL DEFAULT '',
		agency_name VARCHAR(255) NOT NULL DEFAULT '',
		house_location VARCHAR(255) NOT NULL DEFAULT '',
		house_price VARCHAR(255) NOT NULL DEFAULT '',
		house_bedrooms INTEGER NOT NULL DEFAULT 0,
		house_bathrooms INTEGER NOT NULL DEFAULT 0,
		house_mt_squared VARCHAR(255) NOT NULL DEFAULT '',
		house_extra_info_1 VARCHAR(255) NOT NULL DEFAULT '',
		house_extra_info_2 VARCHAR(255) NOT NULL DEFAULT '',
		house_extra_info_3 VARCHAR(255) NOT NULL DEFAULT '',
		house_extra_info_4 VARCHAR(255) NOT NULL DEFAULT '',
		agency_image_url VARCHAR(255) NOT NULL DEFAULT '',
		images_url_house VARCHAR(255) NOT NULL DEFAULT '',
		reference VARCHAR(255) NOT NULL DEFAULT '',
		source VARCHAR(50) NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_properties_partition ON properties (agency_name, source);

	CREATE TABLE IF NOT EXISTS agencies (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE,
		address1 VARCHAR(255) NOT NULL DEFAULT '',
		address2 VARCHAR(255) NOT NULL DEFAULT '',
		logo VARCHAR(255) NOT NULL DEFAULT '',
		site_name VARCHAR(255) NOT NULL DEFAULT '',
		site_prefix VARCHAR(20) NOT NULL DEFAULT '',
		myhome_api_key VARCHAR(255) NOT NULL DEFAULT '',
		daft_api_key VARCHAR(255) NOT NULL DEFAULT '',
		unique_key VARCHAR(255) NOT NULL DEFAULT '',
		acquaint_site_prefix VARCHAR(20) NOT NULL DEFAULT '',
		primary_source VARCHAR(50) NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS import_activity (
		id BIGSERIAL PRIMARY KEY,
		run_id VARCHAR(64) NOT NULL DEFAULT '',
		agency_name VARCHAR(255) NOT NULL DEFAULT '',
		source VARCHAR(50) NOT NULL DEFAULT '',
		added_count INTEGER NOT NULL DEFAULT 0,
		status VARCHAR(50) NOT NULL DEFAULT '',
		message TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMPTZ,
		finished_at TIMESTAMPTZ,
		duration_sec DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// =============================================================================
// Properties
// =============================================================================

const propertyColumns = `id, agency_agent_name, agency_name, house_location, house_price,
	house_bedrooms, house_bathrooms, house_mt_squared,
	house_extra_info_1, house_extra_info_2, house_extra_info_3, house_extra_info_4,
	agency_image_url, images_url_house, reference, source`

func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID, &p.AgentName, &p.AgencyName, &p.Location, &p.Price,
		&p.Bedrooms, &p.Bathrooms, &p.Size,
		&p.ExtraInfo1, &p.ExtraInfo2, &p.ExtraInfo3, &p.ExtraInfo4,
		&p.ImageURL, &p.ImageURLs, &p.Reference, &p.Source,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) ReplaceProperties(ctx context.Context, agencyName string, source models.Source, props []*models.Property) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM properties WHERE agency_name = $1 AND source = $2`,
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
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`

	added := 0
	for _, p := range props {
		if err := tx.QueryRow(ctx, insert,
			p.AgentName, p.AgencyName, p.Location, p.Price,
			p.Bedrooms, p.Bathrooms, p.Size,
			p.ExtraInfo1, p.ExtraInfo2, p.ExtraInfo3, p.ExtraInfo4,
			p.ImageURL, p.ImageURLs, p.Reference, string(p.Source),
		).Scan(&p.ID); err != nil {
			return 0, fmt.Errorf("insert property: %w", err)
		}
		added++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return added, nil
}

func (s *PostgresStore) AllProperties(ctx context.Context) ([]*models.Property, error) {
	return s.queryProperties(ctx, `SELECT `+propertyColumns+` FROM properties ORDER BY id`)
}

func (s *PostgresStore) PropertiesByAgency(ctx context.Context, agencyName string) ([]*models.Property, error) {
	return s.queryProperties(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE agency_name = $1 ORDER BY id`, agencyName)
}

func (s *PostgresStore) queryProperties(ctx context.Context, query string, args ...any) ([]*models.Property, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var props []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	return props, rows.Err()
}

func (s *PostgresStore) PropertyByID(ctx context.Context, id int64) (*models.Property, error) {
	p, err := scanProperty(s.pool.QueryRow(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *PostgresStore) PropertyByReference(ctx context.Context, reference string) (*models.Property, error) {
	p, err := scanProperty(s.pool.QueryRow(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE reference = $1 ORDER BY id LIMIT 1`, reference))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// =============================================================================
// Agencies
// =============================================================================

const agencyColumns = `id, name, address1, address2, logo, site_name, site_prefix,
	myhome_api_key, daft_api_key, unique_key, acquaint_site_prefix, primary_source`

func scanAgency(row pgx.Row) (*models.Agency, error) {
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

func (s *PostgresStore) Agencies(ctx context.Context) ([]*models.Agency, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+agencyColumns+` FROM agencies ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agencies []*models.Agency
	for rows.Next() {
		a, err := scanAgency(rows)
		if err != nil {
			return nil, err
		}
		agencies = append(agencies, a)
	}
	return agencies, rows.Err()
}

func (s *PostgresStore) AgencyByKey(ctx context.Context, key string) (*models.Agency, error) {
	a, err := scanAgency(s.pool.QueryRow(ctx, `
		SELECT `+agencyColumns+` FROM agencies
		WHERE unique_key = $1 OR myhome_api_key = $1 OR daft_api_key = $1
			OR site_prefix = $1 OR acquaint_site_prefix = $1
		ORDER BY id LIMIT 1`, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

// =============================================================================
// Import activity
// =============================================================================

func (s *PostgresStore) RecordActivity(ctx context.Context, a *models.ImportActivity) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO import_activity (
			run_id, agency_name, source, added_count, status, message,
			started_at, finished_at, duration_sec
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		a.RunID, a.AgencyName, string(a.Source), a.AddedCount, string(a.Status), a.Message,
		a.StartedAt, a.FinishedAt, a.DurationSec,
	).Scan(&a.ID, &a.CreatedAt)
}

const activityColumns = `id, run_id, agency_name, source, added_count, status, message,
	started_at, finished_at, duration_sec, created_at`

func scanActivity(row pgx.Row) (*models.ImportActivity, error) {
	var a models.ImportActivity
	err := row.Scan(
		&a.ID, &a.RunID, &a.AgencyName, &a.Source, &a.AddedCount, &a.Status, &a.Message,
		&a.StartedAt, &a.FinishedAt, &a.DurationSec, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PostgresStore) RecentActivity(ctx context.Context, limit int) ([]*models.ImportActivity, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+activityColumns+` FROM import_activity ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activity []*models.ImportActivity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activity = append(activity, a)
	}
	return activity, rows.Err()
}

func (s *PostgresStore) LatestActivity(ctx context.Context) (*models.ImportActivity, error) {
	a, err := scanActivity(s.pool.QueryRow(ctx,
		`SELECT `+activityColumns+` FROM import_activity
		 ORDER BY finished_at DESC NULLS LAST, id DESC LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}
