package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"business-directory/internal/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Init(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS categories (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT UNIQUE NOT NULL,
		name TEXT UNIQUE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS listings (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		website TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL,
		location TEXT NOT NULL,
		submitted_date TEXT NOT NULL,
		approved BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE TABLE IF NOT EXISTS premium_subscriptions (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT UNIQUE NOT NULL,
		listing_id TEXT NOT NULL,
		package_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		payment_status TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS analytics_events (
		seq BIGSERIAL PRIMARY KEY,
		timestamp TEXT NOT NULL,
		listing_id TEXT NOT NULL,
		listing_type TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS admins (
		username TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_listings_category ON listings(category);
	CREATE INDEX IF NOT EXISTS idx_subs_listing ON premium_subscriptions(listing_id);
	CREATE INDEX IF NOT EXISTS idx_events_listing ON analytics_events(listing_id);
	`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var n int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM categories").Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		for _, c := range StarterCategories {
			if _, err := s.pool.Exec(ctx,
				"INSERT INTO categories (id, name) VALUES ($1, $2)", c.ID, c.Name); err != nil {
				return fmt.Errorf("seed categories: %w", err)
			}
		}
	}

	return nil
}

func (s *PostgresStore) Categories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, name FROM categories ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (s *PostgresStore) CategoryExists(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM categories WHERE name = $1", name).Scan(&n)
	return n > 0, err
}

func (s *PostgresStore) InsertListing(ctx context.Context, l *models.Listing) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO listings (id, name, description, category, website, email, phone, location, submitted_date, approved)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		l.ID, l.Name, l.Description, l.Category, l.Website, l.Email, l.Phone, l.Location, l.SubmittedDate, l.Approved)
	return err
}

const pgListingCols = "id, name, description, category, website, email, phone, location, submitted_date, approved"

func (s *PostgresStore) collectListings(rows pgx.Rows) ([]models.Listing, error) {
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.Category, &l.Website,
			&l.Email, &l.Phone, &l.Location, &l.SubmittedDate, &l.Approved); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (s *PostgresStore) Listings(ctx context.Context, approvedOnly bool) ([]models.Listing, error) {
	q := "SELECT " + pgListingCols + " FROM listings"
	if approvedOnly {
		q += " WHERE approved"
	}
	q += " ORDER BY seq"

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.collectListings(rows)
}

func (s *PostgresStore) ListingsByCategory(ctx context.Context, category string, approvedOnly bool) ([]models.Listing, error) {
	q := "SELECT " + pgListingCols + " FROM listings WHERE category = $1"
	if approvedOnly {
		q += " AND approved"
	}
	q += " ORDER BY seq"

	rows, err := s.pool.Query(ctx, q, category)
	if err != nil {
		return nil, err
	}
	return s.collectListings(rows)
}

func (s *PostgresStore) ListingByID(ctx context.Context, id string) (*models.Listing, error) {
	var l models.Listing
	err := s.pool.QueryRow(ctx,
		"SELECT "+pgListingCols+" FROM listings WHERE id = $1", id,
	).Scan(&l.ID, &l.Name, &l.Description, &l.Category, &l.Website,
		&l.Email, &l.Phone, &l.Location, &l.SubmittedDate, &l.Approved)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *PostgresStore) SearchListings(ctx context.Context, query string, approvedOnly bool) ([]models.Listing, error) {
	pattern := "%" + strings.ToLower(query) + "%"

	q := "SELECT " + pgListingCols + ` FROM listings
		WHERE (LOWER(name) LIKE $1 OR LOWER(description) LIKE $1 OR LOWER(category) LIKE $1 OR LOWER(location) LIKE $1)`
	if approvedOnly {
		q += " AND approved"
	}
	q += " ORDER BY seq"

	rows, err := s.pool.Query(ctx, q, pattern)
	if err != nil {
		return nil, err
	}
	return s.collectListings(rows)
}

func (s *PostgresStore) SetListingApproved(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, "UPDATE listings SET approved = TRUE WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) DeleteListing(ctx context.Context, id string) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		"DELETE FROM premium_subscriptions WHERE listing_id = $1", id); err != nil {
		return false, err
	}

	tag, err := tx.Exec(ctx, "DELETE FROM listings WHERE id = $1", id)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) PremiumListings(ctx context.Context, today string) ([]models.Listing, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+pgListingCols+` FROM listings
		 WHERE approved AND id IN (
			SELECT listing_id FROM premium_subscriptions
			WHERE end_date >= $1 AND payment_status = 'paid')
		 ORDER BY seq`, today)
	if err != nil {
		return nil, err
	}
	return s.collectListings(rows)
}

func (s *PostgresStore) InsertSubscription(ctx context.Context, sub *models.PremiumSubscription) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO premium_subscriptions (id, listing_id, package_type, start_date, end_date, payment_status)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		sub.ID, sub.ListingID, sub.PackageType, sub.StartDate, sub.EndDate, sub.PaymentStatus)
	return err
}

func (s *PostgresStore) SubscriptionsByListing(ctx context.Context, listingID string) ([]models.PremiumSubscription, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, listing_id, package_type, start_date, end_date, payment_status
		 FROM premium_subscriptions WHERE listing_id = $1 ORDER BY seq`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.PremiumSubscription
	for rows.Next() {
		var sub models.PremiumSubscription
		if err := rows.Scan(&sub.ID, &sub.ListingID, &sub.PackageType,
			&sub.StartDate, &sub.EndDate, &sub.PaymentStatus); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *PostgresStore) HasActiveSubscription(ctx context.Context, listingID, today string) (bool, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM premium_subscriptions
		 WHERE listing_id = $1 AND end_date >= $2 AND payment_status = 'paid'`,
		listingID, today).Scan(&n)
	return n > 0, err
}

func (s *PostgresStore) InsertEvent(ctx context.Context, e *models.AnalyticsEvent) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO analytics_events (timestamp, listing_id, listing_type) VALUES ($1, $2, $3)",
		e.Timestamp, e.ListingID, e.ListingType)
	return err
}

func (s *PostgresStore) Events(ctx context.Context) ([]models.AnalyticsEvent, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT timestamp, listing_id, listing_type FROM analytics_events ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.AnalyticsEvent
	for rows.Next() {
		var e models.AnalyticsEvent
		if err := rows.Scan(&e.Timestamp, &e.ListingID, &e.ListingType); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *PostgresStore) CountEventsByListing(ctx context.Context, listingID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM analytics_events WHERE listing_id = $1", listingID).Scan(&n)
	return n, err
}

func (s *PostgresStore) AdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var a models.Admin
	err := s.pool.QueryRow(ctx,
		"SELECT username, password_hash FROM admins WHERE username = $1", username,
	).Scan(&a.Username, &a.PasswordHash)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PostgresStore) AdminCount(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM admins").Scan(&n)
	return n, err
}

func (s *PostgresStore) UpsertAdmin(ctx context.Context, username, passwordHash string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO admins (username, password_hash) VALUES ($1, $2)
		 ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash`,
		username, passwordHash)
	return err
}
