package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"business-directory/internal/models"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if absent) the embedded database file.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS categories (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT UNIQUE NOT NULL,
		name TEXT UNIQUE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS listings (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		website TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL,
		location TEXT NOT NULL,
		submitted_date TEXT NOT NULL,
		approved INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS premium_subscriptions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT UNIQUE NOT NULL,
		listing_id TEXT NOT NULL,
		package_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		payment_status TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS analytics_events (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
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
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		for _, c := range StarterCategories {
			if _, err := s.db.ExecContext(ctx,
				"INSERT INTO categories (id, name) VALUES (?, ?)", c.ID, c.Name); err != nil {
				return fmt.Errorf("seed categories: %w", err)
			}
		}
	}

	return nil
}

func (s *SQLiteStore) Categories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY seq")
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

func (s *SQLiteStore) CategoryExists(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE name = ?", name).Scan(&n)
	return n > 0, err
}

func (s *SQLiteStore) InsertListing(ctx context.Context, l *models.Listing) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO listings (id, name, description, category, website, email, phone, location, submitted_date, approved)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Name, l.Description, l.Category, l.Website, l.Email, l.Phone, l.Location, l.SubmittedDate, l.Approved)
	return err
}

const sqliteListingCols = "id, name, description, category, website, email, phone, location, submitted_date, approved"

func (s *SQLiteStore) scanListings(rows *sql.Rows) ([]models.Listing, error) {
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

func (s *SQLiteStore) Listings(ctx context.Context, approvedOnly bool) ([]models.Listing, error) {
	q := "SELECT " + sqliteListingCols + " FROM listings"
	if approvedOnly {
		q += " WHERE approved = 1"
	}
	q += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.scanListings(rows)
}

func (s *SQLiteStore) ListingsByCategory(ctx context.Context, category string, approvedOnly bool) ([]models.Listing, error) {
	q := "SELECT " + sqliteListingCols + " FROM listings WHERE category = ?"
	if approvedOnly {
		q += " AND approved = 1"
	}
	q += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, q, category)
	if err != nil {
		return nil, err
	}
	return s.scanListings(rows)
}

func (s *SQLiteStore) ListingByID(ctx context.Context, id string) (*models.Listing, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+sqliteListingCols+" FROM listings WHERE id = ?", id)

	var l models.Listing
	err := row.Scan(&l.ID, &l.Name, &l.Description, &l.Category, &l.Website,
		&l.Email, &l.Phone, &l.Location, &l.SubmittedDate, &l.Approved)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *SQLiteStore) SearchListings(ctx context.Context, query string, approvedOnly bool) ([]models.Listing, error) {
	pattern := "%" + strings.ToLower(query) + "%"

	q := "SELECT " + sqliteListingCols + ` FROM listings
		WHERE (LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ? OR LOWER(location) LIKE ?)`
	if approvedOnly {
		q += " AND approved = 1"
	}
	q += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, q, pattern, pattern, pattern, pattern)
	if err != nil {
		return nil, err
	}
	return s.scanListings(rows)
}

func (s *SQLiteStore) SetListingApproved(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE listings SET approved = 1 WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *SQLiteStore) DeleteListing(ctx context.Context, id string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM premium_subscriptions WHERE listing_id = ?", id); err != nil {
		return false, err
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM listings WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) PremiumListings(ctx context.Context, today string) ([]models.Listing, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+sqliteListingCols+` FROM listings
		 WHERE approved = 1 AND id IN (
			SELECT listing_id FROM premium_subscriptions
			WHERE end_date >= ? AND payment_status = 'paid')
		 ORDER BY seq`, today)
	if err != nil {
		return nil, err
	}
	return s.scanListings(rows)
}

func (s *SQLiteStore) InsertSubscription(ctx context.Context, sub *models.PremiumSubscription) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO premium_subscriptions (id, listing_id, package_type, start_date, end_date, payment_status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.ListingID, sub.PackageType, sub.StartDate, sub.EndDate, sub.PaymentStatus)
	return err
}

func (s *SQLiteStore) SubscriptionsByListing(ctx context.Context, listingID string) ([]models.PremiumSubscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, listing_id, package_type, start_date, end_date, payment_status
		 FROM premium_subscriptions WHERE listing_id = ? ORDER BY seq`, listingID)
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

func (s *SQLiteStore) HasActiveSubscription(ctx context.Context, listingID, today string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM premium_subscriptions
		 WHERE listing_id = ? AND end_date >= ? AND payment_status = 'paid'`,
		listingID, today).Scan(&n)
	return n > 0, err
}

func (s *SQLiteStore) InsertEvent(ctx context.Context, e *models.AnalyticsEvent) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO analytics_events (timestamp, listing_id, listing_type) VALUES (?, ?, ?)",
		e.Timestamp, e.ListingID, e.ListingType)
	return err
}

func (s *SQLiteStore) Events(ctx context.Context) ([]models.AnalyticsEvent, error) {
	rows, err := s.db.QueryContext(ctx,
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

func (s *SQLiteStore) CountEventsByListing(ctx context.Context, listingID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM analytics_events WHERE listing_id = ?", listingID).Scan(&n)
	return n, err
}

func (s *SQLiteStore) AdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT username, password_hash FROM admins WHERE username = ?", username)

	var a models.Admin
	err := row.Scan(&a.Username, &a.PasswordHash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *SQLiteStore) AdminCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM admins").Scan(&n)
	return n, err
}

func (s *SQLiteStore) UpsertAdmin(ctx context.Context, username, passwordHash string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admins (username, password_hash) VALUES (?, ?)
		 ON CONFLICT(username) DO UPDATE SET password_hash = excluded.password_hash`,
		username, passwordHash)
	return err
}
