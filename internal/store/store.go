package store

import (
	"context"

	"business-directory/internal/config"
	"business-directory/internal/models"
)

// Store is the persistence contract shared by the SQLite and Postgres
// backends. Lookups that find nothing return a nil record and a nil error;
// mutations that target a missing row report found=false instead of failing.
// Listing queries return rows in insertion order.
type Store interface {
	Init(ctx context.Context) error
	Close() error

	Categories(ctx context.Context) ([]models.Category, error)
	CategoryExists(ctx context.Context, name string) (bool, error)

	InsertListing(ctx context.Context, l *models.Listing) error
	Listings(ctx context.Context, approvedOnly bool) ([]models.Listing, error)
	ListingsByCategory(ctx context.Context, category string, approvedOnly bool) ([]models.Listing, error)
	ListingByID(ctx context.Context, id string) (*models.Listing, error)
	SearchListings(ctx context.Context, query string, approvedOnly bool) ([]models.Listing, error)
	SetListingApproved(ctx context.Context, id string) (bool, error)
	DeleteListing(ctx context.Context, id string) (bool, error)
	PremiumListings(ctx context.Context, today string) ([]models.Listing, error)

	InsertSubscription(ctx context.Context, s *models.PremiumSubscription) error
	SubscriptionsByListing(ctx context.Context, listingID string) ([]models.PremiumSubscription, error)
	HasActiveSubscription(ctx context.Context, listingID, today string) (bool, error)

	InsertEvent(ctx context.Context, e *models.AnalyticsEvent) error
	Events(ctx context.Context) ([]models.AnalyticsEvent, error)
	CountEventsByListing(ctx context.Context, listingID string) (int, error)

	AdminByUsername(ctx context.Context, username string) (*models.Admin, error)
	AdminCount(ctx context.Context) (int, error)
	UpsertAdmin(ctx context.Context, username, passwordHash string) error
}

// Open selects a backend from configuration: Postgres when DATABASE_URL is
// set, the embedded SQLite file otherwise. The returned store is initialized.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	var (
		st  Store
		err error
	)
	if cfg.DatabaseURL != "" {
		st, err = NewPostgresStore(ctx, cfg.DatabaseURL)
	} else {
		st, err = NewSQLiteStore(cfg.DBPath)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Init(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// StarterCategories is the fixed reference set seeded on first
// initialization.
var StarterCategories = []models.Category{
	{ID: "cat1", Name: "Restaurants"},
	{ID: "cat2", Name: "Retail"},
	{ID: "cat3", Name: "Professional Services"},
	{ID: "cat4", Name: "Health & Wellness"},
	{ID: "cat5", Name: "Technology"},
	{ID: "cat6", Name: "Home Services"},
	{ID: "cat7", Name: "Education"},
	{ID: "cat8", Name: "Entertainment"},
}
