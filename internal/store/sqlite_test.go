package store

import (
	"context"
	"path/filepath"
	"testing"

	"business-directory/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init store: %v", err)
	}
	return s
}

func testListing(id, name string) *models.Listing {
	return &models.Listing{
		ID:            id,
		Name:          name,
		Description:   "A test business",
		Category:      "Restaurants",
		Website:       "https://example.com",
		Email:         "test@example.com",
		Phone:         "555-0100",
		Location:      "NYC",
		SubmittedDate: "2026-08-01",
	}
}

func TestInitSeedsCategories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cats, err := s.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(cats) != 8 {
		t.Fatalf("expected 8 starter categories, got %d", len(cats))
	}
	if cats[0].ID != "cat1" || cats[0].Name != "Restaurants" {
		t.Fatalf("unexpected first category %+v", cats[0])
	}

	// Re-init must not duplicate the seed.
	if err := s.Init(ctx); err != nil {
		t.Fatalf("re-init: %v", err)
	}
	cats, _ = s.Categories(ctx)
	if len(cats) != 8 {
		t.Fatalf("expected 8 categories after re-init, got %d", len(cats))
	}
}

func TestCategoryExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.CategoryExists(ctx, "Technology")
	if err != nil || !ok {
		t.Fatalf("expected Technology to exist, ok=%v err=%v", ok, err)
	}
	ok, err = s.CategoryExists(ctx, "Nonsense")
	if err != nil || ok {
		t.Fatalf("expected Nonsense to be absent, ok=%v err=%v", ok, err)
	}
}

func TestListingRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := testListing("id1", "Joe's Cafe")
	if err := s.InsertListing(ctx, want); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.ListingByID(ctx, "id1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got == nil {
		t.Fatal("expected listing, got nil")
	}
	if *got != *want {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}

	absent, err := s.ListingByID(ctx, "missing")
	if err != nil {
		t.Fatalf("lookup absent: %v", err)
	}
	if absent != nil {
		t.Fatalf("expected nil for absent id, got %+v", absent)
	}
}

func TestListingsApprovedFilterAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.InsertListing(ctx, testListing("a", "First"))
	s.InsertListing(ctx, testListing("b", "Second"))
	s.InsertListing(ctx, testListing("c", "Third"))
	s.SetListingApproved(ctx, "b")

	all, err := s.Listings(ctx, false)
	if err != nil {
		t.Fatalf("listings: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 listings, got %d", len(all))
	}
	if all[0].ID != "a" || all[1].ID != "b" || all[2].ID != "c" {
		t.Fatalf("expected insertion order, got %v %v %v", all[0].ID, all[1].ID, all[2].ID)
	}

	approved, err := s.Listings(ctx, true)
	if err != nil {
		t.Fatalf("approved listings: %v", err)
	}
	if len(approved) != 1 || approved[0].ID != "b" {
		t.Fatalf("expected only b approved, got %+v", approved)
	}
}

func TestSearchListings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	l := testListing("a", "Joe's Cafe")
	l.Description = "Best COFFEE in town"
	s.InsertListing(ctx, l)
	s.SetListingApproved(ctx, "a")

	hits, err := s.SearchListings(ctx, "coffee", true)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "a" {
		t.Fatalf("expected case-insensitive substring hit, got %+v", hits)
	}

	hits, _ = s.SearchListings(ctx, "nyc", true)
	if len(hits) != 1 {
		t.Fatalf("expected location match, got %+v", hits)
	}

	hits, _ = s.SearchListings(ctx, "plumber", true)
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %+v", hits)
	}
}

func TestSetListingApproved(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.InsertListing(ctx, testListing("a", "First"))

	found, err := s.SetListingApproved(ctx, "a")
	if err != nil || !found {
		t.Fatalf("approve: found=%v err=%v", found, err)
	}

	// Second approval is a no-op, still found.
	found, err = s.SetListingApproved(ctx, "a")
	if err != nil || !found {
		t.Fatalf("re-approve: found=%v err=%v", found, err)
	}

	all, _ := s.Listings(ctx, false)
	if len(all) != 1 || !all[0].Approved {
		t.Fatalf("expected single approved row, got %+v", all)
	}

	found, err = s.SetListingApproved(ctx, "missing")
	if err != nil || found {
		t.Fatalf("approve missing: found=%v err=%v", found, err)
	}
}

func TestDeleteListingCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.InsertListing(ctx, testListing("a", "First"))
	s.InsertSubscription(ctx, &models.PremiumSubscription{
		ID: "sub1", ListingID: "a", PackageType: "Basic",
		StartDate: "2026-08-01", EndDate: "2026-08-31", PaymentStatus: "paid",
	})
	s.InsertSubscription(ctx, &models.PremiumSubscription{
		ID: "sub2", ListingID: "a", PackageType: "Standard",
		StartDate: "2026-08-01", EndDate: "2026-09-30", PaymentStatus: "paid",
	})

	found, err := s.DeleteListing(ctx, "a")
	if err != nil || !found {
		t.Fatalf("delete: found=%v err=%v", found, err)
	}

	if l, _ := s.ListingByID(ctx, "a"); l != nil {
		t.Fatalf("expected listing gone, got %+v", l)
	}
	subs, _ := s.SubscriptionsByListing(ctx, "a")
	if len(subs) != 0 {
		t.Fatalf("expected subscriptions cascaded, got %+v", subs)
	}

	found, err = s.DeleteListing(ctx, "missing")
	if err != nil || found {
		t.Fatalf("delete missing: found=%v err=%v", found, err)
	}
}

func TestPremiumListings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	today := "2026-08-31"

	s.InsertListing(ctx, testListing("active", "Active"))
	s.InsertListing(ctx, testListing("expired", "Expired"))
	s.InsertListing(ctx, testListing("unpaid", "Unpaid"))
	s.InsertListing(ctx, testListing("unapproved", "Unapproved"))
	for _, id := range []string{"active", "expired", "unpaid"} {
		s.SetListingApproved(ctx, id)
	}

	// Ends today: boundary counts as active.
	s.InsertSubscription(ctx, &models.PremiumSubscription{
		ID: "s1", ListingID: "active", PackageType: "Basic",
		StartDate: "2026-08-01", EndDate: today, PaymentStatus: "paid",
	})
	// A second active subscription must not duplicate the listing.
	s.InsertSubscription(ctx, &models.PremiumSubscription{
		ID: "s2", ListingID: "active", PackageType: "Premium",
		StartDate: "2026-08-15", EndDate: "2026-11-15", PaymentStatus: "paid",
	})
	s.InsertSubscription(ctx, &models.PremiumSubscription{
		ID: "s3", ListingID: "expired", PackageType: "Basic",
		StartDate: "2026-07-01", EndDate: "2026-08-30", PaymentStatus: "paid",
	})
	s.InsertSubscription(ctx, &models.PremiumSubscription{
		ID: "s4", ListingID: "unpaid", PackageType: "Basic",
		StartDate: "2026-08-01", EndDate: "2026-12-31", PaymentStatus: "pending",
	})
	s.InsertSubscription(ctx, &models.PremiumSubscription{
		ID: "s5", ListingID: "unapproved", PackageType: "Basic",
		StartDate: "2026-08-01", EndDate: "2026-12-31", PaymentStatus: "paid",
	})

	premium, err := s.PremiumListings(ctx, today)
	if err != nil {
		t.Fatalf("premium listings: %v", err)
	}
	if len(premium) != 1 || premium[0].ID != "active" {
		t.Fatalf("expected only the active approved listing, got %+v", premium)
	}

	ok, err := s.HasActiveSubscription(ctx, "active", today)
	if err != nil || !ok {
		t.Fatalf("expected active subscription, ok=%v err=%v", ok, err)
	}
	ok, _ = s.HasActiveSubscription(ctx, "expired", today)
	if ok {
		t.Fatal("expected expired subscription to be inactive")
	}
}

func TestEventsAppendOrderAndCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	views := []models.AnalyticsEvent{
		{Timestamp: "2026-08-30 10:00:00", ListingID: "a", ListingType: "standard"},
		{Timestamp: "2026-08-30 11:00:00", ListingID: "b", ListingType: "premium"},
		{Timestamp: "2026-08-30 09:00:00", ListingID: "a", ListingType: "standard"},
	}
	for i := range views {
		if err := s.InsertEvent(ctx, &views[i]); err != nil {
			t.Fatalf("insert event: %v", err)
		}
	}

	events, err := s.Events(ctx)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	// Append order, not timestamp order.
	if events[2].Timestamp != "2026-08-30 09:00:00" {
		t.Fatalf("expected append order, got %+v", events)
	}

	n, err := s.CountEventsByListing(ctx, "a")
	if err != nil || n != 2 {
		t.Fatalf("expected 2 views for a, got %d err=%v", n, err)
	}
}

func TestAdminUpsertAndLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.AdminCount(ctx)
	if err != nil || n != 0 {
		t.Fatalf("expected empty admin table, n=%d err=%v", n, err)
	}

	if err := s.UpsertAdmin(ctx, "admin", "hash1"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.UpsertAdmin(ctx, "admin", "hash2"); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	a, err := s.AdminByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if a == nil || a.PasswordHash != "hash2" {
		t.Fatalf("expected replaced hash, got %+v", a)
	}

	n, _ = s.AdminCount(ctx)
	if n != 1 {
		t.Fatalf("expected 1 admin, got %d", n)
	}

	missing, err := s.AdminByUsername(ctx, "nobody")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing admin, got %+v err=%v", missing, err)
	}
}
