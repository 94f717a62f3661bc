// Package directory implements the listing service: submission, moderation,
// browsing, search and premium placement.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"business-directory/internal/models"
	"business-directory/internal/store"
	"business-directory/internal/validate"
)

const dateFormat = "2006-01-02"

// Validation failures surfaced to submitters. The write is never attempted
// when one of these is returned.
var (
	ErrMissingFields   = errors.New("please fill out all required fields")
	ErrInvalidURL      = errors.New("please enter a valid website URL (must include http:// or https://)")
	ErrInvalidEmail    = errors.New("please enter a valid email address")
	ErrUnknownCategory = errors.New("please choose an existing category")
	ErrListingNotFound = errors.New("listing not found")
)

type Service struct {
	store store.Store
}

func New(st store.Store) *Service {
	return &Service{store: st}
}

func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	return s.store.Categories(ctx)
}

// AddListing validates the submission and creates an unapproved listing,
// returning its generated identifier.
func (s *Service) AddListing(ctx context.Context, sub models.Submission) (string, error) {
	if sub.Name == "" || sub.Description == "" || sub.Category == "" ||
		sub.Website == "" || sub.Email == "" || sub.Location == "" {
		return "", ErrMissingFields
	}
	if !validate.URL(sub.Website) {
		return "", ErrInvalidURL
	}
	if !validate.Email(sub.Email) {
		return "", ErrInvalidEmail
	}

	ok, err := s.store.CategoryExists(ctx, sub.Category)
	if err != nil {
		return "", fmt.Errorf("check category: %w", err)
	}
	if !ok {
		return "", ErrUnknownCategory
	}

	phone := sub.Phone
	if phone == "" {
		phone = "Not provided"
	}

	listing := &models.Listing{
		ID:            validate.NewID(),
		Name:          sub.Name,
		Description:   sub.Description,
		Category:      sub.Category,
		Website:       sub.Website,
		Email:         sub.Email,
		Phone:         phone,
		Location:      sub.Location,
		SubmittedDate: time.Now().Format(dateFormat),
		Approved:      false,
	}

	if err := s.store.InsertListing(ctx, listing); err != nil {
		return "", fmt.Errorf("insert listing: %w", err)
	}
	return listing.ID, nil
}

// ApproveListing marks the listing visible. It reports whether the id
// existed; approving an already-approved listing is a harmless no-op.
func (s *Service) ApproveListing(ctx context.Context, id string) (bool, error) {
	return s.store.SetListingApproved(ctx, id)
}

// DeleteListing removes the listing and every premium subscription
// referencing it.
func (s *Service) DeleteListing(ctx context.Context, id string) (bool, error) {
	return s.store.DeleteListing(ctx, id)
}

func (s *Service) Listings(ctx context.Context, approvedOnly bool) ([]models.Listing, error) {
	return s.store.Listings(ctx, approvedOnly)
}

func (s *Service) ListingsByCategory(ctx context.Context, category string, approvedOnly bool) ([]models.Listing, error) {
	return s.store.ListingsByCategory(ctx, category, approvedOnly)
}

// ListingByID returns nil when the id is unknown.
func (s *Service) ListingByID(ctx context.Context, id string) (*models.Listing, error) {
	return s.store.ListingByID(ctx, id)
}

// SearchListings matches the query case-insensitively as a substring of
// name, description, category or location. An empty query matches nothing.
func (s *Service) SearchListings(ctx context.Context, query string, approvedOnly bool) ([]models.Listing, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	return s.store.SearchListings(ctx, query, approvedOnly)
}

// PremiumListings returns approved listings holding at least one paid
// subscription that has not expired. A subscription ending today still
// counts as active.
func (s *Service) PremiumListings(ctx context.Context) ([]models.Listing, error) {
	return s.store.PremiumListings(ctx, time.Now().Format(dateFormat))
}

// AddPremiumListing records a paid subscription for the listing. Payment is
// simulated, so the status is written as paid unconditionally.
func (s *Service) AddPremiumListing(ctx context.Context, listingID, packageType string, durationDays int) (string, error) {
	listing, err := s.store.ListingByID(ctx, listingID)
	if err != nil {
		return "", err
	}
	if listing == nil {
		return "", ErrListingNotFound
	}

	start := time.Now()
	sub := &models.PremiumSubscription{
		ID:            validate.NewID(),
		ListingID:     listingID,
		PackageType:   packageType,
		StartDate:     start.Format(dateFormat),
		EndDate:       start.AddDate(0, 0, durationDays).Format(dateFormat),
		PaymentStatus: "paid",
	}

	if err := s.store.InsertSubscription(ctx, sub); err != nil {
		return "", fmt.Errorf("insert subscription: %w", err)
	}
	return sub.ID, nil
}

// IsPremium reports whether the listing currently has an active paid
// subscription. Used to tag page views with the type in effect at view time.
func (s *Service) IsPremium(ctx context.Context, listingID string) (bool, error) {
	return s.store.HasActiveSubscription(ctx, listingID, time.Now().Format(dateFormat))
}

func (s *Service) Subscriptions(ctx context.Context, listingID string) ([]models.PremiumSubscription, error) {
	return s.store.SubscriptionsByListing(ctx, listingID)
}
