// Package analytics records listing page views and aggregates them for the
// admin reports. Events are immutable facts; the only state is the growing
// append-only log.
package analytics

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"business-directory/internal/models"
	"business-directory/internal/store"
)

const (
	dateFormat      = "2006-01-02"
	timestampFormat = "2006-01-02 15:04:05"
)

type Service struct {
	store store.Store
}

func New(st store.Store) *Service {
	return &Service{store: st}
}

// TrackPageView appends one view event stamped with the current time.
// listingType is the listing's type at view time, not derived retroactively.
func (s *Service) TrackPageView(ctx context.Context, listingID, listingType string) error {
	if listingType != models.ListingTypePremium {
		listingType = models.ListingTypeStandard
	}
	return s.store.InsertEvent(ctx, &models.AnalyticsEvent{
		Timestamp:   time.Now().Format(timestampFormat),
		ListingID:   listingID,
		ListingType: listingType,
	})
}

// ListingViews returns the total recorded views for one listing.
func (s *Service) ListingViews(ctx context.Context, listingID string) (int, error) {
	return s.store.CountEventsByListing(ctx, listingID)
}

// eventsBetween returns events whose calendar date falls in [from, to].
// Empty bounds are open. Timestamps sort lexicographically, so the date
// prefix comparison is enough.
func (s *Service) eventsBetween(ctx context.Context, from, to string) ([]models.AnalyticsEvent, error) {
	events, err := s.store.Events(ctx)
	if err != nil {
		return nil, err
	}

	filtered := events[:0:0]
	for _, e := range events {
		if len(e.Timestamp) < len(dateFormat) {
			continue
		}
		date := e.Timestamp[:len(dateFormat)]
		if from != "" && date < from {
			continue
		}
		if to != "" && date > to {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered, nil
}

type DateCount struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

// DailyViews groups events by calendar date, ascending.
func (s *Service) DailyViews(ctx context.Context, from, to string) ([]DateCount, error) {
	events, err := s.eventsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, e := range events {
		counts[e.Timestamp[:len(dateFormat)]]++
	}

	out := make([]DateCount, 0, len(counts))
	for date, n := range counts {
		out = append(out, DateCount{Date: date, Views: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

type HourCount struct {
	Hour  int `json:"hour"`
	Views int `json:"views"`
}

// HourlyViews groups one date's events by hour of day, ascending.
func (s *Service) HourlyViews(ctx context.Context, date string) ([]HourCount, error) {
	events, err := s.eventsBetween(ctx, date, date)
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int)
	for _, e := range events {
		t, err := time.Parse(timestampFormat, e.Timestamp)
		if err != nil {
			continue
		}
		counts[t.Hour()]++
	}

	out := make([]HourCount, 0, len(counts))
	for hour, n := range counts {
		out = append(out, HourCount{Hour: hour, Views: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out, nil
}

type TypeCount struct {
	Type  string `json:"type"`
	Views int    `json:"views"`
}

// ViewsByType counts standard versus premium views.
func (s *Service) ViewsByType(ctx context.Context, from, to string) ([]TypeCount, error) {
	events, err := s.eventsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	var order []string
	for _, e := range events {
		if _, seen := counts[e.ListingType]; !seen {
			order = append(order, e.ListingType)
		}
		counts[e.ListingType]++
	}

	out := make([]TypeCount, 0, len(order))
	for _, typ := range order {
		out = append(out, TypeCount{Type: typ, Views: counts[typ]})
	}
	return out, nil
}

type ListingCount struct {
	ListingID string `json:"listing_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Type      string `json:"type"`
	Views     int    `json:"views"`
}

// TopListings ranks listings by view count, descending, ties kept in first
// appearance order. Listing details are joined for display; a listing that
// has since been deleted shows as Unknown.
func (s *Service) TopListings(ctx context.Context, n int, from, to string) ([]ListingCount, error) {
	events, err := s.eventsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	premium := make(map[string]bool)
	var order []string
	for _, e := range events {
		if _, seen := counts[e.ListingID]; !seen {
			order = append(order, e.ListingID)
		}
		counts[e.ListingID]++
		if e.ListingType == models.ListingTypePremium {
			premium[e.ListingID] = true
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if n > 0 && len(order) > n {
		order = order[:n]
	}

	out := make([]ListingCount, 0, len(order))
	for _, id := range order {
		lc := ListingCount{
			ListingID: id,
			Name:      "Unknown",
			Category:  "Unknown",
			Type:      models.ListingTypeStandard,
			Views:     counts[id],
		}
		if premium[id] {
			lc.Type = models.ListingTypePremium
		}
		listing, err := s.store.ListingByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if listing != nil {
			lc.Name = listing.Name
			lc.Category = listing.Category
		}
		out = append(out, lc)
	}
	return out, nil
}

type Summary struct {
	TotalViews     int     `json:"total_views"`
	ListingsViewed int     `json:"listings_viewed"`
	PremiumViews   int     `json:"premium_views"`
	PremiumShare   float64 `json:"premium_share"`
}

// Summarize computes the overview metrics for the admin analytics page.
func (s *Service) Summarize(ctx context.Context, from, to string) (Summary, error) {
	events, err := s.eventsBetween(ctx, from, to)
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	seen := make(map[string]bool)
	for _, e := range events {
		sum.TotalViews++
		seen[e.ListingID] = true
		if e.ListingType == models.ListingTypePremium {
			sum.PremiumViews++
		}
	}
	sum.ListingsViewed = len(seen)
	if sum.TotalViews > 0 {
		sum.PremiumShare = float64(sum.PremiumViews) / float64(sum.TotalViews) * 100
	}
	return sum, nil
}

// ExportCSV writes the filtered raw event rows as CSV.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, from, to string) error {
	events, err := s.eventsBetween(ctx, from, to)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "listing_id", "listing_type"}); err != nil {
		return err
	}
	for _, e := range events {
		if err := cw.Write([]string{e.Timestamp, e.ListingID, e.ListingType}); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
