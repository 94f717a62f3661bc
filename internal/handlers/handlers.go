package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"business-directory/internal/analytics"
	"business-directory/internal/auth"
	"business-directory/internal/directory"
	"business-directory/internal/middleware"
	"business-directory/internal/models"
	"business-directory/internal/store"
)

const dateFormat = "2006-01-02"

type Handler struct {
	Directory *directory.Service
	Analytics *analytics.Service
	Store     store.Store
	Sessions  *sessions.CookieStore
	Templates *template.Template
	Packages  []models.PremiumPackage
}

func New(dir *directory.Service, an *analytics.Service, st store.Store,
	sessionStore *sessions.CookieStore, packages []models.PremiumPackage) *Handler {
	tmpl := template.Must(template.ParseGlob("templates/*.html"))
	return &Handler{
		Directory: dir,
		Analytics: an,
		Store:     st,
		Sessions:  sessionStore,
		Templates: tmpl,
		Packages:  packages,
	}
}

func (h *Handler) render(w http.ResponseWriter, name string, data map[string]interface{}) {
	if err := h.Templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
	}
}

func (h *Handler) isAdmin(r *http.Request) bool {
	session, _ := h.Sessions.Get(r, middleware.SessionName)
	admin, _ := session.Values["admin"].(string)
	return admin != ""
}

// Home shows the featured (premium) listings and the category grid.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	premium, err := h.Directory.PremiumListings(ctx)
	if err != nil {
		log.Printf("premium listings: %v", err)
	}

	categories, err := h.Directory.Categories(ctx)
	if err != nil {
		log.Printf("categories: %v", err)
	}

	h.render(w, "index.html", map[string]interface{}{
		"Premium":    premium,
		"Categories": categories,
		"Admin":      h.isAdmin(r),
	})
}

// Browse lists approved listings, optionally narrowed to one category. The
// filter bar shows per-category listing counts.
func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category := r.URL.Query().Get("category")

	all, err := h.Directory.Listings(ctx, true)
	if err != nil {
		log.Printf("browse: %v", err)
	}

	counts := make(map[string]int)
	listings := all
	if category != "" {
		listings = nil
	}
	for _, l := range all {
		counts[l.Category]++
		if category != "" && l.Category == category {
			listings = append(listings, l)
		}
	}

	categories, _ := h.Directory.Categories(ctx)

	h.render(w, "browse.html", map[string]interface{}{
		"Listings":   listings,
		"Categories": categories,
		"Counts":     counts,
		"Selected":   category,
		"Admin":      h.isAdmin(r),
	})
}

// Search runs the free-text search over approved listings.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	listings, err := h.Directory.SearchListings(r.Context(), query, true)
	if err != nil {
		log.Printf("search: %v", err)
	}

	h.render(w, "search.html", map[string]interface{}{
		"Query":    query,
		"Listings": listings,
		"Searched": query != "",
		"Admin":    h.isAdmin(r),
	})
}

// ListingDetail shows one listing and records the page view, tagged with the
// listing's type at view time.
func (h *Handler) ListingDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	listing, err := h.Directory.ListingByID(ctx, id)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	if listing == nil || !listing.Approved {
		w.WriteHeader(http.StatusNotFound)
		h.render(w, "notfound.html", map[string]interface{}{"Admin": h.isAdmin(r)})
		return
	}

	listingType := models.ListingTypeStandard
	isPremium, err := h.Directory.IsPremium(ctx, id)
	if err != nil {
		log.Printf("premium check: %v", err)
	}
	if isPremium {
		listingType = models.ListingTypePremium
	}

	if err := h.Analytics.TrackPageView(ctx, id, listingType); err != nil {
		log.Printf("track view: %v", err)
	}

	views, _ := h.Analytics.ListingViews(ctx, id)

	h.render(w, "listing.html", map[string]interface{}{
		"Listing": listing,
		"Premium": isPremium,
		"Views":   views,
		"Admin":   h.isAdmin(r),
	})
}

// SubmitPage renders the submission form.
func (h *Handler) SubmitPage(w http.ResponseWriter, r *http.Request) {
	categories, _ := h.Directory.Categories(r.Context())
	h.render(w, "submit.html", map[string]interface{}{
		"Categories": categories,
		"Packages":   h.Packages,
		"Admin":      h.isAdmin(r),
	})
}

// SubmitListing validates and stores a new listing. Validation failures are
// shown inline and nothing is written.
func (h *Handler) SubmitListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.ParseForm()

	sub := models.Submission{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Website:     r.FormValue("website"),
		Email:       r.FormValue("email"),
		Phone:       r.FormValue("phone"),
		Location:    r.FormValue("location"),
	}

	categories, _ := h.Directory.Categories(ctx)
	data := map[string]interface{}{
		"Categories": categories,
		"Packages":   h.Packages,
		"Form":       sub,
		"Admin":      h.isAdmin(r),
	}

	if r.FormValue("terms") == "" {
		data["Error"] = "You must agree to the terms and conditions to submit a listing."
		h.render(w, "submit.html", data)
		return
	}

	id, err := h.Directory.AddListing(ctx, sub)
	if err != nil {
		switch {
		case errors.Is(err, directory.ErrMissingFields),
			errors.Is(err, directory.ErrInvalidURL),
			errors.Is(err, directory.ErrInvalidEmail),
			errors.Is(err, directory.ErrUnknownCategory):
			data["Error"] = err.Error()
		default:
			log.Printf("add listing: %v", err)
			data["Error"] = "Something went wrong saving your listing. Please try again."
		}
		h.render(w, "submit.html", data)
		return
	}

	data["Success"] = true
	data["NewListingID"] = id
	delete(data, "Form")
	h.render(w, "submit.html", data)
}

// PremiumPage shows the package options, optionally pre-selected for a
// just-submitted listing.
func (h *Handler) PremiumPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listingID := r.URL.Query().Get("listing_id")

	var listing *models.Listing
	if listingID != "" {
		listing, _ = h.Directory.ListingByID(ctx, listingID)
	}

	h.render(w, "premium.html", map[string]interface{}{
		"Packages": h.Packages,
		"Listing":  listing,
		"Admin":    h.isAdmin(r),
	})
}

// PremiumCheckout completes the simulated purchase and records the
// subscription. No payment is actually processed.
func (h *Handler) PremiumCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.ParseForm()

	listingID := r.FormValue("listing_id")
	packageName := r.FormValue("package")

	data := map[string]interface{}{
		"Packages": h.Packages,
		"Admin":    h.isAdmin(r),
	}

	var pkg *models.PremiumPackage
	for i := range h.Packages {
		if h.Packages[i].Name == packageName {
			pkg = &h.Packages[i]
			break
		}
	}
	if pkg == nil {
		data["Error"] = "Please select a premium package."
		h.render(w, "premium.html", data)
		return
	}

	if r.FormValue("card_name") == "" || r.FormValue("card_number") == "" {
		listing, _ := h.Directory.ListingByID(ctx, listingID)
		data["Listing"] = listing
		data["Error"] = "Please fill in the payment details."
		h.render(w, "premium.html", data)
		return
	}

	subID, err := h.Directory.AddPremiumListing(ctx, listingID, pkg.Name, pkg.DurationDays)
	if err != nil {
		if errors.Is(err, directory.ErrListingNotFound) {
			data["Error"] = "That listing could not be found."
		} else {
			log.Printf("add premium: %v", err)
			data["Error"] = "Something went wrong completing the purchase."
		}
		h.render(w, "premium.html", data)
		return
	}

	listing, _ := h.Directory.ListingByID(ctx, listingID)
	data["Listing"] = listing
	data["Purchased"] = pkg
	data["SubscriptionID"] = subID
	h.render(w, "premium.html", data)
}

// AdminLoginPage renders the login prompt, or the dashboard link when the
// session is already authenticated.
func (h *Handler) AdminLoginPage(w http.ResponseWriter, r *http.Request) {
	if h.isAdmin(r) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	h.render(w, "admin_login.html", nil)
}

// AdminLogin checks the credential against the admin store and sets the
// session flag.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	ok, err := auth.VerifyAdmin(r.Context(), h.Store, username, password)
	if err != nil {
		log.Printf("verify admin: %v", err)
	}
	if !ok {
		h.render(w, "admin_login.html", map[string]interface{}{
			"Error": "Invalid username or password",
		})
		return
	}

	session, _ := h.Sessions.Get(r, middleware.SessionName)
	session.Values["admin"] = username
	session.Save(r, w)

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *Handler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.Sessions.Get(r, middleware.SessionName)
	session.Options.MaxAge = -1
	session.Save(r, w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// AdminDashboard lists every listing, pending ones first in the default
// view, with status and category filters.
func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := r.URL.Query().Get("status")
	category := r.URL.Query().Get("category")

	listings, err := h.Directory.Listings(ctx, false)
	if err != nil {
		log.Printf("admin listings: %v", err)
	}

	filtered := listings[:0:0]
	for _, l := range listings {
		if status == "approved" && !l.Approved {
			continue
		}
		if status == "pending" && l.Approved {
			continue
		}
		if category != "" && l.Category != category {
			continue
		}
		filtered = append(filtered, l)
	}

	categories, _ := h.Directory.Categories(ctx)

	h.render(w, "admin_dashboard.html", map[string]interface{}{
		"Listings":   filtered,
		"Categories": categories,
		"Status":     status,
		"Category":   category,
	})
}

func (h *Handler) AdminApprove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	found, err := h.Directory.ApproveListing(r.Context(), id)
	if err != nil {
		log.Printf("approve %s: %v", id, err)
	}
	if !found {
		log.Printf("approve %s: not found", id)
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	found, err := h.Directory.DeleteListing(r.Context(), id)
	if err != nil {
		log.Printf("delete %s: %v", id, err)
	}
	if !found {
		log.Printf("delete %s: not found", id)
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// analyticsRange reads the from/to query range, defaulting to the last 30
// days.
func analyticsRange(r *http.Request) (string, string) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" {
		from = time.Now().AddDate(0, 0, -30).Format(dateFormat)
	}
	if to == "" {
		to = time.Now().Format(dateFormat)
	}
	return from, to
}

// AdminAnalytics renders the traffic report: overview metrics, daily views,
// type breakdown, hourly breakdown for a selected date and the top listings.
func (h *Handler) AdminAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	from, to := analyticsRange(r)

	summary, err := h.Analytics.Summarize(ctx, from, to)
	if err != nil {
		log.Printf("summarize: %v", err)
	}

	daily, _ := h.Analytics.DailyViews(ctx, from, to)
	byType, _ := h.Analytics.ViewsByType(ctx, from, to)
	top, _ := h.Analytics.TopListings(ctx, 10, from, to)

	date := r.URL.Query().Get("date")
	if date == "" && len(daily) > 0 {
		date = daily[len(daily)-1].Date
	}
	var hourly []analytics.HourCount
	if date != "" {
		hourly, _ = h.Analytics.HourlyViews(ctx, date)
	}

	h.render(w, "admin_analytics.html", map[string]interface{}{
		"From":    from,
		"To":      to,
		"Date":    date,
		"Summary": summary,
		"Daily":   daily,
		"ByType":  byType,
		"Top":     top,
		"Hourly":  hourly,
	})
}

// AdminAnalyticsData serves the report as JSON for the dashboard charts.
func (h *Handler) AdminAnalyticsData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	from, to := analyticsRange(r)

	summary, err := h.Analytics.Summarize(ctx, from, to)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	daily, _ := h.Analytics.DailyViews(ctx, from, to)
	byType, _ := h.Analytics.ViewsByType(ctx, from, to)
	top, _ := h.Analytics.TopListings(ctx, 10, from, to)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"summary": summary,
		"daily":   daily,
		"by_type": byType,
		"top":     top,
	})
}

// AdminAnalyticsExport downloads the raw events for the range as CSV.
func (h *Handler) AdminAnalyticsExport(w http.ResponseWriter, r *http.Request) {
	from, to := analyticsRange(r)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="directory_analytics_%s_to_%s.csv"`, from, to))

	if err := h.Analytics.ExportCSV(r.Context(), w, from, to); err != nil {
		log.Printf("export csv: %v", err)
	}
}

// AdminSettings shows the pricing/display settings form. Saving is
// deliberately a no-op; the values are not persisted.
func (h *Handler) AdminSettings(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"Packages": h.Packages,
	}
	if r.Method == http.MethodPost {
		data["Saved"] = true
	}
	h.render(w, "admin_settings.html", data)
}
