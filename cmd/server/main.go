package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"business-directory/internal/analytics"
	"business-directory/internal/auth"
	"business-directory/internal/config"
	"business-directory/internal/directory"
	"business-directory/internal/handlers"
	"business-directory/internal/logging"
	"business-directory/internal/middleware"
	"business-directory/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logWriter, err := logging.Setup(cfg.LogFile)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logWriter.Close()

	ctx := context.Background()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	if err := auth.EnsureDefaultAdmin(ctx, st); err != nil {
		log.Fatalf("Failed to seed admin credential: %v", err)
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
	}

	dir := directory.New(st)
	an := analytics.New(st)
	h := handlers.New(dir, an, st, sessionStore, cfg.Packages)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	r.Get("/", h.Home)
	r.Get("/browse", h.Browse)
	r.Get("/search", h.Search)
	r.Get("/listings/{id}", h.ListingDetail)
	r.Get("/submit", h.SubmitPage)
	r.Post("/submit", h.SubmitListing)
	r.Get("/premium", h.PremiumPage)
	r.Post("/premium/checkout", h.PremiumCheckout)

	r.Get("/admin/login", h.AdminLoginPage)
	r.Post("/admin/login", h.AdminLogin)
	r.Get("/admin/logout", h.AdminLogout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(sessionStore))
		r.Get("/admin", h.AdminDashboard)
		r.Post("/admin/listings/{id}/approve", h.AdminApprove)
		r.Post("/admin/listings/{id}/delete", h.AdminDelete)
		r.Get("/admin/analytics", h.AdminAnalytics)
		r.Get("/admin/analytics/data", h.AdminAnalyticsData)
		r.Get("/admin/analytics/export", h.AdminAnalyticsExport)
		r.Get("/admin/settings", h.AdminSettings)
		r.Post("/admin/settings", h.AdminSettings)
	})

	log.Printf("Server starting on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
