package models

// Category is a static reference entry listings point at by name.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Listing is a business entry in the directory. Dates are stored as
// YYYY-MM-DD strings to match the persisted layout.
type Listing struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	Website       string `json:"website"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Location      string `json:"location"`
	SubmittedDate string `json:"submitted_date"`
	Approved      bool   `json:"approved"`
}

// PremiumSubscription is a time-boxed visibility upgrade for a listing.
type PremiumSubscription struct {
	ID            string `json:"id"`
	ListingID     string `json:"listing_id"`
	PackageType   string `json:"package_type"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	PaymentStatus string `json:"payment_status"`
}

// AnalyticsEvent is one recorded page view. Timestamps are stored as
// "YYYY-MM-DD HH:MM:SS" strings. Events are append-only.
type AnalyticsEvent struct {
	Timestamp   string `json:"timestamp"`
	ListingID   string `json:"listing_id"`
	ListingType string `json:"listing_type"`
}

const (
	ListingTypeStandard = "standard"
	ListingTypePremium  = "premium"
)

// Admin is a directory administrator credential.
type Admin struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// Submission carries the fields of a new listing before validation.
type Submission struct {
	Name        string
	Description string
	Category    string
	Website     string
	Email       string
	Phone       string
	Location    string
}

// PremiumPackage describes a purchasable placement tier.
type PremiumPackage struct {
	Name         string   `yaml:"name"`
	PriceUSD     int      `yaml:"price_usd"`
	DurationDays int      `yaml:"duration_days"`
	Features     []string `yaml:"features"`
}
