package domain

import "time"

// Core catalog and behavior models. The catalog itself lives behind ports.Catalog;
// these types are what every adapter returns.

type ItemType string

const (
	ItemTypeDevice    ItemType = "device"
	ItemTypeAccessory ItemType = "accessory"
)

type Shipping struct {
	FreeShipping  bool `json:"freeShipping"`
	EstimatedDays int  `json:"estimatedDays,omitempty"`
}

type Item struct {
	ItemID           string   `json:"itemId"`
	Title            string   `json:"title"`
	Price            float64  `json:"price"`
	Currency         string   `json:"currency"`
	Brand            string   `json:"brand,omitempty"`
	Category         string   `json:"category"`
	ItemType         ItemType `json:"itemType"`
	DeviceCategory   string   `json:"deviceCategory,omitempty"` // accessories only: the device category they attach to
	CompatibleBrands []string `json:"compatibleBrands,omitempty"`
	IsActive         bool     `json:"isActive"`
	ImageURL         string   `json:"imageUrl,omitempty"`
	Shipping         Shipping `json:"shippingInfo"`
}

// CompatibleWith reports whether brand appears in the item's compatible brand list.
func (i Item) CompatibleWith(brand string) bool {
	if brand == "" {
		return false
	}
	for _, b := range i.CompatibleBrands {
		if b == brand {
			return true
		}
	}
	return false
}

type EventType string

const (
	EventView      EventType = "view"
	EventAddToCart EventType = "add_to_cart"
	EventPurchase  EventType = "purchase"
)

// Priority orders event types for trigger selection: purchase > add_to_cart > view.
func (e EventType) Priority() int {
	switch e {
	case EventPurchase:
		return 3
	case EventAddToCart:
		return 2
	case EventView:
		return 1
	default:
		return 0
	}
}

type UserEvent struct {
	UserID    string    `json:"userId"`
	EventType EventType `json:"eventType"`
	ItemID    string    `json:"itemId"`
	Timestamp time.Time `json:"timestamp"`
}

// Holiday validity window: claims may reference a holiday from HolidayLeadDays before
// its start through HolidayTrailDays after its end (calendar days, UTC).
const (
	HolidayLeadDays  = 3
	HolidayTrailDays = 1
)

type Holiday struct {
	Name      string    `json:"name"`
	Locale    string    `json:"locale"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// Covers reports whether t falls inside the widened holiday window. Both bounds are
// whole calendar days and inclusive.
func (h Holiday) Covers(t time.Time) bool {
	day := truncateDay(t)
	from := truncateDay(h.StartDate).AddDate(0, 0, -HolidayLeadDays)
	to := truncateDay(h.EndDate).AddDate(0, 0, HolidayTrailDays)
	return !day.Before(from) && !day.After(to)
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// UserSignals summarizes recent behavior: counts over 7 days, interest tags and
// brands over 14 days.
type UserSignals struct {
	RecentView      int      `json:"recent_view"`
	RecentAddToCart int      `json:"recent_add_to_cart"`
	RecentPurchase  int      `json:"recent_purchase"`
	Tags            []string `json:"tags"`
	FavoriteBrands  []string `json:"favorite_brands"`
}

// HasFavoriteBrand reports whether brand is one of the user's favorite brands.
func (s UserSignals) HasFavoriteBrand(brand string) bool {
	for _, b := range s.FavoriteBrands {
		if b == brand {
			return true
		}
	}
	return false
}
