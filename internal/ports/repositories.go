package ports

import (
	"context"
	"time"

	"marketpush/internal/domain"
)

// ItemFilter narrows ListItems. Zero values mean "any".
type ItemFilter struct {
	ItemType       domain.ItemType
	Category       string
	DeviceCategory string
	Brands         []string
	ActiveOnly     bool
	Limit          int
}

// ItemRepository resolves catalog items. Missing and inactive items are both invalid.
type ItemRepository interface {
	GetItem(ctx context.Context, itemID string) (item domain.Item, found bool, err error)
	GetItems(ctx context.Context, itemIDs []string) (map[string]domain.Item, error)
	IsItemValid(ctx context.Context, itemID string) (bool, error)
	ListItems(ctx context.Context, filter ItemFilter) ([]domain.Item, error)
}

// EventRepository returns a user's events in the windowDays before asOf, newest first.
type EventRepository interface {
	GetUserEvents(ctx context.Context, userID string, asOf time.Time, windowDays int) ([]domain.UserEvent, error)
}

// HolidayRepository answers whether a holiday may be referenced at a given time.
type HolidayRepository interface {
	IsHolidayValid(ctx context.Context, name string, asOf time.Time, locale string) (bool, error)
	ListHolidays(ctx context.Context, locale string) ([]domain.Holiday, error)
}

// Catalog is the read-only snapshot of items, events and holidays the core reasons about.
type Catalog interface {
	ItemRepository
	EventRepository
	HolidayRepository
	Ping(ctx context.Context) error
}
