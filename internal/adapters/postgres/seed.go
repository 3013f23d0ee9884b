package postgres

import (
	"context"
	"fmt"

	"marketpush/internal/domain"
)

// UpsertItem inserts or replaces an item by id.
func (db *DB) UpsertItem(ctx context.Context, it domain.Item) error {
	brands := it.CompatibleBrands
	if brands == nil {
		brands = []string{}
	}
	currency := it.Currency
	if currency == "" {
		currency = "USD"
	}
	sql, args, err := psql.Insert("items").
		Columns(itemColumns...).
		Values(it.ItemID, it.Title, it.Price, currency, it.Brand, it.Category, string(it.ItemType),
			it.DeviceCategory, brands, it.IsActive, it.ImageURL,
			it.Shipping.FreeShipping, it.Shipping.EstimatedDays).
		Suffix(`ON CONFLICT (item_id) DO UPDATE SET
			title = EXCLUDED.title, price = EXCLUDED.price, currency = EXCLUDED.currency,
			brand = EXCLUDED.brand, category = EXCLUDED.category, item_type = EXCLUDED.item_type,
			device_category = EXCLUDED.device_category, compatible_brands = EXCLUDED.compatible_brands,
			is_active = EXCLUDED.is_active, image_url = EXCLUDED.image_url,
			free_shipping = EXCLUDED.free_shipping, estimated_days = EXCLUDED.estimated_days`).
		ToSql()
	if err != nil {
		return fmt.Errorf("postgres.UpsertItem: build: %w", err)
	}
	if _, err := db.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("postgres.UpsertItem: %w", err)
	}
	return nil
}

func (db *DB) AddEvent(ctx context.Context, ev domain.UserEvent) error {
	sql, args, err := psql.Insert("user_events").
		Columns("user_id", "event_type", "item_id", "occurred_at").
		Values(ev.UserID, string(ev.EventType), ev.ItemID, ev.Timestamp.UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("postgres.AddEvent: build: %w", err)
	}
	if _, err := db.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("postgres.AddEvent: %w", err)
	}
	return nil
}

func (db *DB) AddHoliday(ctx context.Context, h domain.Holiday) error {
	sql, args, err := psql.Insert("holidays").
		Columns("name", "locale", "start_date", "end_date").
		Values(h.Name, h.Locale, h.StartDate, h.EndDate).
		Suffix("ON CONFLICT (name, locale, start_date) DO UPDATE SET end_date = EXCLUDED.end_date").
		ToSql()
	if err != nil {
		return fmt.Errorf("postgres.AddHoliday: build: %w", err)
	}
	if _, err := db.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("postgres.AddHoliday: %w", err)
	}
	return nil
}

// Seed writes a full catalog dump. Items are upserted; events are appended.
func (db *DB) Seed(ctx context.Context, items []domain.Item, events []domain.UserEvent, holidays []domain.Holiday) error {
	for _, it := range items {
		if err := db.UpsertItem(ctx, it); err != nil {
			return err
		}
	}
	for _, h := range holidays {
		if err := db.AddHoliday(ctx, h); err != nil {
			return err
		}
	}
	for _, ev := range events {
		if err := db.AddEvent(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
