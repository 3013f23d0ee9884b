package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"marketpush/internal/domain"
	"marketpush/internal/ports"
)

var itemColumns = []string{
	"item_id", "title", "price", "currency", "brand", "category", "item_type",
	"device_category", "compatible_brands", "is_active", "image_url",
	"free_shipping", "estimated_days",
}

var selectItems = "SELECT " + strings.Join(itemColumns, ", ") + " FROM items"

func scanItem(row pgx.Row) (domain.Item, error) {
	var (
		it       domain.Item
		itemType string
	)
	err := row.Scan(
		&it.ItemID, &it.Title, &it.Price, &it.Currency, &it.Brand, &it.Category, &itemType,
		&it.DeviceCategory, &it.CompatibleBrands, &it.IsActive, &it.ImageURL,
		&it.Shipping.FreeShipping, &it.Shipping.EstimatedDays,
	)
	it.ItemType = domain.ItemType(itemType)
	return it, err
}

func (db *DB) GetItem(ctx context.Context, itemID string) (domain.Item, bool, error) {
	it, err := scanItem(db.q.QueryRow(ctx, selectItems+" WHERE item_id = $1", itemID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Item{}, false, nil
	}
	if err != nil {
		return domain.Item{}, false, fmt.Errorf("postgres.GetItem: %w", err)
	}
	return it, true, nil
}

func (db *DB) GetItems(ctx context.Context, itemIDs []string) (map[string]domain.Item, error) {
	out := make(map[string]domain.Item, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}
	rows, err := db.q.Query(ctx, selectItems+" WHERE item_id = ANY($1)", itemIDs)
	if err != nil {
		return nil, fmt.Errorf("postgres.GetItems: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres.GetItems: scan: %w", err)
		}
		out[it.ItemID] = it
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres.GetItems: %w", err)
	}
	return out, nil
}

func (db *DB) IsItemValid(ctx context.Context, itemID string) (bool, error) {
	var active bool
	err := db.q.QueryRow(ctx, "SELECT is_active FROM items WHERE item_id = $1", itemID).Scan(&active)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("postgres.IsItemValid: %w", err)
	}
	return active, nil
}

// ListItems returns items in insertion order.
func (db *DB) ListItems(ctx context.Context, f ports.ItemFilter) ([]domain.Item, error) {
	q := psql.Select(itemColumns...).From("items")
	if f.ActiveOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}
	if f.ItemType != "" {
		q = q.Where(squirrel.Eq{"item_type": string(f.ItemType)})
	}
	if f.Category != "" {
		q = q.Where(squirrel.Eq{"category": f.Category})
	}
	if f.DeviceCategory != "" {
		q = q.Where(squirrel.Eq{"device_category": f.DeviceCategory})
	}
	if len(f.Brands) > 0 {
		q = q.Where(squirrel.Eq{"brand": f.Brands})
	}
	q = q.OrderBy("created_at", "item_id")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres.ListItems: build: %w", err)
	}
	rows, err := db.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres.ListItems: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres.ListItems: scan: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres.ListItems: %w", err)
	}
	return items, nil
}

func (db *DB) GetUserEvents(ctx context.Context, userID string, asOf time.Time, windowDays int) ([]domain.UserEvent, error) {
	since := asOf.AddDate(0, 0, -windowDays)
	rows, err := db.q.Query(ctx, `SELECT user_id, event_type, item_id, occurred_at
		FROM user_events
		WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
		ORDER BY occurred_at DESC`, userID, since, asOf)
	if err != nil {
		return nil, fmt.Errorf("postgres.GetUserEvents: %w", err)
	}
	defer rows.Close()

	events := make([]domain.UserEvent, 0)
	for rows.Next() {
		var (
			ev        domain.UserEvent
			eventType string
		)
		if err := rows.Scan(&ev.UserID, &eventType, &ev.ItemID, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("postgres.GetUserEvents: scan: %w", err)
		}
		ev.EventType = domain.EventType(eventType)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres.GetUserEvents: %w", err)
	}
	return events, nil
}

// ListHolidays returns holidays for locale ordered by start date; an empty locale
// returns every locale.
func (db *DB) ListHolidays(ctx context.Context, locale string) ([]domain.Holiday, error) {
	q := psql.Select("name", "locale", "start_date", "end_date").From("holidays").OrderBy("start_date", "name")
	if locale != "" {
		q = q.Where(squirrel.Eq{"locale": locale})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres.ListHolidays: build: %w", err)
	}
	rows, err := db.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres.ListHolidays: %w", err)
	}
	defer rows.Close()

	holidays := make([]domain.Holiday, 0)
	for rows.Next() {
		var h domain.Holiday
		if err := rows.Scan(&h.Name, &h.Locale, &h.StartDate, &h.EndDate); err != nil {
			return nil, fmt.Errorf("postgres.ListHolidays: scan: %w", err)
		}
		holidays = append(holidays, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres.ListHolidays: %w", err)
	}
	return holidays, nil
}

// IsHolidayValid loads the locale's holidays and applies domain.Holiday.Covers.
func (db *DB) IsHolidayValid(ctx context.Context, name string, asOf time.Time, locale string) (bool, error) {
	holidays, err := db.ListHolidays(ctx, locale)
	if err != nil {
		return false, err
	}
	for _, h := range holidays {
		if strings.EqualFold(h.Name, name) && h.Covers(asOf) {
			return true, nil
		}
	}
	return false, nil
}

var _ ports.Catalog = (*DB)(nil)
