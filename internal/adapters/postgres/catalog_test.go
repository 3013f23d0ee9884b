package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpush/internal/domain"
	"marketpush/internal/ports"
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *DB) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock, New(mock)
}

func itemRows() *pgxmock.Rows {
	return pgxmock.NewRows(itemColumns).
		AddRow("v1|itm|001", "Sony A7 IV", 2499.0, "USD", "Sony", "camera", "device",
			"", []string{}, true, "https://img/1.jpg", true, 2).
		AddRow("v1|itm|101", "Ulanzi Tripod", 49.0, "USD", "Ulanzi", "tripod", "accessory",
			"camera", []string{"Sony", "Canon"}, true, "", false, 5)
}

func TestGetItem(t *testing.T) {
	t.Parallel()

	mock, db := newMock(t)
	mock.ExpectQuery(`FROM items WHERE item_id = \$1`).
		WithArgs("v1|itm|001").
		WillReturnRows(pgxmock.NewRows(itemColumns).
			AddRow("v1|itm|001", "Sony A7 IV", 2499.0, "USD", "Sony", "camera", "device",
				"", []string{}, true, "", true, 2))

	it, found, err := db.GetItem(context.Background(), "v1|itm|001")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, domain.ItemTypeDevice, it.ItemType)
	assert.Equal(t, 2499.0, it.Price)
	assert.True(t, it.Shipping.FreeShipping)
	assert.Equal(t, 2, it.Shipping.EstimatedDays)
}

func TestGetItem_NotFound(t *testing.T) {
	t.Parallel()

	mock, db := newMock(t)
	mock.ExpectQuery(`FROM items WHERE item_id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, found, err := db.GetItem(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetItems(t *testing.T) {
	t.Parallel()

	mock, db := newMock(t)
	ids := []string{"v1|itm|001", "v1|itm|101"}
	mock.ExpectQuery(`WHERE item_id = ANY\(\$1\)`).
		WithArgs(ids).
		WillReturnRows(itemRows())

	got, err := db.GetItems(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"Sony", "Canon"}, got["v1|itm|101"].CompatibleBrands)
	assert.Equal(t, "camera", got["v1|itm|101"].DeviceCategory)
}

func TestGetItems_EmptySkipsQuery(t *testing.T) {
	t.Parallel()

	_, db := newMock(t)
	got, err := db.GetItems(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIsItemValid(t *testing.T) {
	t.Parallel()

	mock, db := newMock(t)
	mock.ExpectQuery(`SELECT is_active FROM items`).
		WithArgs("a").
		WillReturnRows(pgxmock.NewRows([]string{"is_active"}).AddRow(false))
	mock.ExpectQuery(`SELECT is_active FROM items`).
		WithArgs("b").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT is_active FROM items`).
		WithArgs("c").
		WillReturnError(errors.New("conn reset"))

	ctx := context.Background()
	ok, err := db.IsItemValid(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = db.IsItemValid(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = db.IsItemValid(ctx, "c")
	assert.Error(t, err)
}

func TestListItems_BuildsFilter(t *testing.T) {
	t.Parallel()

	mock, db := newMock(t)
	mock.ExpectQuery(`FROM items WHERE is_active = \$1 AND item_type = \$2 AND brand IN \(\$3,\$4\) ORDER BY created_at, item_id LIMIT 5`).
		WithArgs(true, "accessory", "Sony", "Canon").
		WillReturnRows(itemRows())

	items, err := db.ListItems(context.Background(), ports.ItemFilter{
		ActiveOnly: true,
		ItemType:   domain.ItemTypeAccessory,
		Brands:     []string{"Sony", "Canon"},
		Limit:      5,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "v1|itm|001", items[0].ItemID)
}

func TestListItems_QueryError(t *testing.T) {
	t.Parallel()

	mock, db := newMock(t)
	mock.ExpectQuery(`FROM items`).WillReturnError(errors.New("boom"))

	_, err := db.ListItems(context.Background(), ports.ItemFilter{})
	assert.ErrorContains(t, err, "postgres.ListItems")
}

func TestGetUserEvents(t *testing.T) {
	t.Parallel()

	mock, db := newMock(t)
	asOf := time.Date(2025, 11, 26, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM user_events`).
		WithArgs("user_001", asOf.AddDate(0, 0, -7), asOf).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "event_type", "item_id", "occurred_at"}).
			AddRow("user_001", "purchase", "v1|itm|001", asOf.Add(-time.Hour)).
			AddRow("user_001", "view", "v1|itm|003", asOf.Add(-48*time.Hour)))

	events, err := db.GetUserEvents(context.Background(), "user_001", asOf, 7)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventPurchase, events[0].EventType)
	assert.Equal(t, domain.EventView, events[1].EventType)
}

func TestIsHolidayValid(t *testing.T) {
	t.Parallel()

	mock, db := newMock(t)
	start := time.Date(2025, 11, 28, 0, 0, 0, 0, time.UTC)
	rows := func() *pgxmock.Rows {
		return pgxmock.NewRows([]string{"name", "locale", "start_date", "end_date"}).
			AddRow("Black Friday", "en-US", start, start)
	}
	mock.ExpectQuery(`FROM holidays WHERE locale = \$1`).WithArgs("en-US").WillReturnRows(rows())
	mock.ExpectQuery(`FROM holidays WHERE locale = \$1`).WithArgs("en-US").WillReturnRows(rows())

	ctx := context.Background()
	ok, err := db.IsHolidayValid(ctx, "black friday", start.AddDate(0, 0, -3), "en-US")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.IsHolidayValid(ctx, "Black Friday", start.AddDate(0, 0, -4), "en-US")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpsertItem(t *testing.T) {
	t.Parallel()

	mock, db := newMock(t)
	mock.ExpectExec(`INSERT INTO items .* ON CONFLICT \(item_id\) DO UPDATE`).
		WithArgs("x", "Lens", 10.0, "USD", "", "lens", "accessory", "camera", []string{},
			true, "", false, 0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := db.UpsertItem(context.Background(), domain.Item{
		ItemID: "x", Title: "Lens", Price: 10, Category: "lens",
		ItemType: domain.ItemTypeAccessory, DeviceCategory: "camera", IsActive: true,
	})
	require.NoError(t, err)
}

func TestSeed_StopsOnError(t *testing.T) {
	t.Parallel()

	mock, db := newMock(t)
	mock.ExpectExec(`INSERT INTO items`).WillReturnError(errors.New("down"))

	err := db.Seed(context.Background(),
		[]domain.Item{{ItemID: "x"}, {ItemID: "y"}},
		[]domain.UserEvent{{UserID: "u"}},
		nil,
	)
	assert.ErrorContains(t, err, "down")
}

func TestPing(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mock.Close()
	mock.ExpectPing().WillReturnError(errors.New("unreachable"))

	assert.Error(t, New(mock).Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
