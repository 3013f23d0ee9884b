package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolidayCovers(t *testing.T) {
	t.Parallel()

	h := Holiday{
		Name:      "Black Friday",
		StartDate: time.Date(2025, 11, 28, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 11, 28, 0, 0, 0, 0, time.UTC),
	}
	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"before lead window", time.Date(2025, 11, 24, 23, 59, 0, 0, time.UTC), false},
		{"first lead day", time.Date(2025, 11, 25, 0, 0, 0, 0, time.UTC), true},
		{"on the day", time.Date(2025, 11, 28, 15, 0, 0, 0, time.UTC), true},
		{"trail day end", time.Date(2025, 11, 29, 23, 59, 59, 0, time.UTC), true},
		{"after trail", time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC), false},
		{"other zone folds to UTC", time.Date(2025, 11, 30, 7, 0, 0, 0, time.FixedZone("CST", 8*3600)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.Covers(tt.at))
		})
	}
}

func TestClaimsNormalize(t *testing.T) {
	t.Parallel()

	got := Claims{
		ReferencedItemIDs: []string{" a ", "", "b", "a"},
		ReferencedBrands:  []string{"Apple", "  "},
		ReferencedEvents:  []BehaviorTag{TagRecentView, " "},
		ReferencedHoliday: "  Black Friday ",
	}.Normalize()

	want := Claims{
		ReferencedItemIDs: []string{"a", "b"},
		ReferencedBrands:  []string{"Apple"},
		ReferencedEvents:  []BehaviorTag{TagRecentView},
		ReferencedHoliday: "Black Friday",
		MentionedBenefits: []string{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestClaimsNormalize_ZeroValue(t *testing.T) {
	t.Parallel()

	got := Claims{}.Normalize()
	assert.NotNil(t, got.ReferencedItemIDs)
	assert.NotNil(t, got.ReferencedBrands)
	assert.NotNil(t, got.ReferencedEvents)
	assert.NotNil(t, got.MentionedBenefits)
}

func TestClaimsRestrictItems(t *testing.T) {
	t.Parallel()

	c := Claims{ReferencedItemIDs: []string{"a", "x", "b"}}
	got := c.RestrictItems(map[string]struct{}{"a": {}, "b": {}})

	assert.Equal(t, []string{"a", "b"}, got.ReferencedItemIDs)
	assert.Equal(t, []string{"a", "x", "b"}, c.ReferencedItemIDs, "original left untouched")
}

func TestClaimsHasEvent(t *testing.T) {
	t.Parallel()

	c := Claims{ReferencedEvents: []BehaviorTag{TagRecentAddToCart}}
	assert.True(t, c.HasEvent(TagRecentAddToCart))
	assert.False(t, c.HasEvent(TagRecentPurchase))
	assert.Equal(t, EventAddToCart, TagRecentAddToCart.EventType())
	assert.Equal(t, EventType(""), BehaviorTag("recent_wishlist").EventType())
}

func TestComposeRequestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, ComposeRequest{UserID: "u1", Channel: ChannelPush}.Validate())

	err := ComposeRequest{Channel: "SMS"}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Errors, 2)
	assert.Equal(t, "validation: 2 errors", err.Error())
}

func TestQuotaStatusAllowed(t *testing.T) {
	t.Parallel()

	assert.True(t, QuotaStatus{Enforced: false, Remaining: 0}.Allowed())
	assert.True(t, QuotaStatus{Enforced: true, Remaining: 1}.Allowed())
	assert.False(t, QuotaStatus{Enforced: true, Remaining: 0}.Allowed())
}

func TestEventTypePriority(t *testing.T) {
	t.Parallel()

	assert.Greater(t, EventPurchase.Priority(), EventAddToCart.Priority())
	assert.Greater(t, EventAddToCart.Priority(), EventView.Priority())
	assert.Zero(t, EventType("click").Priority())
}

func TestItemCompatibleWith(t *testing.T) {
	t.Parallel()

	it := Item{CompatibleBrands: []string{"Apple", "Samsung"}}
	assert.True(t, it.CompatibleWith("Apple"))
	assert.False(t, it.CompatibleWith(""))
	assert.False(t, it.CompatibleWith("Google"))
	assert.Equal(t, 0.5, Scores{Fact: 1, Compliance: 0.5, Quality: 0}.Mean())
}
