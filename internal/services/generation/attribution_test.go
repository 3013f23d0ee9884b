package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpush/internal/domain"
)

func TestBuildAttribution(t *testing.T) {
	t.Parallel()

	items := map[string]domain.Item{
		"v1|itm|001": {ItemID: "v1|itm|001", Title: "Alpha Camera", Brand: "Sony"},
		"v1|itm|002": {ItemID: "v1|itm|002", Title: "Travel Tripod", Brand: "Ulanzi"},
	}
	sig := domain.UserSignals{RecentView: 6, RecentPurchase: 1, Tags: []string{"camera"}, FavoriteBrands: []string{"Sony"}}
	c := domain.Candidate{
		Text: "Complete your Sony kit",
		Claims: domain.Claims{
			ReferencedItemIDs: []string{"v1|itm|001", "v1|itm|002", "v1|itm|404"},
			ReferencedBrands:  []string{"Sony", "Ulanzi"},
			ReferencedEvents:  []domain.BehaviorTag{domain.TagRecentView, domain.TagRecentAddToCart, "wishlist"},
		},
		ModelID: "gemini-2.5-flash",
	}
	vctx := domain.VerifyContext{Channel: domain.ChannelPush, Locale: domain.LocaleEnUS, Constraints: domain.Constraints{MaxLen: 90}}

	a := buildAttribution(c, vctx, sig, items)

	assert.Equal(t, "gemini-2.5-flash", a.ModelID)
	assert.Equal(t, 90, a.MaxLen)

	require.Len(t, a.ItemReasons, 3)
	assert.Equal(t, "Recommended based on user's Sony purchase history", a.ItemReasons[0].Reason)
	assert.Equal(t, domain.StrengthStrong, a.ItemReasons[0].Strength)
	assert.Equal(t, "Recommended based on user's recent purchase behavior", a.ItemReasons[1].Reason)
	assert.Equal(t, "Recommended item", a.ItemReasons[2].Reason)
	assert.Equal(t, domain.StrengthStrong, a.ItemStrength)

	require.Len(t, a.BrandReasons, 2)
	assert.Equal(t, "Sony is user's preferred brand", a.BrandReasons[0].Reason)
	assert.Equal(t, "Ulanzi recommended based on user's purchase behavior", a.BrandReasons[1].Reason)

	require.Len(t, a.EventReasons, 3)
	assert.Equal(t, "User frequently viewed items (6x)", a.EventReasons[0].Reason)
	assert.Equal(t, 6, a.EventReasons[0].Count)
	assert.Equal(t, "User has add-to-cart behavior", a.EventReasons[1].Reason)
	assert.Equal(t, domain.StrengthMedium, a.EventReasons[1].Strength)
	assert.Equal(t, "User behavior: wishlist", a.EventReasons[2].Reason)
	assert.Equal(t, domain.StrengthStrong, a.BehaviorStrength)

	assert.Equal(t, "Buy more Sony products", a.InferredIntent)
}

func TestInferIntent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		sig    domain.UserSignals
		brands []string
		want   string
	}{
		{"purchase favorite brand", domain.UserSignals{RecentPurchase: 1, FavoriteBrands: []string{"Sony"}}, []string{"Sony"}, "Buy more Sony products"},
		{"purchase other brand", domain.UserSignals{RecentPurchase: 1}, []string{"Bose"}, "Buy accessories or related products from Bose"},
		{"purchase no brand", domain.UserSignals{RecentPurchase: 2}, nil, "Continue purchasing related items"},
		{"cart", domain.UserSignals{RecentAddToCart: 1, RecentView: 9}, nil, "Complete cart purchase"},
		{"heavy browsing with tags", domain.UserSignals{RecentView: 5, Tags: []string{"drone"}}, nil, "Purchase drone related items"},
		{"heavy browsing", domain.UserSignals{RecentView: 5}, nil, "Purchase viewed items"},
		{"light browsing", domain.UserSignals{RecentView: 1}, nil, "Explore items of interest"},
		{"new user", domain.UserSignals{}, nil, "Discover new items"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, inferIntent(tt.sig, tt.brands), tt.name)
	}
}
