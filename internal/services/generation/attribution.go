package generation

import (
	"fmt"

	"marketpush/internal/domain"
)

const unknownIntent = "unknown"

func rank(s domain.Strength) int {
	switch s {
	case domain.StrengthStrong:
		return 3
	case domain.StrengthMedium:
		return 2
	case domain.StrengthWeak:
		return 1
	}
	return 0
}

func stronger(a, b domain.Strength) domain.Strength {
	if rank(b) > rank(a) {
		return b
	}
	return a
}

// buildAttribution explains each claim of the chosen copy against the user's signals.
// items must hold the referenced items that exist in the catalog.
func buildAttribution(cand domain.Candidate, vctx domain.VerifyContext, sig domain.UserSignals, items map[string]domain.Item) domain.Attribution {
	a := domain.Attribution{
		ModelID:      cand.ModelID,
		TokenCount:   cand.TokenCount,
		Locale:       vctx.Locale,
		Channel:      vctx.Channel,
		MaxLen:       vctx.Constraints.MaxLen,
		Claims:       cand.Claims.Normalize(),
		ItemReasons:  []domain.ItemReason{},
		BrandReasons: []domain.BrandReason{},
		EventReasons: []domain.EventReason{},
	}
	for _, id := range a.Claims.ReferencedItemIDs {
		r := itemReason(id, items, sig)
		a.ItemStrength = stronger(a.ItemStrength, r.Strength)
		a.ItemReasons = append(a.ItemReasons, r)
	}
	for _, b := range a.Claims.ReferencedBrands {
		a.BrandReasons = append(a.BrandReasons, domain.BrandReason{Brand: b, Reason: brandReason(b, sig)})
	}
	for _, tag := range a.Claims.ReferencedEvents {
		r := eventReason(tag, sig)
		a.BehaviorStrength = stronger(a.BehaviorStrength, r.Strength)
		a.EventReasons = append(a.EventReasons, r)
	}
	a.InferredIntent = inferIntent(sig, a.Claims.ReferencedBrands)
	return a
}

// fallbackAttribution carries no claims and no reasons.
func fallbackAttribution(vctx domain.VerifyContext) domain.Attribution {
	return domain.Attribution{
		ModelID:        fallbackModel,
		Locale:         vctx.Locale,
		Channel:        vctx.Channel,
		MaxLen:         vctx.Constraints.MaxLen,
		Claims:         domain.Claims{}.Normalize(),
		ItemReasons:    []domain.ItemReason{},
		BrandReasons:   []domain.BrandReason{},
		EventReasons:   []domain.EventReason{},
		InferredIntent: unknownIntent,
	}
}

// itemReason relies on overall signals; the catalog has no per-item history.
func itemReason(id string, items map[string]domain.Item, sig domain.UserSignals) domain.ItemReason {
	it, ok := items[id]
	if !ok {
		return domain.ItemReason{ItemID: id, Reason: "Recommended item", Strength: domain.StrengthWeak}
	}
	r := domain.ItemReason{ItemID: id, Title: it.Title}
	switch {
	case it.Brand != "" && sig.HasFavoriteBrand(it.Brand) && sig.RecentPurchase > 0:
		r.Reason, r.Strength = fmt.Sprintf("Recommended based on user's %s purchase history", it.Brand), domain.StrengthStrong
	case it.Brand != "" && sig.HasFavoriteBrand(it.Brand):
		r.Reason, r.Strength = fmt.Sprintf("User prefers %s brand", it.Brand), domain.StrengthMedium
	case sig.RecentPurchase > 0:
		r.Reason, r.Strength = "Recommended based on user's recent purchase behavior", domain.StrengthMedium
	case sig.RecentAddToCart > 0:
		r.Reason, r.Strength = "Recommended based on user's shopping cart activity", domain.StrengthMedium
	case sig.RecentView >= 3:
		r.Reason, r.Strength = "Recommended based on user's browsing behavior", domain.StrengthWeak
	default:
		r.Reason, r.Strength = "Recommended by algorithm", domain.StrengthWeak
	}
	return r
}

func brandReason(brand string, sig domain.UserSignals) string {
	switch {
	case sig.HasFavoriteBrand(brand):
		return fmt.Sprintf("%s is user's preferred brand", brand)
	case sig.RecentPurchase > 0:
		return fmt.Sprintf("%s recommended based on user's purchase behavior", brand)
	default:
		return fmt.Sprintf("%s brand recommendation", brand)
	}
}

func eventReason(tag domain.BehaviorTag, sig domain.UserSignals) domain.EventReason {
	r := domain.EventReason{Event: tag}
	switch tag {
	case domain.TagRecentView:
		r.Count = sig.RecentView
		if r.Count >= 5 {
			r.Reason, r.Strength = fmt.Sprintf("User frequently viewed items (%dx)", r.Count), domain.StrengthStrong
		} else {
			r.Reason, r.Strength = "User viewed items", domain.StrengthMedium
		}
	case domain.TagRecentAddToCart:
		r.Count = sig.RecentAddToCart
		if r.Count > 0 {
			r.Reason, r.Strength = fmt.Sprintf("User added items to cart (%d items)", r.Count), domain.StrengthStrong
		} else {
			r.Reason, r.Strength = "User has add-to-cart behavior", domain.StrengthMedium
		}
	case domain.TagRecentPurchase:
		r.Count = sig.RecentPurchase
		if r.Count > 0 {
			r.Reason, r.Strength = fmt.Sprintf("User purchased items (%d items)", r.Count), domain.StrengthStrong
		} else {
			r.Reason, r.Strength = "User has purchase intent", domain.StrengthMedium
		}
	default:
		r.Reason, r.Strength = fmt.Sprintf("User behavior: %s", tag), domain.StrengthWeak
	}
	return r
}

func inferIntent(sig domain.UserSignals, brands []string) string {
	switch {
	case sig.RecentPurchase > 0 && len(brands) > 0 && sig.HasFavoriteBrand(brands[0]):
		return fmt.Sprintf("Buy more %s products", brands[0])
	case sig.RecentPurchase > 0 && len(brands) > 0:
		return fmt.Sprintf("Buy accessories or related products from %s", brands[0])
	case sig.RecentPurchase > 0:
		return "Continue purchasing related items"
	case sig.RecentAddToCart > 0:
		return "Complete cart purchase"
	case sig.RecentView >= 5 && len(sig.Tags) > 0:
		return fmt.Sprintf("Purchase %s related items", sig.Tags[0])
	case sig.RecentView >= 5:
		return "Purchase viewed items"
	case sig.RecentView > 0:
		return "Explore items of interest"
	default:
		return "Discover new items"
	}
}
