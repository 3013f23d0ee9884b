package recommendation

import (
	"math"
	"sort"

	"marketpush/internal/domain"
)

type scored struct {
	item  domain.Item
	score int
}

// rank keeps positive scores, sorts them descending (stable) and returns at most n items.
func rank(pool []domain.Item, n int, score func(domain.Item) int) []domain.Item {
	var s []scored
	for _, it := range pool {
		if v := score(it); v > 0 {
			s = append(s, scored{item: it, score: v})
		}
	}
	sort.SliceStable(s, func(i, j int) bool { return s[i].score > s[j].score })
	if len(s) > n {
		s = s[:n]
	}
	out := make([]domain.Item, 0, len(s))
	for _, v := range s {
		out = append(out, v.item)
	}
	return out
}

func accessoriesFor(device domain.Item, pool []domain.Item, n int) []domain.Item {
	return rank(pool, n, func(it domain.Item) int {
		if it.ItemType != domain.ItemTypeAccessory || it.ItemID == device.ItemID {
			return 0
		}
		return ScoreAccessory(it, device)
	})
}

func similarDevices(device domain.Item, pool []domain.Item, n int) []domain.Item {
	return rank(pool, n, func(it domain.Item) int {
		if it.ItemType != domain.ItemTypeDevice || it.ItemID == device.ItemID {
			return 0
		}
		return ScoreSimilarDevice(it, device)
	})
}

// relatedAccessories keeps pool order. match decides relatedness.
func relatedAccessories(trigger domain.Item, pool []domain.Item, n int, match func(it domain.Item) bool) []domain.Item {
	var out []domain.Item
	for _, it := range pool {
		if len(out) == n {
			break
		}
		if it.ItemType != domain.ItemTypeAccessory || it.ItemID == trigger.ItemID {
			continue
		}
		if match(it) {
			out = append(out, it)
		}
	}
	return out
}

func sameNonEmpty(a, b string) bool { return a != "" && a == b }

func sharesBrand(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// strategy selects items for a trigger. pool holds active catalog items.
//
//	purchase of a device     -> accessories for it
//	purchase of an accessory -> related accessories
//	view / add to cart       -> similar devices (60%) plus accessories (40%),
//	                            or similar accessories when the trigger is one
func strategy(trigger domain.UserEvent, item domain.Item, pool []domain.Item, limit int) []domain.Item {
	var out []domain.Item
	switch {
	case trigger.EventType == domain.EventPurchase && item.ItemType == domain.ItemTypeDevice:
		out = accessoriesFor(item, pool, limit)
	case trigger.EventType == domain.EventPurchase:
		out = relatedAccessories(item, pool, limit, func(it domain.Item) bool {
			return sameNonEmpty(it.DeviceCategory, item.DeviceCategory) ||
				sameNonEmpty(it.Brand, item.Brand) ||
				sharesBrand(it.CompatibleBrands, item.CompatibleBrands)
		})
	case item.ItemType == domain.ItemTypeDevice:
		out = append(out, similarDevices(item, pool, int(math.Ceil(float64(limit)*0.6)))...)
		out = append(out, accessoriesFor(item, pool, int(math.Ceil(float64(limit)*0.4)))...)
	default:
		out = relatedAccessories(item, pool, limit, func(it domain.Item) bool {
			return sameNonEmpty(it.Category, item.Category) ||
				sameNonEmpty(it.Brand, item.Brand) ||
				sameNonEmpty(it.DeviceCategory, item.DeviceCategory)
		})
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// dedupeViewed drops items the user already looked at. View triggers keep viewed
// items from the trigger's category since the user is comparing them. When too few
// remain the undeduped list wins.
func dedupeViewed(recs []domain.Item, p *Pattern, limit int) []domain.Item {
	browsing := p.Trigger.EventType == domain.EventView
	fresh := make([]domain.Item, 0, len(recs))
	for _, it := range recs {
		if _, seen := p.Viewed[it.ItemID]; !seen || (browsing && it.Category == p.TriggerItem.Category) {
			fresh = append(fresh, it)
		}
	}
	if float64(len(fresh)) < float64(limit)/2 {
		return recs
	}
	return fresh
}
