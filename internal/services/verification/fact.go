package verification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"marketpush/internal/domain"
)

// EventWindowDays is how far back a behavioral claim must be backed by an event.
const EventWindowDays = 7

// facts is the catalog evidence for one candidate, fetched before any rule runs.
type facts struct {
	events       map[domain.EventType]int
	validItems   map[string]bool
	brands       map[string]struct{} // lowercased brands of resolvable referenced items
	holidayValid bool
	degraded     bool
}

// loadFacts queries the catalog. Lookup failures are logged and count as missing
// evidence; they never abort verification.
func (s *Service) loadFacts(ctx context.Context, claims domain.Claims, vctx domain.VerifyContext) facts {
	f := facts{
		events:     make(map[domain.EventType]int),
		validItems: make(map[string]bool, len(claims.ReferencedItemIDs)),
		brands:     make(map[string]struct{}),
	}

	if len(claims.ReferencedEvents) > 0 {
		events, err := s.catalog.GetUserEvents(ctx, vctx.UserID, vctx.Now, EventWindowDays)
		if err != nil {
			s.log.WarnContext(ctx, "user events lookup failed", slog.String("user_id", vctx.UserID), slog.String("error", err.Error()))
			f.degraded = true
		}
		for _, e := range events {
			f.events[e.EventType]++
		}
	}

	for _, id := range claims.ReferencedItemIDs {
		ok, err := s.catalog.IsItemValid(ctx, id)
		if err != nil {
			s.log.WarnContext(ctx, "item validity lookup failed", slog.String("item_id", id), slog.String("error", err.Error()))
			f.degraded = true
			ok = false
		}
		f.validItems[id] = ok
	}

	if len(claims.ReferencedBrands) > 0 && len(claims.ReferencedItemIDs) > 0 {
		items, err := s.catalog.GetItems(ctx, claims.ReferencedItemIDs)
		if err != nil {
			s.log.WarnContext(ctx, "items lookup failed", slog.String("error", err.Error()))
			f.degraded = true
		}
		for _, it := range items {
			if it.Brand != "" {
				f.brands[strings.ToLower(it.Brand)] = struct{}{}
			}
		}
	}

	if claims.ReferencedHoliday != "" {
		ok, err := s.catalog.IsHolidayValid(ctx, claims.ReferencedHoliday, vctx.Now, vctx.Locale)
		if err != nil {
			s.log.WarnContext(ctx, "holiday lookup failed", slog.String("holiday", claims.ReferencedHoliday), slog.String("error", err.Error()))
			f.degraded = true
			ok = false
		}
		f.holidayValid = ok
	}
	return f
}

var factRules = []Rule{
	{Name: "user_events", Check: checkUserEvents},
	{Name: "item_validity", Check: checkItems},
	{Name: "brand_consistency", Check: checkBrands},
	{Name: "holiday_window", Check: checkHoliday},
}

func checkUserEvents(in *input) []Hit {
	var hits []Hit
	for _, tag := range domain.BehaviorTags {
		if !in.cand.Claims.HasEvent(tag) {
			continue
		}
		et := tag.EventType()
		if in.facts.events[et] > 0 {
			continue
		}
		hits = append(hits, hit(domain.FactUserEventMiss, domain.SeverityError, 0.3, string(tag),
			fmt.Sprintf("claimed %s but user has no %s event in the last %d days", tag, et, EventWindowDays)))
	}
	return hits
}

func checkItems(in *input) []Hit {
	var hits []Hit
	for _, id := range in.cand.Claims.ReferencedItemIDs {
		if in.facts.validItems[id] {
			continue
		}
		hits = append(hits, hit(domain.FactItemInvalid, domain.SeverityError, 0.5, id,
			fmt.Sprintf("item %s does not exist or is inactive", id)))
	}
	return hits
}

func checkBrands(in *input) []Hit {
	var hits []Hit
	seen := make(map[string]struct{})
	for _, brand := range in.cand.Claims.ReferencedBrands {
		key := strings.ToLower(brand)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := in.facts.brands[key]; ok {
			continue
		}
		hits = append(hits, hit(domain.FactBrandMismatch, domain.SeverityWarning, 0.15, brand,
			fmt.Sprintf("mentioned brand %q does not match the referenced items", brand)))
	}
	return hits
}

func checkHoliday(in *input) []Hit {
	name := in.cand.Claims.ReferencedHoliday
	if name == "" || in.facts.holidayValid {
		return nil
	}
	return []Hit{hit(domain.FactHolidayInvalid, domain.SeverityError, 0.2, name,
		fmt.Sprintf("holiday %q is not valid for %s on %s", name, in.vctx.Locale, in.vctx.Now.UTC().Format("2006-01-02")))}
}
