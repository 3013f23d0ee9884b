package recommendation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"marketpush/internal/domain"
)

// PatternWindowDays bounds the events considered when choosing a trigger.
const PatternWindowDays = 7

// Pattern is the aggregated recent behavior of a user and the event chosen to seed
// recommendations.
type Pattern struct {
	Trigger          domain.UserEvent
	TriggerItem      domain.Item
	CategoryInterest map[string]int
	BrandInterest    map[string]int
	Viewed           map[string]struct{}
}

// BehaviorPattern picks the trigger: the latest purchase, else the latest add-to-cart,
// else the latest view inside the most viewed category. It returns nil when the user
// has no usable events.
func (s *Service) BehaviorPattern(ctx context.Context, userID string, now time.Time) (*Pattern, error) {
	events, err := s.catalog.GetUserEvents(ctx, userID, now, PatternWindowDays)
	if err != nil {
		return nil, fmt.Errorf("recommendation.BehaviorPattern: %w", err)
	}
	if len(events) == 0 {
		return nil, nil
	}
	sorted := make([]domain.UserEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp.After(sorted[j].Timestamp) })

	ids := make([]string, 0, len(sorted))
	for _, e := range sorted {
		ids = append(ids, e.ItemID)
	}
	items, err := s.catalog.GetItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("recommendation.BehaviorPattern: %w", err)
	}

	p := &Pattern{
		CategoryInterest: make(map[string]int),
		BrandInterest:    make(map[string]int),
		Viewed:           make(map[string]struct{}),
	}
	var categoryOrder []string
	for _, e := range sorted {
		if e.EventType != domain.EventView {
			continue
		}
		it, ok := items[e.ItemID]
		if !ok || !it.IsActive {
			continue
		}
		p.Viewed[e.ItemID] = struct{}{}
		if p.CategoryInterest[it.Category] == 0 {
			categoryOrder = append(categoryOrder, it.Category)
		}
		p.CategoryInterest[it.Category]++
		if it.Brand != "" {
			p.BrandInterest[it.Brand]++
		}
	}

	trigger, found := latest(sorted, domain.EventPurchase, "", items)
	if !found {
		trigger, found = latest(sorted, domain.EventAddToCart, "", items)
	}
	if !found {
		// Ties go to the category viewed most recently.
		top := ""
		for _, c := range categoryOrder {
			if top == "" || p.CategoryInterest[c] > p.CategoryInterest[top] {
				top = c
			}
		}
		trigger, found = latest(sorted, domain.EventView, top, items)
		if !found {
			trigger, found = latest(sorted, domain.EventView, "", items)
		}
	}
	if !found {
		return nil, nil
	}

	it, ok := items[trigger.ItemID]
	if !ok || !it.IsActive {
		return nil, nil
	}
	p.Trigger = trigger
	p.TriggerItem = it
	return p, nil
}

// latest returns the newest event of type et, optionally restricted to a category.
// sorted must be newest first.
func latest(sorted []domain.UserEvent, et domain.EventType, category string, items map[string]domain.Item) (domain.UserEvent, bool) {
	for _, e := range sorted {
		if e.EventType != et {
			continue
		}
		if category != "" {
			if it, ok := items[e.ItemID]; !ok || it.Category != category {
				continue
			}
		}
		return e, true
	}
	return domain.UserEvent{}, false
}
