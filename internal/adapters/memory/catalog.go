// Package memory is an in-process catalog used for local runs, demos and tests.
package memory

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"marketpush/internal/domain"
	"marketpush/internal/ports"
)

//go:embed seed.yaml
var defaultSeed []byte

// Catalog holds items, events and holidays in memory. It is safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	items    map[string]domain.Item
	order    []string
	events   map[string][]domain.UserEvent
	holidays []domain.Holiday
}

func NewCatalog() *Catalog {
	return &Catalog{
		items:  make(map[string]domain.Item),
		events: make(map[string][]domain.UserEvent),
	}
}

// NewSeeded returns a catalog loaded with the embedded demo data. Event times are
// placed relative to now so the demo users always have recent behavior.
func NewSeeded(now time.Time) (*Catalog, error) {
	c := NewCatalog()
	if err := c.LoadSeed(defaultSeed, now); err != nil {
		return nil, err
	}
	return c, nil
}

// PutItem inserts or replaces an item. Listing order is first insertion order.
func (c *Catalog) PutItem(it domain.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[it.ItemID]; !ok {
		c.order = append(c.order, it.ItemID)
	}
	c.items[it.ItemID] = it
}

func (c *Catalog) AddEvent(e domain.UserEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events[e.UserID] = append(c.events[e.UserID], e)
}

func (c *Catalog) AddHoliday(h domain.Holiday) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.holidays = append(c.holidays, h)
}

func (c *Catalog) GetItem(_ context.Context, itemID string) (domain.Item, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.items[itemID]
	return it, ok, nil
}

func (c *Catalog) GetItems(_ context.Context, itemIDs []string) (map[string]domain.Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]domain.Item, len(itemIDs))
	for _, id := range itemIDs {
		if it, ok := c.items[id]; ok {
			out[id] = it
		}
	}
	return out, nil
}

func (c *Catalog) IsItemValid(_ context.Context, itemID string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.items[itemID]
	return ok && it.IsActive, nil
}

func (c *Catalog) ListItems(_ context.Context, f ports.ItemFilter) ([]domain.Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Item, 0, len(c.order))
	for _, id := range c.order {
		it := c.items[id]
		if !matches(it, f) {
			continue
		}
		out = append(out, it)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func matches(it domain.Item, f ports.ItemFilter) bool {
	switch {
	case f.ActiveOnly && !it.IsActive:
		return false
	case f.ItemType != "" && it.ItemType != f.ItemType:
		return false
	case f.Category != "" && it.Category != f.Category:
		return false
	case f.DeviceCategory != "" && it.DeviceCategory != f.DeviceCategory:
		return false
	}
	if len(f.Brands) == 0 {
		return true
	}
	for _, b := range f.Brands {
		if b == it.Brand {
			return true
		}
	}
	return false
}

// GetUserEvents returns events in [asOf-windowDays, asOf], newest first.
func (c *Catalog) GetUserEvents(_ context.Context, userID string, asOf time.Time, windowDays int) ([]domain.UserEvent, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	from := asOf.AddDate(0, 0, -windowDays)
	var out []domain.UserEvent
	for _, e := range c.events[userID] {
		if e.Timestamp.Before(from) || e.Timestamp.After(asOf) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// IsHolidayValid matches the name case-insensitively within the locale.
func (c *Catalog) IsHolidayValid(_ context.Context, name string, asOf time.Time, locale string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, h := range c.holidays {
		if h.Locale == locale && strings.EqualFold(h.Name, name) && h.Covers(asOf) {
			return true, nil
		}
	}
	return false, nil
}

func (c *Catalog) ListHolidays(_ context.Context, locale string) ([]domain.Holiday, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Holiday, 0, len(c.holidays))
	for _, h := range c.holidays {
		if locale == "" || h.Locale == locale {
			out = append(out, h)
		}
	}
	return out, nil
}

func (c *Catalog) Ping(context.Context) error { return nil }

// Events returns every stored event grouped by user, users in sorted order.
func (c *Catalog) Events() []domain.UserEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	users := make([]string, 0, len(c.events))
	for u := range c.events {
		users = append(users, u)
	}
	sort.Strings(users)
	var out []domain.UserEvent
	for _, u := range users {
		out = append(out, c.events[u]...)
	}
	return out
}

// ---------------------------------------------------------------------------
// Seed file
// ---------------------------------------------------------------------------

type seedFile struct {
	Items    []seedItem             `yaml:"items"`
	Events   map[string][]seedEvent `yaml:"events"`
	Holidays []seedHoliday          `yaml:"holidays"`
}

type seedItem struct {
	ID             string   `yaml:"id"`
	Title          string   `yaml:"title"`
	Price          float64  `yaml:"price"`
	Currency       string   `yaml:"currency"`
	Brand          string   `yaml:"brand"`
	Category       string   `yaml:"category"`
	Type           string   `yaml:"type"`
	DeviceCategory string   `yaml:"device_category"`
	Compatible     []string `yaml:"compatible"`
	Image          string   `yaml:"image"`
	FreeShipping   bool     `yaml:"free_shipping"`
	Days           int      `yaml:"days"`
	Inactive       bool     `yaml:"inactive"`
}

type seedEvent struct {
	Type string        `yaml:"type"`
	Item string        `yaml:"item"`
	Ago  time.Duration `yaml:"ago"`
}

type seedHoliday struct {
	Name   string `yaml:"name"`
	Start  string `yaml:"start"`
	End    string `yaml:"end"`
	Locale string `yaml:"locale"`
}

// LoadSeed adds the items, events and holidays described by a YAML seed document.
func (c *Catalog) LoadSeed(data []byte, now time.Time) error {
	var s seedFile
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("memory: parse seed: %w", err)
	}
	for _, it := range s.Items {
		currency := it.Currency
		if currency == "" {
			currency = "USD"
		}
		c.PutItem(domain.Item{
			ItemID:           it.ID,
			Title:            it.Title,
			Price:            it.Price,
			Currency:         currency,
			Brand:            it.Brand,
			Category:         it.Category,
			ItemType:         domain.ItemType(it.Type),
			DeviceCategory:   it.DeviceCategory,
			CompatibleBrands: it.Compatible,
			IsActive:         !it.Inactive,
			ImageURL:         it.Image,
			Shipping:         domain.Shipping{FreeShipping: it.FreeShipping, EstimatedDays: it.Days},
		})
	}
	for user, events := range s.Events {
		for _, e := range events {
			c.AddEvent(domain.UserEvent{
				UserID:    user,
				EventType: domain.EventType(e.Type),
				ItemID:    e.Item,
				Timestamp: now.Add(-e.Ago),
			})
		}
	}
	for _, h := range s.Holidays {
		start, err := time.Parse(time.DateOnly, h.Start)
		if err != nil {
			return fmt.Errorf("memory: holiday %q start: %w", h.Name, err)
		}
		end, err := time.Parse(time.DateOnly, h.End)
		if err != nil {
			return fmt.Errorf("memory: holiday %q end: %w", h.Name, err)
		}
		c.AddHoliday(domain.Holiday{Name: h.Name, Locale: h.Locale, StartDate: start, EndDate: end})
	}
	return nil
}
