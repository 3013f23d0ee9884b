package domain

import "strings"

// BehaviorTag is a behavioral assertion a message can make about the user.
type BehaviorTag string

const (
	TagRecentView      BehaviorTag = "recent_view"
	TagRecentAddToCart BehaviorTag = "recent_add_to_cart"
	TagRecentPurchase  BehaviorTag = "recent_purchase"
)

// BehaviorTags lists the known tags in canonical order.
var BehaviorTags = []BehaviorTag{TagRecentView, TagRecentAddToCart, TagRecentPurchase}

// EventType returns the event type that backs the tag, or "" for unknown tags.
func (t BehaviorTag) EventType() EventType {
	switch t {
	case TagRecentView:
		return EventView
	case TagRecentAddToCart:
		return EventAddToCart
	case TagRecentPurchase:
		return EventPurchase
	default:
		return ""
	}
}

// Claims are the structured assertions a candidate message makes.
type Claims struct {
	ReferencedItemIDs []string      `json:"referenced_item_ids"`
	ReferencedBrands  []string      `json:"referenced_brands"`
	ReferencedEvents  []BehaviorTag `json:"referenced_events"`
	ReferencedHoliday string        `json:"referenced_holiday,omitempty"`
	MentionedBenefits []string      `json:"mentioned_benefits"`
}

// HasEvent reports whether the claims reference tag.
func (c Claims) HasEvent(tag BehaviorTag) bool {
	for _, t := range c.ReferencedEvents {
		if t == tag {
			return true
		}
	}
	return false
}

// Normalize returns a copy with blank entries removed, duplicate item ids dropped
// and nil slices replaced by empty ones. Missing claims are never an error.
func (c Claims) Normalize() Claims {
	out := Claims{
		ReferencedItemIDs: make([]string, 0, len(c.ReferencedItemIDs)),
		ReferencedBrands:  make([]string, 0, len(c.ReferencedBrands)),
		ReferencedEvents:  make([]BehaviorTag, 0, len(c.ReferencedEvents)),
		ReferencedHoliday: strings.TrimSpace(c.ReferencedHoliday),
		MentionedBenefits: make([]string, 0, len(c.MentionedBenefits)),
	}
	seen := make(map[string]struct{}, len(c.ReferencedItemIDs))
	for _, id := range c.ReferencedItemIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out.ReferencedItemIDs = append(out.ReferencedItemIDs, id)
	}
	for _, b := range c.ReferencedBrands {
		if b = strings.TrimSpace(b); b != "" {
			out.ReferencedBrands = append(out.ReferencedBrands, b)
		}
	}
	for _, t := range c.ReferencedEvents {
		if t = BehaviorTag(strings.TrimSpace(string(t))); t != "" {
			out.ReferencedEvents = append(out.ReferencedEvents, t)
		}
	}
	for _, b := range c.MentionedBenefits {
		if b = strings.TrimSpace(b); b != "" {
			out.MentionedBenefits = append(out.MentionedBenefits, b)
		}
	}
	return out
}

// RestrictItems returns a copy whose item ids are limited to the allowed set.
// Ids outside the set are dropped silently.
func (c Claims) RestrictItems(allowed map[string]struct{}) Claims {
	out := c.Normalize()
	kept := out.ReferencedItemIDs[:0]
	for _, id := range out.ReferencedItemIDs {
		if _, ok := allowed[id]; ok {
			kept = append(kept, id)
		}
	}
	out.ReferencedItemIDs = kept
	return out
}

// Candidate is one generated message variant.
type Candidate struct {
	Text       string `json:"text"`
	Claims     Claims `json:"claims"`
	ModelID    string `json:"model"`
	TokenCount *int   `json:"token,omitempty"`

	// Email-only parts. Text carries the body for verification.
	Subject string   `json:"subject,omitempty"`
	Preview string   `json:"preview,omitempty"`
	Body    string   `json:"body,omitempty"`
	Bullets []string `json:"bullets,omitempty"`
	CTA     string   `json:"cta,omitempty"`
}
