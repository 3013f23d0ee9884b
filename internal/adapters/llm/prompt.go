package llm

import (
	"fmt"
	"strings"

	"marketpush/internal/domain"
	"marketpush/internal/ports"
)

const pushSchema = `{
  "text": "the final push notification text",
  "claims": {
    "referenced_item_ids": ["v1|itm|xxx"],
    "referenced_brands": ["brand"],
    "referenced_events": ["recent_view", "recent_add_to_cart", "recent_purchase"],
    "referenced_holiday": "holiday name or null",
    "mentioned_benefits": ["free shipping"]
  }
}`

const emailSchema = `{
  "subject": "email subject line",
  "preview": "short preview line shown in the inbox",
  "body": "main email text, plain text, no HTML",
  "bullets": ["optional bullet"],
  "cta": "call to action such as Shop Now",
  "claims": {
    "referenced_item_ids": ["v1|itm|xxx"],
    "referenced_brands": ["brand"],
    "referenced_events": ["recent_view", "recent_add_to_cart", "recent_purchase"],
    "referenced_holiday": "holiday name or null",
    "mentioned_benefits": ["free shipping"]
  }
}`

func systemPrompt(ch domain.Channel, c domain.Constraints) string {
	var b strings.Builder
	if ch == domain.ChannelPush {
		b.WriteString("You are an e-commerce push notification copy generator.\n")
	} else {
		b.WriteString("You are an e-commerce marketing email generator.\n")
	}
	b.WriteString("Your output MUST be a valid JSON object and nothing else.\n\n")

	if ch == domain.ChannelPush {
		b.WriteString("The first recommended item is the PRIMARY item. Only mention the PRIMARY item; " +
			"no secondary items. It MUST appear in referenced_item_ids.\n\n")
	}

	b.WriteString("Return ONLY a JSON object with this schema:\n")
	if ch == domain.ChannelPush {
		b.WriteString(pushSchema)
	} else {
		b.WriteString(emailSchema)
	}
	b.WriteString("\n\nRULES:\n")
	b.WriteString("- Do NOT add explanations, markdown or code fences.\n")
	b.WriteString("- Use EXACT item ids from the Recommended Items section. Do NOT invent products.\n")
	b.WriteString("- Every claim MUST reference data given in the user context.\n")
	if ch == domain.ChannelPush {
		fmt.Fprintf(&b, "- \"text\" must be under %d characters.\n", c.MaxLen)
	} else {
		fmt.Fprintf(&b, "- \"body\" must be under %d characters, one or two short paragraphs.\n", c.MaxLen)
	}
	if c.NoURL {
		b.WriteString("- Do NOT include URLs.\n")
	} else {
		b.WriteString("- URLs are allowed.\n")
	}
	if c.NoPrice {
		b.WriteString("- Do NOT include explicit prices.\n")
	} else {
		b.WriteString("- Prices may be mentioned when helpful.\n")
	}
	if ch == domain.ChannelPush {
		b.WriteString("- Tone: short, energetic, personalized. Create curiosity or urgency.\n")
	} else {
		b.WriteString("- Tone: warm, persuasive, personalized, helpful.\n")
	}
	return b.String()
}

// userContext summarizes signals for the prompt, "New user" when there are none.
func userContext(s domain.UserSignals) string {
	var parts []string
	if s.RecentView > 0 {
		parts = append(parts, fmt.Sprintf("Viewed %d items in the last 7 days", s.RecentView))
	}
	if s.RecentAddToCart > 0 {
		parts = append(parts, fmt.Sprintf("Added %d items to cart", s.RecentAddToCart))
	}
	if s.RecentPurchase > 0 {
		parts = append(parts, fmt.Sprintf("Purchased %d items", s.RecentPurchase))
	}
	if len(s.Tags) > 0 {
		parts = append(parts, "Interested in: "+strings.Join(head(s.Tags, 3), ", "))
	}
	if len(s.FavoriteBrands) > 0 {
		parts = append(parts, "Favorite brands: "+strings.Join(head(s.FavoriteBrands, 3), ", "))
	}
	if len(parts) == 0 {
		return "New user"
	}
	return strings.Join(parts, "; ")
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// buildPrompt renders the full single-turn prompt for req.
func buildPrompt(req ports.GenerateRequest) string {
	var b strings.Builder
	b.WriteString(systemPrompt(req.Channel, req.Constraints))

	fmt.Fprintf(&b, "\nLocale: %s\n", req.Locale)
	b.WriteString("\n[User Profile]\n")
	b.WriteString(userContext(req.Signals))
	b.WriteString("\n\n[Recommended Items]\n")
	for _, it := range req.Items {
		fmt.Fprintf(&b, "Item ID: %s\n", it.ItemID)
		if it.Brand != "" {
			fmt.Fprintf(&b, "[%s] ", it.Brand)
		}
		fmt.Fprintf(&b, "%s - %.2f %s", it.Title, it.Price, it.Currency)
		if it.Shipping.FreeShipping {
			b.WriteString(" (free shipping)")
		}
		b.WriteString("\n\n")
	}
	if len(req.Holidays) > 0 {
		names := make([]string, len(req.Holidays))
		for i, h := range req.Holidays {
			names[i] = h.Name
		}
		fmt.Fprintf(&b, "Current promotions: %s\n\n", strings.Join(names, ", "))
	}

	b.WriteString("IMPORTANT: referenced_item_ids must use the complete item ids above (format v1|itm|xxx), never product names.\n")
	b.WriteString("IMPORTANT: return ONLY the JSON object.")
	return b.String()
}
