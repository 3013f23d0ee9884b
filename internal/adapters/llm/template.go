package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"marketpush/internal/domain"
	"marketpush/internal/ports"
)

const templateModel = "template"

// Template writes deterministic copy from the items and signals. It is used when no
// model is configured and never makes a network call.
type Template struct{}

func NewTemplate() *Template { return &Template{} }

func (*Template) Name() string { return templateModel }

func (t *Template) Generate(_ context.Context, req ports.GenerateRequest) ([]domain.Candidate, error) {
	if req.N <= 0 || len(req.Items) == 0 {
		return nil, nil
	}
	out := make([]domain.Candidate, 0, req.N)
	for i := 0; i < req.N; i++ {
		if req.Channel == domain.ChannelEmail {
			out = append(out, emailTemplate(req, i))
		} else {
			out = append(out, pushTemplate(req, i))
		}
	}
	return out, nil
}

type pushVariant struct {
	en, zh string
	claim  func(*domain.Claims, ports.GenerateRequest) bool
}

var pushVariants = []pushVariant{
	{
		en: "Still deciding? %s goes great with what's in your cart!",
		zh: "还在犹豫？%s和你购物车里的宝贝很配！",
		claim: func(c *domain.Claims, r ports.GenerateRequest) bool {
			if r.Signals.RecentAddToCart == 0 {
				return false
			}
			c.ReferencedEvents = append(c.ReferencedEvents, domain.TagRecentAddToCart)
			return true
		},
	},
	{
		en: "%s deals are live: %s is ready for you!",
		zh: "%s特惠进行中：%s为你准备好了！",
		claim: func(c *domain.Claims, r ports.GenerateRequest) bool {
			if len(r.Holidays) == 0 {
				return false
			}
			c.ReferencedHoliday = r.Holidays[0].Name
			return true
		},
	},
	{
		en: "%s ships free. Treat yourself today!",
		zh: "%s包邮到家，今天就犒劳自己吧！",
		claim: func(c *domain.Claims, r ports.GenerateRequest) bool {
			if !r.Items[0].Shipping.FreeShipping {
				return false
			}
			c.MentionedBenefits = append(c.MentionedBenefits, "free shipping")
			return true
		},
	},
}

const (
	plainPushEN = "Picked for you: %s. Take a look!"
	plainPushZH = "为你精选：%s，快来看看！"
)

// pushTemplate renders variant i, falling back to plain copy when the variant's
// claim has no backing data.
func pushTemplate(req ports.GenerateRequest, i int) domain.Candidate {
	primary := req.Items[0]
	claims := domain.Claims{ReferencedItemIDs: []string{primary.ItemID}}
	if primary.Brand != "" {
		claims.ReferencedBrands = []string{primary.Brand}
	}

	zh := req.Locale == domain.LocaleZhCN
	name := fitName(primary, req.Constraints.MaxLen, zh)
	v := pushVariants[i%len(pushVariants)]

	var text string
	if v.claim(&claims, req) {
		format := v.en
		if zh {
			format = v.zh
		}
		if claims.ReferencedHoliday != "" {
			text = fmt.Sprintf(format, claims.ReferencedHoliday, name)
		} else {
			text = fmt.Sprintf(format, name)
		}
	} else if zh {
		text = fmt.Sprintf(plainPushZH, name)
	} else {
		text = fmt.Sprintf(plainPushEN, name)
	}
	return domain.Candidate{Text: text, Claims: claims.Normalize(), ModelID: templateModel}
}

// fitName uses the title when it leaves room for the surrounding copy, else the
// brand and category.
func fitName(it domain.Item, maxLen int, zh bool) string {
	budget := maxLen / 3
	if budget <= 0 || utf8.RuneCountInString(it.Title) <= budget {
		return it.Title
	}
	short := strings.TrimSpace(it.Brand + " " + it.Category)
	if zh {
		short = strings.TrimSpace(it.Brand + it.Category)
	}
	if short == "" {
		return string([]rune(it.Title)[:budget])
	}
	return short
}

var emailSubjects = []string{
	"Picked for you: %s",
	"Still thinking about %s?",
}

func emailTemplate(req ports.GenerateRequest, i int) domain.Candidate {
	items := req.Items
	if len(items) > 3 {
		items = items[:3]
	}
	claims := domain.Claims{}
	var bullets []string
	seen := make(map[string]bool)
	for _, it := range items {
		claims.ReferencedItemIDs = append(claims.ReferencedItemIDs, it.ItemID)
		if it.Brand != "" && !seen[it.Brand] {
			seen[it.Brand] = true
			claims.ReferencedBrands = append(claims.ReferencedBrands, it.Brand)
		}
		line := it.Title
		if it.Shipping.FreeShipping {
			line += " (free shipping)"
			if len(claims.MentionedBenefits) == 0 {
				claims.MentionedBenefits = append(claims.MentionedBenefits, "free shipping")
			}
		}
		bullets = append(bullets, line)
	}

	primary := items[0]
	subject := fmt.Sprintf(emailSubjects[i%len(emailSubjects)], primary.Title)
	body := fmt.Sprintf("We picked %s and a few more items we think you will like.", primary.Title)
	if req.Signals.RecentView > 0 {
		claims.ReferencedEvents = append(claims.ReferencedEvents, domain.TagRecentView)
		body = fmt.Sprintf("Based on what you have been browsing, we picked %s and a few more items for you.", primary.Title)
	}
	if len(req.Holidays) > 0 && i%2 == 1 {
		claims.ReferencedHoliday = req.Holidays[0].Name
		body += fmt.Sprintf(" Celebrate %s with something new.", req.Holidays[0].Name)
	}

	return domain.Candidate{
		Text:    body,
		Claims:  claims.Normalize(),
		ModelID: templateModel,
		Subject: subject,
		Preview: "A few picks chosen for you",
		Body:    body,
		Bullets: bullets,
		CTA:     "Shop Now",
	}
}
