package domain

import "time"

type Strength string

const (
	StrengthStrong Strength = "strong"
	StrengthMedium Strength = "medium"
	StrengthWeak   Strength = "weak"
)

type ItemReason struct {
	ItemID   string   `json:"itemId"`
	Title    string   `json:"title,omitempty"`
	Reason   string   `json:"reason"`
	Strength Strength `json:"strength"`
}

type BrandReason struct {
	Brand  string `json:"brand"`
	Reason string `json:"reason"`
}

type EventReason struct {
	Event    BehaviorTag `json:"event"`
	Count    int         `json:"count"`
	Reason   string      `json:"reason"`
	Strength Strength    `json:"strength"`
}

// Attribution explains why a message was produced. Push and email content share it.
// ItemStrength and BehaviorStrength are the strongest of the per-reason strengths.
type Attribution struct {
	ModelID          string        `json:"model"`
	TokenCount       *int          `json:"token,omitempty"`
	Locale           string        `json:"locale"`
	Channel          Channel       `json:"channel"`
	MaxLen           int           `json:"maxLen"`
	Claims           Claims        `json:"claims"`
	ItemReasons      []ItemReason  `json:"itemReasons"`
	BrandReasons     []BrandReason `json:"brandReasons"`
	EventReasons     []EventReason `json:"eventReasons"`
	ItemStrength     Strength      `json:"itemStrength"`
	BehaviorStrength Strength      `json:"behaviorStrength"`
	InferredIntent   string        `json:"inferredIntent"`
}

// Content is the channel-specific output of a generation flow.
type Content interface {
	ContentChannel() Channel
	Verification() *VerifyResult
}

type PushContent struct {
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	Body        string        `json:"mainText"`
	SubText     string        `json:"subText"`
	CTA         string        `json:"cta"`
	ImageURL    string        `json:"imageUrl,omitempty"`
	ItemIDs     []string      `json:"itemIds"`
	Fallback    bool          `json:"fallback,omitempty"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Attribution Attribution   `json:"attribution"`
	Verify      *VerifyResult `json:"verification,omitempty"`
}

func (p *PushContent) ContentChannel() Channel     { return ChannelPush }
func (p *PushContent) Verification() *VerifyResult { return p.Verify }

type EmailContent struct {
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	Subject     string        `json:"subject"`
	Preview     string        `json:"preview"`
	Body        string        `json:"body"`
	Bullets     []string      `json:"bullets"`
	CTA         string        `json:"cta"`
	Items       []Item        `json:"items"`
	Fallback    bool          `json:"fallback,omitempty"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Attribution Attribution   `json:"attribution"`
	Verify      *VerifyResult `json:"verification,omitempty"`
}

func (e *EmailContent) ContentChannel() Channel     { return ChannelEmail }
func (e *EmailContent) Verification() *VerifyResult { return e.Verify }

// ComposeRequest asks for a single verified message for a user on a channel.
type ComposeRequest struct {
	UserID  string   `json:"userId"`
	Channel Channel  `json:"channel"`
	Locale  string   `json:"locale,omitempty"`
	ItemIDs []string `json:"itemIds,omitempty"`
}

func (r ComposeRequest) Validate() error {
	var errs []FieldError
	if r.UserID == "" {
		errs = append(errs, FieldError{Field: "userId", Message: "required"})
	}
	if !r.Channel.IsValid() {
		errs = append(errs, FieldError{Field: "channel", Message: "must be PUSH or EMAIL"})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

type ComposeResult struct {
	Success      bool          `json:"success"`
	Channel      Channel       `json:"channel"`
	Message      string        `json:"message,omitempty"`
	Verification *VerifyResult `json:"verification,omitempty"`
	Error        string        `json:"error,omitempty"`
}
