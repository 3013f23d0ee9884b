package domain

import "time"

// Profile is the user-facing summary of recent behavior and suggested items.
type Profile struct {
	UserID          string      `json:"userId"`
	Signals         UserSignals `json:"signals"`
	RecentEvents    []UserEvent `json:"recentEvents"`
	Recommendations []Item      `json:"recommendedItems"`
}

// QuotaStatus reports the daily call budget.
type QuotaStatus struct {
	Enforced  bool      `json:"isProduction"`
	Used      int64     `json:"callCount"`
	Limit     int64     `json:"maxCalls"`
	Remaining int64     `json:"remaining"`
	Day       string    `json:"lastResetDate"`
	ResetAt   time.Time `json:"resetAt"`
}

// Allowed reports whether another call fits into today's budget.
func (s QuotaStatus) Allowed() bool {
	return !s.Enforced || s.Remaining > 0
}
