// AngelaMos | 2026
// dto.go

package usage

import (
	"time"
)

type IncrementRequest struct {
	Field  string `json:"field"            validate:"required,max=64"`
	Amount *int   `json:"amount,omitempty" validate:"omitempty,min=0,max=100"`
}

type ConsumeRequest struct {
	Counter string `json:"counter"          validate:"required,max=64"`
	Amount  *int   `json:"amount,omitempty" validate:"omitempty,min=1,max=100"`
}

type UsageResponse struct {
	UserID           string          `json:"userId"`
	Plan             Plan            `json:"plan"`
	Counters         map[Counter]int `json:"counters"`
	Limits           LimitTable      `json:"limits"`
	LastDailyReset   time.Time       `json:"lastDailyReset"`
	LastMonthlyReset time.Time       `json:"lastMonthlyReset"`
}

type LimitsResponse struct {
	Plan   Plan       `json:"plan"`
	Limits LimitTable `json:"limits"`
}

type BatchResponse struct {
	Applied []Applied     `json:"applied"`
	Skipped []Skipped     `json:"skipped"`
	Usage   UsageResponse `json:"usage"`
}

type ResetResponse struct {
	Message string        `json:"message"`
	Reset   ResetKind     `json:"reset"`
	Usage   UsageResponse `json:"usage"`
}

func ToUsageResponse(u *Usage, limits LimitTable) UsageResponse {
	return UsageResponse{
		UserID:           u.UserID,
		Plan:             u.PlanOrFree(),
		Counters:         u.Counters(),
		Limits:           limits,
		LastDailyReset:   u.LastDailyReset,
		LastMonthlyReset: u.LastMonthlyReset,
	}
}

func resetMessage(kind ResetKind, forced bool) string {
	switch {
	case kind == ResetDaily && forced:
		return "daily usage counters reset"
	case kind == ResetMonthly && forced:
		return "monthly usage counters reset"
	case kind == ResetDaily:
		return "daily usage counters reset for the new day"
	case kind == ResetMonthly:
		return "usage counters reset for the new month"
	}
	return "usage counters are already current"
}
