// AngelaMos | 2026
// service.go

package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/science-ai/backend/internal/core"
)

const (
	MinAmount = 0
	MaxAmount = 100

	maxResetAttempts = 3
)

const (
	ReasonUnknownCounter = "unknown counter"
	ReasonNotInteger     = "amount must be an integer"
	ReasonOutOfRange     = "amount must be between 0 and 100"
)

// Recorder receives usage events. core.Metrics satisfies it.
type Recorder interface {
	RecordUsageIncrement(ctx context.Context, counter string, amount int64)
	RecordUsageSkipped(ctx context.Context, reason string)
	RecordQuotaDenied(ctx context.Context, plan, counter string)
	RecordReset(ctx context.Context, kind string)
}

type nopRecorder struct{}

func (nopRecorder) RecordUsageIncrement(context.Context, string, int64) {}
func (nopRecorder) RecordUsageSkipped(context.Context, string)          {}
func (nopRecorder) RecordQuotaDenied(context.Context, string, string)   {}
func (nopRecorder) RecordReset(context.Context, string)                 {}

// CheckResult reports one counter against its ceiling. Remaining is -1 for
// unlimited counters.
type CheckResult struct {
	Counter   Counter `json:"counter"`
	Plan      Plan    `json:"plan"`
	Allowed   bool    `json:"allowed"`
	Current   int     `json:"current"`
	Limit     Limit   `json:"limit"`
	Remaining int     `json:"remaining"`
}

type Applied struct {
	Counter Counter `json:"counter"`
	Amount  int     `json:"amount"`
}

type Skipped struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// BatchResult reports both channels of a partially successful increment.
type BatchResult struct {
	Applied []Applied
	Skipped []Skipped
	Usage   *Usage
}

type IncrementResult struct {
	Field         Counter `json:"field"`
	PreviousValue int     `json:"previousValue"`
	NewValue      int     `json:"newValue"`
}

type Option func(*Limiter)

func WithLimits(l *Limits) Option {
	return func(s *Limiter) { s.limits = l }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Limiter) { s.loc = loc }
}

func WithClock(now func() time.Time) Option {
	return func(s *Limiter) { s.now = now }
}

func WithRecorder(r Recorder) Option {
	return func(s *Limiter) { s.recorder = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Limiter) { s.logger = l }
}

// Limiter gates and tracks per-user consumption against plan quotas.
type Limiter struct {
	repo     Repository
	limits   *Limits
	loc      *time.Location
	now      func() time.Time
	recorder Recorder
	logger   *slog.Logger
}

func NewLimiter(repo Repository, opts ...Option) *Limiter {
	s := &Limiter{
		repo:     repo,
		limits:   DefaultLimits(),
		loc:      time.UTC,
		now:      time.Now,
		recorder: nopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limits returns the effective table for plan.
func (s *Limiter) Limits(plan Plan) LimitTable {
	return s.limits.For(plan)
}

// GetUsage returns the caller's counters after any due reset.
func (s *Limiter) GetUsage(ctx context.Context, userID string) (*Usage, error) {
	u, _, err := s.ResetIfDue(ctx, userID, s.now())
	return u, err
}

// ResetIfDue applies the daily or monthly reset that now has crossed into.
// Concurrent callers race on the stored timestamp, so a boundary resets once.
func (s *Limiter) ResetIfDue(
	ctx context.Context,
	userID string,
	now time.Time,
) (*Usage, ResetKind, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, ResetNone, err
	}

	for range maxResetAttempts {
		kind := DueReset(u, now, s.loc)
		if kind == ResetNone {
			return u, ResetNone, nil
		}

		observed := u.LastDailyReset
		if kind == ResetMonthly {
			observed = u.LastMonthlyReset
		}

		updated, applied, err := s.repo.ResetIfUnchanged(ctx, userID, kind, now, observed)
		if err != nil {
			return nil, ResetNone, err
		}
		if applied {
			s.recorder.RecordReset(ctx, kind.String())
			s.logger.InfoContext(ctx, "usage counters reset",
				"user_id", userID,
				"kind", kind.String(),
			)
			return updated, kind, nil
		}

		u, err = s.repo.Get(ctx, userID)
		if err != nil {
			return nil, ResetNone, err
		}
	}

	return u, ResetNone, nil
}

// ForceReset zeroes counters regardless of the stored timestamps.
func (s *Limiter) ForceReset(
	ctx context.Context,
	userID string,
	kind ResetKind,
) (*Usage, error) {
	u, err := s.repo.ForceReset(ctx, userID, kind, s.now())
	if err != nil {
		return nil, err
	}

	s.recorder.RecordReset(ctx, kind.String())
	s.logger.InfoContext(ctx, "usage counters force reset",
		"user_id", userID,
		"kind", kind.String(),
	)

	return u, nil
}

// CheckLimit compares the current counter with the plan ceiling. Reaching
// the ceiling disallows; unlimited always allows.
func (s *Limiter) CheckLimit(
	ctx context.Context,
	userID, counterName string,
) (CheckResult, error) {
	counter, ok := ParseCounter(counterName)
	if !ok {
		return CheckResult{}, fmt.Errorf(
			"check limit: counter %q: %w",
			counterName,
			core.ErrInvalidInput,
		)
	}

	u, err := s.GetUsage(ctx, userID)
	if err != nil {
		return CheckResult{}, err
	}

	plan := u.PlanOrFree()
	limit := s.limits.For(plan).Get(counter)
	current := u.Value(counter)

	res := CheckResult{
		Counter:   counter,
		Plan:      plan,
		Allowed:   limit.Allows(current),
		Current:   current,
		Limit:     limit,
		Remaining: limit.Remaining(current),
	}
	if !res.Allowed {
		s.recorder.RecordQuotaDenied(ctx, plan.String(), counter.String())
	}

	return res, nil
}

// RecordUsage adds amount to one counter. An unknown counter or a bad
// amount is skipped and reported, never an error.
func (s *Limiter) RecordUsage(
	ctx context.Context,
	userID, counterName string,
	amount any,
) (*BatchResult, error) {
	return s.Sync(ctx, userID, map[string]any{counterName: amount})
}

// Sync applies every valid entry of increments in one atomic statement and
// reports the rest as skipped.
func (s *Limiter) Sync(
	ctx context.Context,
	userID string,
	increments map[string]any,
) (*BatchResult, error) {
	ctx, span := core.StartSpan(ctx, "usage.Sync",
		attribute.String("user.id", userID),
		attribute.Int("usage.entries", len(increments)),
	)
	defer span.End()

	names := make([]string, 0, len(increments))
	for name := range increments {
		names = append(names, name)
	}
	sort.Strings(names)

	pending := make(map[Counter]int, len(increments))
	res := &BatchResult{
		Applied: []Applied{},
		Skipped: []Skipped{},
	}

	for _, name := range names {
		counter, ok := ParseCounter(name)
		if !ok {
			res.Skipped = append(res.Skipped, Skipped{Name: name, Reason: ReasonUnknownCounter})
			continue
		}
		amount, reason := normalizeAmount(increments[name])
		if reason != "" {
			res.Skipped = append(res.Skipped, Skipped{Name: name, Reason: reason})
			continue
		}
		pending[counter] += amount
	}

	for _, sk := range res.Skipped {
		s.recorder.RecordUsageSkipped(ctx, sk.Reason)
		s.logger.DebugContext(ctx, "usage entry skipped",
			"user_id", userID,
			"name", sk.Name,
			"reason", sk.Reason,
		)
	}

	u, _, err := s.ResetIfDue(ctx, userID, s.now())
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	var deltas []Delta
	for _, c := range allCounters {
		amount, ok := pending[c]
		if !ok {
			continue
		}
		res.Applied = append(res.Applied, Applied{Counter: c, Amount: amount})
		if amount > 0 {
			deltas = append(deltas, Delta{Counter: c, Amount: amount})
		}
	}

	if len(deltas) > 0 {
		u, err = s.repo.Increment(ctx, userID, deltas)
		if err != nil {
			core.SetSpanError(ctx, err)
			return nil, err
		}
		for _, d := range deltas {
			s.recorder.RecordUsageIncrement(ctx, d.Counter.String(), int64(d.Amount))
		}
	}

	res.Usage = u
	return res, nil
}

// Increment is the strict single-field variant: a bad field or amount is a
// client error instead of a skip.
func (s *Limiter) Increment(
	ctx context.Context,
	userID, field string,
	amount int,
) (*IncrementResult, error) {
	counter, ok := ParseCounter(field)
	if !ok {
		return nil, fmt.Errorf("increment: field %q: %w", field, core.ErrInvalidInput)
	}
	if amount < MinAmount || amount > MaxAmount {
		return nil, fmt.Errorf("increment: amount %d: %w", amount, core.ErrInvalidInput)
	}

	u, _, err := s.ResetIfDue(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}

	if amount > 0 {
		u, err = s.repo.Increment(ctx, userID, []Delta{{Counter: counter, Amount: amount}})
		if err != nil {
			return nil, err
		}
		s.recorder.RecordUsageIncrement(ctx, counter.String(), int64(amount))
	}

	newValue := u.Value(counter)
	return &IncrementResult{
		Field:         counter,
		PreviousValue: newValue - amount,
		NewValue:      newValue,
	}, nil
}

// CheckAndConsume atomically increments counter only when the result stays
// within the plan ceiling, closing the gap between CheckLimit and RecordUsage.
func (s *Limiter) CheckAndConsume(
	ctx context.Context,
	userID, counterName string,
	amount int,
) (CheckResult, error) {
	counter, ok := ParseCounter(counterName)
	if !ok {
		return CheckResult{}, fmt.Errorf(
			"check and consume: counter %q: %w",
			counterName,
			core.ErrInvalidInput,
		)
	}
	if amount < 1 || amount > MaxAmount {
		return CheckResult{}, fmt.Errorf(
			"check and consume: amount %d: %w",
			amount,
			core.ErrInvalidInput,
		)
	}

	ctx, span := core.StartSpan(ctx, "usage.CheckAndConsume",
		attribute.String("user.id", userID),
		attribute.String("usage.counter", counter.String()),
	)
	defer span.End()

	u, _, err := s.ResetIfDue(ctx, userID, s.now())
	if err != nil {
		core.SetSpanError(ctx, err)
		return CheckResult{}, err
	}

	plan := u.PlanOrFree()
	limit := s.limits.For(plan).Get(counter)

	updated, ok, err := s.repo.IncrementWithin(ctx, userID, counter, amount, limit)
	if err != nil {
		core.SetSpanError(ctx, err)
		return CheckResult{}, err
	}

	if ok {
		s.recorder.RecordUsageIncrement(ctx, counter.String(), int64(amount))
		return CheckResult{
			Counter:   counter,
			Plan:      plan,
			Allowed:   true,
			Current:   updated.Value(counter),
			Limit:     limit,
			Remaining: limit.Remaining(updated.Value(counter)),
		}, nil
	}

	current, err := s.repo.Get(ctx, userID)
	if err != nil {
		return CheckResult{}, err
	}

	s.recorder.RecordQuotaDenied(ctx, plan.String(), counter.String())
	core.AddSpanEvent(ctx, "quota denied")

	return CheckResult{
		Counter:   counter,
		Plan:      plan,
		Allowed:   false,
		Current:   current.Value(counter),
		Limit:     limit,
		Remaining: limit.Remaining(current.Value(counter)),
	}, nil
}

// normalizeAmount accepts JSON-decoded and native numerics. The returned
// reason is empty when the amount is usable.
func normalizeAmount(v any) (int, string) {
	var f float64

	switch n := v.(type) {
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, ReasonNotInteger
		}
		f = parsed
	default:
		return 0, ReasonNotInteger
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, ReasonNotInteger
	}
	if f < MinAmount || f > MaxAmount {
		return 0, ReasonOutOfRange
	}

	return int(f), ""
}
