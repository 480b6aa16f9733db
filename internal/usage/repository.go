// AngelaMos | 2026
// repository.go

package usage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/science-ai/backend/internal/core"
)

// Delta is one pending increment.
type Delta struct {
	Counter Counter
	Amount  int
}

// Repository persists usage counters. Every mutation is a single UPDATE so
// concurrent requests never lose increments.
type Repository interface {
	Get(ctx context.Context, userID string) (*Usage, error)
	// ResetIfUnchanged applies kind only while the guarding reset timestamp
	// still equals observed. applied is false when another request won.
	ResetIfUnchanged(
		ctx context.Context,
		userID string,
		kind ResetKind,
		at, observed time.Time,
	) (u *Usage, applied bool, err error)
	ForceReset(
		ctx context.Context,
		userID string,
		kind ResetKind,
		at time.Time,
	) (*Usage, error)
	Increment(ctx context.Context, userID string, deltas []Delta) (*Usage, error)
	// IncrementWithin adds amount only if the result stays within limit.
	// ok is false when the ceiling would be crossed or the user is missing.
	IncrementWithin(
		ctx context.Context,
		userID string,
		counter Counter,
		amount int,
		limit Limit,
	) (u *Usage, ok bool, err error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

var usageColumns = func() string {
	cols := []string{"id", "plan"}
	for _, c := range allCounters {
		cols = append(cols, c.column())
	}
	cols = append(cols, "last_daily_reset", "last_monthly_reset")
	return strings.Join(cols, ", ")
}()

func (r *repository) Get(ctx context.Context, userID string) (*Usage, error) {
	query := `
		SELECT ` + usageColumns + `
		FROM users
		WHERE id = $1 AND deleted_at IS NULL`

	var u Usage
	err := r.db.GetContext(ctx, &u, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get usage: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get usage: %w", err)
	}

	return &u, nil
}

func resetAssignments(kind ResetKind) string {
	var sets []string
	for _, c := range countersFor(kind) {
		sets = append(sets, c.column()+" = 0")
	}
	sets = append(sets, "last_daily_reset = $2")
	if kind == ResetMonthly {
		sets = append(sets, "last_monthly_reset = $2")
	}
	sets = append(sets, "updated_at = NOW()")
	return strings.Join(sets, ", ")
}

func resetGuardColumn(kind ResetKind) string {
	if kind == ResetMonthly {
		return "last_monthly_reset"
	}
	return "last_daily_reset"
}

func (r *repository) ResetIfUnchanged(
	ctx context.Context,
	userID string,
	kind ResetKind,
	at, observed time.Time,
) (*Usage, bool, error) {
	if kind != ResetDaily && kind != ResetMonthly {
		return nil, false, fmt.Errorf("reset usage: kind %q: %w", kind, core.ErrInvalidInput)
	}

	query := `
		UPDATE users
		SET ` + resetAssignments(kind) + `
		WHERE id = $1 AND deleted_at IS NULL AND ` + resetGuardColumn(kind) + ` = $3
		RETURNING ` + usageColumns

	var u Usage
	err := r.db.GetContext(ctx, &u, query, userID, at, observed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reset usage: %w", err)
	}

	return &u, true, nil
}

func (r *repository) ForceReset(
	ctx context.Context,
	userID string,
	kind ResetKind,
	at time.Time,
) (*Usage, error) {
	if kind != ResetDaily && kind != ResetMonthly {
		return nil, fmt.Errorf("force reset: kind %q: %w", kind, core.ErrInvalidInput)
	}

	query := `
		UPDATE users
		SET ` + resetAssignments(kind) + `
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + usageColumns

	var u Usage
	err := r.db.GetContext(ctx, &u, query, userID, at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("force reset: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("force reset: %w", err)
	}

	return &u, nil
}

func (r *repository) Increment(
	ctx context.Context,
	userID string,
	deltas []Delta,
) (*Usage, error) {
	if len(deltas) == 0 {
		return r.Get(ctx, userID)
	}

	sets := make([]string, 0, len(deltas)+1)
	args := make([]any, 0, len(deltas)+1)
	args = append(args, userID)

	for i, d := range deltas {
		col := d.Counter.column()
		if col == "" {
			return nil, fmt.Errorf(
				"increment usage: counter %q: %w",
				d.Counter,
				core.ErrInvalidInput,
			)
		}
		sets = append(sets, fmt.Sprintf("%s = %s + $%d", col, col, i+2))
		args = append(args, d.Amount)
	}
	sets = append(sets, "updated_at = NOW()")

	query := `
		UPDATE users
		SET ` + strings.Join(sets, ", ") + `
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + usageColumns

	var u Usage
	err := r.db.GetContext(ctx, &u, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("increment usage: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("increment usage: %w", err)
	}

	return &u, nil
}

func (r *repository) IncrementWithin(
	ctx context.Context,
	userID string,
	counter Counter,
	amount int,
	limit Limit,
) (*Usage, bool, error) {
	col := counter.column()
	if col == "" {
		return nil, false, fmt.Errorf(
			"consume usage: counter %q: %w",
			counter,
			core.ErrInvalidInput,
		)
	}

	if limit.IsUnlimited() {
		u, err := r.Increment(ctx, userID, []Delta{{Counter: counter, Amount: amount}})
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return nil, false, nil
			}
			return nil, false, err
		}
		return u, true, nil
	}

	query := fmt.Sprintf(`
		UPDATE users
		SET %s = %s + $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND %s + $2 <= $3
		RETURNING %s`,
		col, col, col, usageColumns)

	var u Usage
	err := r.db.GetContext(ctx, &u, query, userID, amount, int(limit))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("consume usage: %w", err)
	}

	return &u, true, nil
}
