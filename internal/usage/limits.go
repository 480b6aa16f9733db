// AngelaMos | 2026
// limits.go

package usage

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Limit is a counter ceiling. Unlimited is the only negative value.
type Limit int

const Unlimited Limit = -1

const unlimitedLabel = "unlimited"

func (l Limit) IsUnlimited() bool {
	return l < 0
}

// Allows reports whether current is still below the ceiling. A counter that
// has reached its limit is exhausted.
func (l Limit) Allows(current int) bool {
	return l.IsUnlimited() || current < int(l)
}

// Remaining is -1 for unlimited counters.
func (l Limit) Remaining(current int) int {
	if l.IsUnlimited() {
		return -1
	}
	if r := int(l) - current; r > 0 {
		return r
	}
	return 0
}

func (l Limit) String() string {
	if l.IsUnlimited() {
		return unlimitedLabel
	}
	return strconv.Itoa(int(l))
}

func (l Limit) MarshalJSON() ([]byte, error) {
	if l.IsUnlimited() {
		return json.Marshal(unlimitedLabel)
	}
	return json.Marshal(int(l))
}

func (l *Limit) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != unlimitedLabel {
			return fmt.Errorf("invalid limit %q", s)
		}
		*l = Unlimited
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid limit: %w", err)
	}
	if n < 0 {
		*l = Unlimited
		return nil
	}
	*l = Limit(n)
	return nil
}

// LimitTable holds a ceiling for every counter.
type LimitTable map[Counter]Limit

func (t LimitTable) Get(c Counter) Limit {
	if l, ok := t[c]; ok {
		return l
	}
	return 0
}

func (t LimitTable) clone() LimitTable {
	out := make(LimitTable, len(t))
	for c, l := range t {
		out[c] = l
	}
	return out
}

var defaultTables = map[Plan]LimitTable{
	PlanFree: {
		CounterPresentations:          2,
		CounterAcademicWorks:          1,
		CounterAcademicGenerations:    3,
		CounterChatMessages:           10,
		CounterDalleImages:            0,
		CounterPlagiarismChecks:       0,
		CounterDissertationGeneration: 0,
		CounterLargeChapterGeneration: 0,
	},
	PlanStarter: {
		CounterPresentations:          10,
		CounterAcademicWorks:          5,
		CounterAcademicGenerations:    20,
		CounterChatMessages:           100,
		CounterDalleImages:            20,
		CounterPlagiarismChecks:       5,
		CounterDissertationGeneration: 0,
		CounterLargeChapterGeneration: 2,
	},
	PlanPro: {
		CounterPresentations:          50,
		CounterAcademicWorks:          20,
		CounterAcademicGenerations:    50,
		CounterChatMessages:           500,
		CounterDalleImages:            100,
		CounterPlagiarismChecks:       20,
		CounterDissertationGeneration: 1,
		CounterLargeChapterGeneration: 10,
	},
	PlanPremium: {
		CounterPresentations:          Unlimited,
		CounterAcademicWorks:          Unlimited,
		CounterAcademicGenerations:    Unlimited,
		CounterChatMessages:           Unlimited,
		CounterDalleImages:            500,
		CounterPlagiarismChecks:       100,
		CounterDissertationGeneration: 5,
		CounterLargeChapterGeneration: 50,
	},
}

// Limits is the immutable plan -> limit table mapping used by a Limiter.
type Limits struct {
	tables map[Plan]LimitTable
}

// DefaultLimits returns the built-in plan table.
func DefaultLimits() *Limits {
	tables := make(map[Plan]LimitTable, len(defaultTables))
	for p, t := range defaultTables {
		tables[p] = t.clone()
	}
	return &Limits{tables: tables}
}

// NewLimits applies configuration overrides (plan -> counter -> ceiling) on top
// of the built-in table. Unknown plans or counters are rejected so a typo in
// configuration cannot silently leave a plan on the defaults.
func NewLimits(overrides map[string]map[string]int) (*Limits, error) {
	l := DefaultLimits()

	for planName, counters := range overrides {
		plan, ok := ParsePlan(planName)
		if !ok {
			return nil, fmt.Errorf("limits: unknown plan %q", planName)
		}
		for counterName, ceiling := range counters {
			counter, ok := ParseCounter(counterName)
			if !ok {
				return nil, fmt.Errorf(
					"limits: unknown counter %q for plan %q",
					counterName,
					planName,
				)
			}
			if ceiling < 0 {
				l.tables[plan][counter] = Unlimited
				continue
			}
			l.tables[plan][counter] = Limit(ceiling)
		}
	}

	return l, nil
}

// For returns a copy of the table for plan, falling back to the free table
// for anything unrecognized.
func (l *Limits) For(plan Plan) LimitTable {
	if t, ok := l.tables[plan]; ok {
		return t.clone()
	}
	return l.tables[PlanFree].clone()
}

// GetLimits looks up the built-in table for a plan name.
func GetLimits(plan string) LimitTable {
	p, _ := ParsePlan(plan)
	return defaultTables[p].clone()
}
