// AngelaMos | 2026
// plan.go

package usage

import "strings"

// Plan is a subscription tier. It only changes through an explicit plan
// change, never as a side effect of usage.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanStarter Plan = "starter"
	PlanPro     Plan = "pro"
	PlanPremium Plan = "premium"
)

var allPlans = []Plan{PlanFree, PlanStarter, PlanPro, PlanPremium}

// Plans returns every recognized plan, cheapest first.
func Plans() []Plan {
	out := make([]Plan, len(allPlans))
	copy(out, allPlans)
	return out
}

func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanStarter, PlanPro, PlanPremium:
		return true
	}
	return false
}

func (p Plan) String() string {
	return string(p)
}

// ParsePlan maps a stored or client supplied plan name onto a Plan. Unknown
// names fail closed to PlanFree; ok reports whether the name was recognized.
func ParsePlan(s string) (Plan, bool) {
	p := Plan(strings.ToLower(strings.TrimSpace(s)))
	if p.Valid() {
		return p, true
	}
	return PlanFree, false
}
