// AngelaMos | 2026
// entity.go

package usage

import (
	"time"
)

// Usage is the per-user counter record stored alongside the user row.
type Usage struct {
	UserID string `db:"id"`
	Plan   string `db:"plan"`

	PresentationsCreated        int `db:"presentations_created"`
	AcademicWorksCreated        int `db:"academic_works_created"`
	AcademicGenerationsToday    int `db:"academic_generations_today"`
	ChatMessagesToday           int `db:"chat_messages_today"`
	DalleImagesUsed             int `db:"dalle_images_used"`
	PlagiarismChecksUsed        int `db:"plagiarism_checks_used"`
	DissertationGenerationsUsed int `db:"dissertation_generations_used"`
	LargeChapterGenerationsUsed int `db:"large_chapter_generations_used"`

	LastDailyReset   time.Time `db:"last_daily_reset"`
	LastMonthlyReset time.Time `db:"last_monthly_reset"`
}

// PlanOrFree resolves the stored plan, failing closed to PlanFree.
func (u *Usage) PlanOrFree() Plan {
	p, _ := ParsePlan(u.Plan)
	return p
}

func (u *Usage) field(c Counter) *int {
	switch c {
	case CounterPresentations:
		return &u.PresentationsCreated
	case CounterAcademicWorks:
		return &u.AcademicWorksCreated
	case CounterAcademicGenerations:
		return &u.AcademicGenerationsToday
	case CounterChatMessages:
		return &u.ChatMessagesToday
	case CounterDalleImages:
		return &u.DalleImagesUsed
	case CounterPlagiarismChecks:
		return &u.PlagiarismChecksUsed
	case CounterDissertationGeneration:
		return &u.DissertationGenerationsUsed
	case CounterLargeChapterGeneration:
		return &u.LargeChapterGenerationsUsed
	}
	return nil
}

// Value returns the counter's current value, or 0 for names off the allow-list.
func (u *Usage) Value(c Counter) int {
	if p := u.field(c); p != nil {
		return *p
	}
	return 0
}

// Counters snapshots every counter keyed by wire name.
func (u *Usage) Counters() map[Counter]int {
	out := make(map[Counter]int, len(allCounters))
	for _, c := range allCounters {
		out[c] = u.Value(c)
	}
	return out
}
