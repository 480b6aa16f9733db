// AngelaMos | 2026
// counter.go

package usage

// Counter names a resettable consumption counter. The string values are the
// names clients send on the wire.
type Counter string

const (
	CounterPresentations          Counter = "presentationsCreated"
	CounterAcademicWorks          Counter = "academicWorksCreated"
	CounterAcademicGenerations    Counter = "academicGenerationsToday"
	CounterChatMessages           Counter = "chatMessagesToday"
	CounterDalleImages            Counter = "dalleImagesUsed"
	CounterPlagiarismChecks       Counter = "plagiarismChecksUsed"
	CounterDissertationGeneration Counter = "dissertationGenerationsUsed"
	CounterLargeChapterGeneration Counter = "largeChapterGenerationsUsed"
)

// allCounters is the increment allow-list, in storage column order.
var allCounters = []Counter{
	CounterPresentations,
	CounterAcademicWorks,
	CounterAcademicGenerations,
	CounterChatMessages,
	CounterDalleImages,
	CounterPlagiarismChecks,
	CounterDissertationGeneration,
	CounterLargeChapterGeneration,
}

var dailyCounters = []Counter{
	CounterAcademicGenerations,
	CounterChatMessages,
}

var counterColumns = map[Counter]string{
	CounterPresentations:          "presentations_created",
	CounterAcademicWorks:          "academic_works_created",
	CounterAcademicGenerations:    "academic_generations_today",
	CounterChatMessages:           "chat_messages_today",
	CounterDalleImages:            "dalle_images_used",
	CounterPlagiarismChecks:       "plagiarism_checks_used",
	CounterDissertationGeneration: "dissertation_generations_used",
	CounterLargeChapterGeneration: "large_chapter_generations_used",
}

// ParseCounter reports whether name is on the allow-list.
func ParseCounter(name string) (Counter, bool) {
	c := Counter(name)
	_, ok := counterColumns[c]
	return c, ok
}

func (c Counter) String() string {
	return string(c)
}

func (c Counter) column() string {
	return counterColumns[c]
}
