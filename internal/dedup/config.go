// Package dedup collapses job postings to one per employer, keeping the
// posting a lead-qualification scorer ranks highest.
package dedup

import "time"

// ScorerConfig holds the scoring weights and keyword table.
type ScorerConfig struct {
	// PriorityKeywords earn TitleKeywordBonus per hit in the title and
	// DescKeywordBonus per hit in the description. Matching is
	// case-insensitive substring.
	PriorityKeywords []string

	BaseScore        int
	HintMultiplier   int
	TitleKeywordBonus int
	DescKeywordBonus int

	// SalaryBonus applies when the compensation text names the target
	// currency.
	SalaryBonus     int
	CurrencyMarker  string
	LongDescBonus   int
	LongDescChars   int
	MediumDescBonus int
	MediumDescChars int

	CurrentMonthBonus  int
	PreviousMonthBonus int

	// Now is injectable so the recency window is testable. Nil means
	// time.Now.
	Now func() time.Time
}

// DefaultScorerConfig returns the standard weights with the given
// keyword table. An empty table falls back to the built-in keywords.
func DefaultScorerConfig(keywords []string) ScorerConfig {
	if len(keywords) == 0 {
		keywords = DefaultPriorityKeywords()
	}
	return ScorerConfig{
		PriorityKeywords:   keywords,
		BaseScore:          50,
		HintMultiplier:     10,
		TitleKeywordBonus:  20,
		DescKeywordBonus:   5,
		SalaryBonus:        10,
		CurrencyMarker:     "руб",
		LongDescBonus:      10,
		LongDescChars:      1000,
		MediumDescBonus:    5,
		MediumDescChars:    500,
		CurrentMonthBonus:  15,
		PreviousMonthBonus: 10,
	}
}

// DefaultPriorityKeywords lists the phrases that mark a posting as
// relevant to inbound-request handling.
func DefaultPriorityKeywords() []string {
	return []string{
		"входящие заявки",
		"обработка заявок",
		"crm",
		"битрикс",
		"amocrm",
		"чат",
		"оператор",
		"менеджер по работе с клиентами",
		"support",
		"техподдержка",
		"колл-центр",
	}
}
