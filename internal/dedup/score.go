package dedup

import (
	"strings"
	"time"

	"github.com/leadforge/leadscout/internal/model"
)

// Score rates one posting. Higher is better. The absolute value only
// matters relative to other postings of the same employer.
func (c ScorerConfig) Score(v model.VacancyRecord) int {
	title := strings.ToLower(v.Title)
	desc := strings.ToLower(v.DescriptionText)

	score := c.BaseScore
	if v.PriorityHint != nil {
		score = *v.PriorityHint * c.HintMultiplier
	}

	for _, kw := range c.PriorityKeywords {
		kw = strings.ToLower(kw)
		if strings.Contains(title, kw) {
			score += c.TitleKeywordBonus
		}
		if strings.Contains(desc, kw) {
			score += c.DescKeywordBonus
		}
	}

	if v.CompensationText != "" && v.CompensationText != model.UnspecifiedSalary &&
		strings.Contains(v.CompensationText, c.CurrencyMarker) {
		score += c.SalaryBonus
	}

	switch n := len([]rune(desc)); {
	case n > c.LongDescChars:
		score += c.LongDescBonus
	case n > c.MediumDescChars:
		score += c.MediumDescBonus
	}

	score += c.recencyBonus(v.PublishedAt)
	return score
}

// recencyBonus rewards postings published in the current or previous
// calendar month. Published dates arrive as RFC 3339 or any prefix of
// it; the year-month prefix is all that is compared.
func (c ScorerConfig) recencyBonus(publishedAt string) int {
	if len(publishedAt) < 7 {
		return 0
	}

	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}

	// Step back from the first of the month so a day-31 "now" cannot
	// normalize into the same month.
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	current := first.Format("2006-01")
	previous := first.AddDate(0, -1, 0).Format("2006-01")

	switch {
	case strings.HasPrefix(publishedAt, current):
		return c.CurrentMonthBonus
	case strings.HasPrefix(publishedAt, previous):
		return c.PreviousMonthBonus
	}
	return 0
}
