// Package prefilter screens fetched vacancies before scoring: postings
// that are plainly outbound-sales roles are dropped, the rest get a 0-10
// priority hint for the deduplication scorer.
package prefilter

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/leadforge/leadscout/internal/model"
)

// All matching happens on lowercased text. Word boundaries are kept only
// around ASCII tokens; they do not work across Cyrillic letters.
var (
	// Phrases that override exclusion entirely. A posting mentioning
	// inbound work or support tooling stays in even when its title looks
	// like a sales role.
	exclusionExceptions = []string{
		"входящие заявки",
		"обработка заявок",
		"без холодных звонков",
		"теплые заявки",
		"crm",
		"битрикс",
		"amocrm",
		"чат",
		"оператор",
		"колл-центр",
		"call-центр",
		"техподдержка",
		"поддержка",
		"саппорт",
		"support",
	}

	// Titles that name an outbound-sales role outright.
	excludeTitlePatterns = compileAll(
		`менеджер.*продаж`,
		`менеджер.*по.*продаж`,
		`агент.*недвижимост`,
		`риелтор`,
		`брокер`,
		`торговый.*представител`,
		`продавец.*консультант`,
		`специалист.*продаж`,
		`коммерческий.*директор`,
		`технический.*менеджер.*продаж`,
	)

	// Description markers of outbound sales. One alone is tolerated,
	// two or more exclude the posting.
	excludeDescPatterns = compileAll(
		`холодн(ые|ых)\s+звонк`,
		`активны(е|х)\s+продаж`,
		`поиск.*клиент.*\s+продаж`,
		`привлечени(е|я)\s+клиент`,
		`встреч(и|ами).*с.*клиент.*личн`,
		`презентац(ии|ия).*продукт.*клиент`,
		`развитие.*клиентск(ой|ого)\s+баз`,
		`расширение.*клиентск(ой|ого)\s+баз`,
	)

	// Softer sales markers that lower the hint without excluding.
	reducePatterns = compileAll(
		`ведение.*переговор`,
		`заключение.*сделок`,
		`выполнение.*плана.*продаж`,
		`отдел.*продаж`,
		`воронк(а|и).*продаж`,
		`конверси(я|и).*лид`,
	)

	// Markers of process-heavy work worth automating.
	highPotentialPatterns = compileAll(
		`\b1с`,
		`\bbitrix24\b`,
		`амо\s*crm\b`,
		`\bcrm[\s-]систем`,
		`excel.*больш.*объем`,
		`обработк(а|и).*\d+.*заявок`,
		`формирование.*счет`,
		`формирование.*договор`,
		`формирование.*документ`,
		`выгрузк(а|и).*отчет`,
		`сверк(а|и).*данн`,
		`учет.*склад`,
		`работа.*с.*базами.*данн`,
		`ввод.*данн.*систем`,
		`заполнение.*форм`,
		`рутинн`,
		`повторяющ`,
		`ежедневн.*\d+`,
		`автоматизац`,
		`\bapi\b`,
		`интеграци`,
		`\bweb[\s-]сервис`,
	)
)

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

func countMatches(text string, patterns []*regexp.Regexp) int {
	n := 0
	for _, re := range patterns {
		if re.MatchString(text) {
			n++
		}
	}
	return n
}

// ShouldExclude reports whether the posting is an outright sales role,
// with a human-readable reason.
func ShouldExclude(v model.VacancyRecord) (bool, string) {
	title := strings.ToLower(v.Title)
	desc := strings.ToLower(v.DescriptionText)

	for _, exc := range exclusionExceptions {
		if strings.Contains(title, exc) || strings.Contains(desc, exc) {
			return false, ""
		}
	}

	if countMatches(title, excludeTitlePatterns) > 0 {
		short := v.Title
		if len([]rune(short)) > 100 {
			short = string([]rune(short)[:100])
		}
		return true, fmt.Sprintf("Исключено по названию: '%s'", short)
	}

	if n := countMatches(desc, excludeDescPatterns); n >= 2 {
		return true, fmt.Sprintf("Исключено: %d маркеров продаж в описании", n)
	}
	return false, ""
}

// PreScore rates the posting's automation potential on a 0-10 scale.
// 5 is neutral; soft sales markers subtract, process markers add.
func PreScore(v model.VacancyRecord) int {
	desc := strings.ToLower(v.DescriptionText)
	score := 5

	if countMatches(desc, reducePatterns) > 0 {
		score -= 2
	}

	switch n := countMatches(desc, highPotentialPatterns); {
	case n >= 5:
		score += 3
	case n >= 3:
		score += 2
	case n >= 1:
		score++
	}

	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return score
}

// Result carries the survivors and the exclusion log of one pass.
type Result struct {
	Kept     []model.VacancyRecord `json:"kept"`
	Excluded []Exclusion           `json:"excluded"`
}

// Exclusion records one dropped posting.
type Exclusion struct {
	Vacancy model.VacancyRecord `json:"vacancy"`
	Reason  string              `json:"reason"`
}

// Filter screens a batch. Survivors get their PriorityHint set.
func Filter(vacancies []model.VacancyRecord) Result {
	res := Result{
		Kept:     []model.VacancyRecord{},
		Excluded: []Exclusion{},
	}

	for _, v := range vacancies {
		if drop, reason := ShouldExclude(v); drop {
			res.Excluded = append(res.Excluded, Exclusion{Vacancy: v, Reason: reason})
			continue
		}
		hint := PreScore(v)
		v.PriorityHint = &hint
		res.Kept = append(res.Kept, v)
	}

	zap.L().Debug("prefilter pass complete",
		zap.Int("kept", len(res.Kept)),
		zap.Int("excluded", len(res.Excluded)),
	)
	return res
}
