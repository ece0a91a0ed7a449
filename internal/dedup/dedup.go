package dedup

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leadforge/leadscout/internal/model"
	"github.com/leadforge/leadscout/internal/normalize"
)

// Deduplicator groups postings by normalized employer name and keeps the
// highest-scoring posting per group.
type Deduplicator struct {
	cfg ScorerConfig
}

// Stats summarizes one deduplication pass.
type Stats struct {
	TotalVacancies    int `json:"total_vacancies"`
	UniqueCompanies   int `json:"unique_companies"`
	DuplicatesRemoved int `json:"duplicates_removed"`
	KeptVacancies     int `json:"kept_vacancies"`
}

// Result carries the survivors, the removal log, and the pass summary.
type Result struct {
	Kept    []model.VacancyRecord `json:"kept"`
	Removed []model.RemovalRecord `json:"removed"`
	Stats   Stats                 `json:"stats"`
}

// New creates a deduplicator with the given scorer configuration.
func New(cfg ScorerConfig) *Deduplicator {
	return &Deduplicator{cfg: cfg}
}

// Run deduplicates a batch. Survivors keep the input's first-seen
// employer order; within a group, ties go to the earlier posting.
// Postings with no employer name never group with anything and pass
// through untouched.
func (d *Deduplicator) Run(vacancies []model.VacancyRecord) Result {
	groups := make(map[string][]model.VacancyRecord)
	var order []string

	for _, v := range vacancies {
		key := normalize.Company(v.EmployerName)
		if key == "" {
			key = "_no_company_" + uuid.New().String()
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], v)
	}

	res := Result{
		Kept:    []model.VacancyRecord{},
		Removed: []model.RemovalRecord{},
	}

	for _, key := range order {
		group := groups[key]
		if len(group) == 1 {
			res.Kept = append(res.Kept, group[0])
			continue
		}

		bestIdx := 0
		bestScore := d.cfg.Score(group[0])
		for i := 1; i < len(group); i++ {
			if s := d.cfg.Score(group[i]); s > bestScore {
				bestIdx = i
				bestScore = s
			}
		}

		best := group[bestIdx]
		best.DuplicateCount = len(group) - 1
		best.DedupScore = bestScore
		res.Kept = append(res.Kept, best)

		for i, v := range group {
			if i == bestIdx {
				continue
			}
			res.Removed = append(res.Removed, model.RemovalRecord{
				Vacancy:   v,
				Reason:    fmt.Sprintf("Дубликат компании '%s' (оставлена лучшая)", v.EmployerName),
				KeptID:    best.ID,
				KeptTitle: best.Title,
			})
		}
	}

	res.Stats = Stats{
		TotalVacancies:    len(vacancies),
		UniqueCompanies:   len(order),
		DuplicatesRemoved: len(res.Removed),
		KeptVacancies:     len(res.Kept),
	}

	zap.L().Debug("dedup pass complete",
		zap.Int("total", res.Stats.TotalVacancies),
		zap.Int("kept", res.Stats.KeptVacancies),
		zap.Int("removed", res.Stats.DuplicatesRemoved),
	)
	return res
}
