package model

// UnspecifiedSalary is the sentinel the job-board client emits when a
// posting carries no compensation data.
const UnspecifiedSalary = "Не указана"

// VacancyRecord is a single job posting as produced by the fetch layer.
// The deduplicator reads it and attaches DuplicateCount and DedupScore to
// the winning record of each employer group; all other fields are
// read-only once created.
type VacancyRecord struct {
	ID               string `json:"id"`
	Title            string `json:"название"`
	EmployerName     string `json:"компания"`
	CompensationText string `json:"оплата"`
	DescriptionText  string `json:"описание"`
	PostingURL       string `json:"ссылка"`
	ExperienceLevel  string `json:"опыт"`
	EmploymentType   string `json:"тип_занятости"`
	PublishedAt      string `json:"дата_публикации"`

	// PriorityHint is the optional 0-10 pre-filter score assigned
	// upstream. Nil means no hint; the dedup scorer falls back to its
	// flat baseline.
	PriorityHint *int `json:"_pre_score,omitempty"`

	// Set on group winners only.
	DuplicateCount int `json:"_duplicates_count,omitempty"`
	DedupScore     int `json:"_dedup_score,omitempty"`
}

// RemovalRecord describes a vacancy dropped by deduplication, naming the
// winner that was kept in its place.
type RemovalRecord struct {
	Vacancy   VacancyRecord `json:"vacancy"`
	Reason    string        `json:"reason"`
	KeptID    string        `json:"kept_vacancy_id"`
	KeptTitle string        `json:"kept_vacancy_title"`
}
