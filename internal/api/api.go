// Package api exposes the resolver and the vacancy pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/leadforge/leadscout/internal/cascade"
	"github.com/leadforge/leadscout/internal/dedup"
	"github.com/leadforge/leadscout/internal/model"
	"github.com/leadforge/leadscout/internal/prefilter"
	"github.com/leadforge/leadscout/internal/source"
	"github.com/leadforge/leadscout/internal/stats"
	"github.com/leadforge/leadscout/pkg/hh"
)

// Version reported by the health endpoint.
const Version = "1.0.0"

// ContactResolver is the cascade surface the API needs.
type ContactResolver interface {
	Resolve(ctx context.Context, q source.Query) (*model.ContactRecord, error)
	ResolveBatch(ctx context.Context, queries []source.Query, concurrency int) ([]*model.ContactRecord, error)
	Stats(ctx context.Context) stats.Snapshot
	ClearCache(ctx context.Context) error
}

// VacancyProvider is the job-board surface the API needs.
type VacancyProvider interface {
	Search(ctx context.Context, params hh.SearchParams) ([]model.VacancyRecord, error)
	Vacancy(ctx context.Context, id string) (*hh.VacancyResponse, error)
}

// Server holds the API dependencies.
type Server struct {
	resolver ContactResolver
	board    VacancyProvider
	dedup    *dedup.Deduplicator
}

// NewServer creates the API server.
func NewServer(resolver ContactResolver, board VacancyProvider, d *dedup.Deduplicator) *Server {
	return &Server{
		resolver: resolver,
		board:    board,
		dedup:    d,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Post("/dedup", s.handleDedup)
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/vacancy/{id}", s.handleVacancy)
		r.Get("/regions", s.handleRegions)

		r.Route("/contacts", func(r chi.Router) {
			r.Post("/search", s.handleContactsSearch)
			r.Post("/batch", s.handleContactsBatch)
			r.Get("/stats", s.handleContactsStats)
			r.Post("/clear-cache", s.handleClearCache)
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   msg,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	type region struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	regions := make([]region, 0, len(hh.Regions))
	for name, id := range hh.Regions {
		regions = append(regions, region{ID: id, Name: name})
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].ID < regions[j].ID })
	writeJSON(w, http.StatusOK, map[string]any{"regions": regions})
}

func (s *Server) handleVacancy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v, err := s.board.Vacancy(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"vacancy": v,
	})
}

type searchRequest struct {
	Keywords       string `json:"keywords"`
	Region         int    `json:"region"`
	MinSalary      int    `json:"min_salary"`
	OnlyWithSalary *bool  `json:"only_with_salary"`
	Period         int    `json:"period"`
	ExcludedWords  string `json:"excluded_words"`
	Limit          int    `json:"limit"`
	MaxResults     int    `json:"max_results"`
}

func (req *searchRequest) applyDefaults() {
	if req.Region == 0 {
		req.Region = 1
	}
	if req.Period == 0 {
		req.Period = 7
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if req.Limit > 1000 {
		req.Limit = 1000
	}
	if req.MaxResults <= 0 || req.MaxResults > 10000 {
		req.MaxResults = 10000
	}
}

// handleSearch fetches every matching vacancy, collapses per-employer
// duplicates, and returns only the freshest postings.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Keywords) == "" {
		writeError(w, http.StatusBadRequest, "keywords is required")
		return
	}
	req.applyDefaults()

	onlyWithSalary := true
	if req.OnlyWithSalary != nil {
		onlyWithSalary = *req.OnlyWithSalary
	}

	found, err := s.board.Search(r.Context(), hh.SearchParams{
		Keywords:       req.Keywords,
		Area:           req.Region,
		Salary:         req.MinSalary,
		OnlyWithSalary: onlyWithSalary,
		PeriodDays:     req.Period,
		ExcludedText:   req.ExcludedWords,
		OrderBy:        "publication_time",
		MaxPages:       (req.MaxResults + 99) / 100,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	res := s.dedup.Run(found)
	kept := res.Kept
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].PublishedAt > kept[j].PublishedAt
	})
	if len(kept) > req.Limit {
		kept = kept[:req.Limit]
	}

	withSalary := 0
	companies := map[string]struct{}{}
	for _, v := range kept {
		if v.CompensationText != model.UnspecifiedSalary {
			withSalary++
		}
		if v.EmployerName != "" {
			companies[v.EmployerName] = struct{}{}
		}
	}
	salaryPercent := 0.0
	if len(kept) > 0 {
		salaryPercent = roundOne(float64(withSalary) / float64(len(kept)) * 100)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(kept),
		"message": "Найдено " + strconv.Itoa(len(found)) +
			" вакансий, после дедупликации " + strconv.Itoa(res.Stats.KeptVacancies) +
			", возвращено " + strconv.Itoa(len(kept)) + " самых свежих",
		"statistics": map[string]any{
			"total_found":         len(found),
			"after_deduplication": res.Stats.KeptVacancies,
			"duplicates_removed":  res.Stats.DuplicatesRemoved,
			"returned_count":      len(kept),
			"with_salary":         withSalary,
			"with_salary_percent": salaryPercent,
			"unique_companies":    len(companies),
			"search_params": map[string]any{
				"keywords":    req.Keywords,
				"region":      req.Region,
				"min_salary":  req.MinSalary,
				"period_days": req.Period,
				"limit":       req.Limit,
			},
		},
		"vacancies": kept,
	})
}

// handleDedup screens and deduplicates a caller-supplied batch.
func (s *Server) handleDedup(w http.ResponseWriter, r *http.Request) {
	var vacancies []model.VacancyRecord
	if err := json.NewDecoder(r.Body).Decode(&vacancies); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	filtered := prefilter.Filter(vacancies)
	res := s.dedup.Run(filtered.Kept)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"kept":     res.Kept,
		"removed":  res.Removed,
		"excluded": filtered.Excluded,
		"stats":    res.Stats,
	})
}

// handleAnalyze computes summary statistics over a posted batch.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var vacancies []model.VacancyRecord
	if err := json.NewDecoder(r.Body).Decode(&vacancies); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(vacancies) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "Пустой список вакансий",
		})
		return
	}

	withSalary := 0
	counts := map[string]int{}
	var salaries []int
	for _, v := range vacancies {
		if v.CompensationText != model.UnspecifiedSalary && v.CompensationText != "" {
			withSalary++
		}
		if v.EmployerName != "" {
			counts[v.EmployerName]++
		}
		if n, ok := lowerSalaryBound(v.CompensationText); ok {
			salaries = append(salaries, n)
		}
	}

	type companyCount struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	top := make([]companyCount, 0, len(counts))
	for name, n := range counts {
		top = append(top, companyCount{Name: name, Count: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Name < top[j].Name
	})
	if len(top) > 5 {
		top = top[:5]
	}

	var avgSalary any
	if len(salaries) > 0 {
		sum := 0
		for _, n := range salaries {
			sum += n
		}
		avgSalary = sum / len(salaries)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"statistics": map[string]any{
			"total":               len(vacancies),
			"with_salary":         withSalary,
			"with_salary_percent": roundOne(float64(withSalary) / float64(len(vacancies)) * 100),
			"unique_companies":    len(counts),
			"average_salary":      avgSalary,
			"top_companies":       top,
		},
	})
}

// lowerSalaryBound parses the numeric lower bound out of a display
// salary like "от 50 000 руб.".
func lowerSalaryBound(text string) (int, bool) {
	idx := strings.Index(text, "от")
	if idx < 0 {
		return 0, false
	}
	digits := strings.Builder{}
	for _, r := range text[idx:] {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

func roundOne(f float64) float64 {
	return math.Round(f*10) / 10
}

type contactsSearchRequest struct {
	CompanyName string `json:"company_name"`
	City        string `json:"city"`
	VacancyLink string `json:"vacancy_link"`
}

func (req contactsSearchRequest) query() source.Query {
	city := req.City
	if city == "" {
		city = "Москва"
	}
	return source.Query{
		Company:    req.CompanyName,
		City:       city,
		PostingURL: req.VacancyLink,
	}
}

func (s *Server) handleContactsSearch(w http.ResponseWriter, r *http.Request) {
	var req contactsSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.resolver.Resolve(r.Context(), req.query())
	if err != nil {
		if errors.Is(err, cascade.ErrEmptyCompany) {
			writeError(w, http.StatusBadRequest, "company_name is required")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"company_name":    rec.CompanyName,
		"city":            rec.City,
		"found":           rec.Found,
		"sources":         rec.Sources,
		"contacts":        rec.Contacts,
		"additional_info": rec.AdditionalInfo,
		"search_date":     rec.RetrievedAt.Format(time.RFC3339),
		"from_cache":      rec.FromCache,
	})
}

func (s *Server) handleContactsBatch(w http.ResponseWriter, r *http.Request) {
	var reqs []contactsSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(reqs) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "Пустой список компаний",
		})
		return
	}

	queries := make([]source.Query, 0, len(reqs))
	for _, req := range reqs {
		if strings.TrimSpace(req.CompanyName) == "" {
			continue
		}
		queries = append(queries, req.query())
	}

	records, err := s.resolver.ResolveBatch(r.Context(), queries, 4)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	results := make([]*model.ContactRecord, 0, len(records))
	for _, rec := range records {
		if rec != nil {
			results = append(results, rec)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(results),
		"results": results,
	})
}

func (s *Server) handleContactsStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   s.resolver.Stats(r.Context()),
	})
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if err := s.resolver.ClearCache(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Кеш очищен",
	})
}
