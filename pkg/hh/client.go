// Package hh provides a client for the HeadHunter public vacancies API.
package hh

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/leadforge/leadscout/internal/model"
)

// Regions maps well-known area names to job-board area identifiers.
var Regions = map[string]int{
	"москва":          1,
	"санкт-петербург": 2,
	"екатеринбург":    3,
	"новосибирск":     4,
	"нижний новгород": 66,
	"казань":          88,
	"россия":          113,
}

// Client defines the job-board operations.
type Client interface {
	// Vacancy fetches a single posting with its full description.
	Vacancy(ctx context.Context, id string) (*VacancyResponse, error)
	// Search pages through the vacancy search endpoint, fetching full
	// details for every hit, and returns normalized records.
	Search(ctx context.Context, params SearchParams) ([]model.VacancyRecord, error)
}

// VacancyResponse is the raw posting resource.
type VacancyResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	AlternateURL string    `json:"alternate_url"`
	PublishedAt  string    `json:"published_at"`
	Salary       *Salary   `json:"salary"`
	Employer     Employer  `json:"employer"`
	Address      *Address  `json:"address"`
	Experience   NamedItem `json:"experience"`
	Employment   NamedItem `json:"employment"`
}

// Employer is the posting's employer block.
type Employer struct {
	Name         string `json:"name"`
	AlternateURL string `json:"alternate_url"`
	SiteURL      string `json:"site_url"`
}

// Salary is the posting's structured compensation block.
type Salary struct {
	From     *int   `json:"from"`
	To       *int   `json:"to"`
	Currency string `json:"currency"`
}

// Address is the posting's location block.
type Address struct {
	City     string `json:"city"`
	Street   string `json:"street"`
	Building string `json:"building"`
}

// NamedItem is the API's {id, name} pair.
type NamedItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SearchParams controls a vacancy search.
type SearchParams struct {
	Keywords       string
	Area           int
	PerPage        int
	MaxPages       int // 0 = all pages
	Salary         int // 0 = unset
	OnlyWithSalary bool
	PeriodDays     int // 0 = unset
	ExcludedText   string
	OrderBy        string // relevance, publication_time, salary_desc
}

type searchPage struct {
	Items []struct {
		ID string `json:"id"`
	} `json:"items"`
	Pages int `json:"pages"`
	Found int `json:"found"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		c.userAgent = ua
	}
}

// WithRequestDelay sets the minimum spacing between API calls.
func WithRequestDelay(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// WithRateLimitSleep sets how long Search waits after a 429 before its
// single retry.
func WithRateLimitSleep(d time.Duration) Option {
	return func(c *httpClient) {
		c.rateLimitSleep = d
	}
}

type httpClient struct {
	baseURL        string
	userAgent      string
	http           *http.Client
	limiter        *rate.Limiter
	rateLimitSleep time.Duration
}

// NewClient creates a job-board client with a browser-like User-Agent and
// a fixed inter-request delay.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:        "https://api.hh.ru",
		userAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		limiter:        rate.NewLimiter(rate.Every(300*time.Millisecond), 1),
		rateLimitSleep: 60 * time.Second,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostingID extracts the posting identifier from a posting URL: the final
// path segment, with any query string cut off. A bare id passes through.
func PostingID(postingURL string) string {
	s := postingURL
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	return s
}

func (c *httpClient) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, eris.Wrap(err, "hh: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, eris.Wrap(err, "hh: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, eris.Wrap(err, "hh: read response body")
	}
	return body, resp.StatusCode, nil
}

func (c *httpClient) Vacancy(ctx context.Context, id string) (*VacancyResponse, error) {
	body, status, err := c.get(ctx, fmt.Sprintf("%s/vacancies/%s", c.baseURL, url.PathEscape(id)))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("hh: vacancy %s: unexpected status %d", id, status)
	}

	var v VacancyResponse
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, eris.Wrap(err, "hh: unmarshal vacancy")
	}
	return &v, nil
}

// Search pages through /vacancies. A 429 from the search endpoint triggers
// one fixed-length sleep and a single retry of the same page; a second 429
// aborts the search with whatever was collected so far.
func (c *httpClient) Search(ctx context.Context, params SearchParams) ([]model.VacancyRecord, error) {
	perPage := params.PerPage
	if perPage <= 0 || perPage > 100 {
		perPage = 100
	}
	orderBy := params.OrderBy
	if orderBy == "" {
		orderBy = "relevance"
	}

	var records []model.VacancyRecord
	page := 0
	retried := false

	for {
		if params.MaxPages > 0 && page >= params.MaxPages {
			break
		}

		q := url.Values{}
		q.Set("text", params.Keywords)
		q.Set("area", strconv.Itoa(params.Area))
		q.Set("per_page", strconv.Itoa(perPage))
		q.Set("page", strconv.Itoa(page))
		q.Set("order_by", orderBy)
		if params.Salary > 0 {
			q.Set("salary", strconv.Itoa(params.Salary))
		}
		if params.OnlyWithSalary {
			q.Set("only_with_salary", "true")
		}
		if params.PeriodDays > 0 {
			q.Set("period", strconv.Itoa(params.PeriodDays))
		}
		if params.ExcludedText != "" {
			q.Set("excluded_text", params.ExcludedText)
		}

		body, status, err := c.get(ctx, c.baseURL+"/vacancies?"+q.Encode())
		if err != nil {
			return records, err
		}

		if status == http.StatusTooManyRequests {
			if retried {
				return records, eris.New("hh: rate limited twice, giving up")
			}
			retried = true
			zap.L().Warn("hh: search rate limited, backing off",
				zap.Duration("sleep", c.rateLimitSleep),
			)
			select {
			case <-ctx.Done():
				return records, ctx.Err()
			case <-time.After(c.rateLimitSleep):
			}
			continue
		}
		if status != http.StatusOK {
			return records, eris.Errorf("hh: search page %d: unexpected status %d", page, status)
		}

		var sp searchPage
		if err := json.Unmarshal(body, &sp); err != nil {
			return records, eris.Wrap(err, "hh: unmarshal search page")
		}
		if len(sp.Items) == 0 {
			break
		}

		for _, item := range sp.Items {
			v, err := c.Vacancy(ctx, item.ID)
			if err != nil {
				zap.L().Debug("hh: vacancy fetch failed, skipping",
					zap.String("id", item.ID),
					zap.Error(err),
				)
				continue
			}
			records = append(records, toRecord(v))
		}

		if page >= sp.Pages-1 {
			break
		}
		page++
	}

	return records, nil
}

func toRecord(v *VacancyResponse) model.VacancyRecord {
	return model.VacancyRecord{
		ID:               v.ID,
		Title:            v.Name,
		EmployerName:     v.Employer.Name,
		CompensationText: FormatSalary(v.Salary),
		DescriptionText:  StripHTML(v.Description),
		PostingURL:       v.AlternateURL,
		ExperienceLevel:  v.Experience.Name,
		EmploymentType:   v.Employment.Name,
		PublishedAt:      v.PublishedAt,
	}
}
