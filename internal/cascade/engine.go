// Package cascade runs the contact-resolution waterfall: cache, the
// directory API, the job board, then the company's own websites.
package cascade

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/leadforge/leadscout/internal/cache"
	"github.com/leadforge/leadscout/internal/model"
	"github.com/leadforge/leadscout/internal/normalize"
	"github.com/leadforge/leadscout/internal/source"
	"github.com/leadforge/leadscout/internal/stats"
)

// ErrEmptyCompany is returned when a resolution is requested for a blank
// company name.
var ErrEmptyCompany = eris.New("cascade: empty company name")

// Engine resolves company contacts. Sources are consulted in a fixed
// order and their results merged; a source error is logged and treated
// as a miss so one flaky API never sinks the whole lookup.
type Engine struct {
	adapters []source.Adapter
	scanner  source.SiteScanner
	store    cache.Store
	stats    *stats.Collector
	maxSites int
}

// Option configures the engine.
type Option func(*Engine)

// WithAdapters sets the cascade sources, consulted in order.
func WithAdapters(adapters ...source.Adapter) Option {
	return func(e *Engine) {
		e.adapters = adapters
	}
}

// WithSiteScanner enables the website pass over discovered site URLs.
func WithSiteScanner(s source.SiteScanner) Option {
	return func(e *Engine) {
		e.scanner = s
	}
}

// WithMaxSites caps how many discovered websites get scanned per lookup.
func WithMaxSites(n int) Option {
	return func(e *Engine) {
		e.maxSites = n
	}
}

// NewEngine creates a cascade engine over the given cache.
func NewEngine(store cache.Store, collector *stats.Collector, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		stats:    collector,
		maxSites: 2,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Resolve looks up contacts for one company. The cache answers first;
// on a miss every configured source contributes, the merged record is
// deduplicated and cached, found or not, so known-empty companies do not
// burn API quota twice.
func (e *Engine) Resolve(ctx context.Context, q source.Query) (*model.ContactRecord, error) {
	if strings.TrimSpace(q.Company) == "" {
		return nil, ErrEmptyCompany
	}

	e.stats.Search()
	key := normalize.EntityKey(q.Company, q.City)

	cached, ok, err := e.store.Get(ctx, key)
	if err != nil {
		zap.L().Warn("cascade: cache read failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
	if ok {
		e.stats.CacheHit()
		cached.FromCache = true
		return cached, nil
	}
	e.stats.CacheMiss()

	rec := model.NewContactRecord(q.Company, q.City)

	for _, adapter := range e.adapters {
		if !adapter.CanProvide(q) {
			continue
		}
		e.countCall(adapter.Name())

		partial, err := adapter.Lookup(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			zap.L().Warn("cascade: source failed",
				zap.String("source", adapter.Name()),
				zap.String("company", q.Company),
				zap.Error(err),
			)
			continue
		}
		if partial == nil {
			continue
		}
		merge(rec, partial, adapter.Name())
	}

	e.scanWebsites(ctx, rec)

	dedupContacts(rec)
	rec.Found = rec.HasContacts()

	if err := e.store.Put(ctx, key, rec); err != nil {
		zap.L().Warn("cascade: cache write failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
	return rec, nil
}

// scanWebsites runs the scanner over the first sites discovered by the
// earlier sources. Sites found by the scan itself are not followed.
func (e *Engine) scanWebsites(ctx context.Context, rec *model.ContactRecord) {
	if e.scanner == nil {
		return
	}

	sites := rec.Contacts.Websites
	if len(sites) > e.maxSites {
		sites = sites[:e.maxSites]
	}
	for _, site := range sites {
		e.stats.WebsiteScan()

		partial, err := e.scanner.Scan(ctx, site)
		if err != nil {
			zap.L().Debug("cascade: website scan failed",
				zap.String("url", site),
				zap.Error(err),
			)
			continue
		}
		if partial == nil {
			continue
		}
		merge(rec, partial, model.SourceWebsite)
	}
}

func (e *Engine) countCall(name string) {
	switch name {
	case model.SourceDirectory:
		e.stats.DirectoryCall()
	case model.SourceJobBoard:
		e.stats.JobBoardCall()
	}
}

// ResolveBatch resolves several companies with bounded concurrency.
// Results keep input order; a failed entry is nil in the output and the
// first error is returned after all entries finish.
func (e *Engine) ResolveBatch(ctx context.Context, queries []source.Query, concurrency int) ([]*model.ContactRecord, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	out := make([]*model.ContactRecord, len(queries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			rec, err := e.Resolve(ctx, q)
			if err != nil {
				return err
			}
			out[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}

// Stats returns the current counters together with the cache size.
func (e *Engine) Stats(ctx context.Context) stats.Snapshot {
	n, err := e.store.Len(ctx)
	if err != nil {
		zap.L().Warn("cascade: cache size unavailable", zap.Error(err))
	}
	return e.stats.Snapshot(n)
}

// ClearCache drops every cached record.
func (e *Engine) ClearCache(ctx context.Context) error {
	return e.store.Clear(ctx)
}

// merge folds one source's partial into the record. List fields append,
// the address and the additional-info fields keep their first non-empty
// value, and the source name is recorded once.
func merge(rec *model.ContactRecord, p *source.Partial, name string) {
	found := false
	for _, s := range rec.Sources {
		if s == name {
			found = true
			break
		}
	}
	if !found {
		rec.Sources = append(rec.Sources, name)
	}

	rec.Contacts.Phones = append(rec.Contacts.Phones, p.Contacts.Phones...)
	rec.Contacts.Emails = append(rec.Contacts.Emails, p.Contacts.Emails...)
	rec.Contacts.Telegram = append(rec.Contacts.Telegram, p.Contacts.Telegram...)
	rec.Contacts.WhatsApp = append(rec.Contacts.WhatsApp, p.Contacts.WhatsApp...)
	rec.Contacts.Websites = append(rec.Contacts.Websites, p.Contacts.Websites...)

	if rec.Contacts.Address == "" && p.Contacts.Address != "" {
		rec.Contacts.Address = p.Contacts.Address
	}
	if rec.AdditionalInfo.FullName == "" && p.Info.FullName != "" {
		rec.AdditionalInfo.FullName = p.Info.FullName
	}
	if rec.AdditionalInfo.BoardProfileURL == "" && p.Info.BoardProfileURL != "" {
		rec.AdditionalInfo.BoardProfileURL = p.Info.BoardProfileURL
	}
	if rec.AdditionalInfo.PostingCount == 0 && p.Info.PostingCount != 0 {
		rec.AdditionalInfo.PostingCount = p.Info.PostingCount
	}
}

// dedupContacts removes duplicate values from every list field, first
// occurrence wins. Comparison ignores case and surrounding whitespace;
// the kept value is the original with whitespace trimmed.
func dedupContacts(rec *model.ContactRecord) {
	for _, list := range []*[]string{
		&rec.Contacts.Phones,
		&rec.Contacts.Emails,
		&rec.Contacts.Telegram,
		&rec.Contacts.WhatsApp,
		&rec.Contacts.Websites,
	} {
		seen := map[string]struct{}{}
		unique := (*list)[:0]
		for _, v := range *list {
			key := normalize.CompareKey(v)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			unique = append(unique, strings.TrimSpace(v))
		}
		*list = unique
	}
}
