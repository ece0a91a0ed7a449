package cascade

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/leadscout/internal/cache"
	"github.com/leadforge/leadscout/internal/model"
	"github.com/leadforge/leadscout/internal/source"
	"github.com/leadforge/leadscout/internal/stats"
)

type fakeAdapter struct {
	name    string
	partial *source.Partial
	err     error
	calls   atomic.Int32

	// canProvide overrides the default always-true answer.
	canProvide func(source.Query) bool
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) CanProvide(q source.Query) bool {
	if f.canProvide == nil {
		return true
	}
	return f.canProvide(q)
}

func (f *fakeAdapter) Lookup(context.Context, source.Query) (*source.Partial, error) {
	f.calls.Add(1)
	return f.partial, f.err
}

type fakeScanner struct {
	partials map[string]*source.Partial
	scanned  []string
}

func (f *fakeScanner) Scan(_ context.Context, siteURL string) (*source.Partial, error) {
	f.scanned = append(f.scanned, siteURL)
	return f.partials[siteURL], nil
}

func newTestStore(t *testing.T) cache.Store {
	t.Helper()
	s, err := cache.NewFileStore(filepath.Join(t.TempDir(), "cache.json"))
	require.NoError(t, err)
	return s
}

func directoryPartial() *source.Partial {
	return &source.Partial{
		Contacts: model.Contacts{
			Phones:   []string{"+7 495 123-45-67"},
			Websites: []string{"https://romashka.ru"},
			Address:  "ул. Ленина, 1",
		},
		Info: model.AdditionalInfo{FullName: "Ромашка, ООО"},
	}
}

func TestResolve_EmptyCompany(t *testing.T) {
	t.Parallel()

	e := NewEngine(newTestStore(t), stats.NewCollector())
	_, err := e.Resolve(context.Background(), source.Query{Company: "  ", City: "Москва"})

	require.ErrorIs(t, err, ErrEmptyCompany)
}

func TestResolve_MergesSourcesInOrder(t *testing.T) {
	t.Parallel()

	dir := &fakeAdapter{name: model.SourceDirectory, partial: directoryPartial()}
	board := &fakeAdapter{name: model.SourceJobBoard, partial: &source.Partial{
		Contacts: model.Contacts{
			Phones:   []string{"+7 (495) 123-45-67"}, // duplicate of the directory phone
			Emails:   []string{"hr@romashka.ru"},
			Websites: []string{"https://romashka.ru"},
			Address:  "другой адрес",
		},
		Info: model.AdditionalInfo{BoardProfileURL: "https://hh.ru/employer/99"},
	}}

	e := NewEngine(newTestStore(t), stats.NewCollector(), WithAdapters(dir, board))
	got, err := e.Resolve(context.Background(), source.Query{Company: "Ромашка", City: "Москва"})

	require.NoError(t, err)
	assert.True(t, got.Found)
	assert.False(t, got.FromCache)
	assert.Equal(t, []string{model.SourceDirectory, model.SourceJobBoard}, got.Sources)
	assert.Equal(t, []string{"hr@romashka.ru"}, got.Contacts.Emails)
	assert.Equal(t, []string{"https://romashka.ru"}, got.Contacts.Websites)
	// First non-empty address wins.
	assert.Equal(t, "ул. Ленина, 1", got.Contacts.Address)
	assert.Equal(t, "Ромашка, ООО", got.AdditionalInfo.FullName)
	assert.Equal(t, "https://hh.ru/employer/99", got.AdditionalInfo.BoardProfileURL)
}

func TestResolve_DuplicatePhonesCollapse(t *testing.T) {
	t.Parallel()

	dir := &fakeAdapter{name: model.SourceDirectory, partial: &source.Partial{
		Contacts: model.Contacts{Phones: []string{"+74951234567", " +74951234567 ", "+74951234567"}},
	}}
	e := NewEngine(newTestStore(t), stats.NewCollector(), WithAdapters(dir))

	got, err := e.Resolve(context.Background(), source.Query{Company: "Ромашка", City: "Москва"})

	require.NoError(t, err)
	assert.Equal(t, []string{"+74951234567"}, got.Contacts.Phones)
}

func TestResolve_CacheHitSkipsSources(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dir := &fakeAdapter{name: model.SourceDirectory, partial: directoryPartial()}
	e := NewEngine(newTestStore(t), stats.NewCollector(), WithAdapters(dir))

	first, err := e.Resolve(ctx, source.Query{Company: "Ромашка", City: "Москва"})
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := e.Resolve(ctx, source.Query{Company: "  РОМАШКА  ", City: "МОСКВА"})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Contacts.Phones, second.Contacts.Phones)
	assert.Equal(t, int32(1), dir.calls.Load())

	snap := e.Stats(ctx)
	assert.Equal(t, int64(2), snap.TotalSearches)
	assert.Equal(t, int64(1), snap.CacheHits)
	assert.Equal(t, 1, snap.CacheSize)
}

func TestResolve_NegativeResultCached(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dir := &fakeAdapter{name: model.SourceDirectory}
	e := NewEngine(newTestStore(t), stats.NewCollector(), WithAdapters(dir))

	first, err := e.Resolve(ctx, source.Query{Company: "Призрак", City: "Москва"})
	require.NoError(t, err)
	assert.False(t, first.Found)
	assert.Empty(t, first.Sources)

	second, err := e.Resolve(ctx, source.Query{Company: "Призрак", City: "Москва"})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, int32(1), dir.calls.Load())
}

func TestResolve_SourceErrorAbsorbed(t *testing.T) {
	t.Parallel()

	dir := &fakeAdapter{name: model.SourceDirectory, err: errors.New("quota exceeded")}
	board := &fakeAdapter{name: model.SourceJobBoard, partial: &source.Partial{
		Contacts: model.Contacts{Emails: []string{"hr@romashka.ru"}},
	}}
	e := NewEngine(newTestStore(t), stats.NewCollector(), WithAdapters(dir, board))

	got, err := e.Resolve(context.Background(), source.Query{Company: "Ромашка", City: "Москва"})

	require.NoError(t, err)
	assert.True(t, got.Found)
	assert.Equal(t, []string{model.SourceJobBoard}, got.Sources)
}

func TestResolve_SkippedSourceNotCounted(t *testing.T) {
	t.Parallel()

	dir := &fakeAdapter{name: model.SourceDirectory, partial: directoryPartial()}
	board := &fakeAdapter{
		name:       model.SourceJobBoard,
		canProvide: func(q source.Query) bool { return q.PostingURL != "" },
	}
	e := NewEngine(newTestStore(t), stats.NewCollector(), WithAdapters(dir, board))
	ctx := context.Background()

	_, err := e.Resolve(ctx, source.Query{Company: "Ромашка", City: "Москва"})
	require.NoError(t, err)

	assert.Zero(t, board.calls.Load())
	snap := e.Stats(ctx)
	assert.Equal(t, int64(1), snap.APICalls.Directory)
	assert.Zero(t, snap.APICalls.JobBoard)

	_, err = e.Resolve(ctx, source.Query{
		Company:    "Василёк",
		City:       "Москва",
		PostingURL: "https://hh.ru/vacancy/42",
	})
	require.NoError(t, err)

	assert.Equal(t, int32(1), board.calls.Load())
	assert.Equal(t, int64(1), e.Stats(ctx).APICalls.JobBoard)
}

func TestResolve_ScansDiscoveredWebsites(t *testing.T) {
	t.Parallel()

	dir := &fakeAdapter{name: model.SourceDirectory, partial: &source.Partial{
		Contacts: model.Contacts{Websites: []string{"https://a.ru", "https://b.ru", "https://c.ru"}},
	}}
	scanner := &fakeScanner{partials: map[string]*source.Partial{
		"https://a.ru": {Contacts: model.Contacts{Telegram: []string{"@acme_sales"}}},
	}}

	e := NewEngine(newTestStore(t), stats.NewCollector(),
		WithAdapters(dir),
		WithSiteScanner(scanner),
		WithMaxSites(2),
	)
	got, err := e.Resolve(context.Background(), source.Query{Company: "Ромашка", City: "Москва"})

	require.NoError(t, err)
	// Only the first two discovered sites get scanned.
	assert.Equal(t, []string{"https://a.ru", "https://b.ru"}, scanner.scanned)
	assert.Equal(t, []string{"@acme_sales"}, got.Contacts.Telegram)
	assert.Contains(t, got.Sources, model.SourceWebsite)

	snap := e.Stats(context.Background())
	assert.Equal(t, int64(2), snap.APICalls.Website)
}

func TestResolveBatch_KeepsOrder(t *testing.T) {
	t.Parallel()

	dir := &fakeAdapter{name: model.SourceDirectory, partial: directoryPartial()}
	e := NewEngine(newTestStore(t), stats.NewCollector(), WithAdapters(dir))

	queries := []source.Query{
		{Company: "Первая", City: "Москва"},
		{Company: "Вторая", City: "Казань"},
		{Company: "Третья", City: "Москва"},
	}
	got, err := e.ResolveBatch(context.Background(), queries, 2)

	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, rec := range got {
		require.NotNil(t, rec, i)
		assert.Equal(t, queries[i].Company, rec.CompanyName)
	}
}

func TestClearCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dir := &fakeAdapter{name: model.SourceDirectory, partial: directoryPartial()}
	e := NewEngine(newTestStore(t), stats.NewCollector(), WithAdapters(dir))

	_, err := e.Resolve(ctx, source.Query{Company: "Ромашка", City: "Москва"})
	require.NoError(t, err)
	require.NoError(t, e.ClearCache(ctx))

	assert.Zero(t, e.Stats(ctx).CacheSize)
}
