package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/leadscout/internal/model"
	"github.com/leadforge/leadscout/pkg/hh"
)

type fakeBoard struct {
	resp  *hh.VacancyResponse
	err   error
	gotID string
}

func (f *fakeBoard) Vacancy(_ context.Context, id string) (*hh.VacancyResponse, error) {
	f.gotID = id
	return f.resp, f.err
}

func (f *fakeBoard) Search(context.Context, hh.SearchParams) ([]model.VacancyRecord, error) {
	panic("not used")
}

func TestJobBoardLookup_ExtractsContacts(t *testing.T) {
	t.Parallel()

	fake := &fakeBoard{resp: &hh.VacancyResponse{
		ID:          "12345",
		Description: "Пишите на hr@romashka.ru или звоните +7 495 123-45-67",
		Employer: hh.Employer{
			Name:         "ООО Ромашка",
			AlternateURL: "https://hh.ru/employer/99",
			SiteURL:      "https://romashka.ru",
		},
		Address: &hh.Address{City: "Москва", Street: "ул. Ленина", Building: "1"},
	}}
	adapter := NewJobBoardAdapter(fake)

	got, err := adapter.Lookup(context.Background(), Query{
		Company:    "Ромашка",
		City:       "Москва",
		PostingURL: "https://hh.ru/vacancy/12345?from=search",
	})

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "12345", fake.gotID)

	assert.Equal(t, "https://hh.ru/employer/99", got.Info.BoardProfileURL)
	assert.Equal(t, []string{"https://romashka.ru"}, got.Contacts.Websites)
	assert.Equal(t, []string{"hr@romashka.ru"}, got.Contacts.Emails)
	assert.Equal(t, []string{"+7 495 123-45-67"}, got.Contacts.Phones)
	assert.Equal(t, "Москва, ул. Ленина, 1", got.Contacts.Address)
}

// The board adapter takes description hits as-is. The same address is
// dropped by the website scanner's stop-word filter, so which source
// found it decides whether it reaches the record.
func TestJobBoardLookup_KeepsPlaceholderEmail(t *testing.T) {
	t.Parallel()

	fake := &fakeBoard{resp: &hh.VacancyResponse{
		ID:          "42",
		Description: "Резюме на contact@acme.example",
	}}
	adapter := NewJobBoardAdapter(fake)

	got, err := adapter.Lookup(context.Background(), Query{
		Company:    "Acme",
		City:       "Москва",
		PostingURL: "https://hh.ru/vacancy/42",
	})

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"contact@acme.example"}, got.Contacts.Emails)

	scanner := NewPatternScanner(nil)
	assert.False(t, scanner.validEmail("contact@acme.example"))
}

func TestJobBoardLookup_NoPostingURL(t *testing.T) {
	t.Parallel()

	adapter := NewJobBoardAdapter(&fakeBoard{})

	assert.False(t, adapter.CanProvide(Query{Company: "Ромашка", City: "Москва"}))
	assert.True(t, adapter.CanProvide(Query{Company: "Ромашка", PostingURL: "https://hh.ru/vacancy/7"}))

	got, err := adapter.Lookup(context.Background(), Query{Company: "Ромашка", City: "Москва"})

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestJobBoardLookup_PartialAddress(t *testing.T) {
	t.Parallel()

	fake := &fakeBoard{resp: &hh.VacancyResponse{
		ID:      "7",
		Address: &hh.Address{City: "Казань", Building: "5"},
	}}
	adapter := NewJobBoardAdapter(fake)

	got, err := adapter.Lookup(context.Background(), Query{
		Company:    "Фирма",
		City:       "Казань",
		PostingURL: "https://hh.ru/vacancy/7",
	})

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Казань, 5", got.Contacts.Address)
}
