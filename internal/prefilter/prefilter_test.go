package prefilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/leadscout/internal/model"
)

func TestShouldExclude_ByTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		want  bool
	}{
		{"Менеджер по продажам", true},
		{"Торговый представитель", true},
		{"Риелтор", true},
		{"Оператор call-центра", false},
		{"Бухгалтер", false},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got, reason := ShouldExclude(model.VacancyRecord{Title: tt.title})
			assert.Equal(t, tt.want, got)
			if tt.want {
				assert.Contains(t, reason, "по названию")
			}
		})
	}
}

func TestShouldExclude_DescriptionNeedsTwoMarkers(t *testing.T) {
	t.Parallel()

	one := model.VacancyRecord{
		Title:           "Ассистент",
		DescriptionText: "Иногда холодные звонки",
	}
	got, _ := ShouldExclude(one)
	assert.False(t, got)

	two := model.VacancyRecord{
		Title:           "Ассистент",
		DescriptionText: "Холодные звонки и активные продажи каждый день",
	}
	got, reason := ShouldExclude(two)
	assert.True(t, got)
	assert.Contains(t, reason, "маркеров продаж")
}

func TestShouldExclude_ExceptionOverrides(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    model.VacancyRecord
	}{
		{
			"inbound work in description",
			model.VacancyRecord{
				Title:           "Менеджер по продажам",
				DescriptionText: "Только входящие заявки, без холодных звонков",
			},
		},
		{
			"support tooling in title",
			model.VacancyRecord{Title: "Оператор отдела продаж"},
		},
		{
			"crm in description beats two sales markers",
			model.VacancyRecord{
				Title:           "Ассистент",
				DescriptionText: "Холодные звонки, активные продажи, ведение CRM",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := ShouldExclude(tt.v)
			assert.False(t, got)
			assert.Empty(t, reason)
		})
	}
}

func TestPreScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		desc string
		want int
	}{
		{"neutral", "обычная офисная работа", 5},
		{"sales marker lowers", "ведение переговоров с партнёрами", 3},
		{"one process marker", "работа в crm-системе", 6},
		{
			"many process markers",
			"работа в crm-системе, знание 1с, bitrix24, формирование счетов, выгрузка отчетов",
			8,
		},
		{
			"mixed",
			"отдел продаж, но работа в crm-системе",
			4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PreScore(model.VacancyRecord{DescriptionText: tt.desc})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()

	in := []model.VacancyRecord{
		{ID: "1", Title: "Оператор", DescriptionText: "работа в crm-системе"},
		{ID: "2", Title: "Менеджер по продажам"},
	}

	got := Filter(in)

	require.Len(t, got.Kept, 1)
	assert.Equal(t, "1", got.Kept[0].ID)
	require.NotNil(t, got.Kept[0].PriorityHint)
	assert.Equal(t, 6, *got.Kept[0].PriorityHint)

	require.Len(t, got.Excluded, 1)
	assert.Equal(t, "2", got.Excluded[0].Vacancy.ID)
}
