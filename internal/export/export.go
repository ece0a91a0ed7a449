// Package export writes resolved contacts and deduplicated vacancies to
// JSON, CSV, and XLSX.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/leadforge/leadscout/internal/model"
)

// Quality labels, best to worst.
const (
	QualityExcellent = "Отлично"
	QualityGood      = "Хорошо"
	QualityBasic     = "Базовая"
	QualityNone      = "Нет данных"
)

// Quality grades a record by how many of the three primary contact
// channels (phone, email, website) it carries.
func Quality(rec model.ContactRecord) string {
	n := 0
	if len(rec.Contacts.Phones) > 0 {
		n++
	}
	if len(rec.Contacts.Emails) > 0 {
		n++
	}
	if len(rec.Contacts.Websites) > 0 {
		n++
	}
	switch n {
	case 3:
		return QualityExcellent
	case 2:
		return QualityGood
	case 1:
		return QualityBasic
	default:
		return QualityNone
	}
}

var contactsHeader = []string{
	"company_name", "full_name", "found", "sources",
	"phones", "emails", "telegram", "whatsapp", "websites",
	"hh_company_url", "address", "search_date", "quality",
}

// WriteContactsCSV writes contact records as CSV. A UTF-8 BOM leads the
// output so Excel detects the encoding.
func WriteContactsCSV(w io.Writer, recs []model.ContactRecord) error {
	if _, err := w.Write([]byte("\xef\xbb\xbf")); err != nil {
		return eris.Wrap(err, "export: write BOM")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(contactsHeader); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, rec := range recs {
		if err := cw.Write(contactRow(rec)); err != nil {
			return eris.Wrapf(err, "export: write row for %s", rec.CompanyName)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

func contactRow(rec model.ContactRecord) []string {
	found := "false"
	if rec.Found {
		found = "true"
	}
	fullName := rec.AdditionalInfo.FullName
	if fullName == "" {
		fullName = rec.CompanyName
	}
	return []string{
		rec.CompanyName,
		fullName,
		found,
		strings.Join(rec.Sources, ", "),
		strings.Join(rec.Contacts.Phones, "; "),
		strings.Join(rec.Contacts.Emails, "; "),
		strings.Join(rec.Contacts.Telegram, "; "),
		strings.Join(rec.Contacts.WhatsApp, "; "),
		strings.Join(rec.Contacts.Websites, "; "),
		rec.AdditionalInfo.BoardProfileURL,
		rec.Contacts.Address,
		rec.RetrievedAt.Format(time.RFC3339),
		Quality(rec),
	}
}

// WriteContactsXLSX writes contact records as a single-sheet workbook.
func WriteContactsXLSX(w io.Writer, recs []model.ContactRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Контакты")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range contactsHeader {
		header.AddCell().Value = col
	}
	for _, rec := range recs {
		row := sheet.AddRow()
		for _, v := range contactRow(rec) {
			row.AddCell().Value = v
		}
	}
	return eris.Wrap(f.Write(w), "export: write xlsx")
}

// WriteJSON writes any export payload indented, with HTML characters
// left intact so URLs stay readable.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return eris.Wrap(enc.Encode(v), "export: encode json")
}

var vacanciesHeader = []string{
	"id", "название", "компания", "оплата", "ссылка",
	"опыт", "тип_занятости", "дата_публикации", "дубликатов",
}

// WriteVacanciesCSV writes deduplicated vacancies as CSV, descriptions
// omitted since they run to thousands of characters.
func WriteVacanciesCSV(w io.Writer, recs []model.VacancyRecord) error {
	if _, err := w.Write([]byte("\xef\xbb\xbf")); err != nil {
		return eris.Wrap(err, "export: write BOM")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(vacanciesHeader); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, rec := range recs {
		row := []string{
			rec.ID,
			rec.Title,
			rec.EmployerName,
			rec.CompensationText,
			rec.PostingURL,
			rec.ExperienceLevel,
			rec.EmploymentType,
			rec.PublishedAt,
			strconv.Itoa(rec.DuplicateCount),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrapf(err, "export: write row for %s", rec.ID)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}
