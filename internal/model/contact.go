// Package model defines the records exchanged between the cascade engine,
// the deduplicator, and the cache store.
package model

import "time"

// Source names reported in ContactRecord.Sources, in cascade priority order.
const (
	SourceDirectory = "2gis"
	SourceJobBoard  = "hh.ru"
	SourceWebsite   = "website"
)

// Contacts holds the category-bucketed contact values for one company.
// The list fields are deduplicated case/whitespace-insensitively, first
// occurrence wins and keeps its original spelling.
type Contacts struct {
	Phones   []string `json:"phones"`
	Emails   []string `json:"emails"`
	Telegram []string `json:"telegram"`
	WhatsApp []string `json:"whatsapp"`
	Websites []string `json:"websites"`
	Address  string   `json:"address"`
}

// AdditionalInfo carries the singleton fields collected alongside contacts.
// First non-empty contribution wins for each field.
type AdditionalInfo struct {
	FullName        string `json:"full_name"`
	BoardProfileURL string `json:"hh_company_url"`
	PostingCount    int    `json:"vacancies_count"`
}

// ContactRecord is the consolidated result of one contact resolution.
// Once written to the cache it is immutable; FromCache is the only field
// rewritten on a hit.
type ContactRecord struct {
	CompanyName    string         `json:"company_name"`
	City           string         `json:"city"`
	Found          bool           `json:"found"`
	Sources        []string       `json:"sources"`
	Contacts       Contacts       `json:"contacts"`
	AdditionalInfo AdditionalInfo `json:"additional_info"`
	RetrievedAt    time.Time      `json:"search_date"`
	FromCache      bool           `json:"from_cache"`
}

// NewContactRecord returns an empty record for the given company and city
// with all list fields allocated, so JSON output carries [] not null.
func NewContactRecord(company, city string) *ContactRecord {
	return &ContactRecord{
		CompanyName: company,
		City:        city,
		Sources:     []string{},
		Contacts: Contacts{
			Phones:   []string{},
			Emails:   []string{},
			Telegram: []string{},
			WhatsApp: []string{},
			Websites: []string{},
		},
		RetrievedAt: time.Now().UTC(),
	}
}

// HasContacts reports whether at least one of phones, emails, or websites
// is non-empty. Telegram and WhatsApp alone do not count toward Found.
func (r *ContactRecord) HasContacts() bool {
	return len(r.Contacts.Phones) > 0 ||
		len(r.Contacts.Emails) > 0 ||
		len(r.Contacts.Websites) > 0
}
