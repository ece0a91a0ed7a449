package source

import (
	"context"
	"regexp"

	"github.com/leadforge/leadscout/internal/model"
	"github.com/leadforge/leadscout/pkg/hh"
)

// Job-board descriptions are free text; these two expressions pull out
// anything that looks like an email or a Russian phone number. Unlike
// the website scanner, hits are taken as-is with no stop-word filtering:
// a company's own vacancy text rarely contains placeholder contacts.
var (
	boardEmailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	boardPhoneRe = regexp.MustCompile(`(?:\+7|8)[\s-]?\(?[0-9]{3}\)?[\s-]?[0-9]{3}[\s-]?[0-9]{2}[\s-]?[0-9]{2}`)
)

// JobBoardAdapter resolves contacts through a known vacancy posting: the
// employer block carries the company's board profile and website, and
// the posting text sometimes carries direct contacts.
type JobBoardAdapter struct {
	client hh.Client
}

// NewJobBoardAdapter creates the job-board source.
func NewJobBoardAdapter(client hh.Client) *JobBoardAdapter {
	return &JobBoardAdapter{client: client}
}

func (a *JobBoardAdapter) Name() string { return model.SourceJobBoard }

// CanProvide requires a posting URL; there is nothing to fetch without one.
func (a *JobBoardAdapter) CanProvide(q Query) bool { return q.PostingURL != "" }

func (a *JobBoardAdapter) Lookup(ctx context.Context, q Query) (*Partial, error) {
	if q.PostingURL == "" {
		return nil, nil
	}

	id := hh.PostingID(q.PostingURL)
	if id == "" {
		return nil, nil
	}

	v, err := a.client.Vacancy(ctx, id)
	if err != nil {
		return nil, err
	}

	p := &Partial{
		Info: model.AdditionalInfo{BoardProfileURL: v.Employer.AlternateURL},
	}
	if v.Employer.SiteURL != "" {
		p.Contacts.Websites = append(p.Contacts.Websites, v.Employer.SiteURL)
	}

	p.Contacts.Emails = append(p.Contacts.Emails, boardEmailRe.FindAllString(v.Description, -1)...)
	p.Contacts.Phones = append(p.Contacts.Phones, boardPhoneRe.FindAllString(v.Description, -1)...)

	if v.Address != nil {
		p.Contacts.Address = joinAddress(v.Address.City, v.Address.Street, v.Address.Building)
	}

	return p, nil
}

func joinAddress(parts ...string) string {
	out := ""
	for _, part := range parts {
		if part == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += part
	}
	return out
}
