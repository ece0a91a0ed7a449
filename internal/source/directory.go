package source

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/leadforge/leadscout/internal/model"
	"github.com/leadforge/leadscout/pkg/twogis"
)

// DirectoryAdapter resolves contacts through the 2GIS catalog API. Only
// the first matching catalog item is used; the directory ranks by
// relevance and deeper items are almost always different businesses.
type DirectoryAdapter struct {
	client        twogis.Client
	regions       map[string]int
	defaultRegion int
}

// NewDirectoryAdapter creates the directory source. The regions map keys
// are lowercase city names; cities not in the map fall back to
// defaultRegion.
func NewDirectoryAdapter(client twogis.Client, regions map[string]int, defaultRegion int) *DirectoryAdapter {
	return &DirectoryAdapter{
		client:        client,
		regions:       regions,
		defaultRegion: defaultRegion,
	}
}

func (a *DirectoryAdapter) Name() string { return model.SourceDirectory }

// CanProvide is always true: the engine guarantees a company name and
// RegionID maps any city.
func (a *DirectoryAdapter) CanProvide(Query) bool { return true }

// RegionID maps a city name to its directory region identifier.
func (a *DirectoryAdapter) RegionID(city string) int {
	if id, ok := a.regions[strings.ToLower(strings.TrimSpace(city))]; ok {
		return id
	}
	return a.defaultRegion
}

func (a *DirectoryAdapter) Lookup(ctx context.Context, q Query) (*Partial, error) {
	resp, err := a.client.Search(ctx, q.Company, a.RegionID(q.City))
	if err != nil {
		return nil, err
	}
	if len(resp.Result.Items) == 0 {
		return nil, nil
	}

	item := resp.Result.Items[0]
	zap.L().Debug("directory hit",
		zap.String("company", q.Company),
		zap.String("matched", item.Name),
	)

	p := &Partial{
		Info: model.AdditionalInfo{FullName: item.Name},
	}
	if item.Name == "" {
		p.Info.FullName = q.Company
	}

	for _, group := range item.ContactGroups {
		for _, c := range group.Contacts {
			switch c.Type {
			case "phone":
				if c.Text != "" {
					p.Contacts.Phones = append(p.Contacts.Phones, c.Text)
				}
			case "email":
				if c.Text != "" {
					p.Contacts.Emails = append(p.Contacts.Emails, c.Text)
				}
			case "website":
				if c.URL != "" {
					p.Contacts.Websites = append(p.Contacts.Websites, c.URL)
				}
			}
		}
	}
	p.Contacts.Address = item.AddressName

	return p, nil
}
