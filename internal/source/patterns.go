package source

import (
	"os"
	"regexp"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// PatternSpec is the serializable form of the extraction tables. All
// fields are optional; empty ones fall back to the defaults, so a config
// file only needs to override what it changes.
type PatternSpec struct {
	Telegram        []string `yaml:"telegram"`
	WhatsAppPhones  []string `yaml:"whatsapp_phones"`
	WhatsAppInvites []string `yaml:"whatsapp_invites"`
	Phones          []string `yaml:"phones"`
	Email           string   `yaml:"email"`

	TelegramStopWords []string `yaml:"telegram_stop_words"`
	EmailStopDomains  []string `yaml:"email_stop_domains"`
	EmailStopWords    []string `yaml:"email_stop_words"`

	MaxTelegram int `yaml:"max_telegram"`
	MaxWhatsApp int `yaml:"max_whatsapp"`
	MaxPhones   int `yaml:"max_phones"`
	MaxEmails   int `yaml:"max_emails"`
}

// PatternSet is the compiled extraction tables used by the website
// scanner. Telegram and WhatsApp-phone patterns must carry exactly one
// capture group holding the handle or number.
type PatternSet struct {
	Telegram        []*regexp.Regexp
	WhatsAppPhones  []*regexp.Regexp
	WhatsAppInvites []*regexp.Regexp
	Phones          []*regexp.Regexp
	Email           *regexp.Regexp

	TelegramStopWords map[string]struct{}
	EmailStopDomains  map[string]struct{}
	EmailStopWords    []string

	MaxTelegram int
	MaxWhatsApp int
	MaxPhones   int
	MaxEmails   int
}

func defaultSpec() PatternSpec {
	return PatternSpec{
		Telegram: []string{
			`(?i)t\.me/([a-zA-Z0-9_]+)`,
			`(?i)telegram\.me/([a-zA-Z0-9_]+)`,
			`@([a-zA-Z0-9_]{5,32})`,
			`(?i)tg://resolve\?domain=([a-zA-Z0-9_]+)`,
		},
		WhatsAppPhones: []string{
			`(?i)wa\.me/(\+?[0-9]{10,15})`,
			`(?i)api\.whatsapp\.com/send\?phone=(\+?[0-9]{10,15})`,
			`(?i)whatsapp://send\?phone=(\+?[0-9]{10,15})`,
		},
		WhatsAppInvites: []string{
			`(?i)chat\.whatsapp\.com/([a-zA-Z0-9]+)`,
		},
		Phones: []string{
			`\+7[\s-]?\(?[0-9]{3}\)?[\s-]?[0-9]{3}[\s-]?[0-9]{2}[\s-]?[0-9]{2}`,
			`8[\s-]?\(?[0-9]{3}\)?[\s-]?[0-9]{3}[\s-]?[0-9]{2}[\s-]?[0-9]{2}`,
		},
		Email: `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`,
		TelegramStopWords: []string{
			"example", "test", "demo", "sample", "placeholder",
			"username", "user_name", "your_name", "contact",
			"undefined", "null", "none", "admin",
		},
		EmailStopDomains: []string{
			"example.com", "test.com", "sample.com", "domain.com",
			"email.com", "mail.com", "yoursite.com", "website.com",
			"company.com", "yourdomain.com",
		},
		EmailStopWords: []string{
			"example", "test", "sample", "demo", "placeholder",
			"noreply", "no-reply", "donotreply", "info@example",
		},
		MaxTelegram: 5,
		MaxWhatsApp: 3,
		MaxPhones:   5,
		MaxEmails:   5,
	}
}

// DefaultPatterns returns the built-in extraction tables, tuned for
// Russian company sites.
func DefaultPatterns() *PatternSet {
	ps, err := defaultSpec().Compile()
	if err != nil {
		// Built-in patterns are covered by tests; this cannot fail
		// at runtime.
		panic(err)
	}
	return ps
}

// LoadPatterns reads a YAML pattern file and merges it over the
// defaults.
func LoadPatterns(path string) (*PatternSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: read pattern file %s", path)
	}

	spec := defaultSpec()
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, eris.Wrapf(err, "source: parse pattern file %s", path)
	}
	return spec.Compile()
}

// Compile builds the regexp tables, filling empty fields from the
// defaults.
func (s PatternSpec) Compile() (*PatternSet, error) {
	def := defaultSpec()
	if len(s.Telegram) == 0 {
		s.Telegram = def.Telegram
	}
	if len(s.WhatsAppPhones) == 0 {
		s.WhatsAppPhones = def.WhatsAppPhones
	}
	if len(s.WhatsAppInvites) == 0 {
		s.WhatsAppInvites = def.WhatsAppInvites
	}
	if len(s.Phones) == 0 {
		s.Phones = def.Phones
	}
	if s.Email == "" {
		s.Email = def.Email
	}
	if len(s.TelegramStopWords) == 0 {
		s.TelegramStopWords = def.TelegramStopWords
	}
	if len(s.EmailStopDomains) == 0 {
		s.EmailStopDomains = def.EmailStopDomains
	}
	if len(s.EmailStopWords) == 0 {
		s.EmailStopWords = def.EmailStopWords
	}
	if s.MaxTelegram <= 0 {
		s.MaxTelegram = def.MaxTelegram
	}
	if s.MaxWhatsApp <= 0 {
		s.MaxWhatsApp = def.MaxWhatsApp
	}
	if s.MaxPhones <= 0 {
		s.MaxPhones = def.MaxPhones
	}
	if s.MaxEmails <= 0 {
		s.MaxEmails = def.MaxEmails
	}

	ps := &PatternSet{
		TelegramStopWords: make(map[string]struct{}, len(s.TelegramStopWords)),
		EmailStopDomains:  make(map[string]struct{}, len(s.EmailStopDomains)),
		EmailStopWords:    s.EmailStopWords,
		MaxTelegram:       s.MaxTelegram,
		MaxWhatsApp:       s.MaxWhatsApp,
		MaxPhones:         s.MaxPhones,
		MaxEmails:         s.MaxEmails,
	}

	compile := func(exprs []string, dst *[]*regexp.Regexp) error {
		for _, expr := range exprs {
			re, err := regexp.Compile(expr)
			if err != nil {
				return eris.Wrapf(err, "source: compile pattern %q", expr)
			}
			*dst = append(*dst, re)
		}
		return nil
	}

	if err := compile(s.Telegram, &ps.Telegram); err != nil {
		return nil, err
	}
	if err := compile(s.WhatsAppPhones, &ps.WhatsAppPhones); err != nil {
		return nil, err
	}
	if err := compile(s.WhatsAppInvites, &ps.WhatsAppInvites); err != nil {
		return nil, err
	}
	if err := compile(s.Phones, &ps.Phones); err != nil {
		return nil, err
	}
	re, err := regexp.Compile(s.Email)
	if err != nil {
		return nil, eris.Wrapf(err, "source: compile pattern %q", s.Email)
	}
	ps.Email = re

	for _, w := range s.TelegramStopWords {
		ps.TelegramStopWords[w] = struct{}{}
	}
	for _, d := range s.EmailStopDomains {
		ps.EmailStopDomains[d] = struct{}{}
	}
	return ps, nil
}
