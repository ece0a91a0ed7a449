package source

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/nyaruka/phonenumbers"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// maxBodyBytes caps how much of a page the scanner reads. Contact blocks
// live in headers and footers; anything past this is media or scripts.
const maxBodyBytes = 2 << 20

var nonPhoneRunes = regexp.MustCompile(`[^\d+]`)

// PatternScanner fetches a company website and extracts contacts using
// the configured pattern tables. It scans the raw page source and, when
// the page parses as HTML, the decoded link attributes as well, since
// messenger links often hide behind entity-encoded hrefs.
type PatternScanner struct {
	patterns  *PatternSet
	http      *http.Client
	userAgent string
}

// ScannerOption configures the scanner.
type ScannerOption func(*PatternScanner)

// WithScannerHTTPClient sets a custom HTTP client.
func WithScannerHTTPClient(hc *http.Client) ScannerOption {
	return func(s *PatternScanner) {
		s.http = hc
	}
}

// WithScannerUserAgent overrides the User-Agent header.
func WithScannerUserAgent(ua string) ScannerOption {
	return func(s *PatternScanner) {
		s.userAgent = ua
	}
}

// NewPatternScanner creates a website scanner. Pass nil patterns to use
// the defaults.
func NewPatternScanner(patterns *PatternSet, opts ...ScannerOption) *PatternScanner {
	if patterns == nil {
		patterns = DefaultPatterns()
	}
	s := &PatternScanner{
		patterns:  patterns,
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeSiteURL prepends https:// when the URL carries no scheme.
func NormalizeSiteURL(siteURL string) string {
	if strings.HasPrefix(siteURL, "http://") || strings.HasPrefix(siteURL, "https://") {
		return siteURL
	}
	return "https://" + siteURL
}

func (s *PatternScanner) Scan(ctx context.Context, siteURL string) (*Partial, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, NormalizeSiteURL(siteURL), nil)
	if err != nil {
		return nil, eris.Wrapf(err, "source: create request for %s", siteURL)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "source: fetch %s", siteURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("source: fetch %s: status %d", siteURL, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "source: read %s", siteURL)
	}

	text := string(raw) + "\n" + extractLinkTargets(raw)

	p := &Partial{}
	p.Contacts.Telegram = s.findTelegram(text)
	p.Contacts.WhatsApp = s.findWhatsApp(text)
	p.Contacts.Phones = s.findPhones(text)
	p.Contacts.Emails = s.findEmails(text)

	if len(p.Contacts.Telegram) == 0 && len(p.Contacts.WhatsApp) == 0 &&
		len(p.Contacts.Phones) == 0 && len(p.Contacts.Emails) == 0 {
		return nil, nil
	}

	zap.L().Debug("website scan hit",
		zap.String("url", siteURL),
		zap.Int("phones", len(p.Contacts.Phones)),
		zap.Int("emails", len(p.Contacts.Emails)),
	)
	return p, nil
}

// extractLinkTargets pulls decoded href and content attribute values out
// of the page. A parse failure just means there is nothing extra to scan.
func extractLinkTargets(raw []byte) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return ""
	}

	var b strings.Builder
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			b.WriteString(href)
			b.WriteByte('\n')
		}
	})
	doc.Find("meta[content]").Each(func(_ int, sel *goquery.Selection) {
		if content, ok := sel.Attr("content"); ok {
			b.WriteString(content)
			b.WriteByte('\n')
		}
	})
	return b.String()
}

func (s *PatternScanner) findTelegram(text string) []string {
	var out []string
	seen := map[string]struct{}{}

	for _, re := range s.patterns.Telegram {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if len(m) < 2 {
				continue
			}
			handle := strings.TrimPrefix(m[1], "@")
			if !s.validTelegram(handle) {
				continue
			}
			formatted := "@" + handle
			if _, ok := seen[formatted]; ok {
				continue
			}
			seen[formatted] = struct{}{}
			out = append(out, formatted)
			if len(out) >= s.patterns.MaxTelegram {
				return out
			}
		}
	}
	return out
}

func (s *PatternScanner) validTelegram(handle string) bool {
	if len(handle) < 5 {
		return false
	}
	if _, stop := s.patterns.TelegramStopWords[strings.ToLower(handle)]; stop {
		return false
	}
	return true
}

func (s *PatternScanner) findWhatsApp(text string) []string {
	var out []string
	seen := map[string]struct{}{}

	add := func(v string) bool {
		if _, ok := seen[v]; ok {
			return len(out) < s.patterns.MaxWhatsApp
		}
		seen[v] = struct{}{}
		out = append(out, v)
		return len(out) < s.patterns.MaxWhatsApp
	}

	for _, re := range s.patterns.WhatsAppPhones {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if len(m) < 2 {
				continue
			}
			if !add(m[1]) {
				return out
			}
		}
	}
	for _, re := range s.patterns.WhatsAppInvites {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if len(m) < 2 {
				continue
			}
			if !add("https://chat.whatsapp.com/" + m[1]) {
				return out
			}
		}
	}
	return out
}

func (s *PatternScanner) findPhones(text string) []string {
	var out []string
	seen := map[string]struct{}{}

	for _, re := range s.patterns.Phones {
		for _, m := range re.FindAllString(text, -1) {
			formatted := formatPhone(m)
			if formatted == "" {
				continue
			}
			if _, ok := seen[formatted]; ok {
				continue
			}
			seen[formatted] = struct{}{}
			out = append(out, formatted)
			if len(out) >= s.patterns.MaxPhones {
				return out
			}
		}
	}
	return out
}

// formatPhone validates a matched phone and canonicalizes it. Numbers the
// phone metadata recognizes come back in E.164; anything else falls back
// to plain digit munging with 8 rewritten to the +7 country code.
func formatPhone(raw string) string {
	digits := nonPhoneRunes.ReplaceAllString(raw, "")
	if len(digits) < 11 {
		return ""
	}

	distinct := map[rune]struct{}{}
	for _, r := range digits {
		distinct[r] = struct{}{}
	}
	if len(distinct) < 4 {
		return ""
	}

	if num, err := phonenumbers.Parse(digits, "RU"); err == nil && phonenumbers.IsValidNumber(num) {
		return phonenumbers.Format(num, phonenumbers.E164)
	}

	switch {
	case strings.HasPrefix(digits, "8") && len(digits) == 11:
		return "+7" + digits[1:]
	case strings.HasPrefix(digits, "7") && len(digits) == 11:
		return "+" + digits
	}
	return digits
}

func (s *PatternScanner) findEmails(text string) []string {
	var out []string
	seen := map[string]struct{}{}

	for _, m := range s.patterns.Email.FindAllString(text, -1) {
		email := strings.ToLower(m)
		if !s.validEmail(email) {
			continue
		}
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
		if len(out) >= s.patterns.MaxEmails {
			return out
		}
	}
	return out
}

func (s *PatternScanner) validEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	if _, stop := s.patterns.EmailStopDomains[email[at+1:]]; stop {
		return false
	}
	for _, w := range s.patterns.EmailStopWords {
		if strings.Contains(email, w) {
			return false
		}
	}
	return true
}
