package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contactPage = `<!DOCTYPE html>
<html>
<head><title>ООО Ромашка</title></head>
<body>
  <footer>
    <p>Телефон: +7 (495) 123-45-67 или 8 800 555-35-35</p>
    <p>Почта: sales@acme.ru, дубль SALES@ACME.RU, мусор info@example.com</p>
    <a href="https://t.me/acme_sales">Telegram</a>
    <a href="https://wa.me/+79991234567">WhatsApp</a>
    <a href="https://chat.whatsapp.com/AbCdEf123">Группа</a>
  </footer>
</body>
</html>`

func TestScan_ExtractsContacts(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		w.Write([]byte(contactPage))
	}))
	defer srv.Close()

	scanner := NewPatternScanner(nil)
	got, err := scanner.Scan(context.Background(), srv.URL)

	require.NoError(t, err)
	require.NotNil(t, got)

	// The wa.me number is also a Russian phone, so it shows up in both
	// buckets.
	assert.Equal(t, []string{"+74951234567", "+79991234567", "+78005553535"}, got.Contacts.Phones)
	assert.Equal(t, []string{"sales@acme.ru"}, got.Contacts.Emails)
	assert.Equal(t, []string{"@acme_sales"}, got.Contacts.Telegram)
	assert.Equal(t, []string{"+79991234567", "https://chat.whatsapp.com/AbCdEf123"}, got.Contacts.WhatsApp)
}

func TestScan_NothingFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1>О компании</h1></body></html>`))
	}))
	defer srv.Close()

	scanner := NewPatternScanner(nil)
	got, err := scanner.Scan(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestScan_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	scanner := NewPatternScanner(nil)
	_, err := scanner.Scan(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestScan_FiltersPlaceholders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`
			<html><body>
			noreply@acme.ru test@acme.ru
			<a href="https://t.me/username">шаблон</a>
			<a href="https://t.me/admin">короткий</a>
			Телефон: +7 777 777-77-77
			</body></html>`))
	}))
	defer srv.Close()

	scanner := NewPatternScanner(nil)
	got, err := scanner.Scan(context.Background(), srv.URL)

	// Placeholder addresses, stop-word handles, and numbers with fewer
	// than four distinct digits are all rejected.
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNormalizeSiteURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://acme.ru", NormalizeSiteURL("acme.ru"))
	assert.Equal(t, "http://acme.ru", NormalizeSiteURL("http://acme.ru"))
	assert.Equal(t, "https://acme.ru", NormalizeSiteURL("https://acme.ru"))
}

func TestFormatPhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"city number with punctuation", "+7 (495) 123-45-67", "+74951234567"},
		{"leading eight", "8 (495) 123-45-67", "+74951234567"},
		{"too short", "123-45-67", ""},
		{"repeating digits", "+7 111 111-11-11", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatPhone(tt.in))
		})
	}
}
