package scraper

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if content, ok := pages[r.URL.Path]; ok {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(content))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestScraper_FetchSingleURL(t *testing.T) {
	server := newServer(t, map[string]string{
		"/": `<html>
			<head><title>Deposit Guarantee</title></head>
			<body>
				<h1>Deposit Guarantee Schemes</h1>
				<p>Deposits are protected up to a limit.</p>
			</body>
			</html>`,
	})

	s := New(Config{
		Delay:     10 * time.Millisecond,
		MaxDepth:  1,
		UserAgent: "test-agent",
	})

	result, err := s.Scrape(t.Context(), "FDIC", server.URL)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	if len(result.Documents) != 1 {
		t.Fatalf("expected 1 document, got %d", len(result.Documents))
	}

	doc := result.Documents[0]
	if !strings.HasPrefix(doc.URL, server.URL) {
		t.Errorf("URL = %q, want prefix %q", doc.URL, server.URL)
	}
	if doc.Source != "FDIC" {
		t.Errorf("Source = %q, want %q", doc.Source, "FDIC")
	}
	if doc.Title != "Deposit Guarantee" {
		t.Errorf("Title = %q, want %q", doc.Title, "Deposit Guarantee")
	}
	if !strings.Contains(doc.Content, "# Deposit Guarantee Schemes") {
		t.Errorf("Content should be converted to markdown, got %q", doc.Content)
	}
	if strings.Contains(doc.Content, "<p>") {
		t.Error("Content should not contain HTML tags")
	}
	if doc.ID == "" {
		t.Error("ID should be derived from the URL")
	}
	if doc.ScrapedAt.IsZero() {
		t.Error("ScrapedAt should not be zero")
	}
}

func TestScraper_FollowsLinksWithinDomain(t *testing.T) {
	server := newServer(t, map[string]string{
		"/": `<html><body>
			<a href="/page1">Page 1</a>
			<a href="/page2">Page 2</a>
			<a href="https://external.example.org/other">Elsewhere</a>
		</body></html>`,
		"/page1": `<html><body><h1>Page 1 Content</h1></body></html>`,
		"/page2": `<html><body><h1>Page 2 Content</h1></body></html>`,
	})

	s := New(Config{
		Delay:       10 * time.Millisecond,
		MaxDepth:    2,
		FollowLinks: true,
		UserAgent:   "test-agent",
	})

	result, err := s.Scrape(t.Context(), "SEC", server.URL)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	if len(result.Documents) != 3 {
		t.Errorf("expected 3 documents, got %d", len(result.Documents))
	}

	urls := make(map[string]bool)
	for _, doc := range result.Documents {
		urls[doc.URL] = true
		if doc.Source != "SEC" {
			t.Errorf("document %s has source %q, want SEC", doc.URL, doc.Source)
		}
	}
	if !urls[server.URL+"/page1"] {
		t.Error("should have scraped /page1")
	}
	if !urls[server.URL+"/page2"] {
		t.Error("should have scraped /page2")
	}
}

func TestScraper_RespectsMaxDepth(t *testing.T) {
	server := newServer(t, map[string]string{
		"/":       `<html><body><a href="/level1">Level 1</a></body></html>`,
		"/level1": `<html><body><a href="/level2">Level 2</a></body></html>`,
		"/level2": `<html><body><a href="/level3">Level 3</a></body></html>`,
		"/level3": `<html><body>Deep content</body></html>`,
	})

	s := New(Config{
		Delay:       10 * time.Millisecond,
		MaxDepth:    2,
		FollowLinks: true,
		UserAgent:   "test-agent",
	})

	result, err := s.Scrape(t.Context(), "SEC", server.URL)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	urls := make(map[string]bool)
	for _, doc := range result.Documents {
		urls[doc.URL] = true
	}

	if !urls[server.URL+"/level1"] {
		t.Error("should have scraped /level1 (depth 2)")
	}
	if urls[server.URL+"/level3"] {
		t.Error("should NOT have scraped /level3 (beyond max depth)")
	}
}

func TestScraper_RecordsFileLinksWithoutFetching(t *testing.T) {
	var pdfRequested bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".pdf") {
			pdfRequested = true
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body>
			<a href="/docs/mifid.pdf">MiFID II</a>
			<a href="/docs/mifid.pdf">MiFID II again</a>
			<a href="/docs/guidance.DOCX">Guidance</a>
		</body></html>`))
	}))
	defer server.Close()

	s := New(Config{Delay: 10 * time.Millisecond, MaxDepth: 2, FollowLinks: true})

	result, err := s.Scrape(t.Context(), "ESMA", server.URL)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	want := []string{server.URL + "/docs/mifid.pdf", server.URL + "/docs/guidance.DOCX"}
	if len(result.FileLinks) != len(want) {
		t.Fatalf("FileLinks = %v, want %v", result.FileLinks, want)
	}
	for i := range want {
		if result.FileLinks[i] != want[i] {
			t.Errorf("FileLinks[%d] = %q, want %q", i, result.FileLinks[i], want[i])
		}
	}
	if pdfRequested {
		t.Error("file links should not be fetched")
	}
}

func TestScraper_KeywordGate(t *testing.T) {
	server := newServer(t, map[string]string{
		"/": `<html><body>
			<p>Insurance Regulation overview</p>
			<a href="/careers">Careers</a>
		</body></html>`,
		"/careers": `<html><body><p>Join our team!</p></body></html>`,
	})

	s := New(Config{
		Delay:       10 * time.Millisecond,
		MaxDepth:    2,
		FollowLinks: true,
		Keywords:    []string{"regulation", "law"},
	})

	result, err := s.Scrape(t.Context(), "EIOPA", server.URL)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	if len(result.Documents) != 1 {
		t.Fatalf("expected 1 document, got %d", len(result.Documents))
	}
	if result.Rejected != 1 {
		t.Errorf("Rejected = %d, want 1", result.Rejected)
	}
	if strings.HasSuffix(result.Documents[0].URL, "/careers") {
		t.Error("careers page should be rejected by the keyword gate")
	}
}

type stubScorer map[string]float64

func (s stubScorer) Score(text string) float64 {
	for marker, score := range s {
		if strings.Contains(text, marker) {
			return score
		}
	}
	return 0
}

func TestScraper_RelevanceGate(t *testing.T) {
	server := newServer(t, map[string]string{
		"/":      `<html><body><p>capital requirements</p><a href="/promo">Promo</a></body></html>`,
		"/promo": `<html><body><p>newsletter signup</p></body></html>`,
	})

	s := New(Config{Delay: 10 * time.Millisecond, MaxDepth: 2, FollowLinks: true},
		WithRelevance(stubScorer{"capital": 0.4, "newsletter": -0.2}))

	result, err := s.Scrape(t.Context(), "EBA", server.URL)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	if len(result.Documents) != 1 {
		t.Fatalf("expected 1 document, got %d", len(result.Documents))
	}
	if !strings.Contains(result.Documents[0].Content, "capital requirements") {
		t.Errorf("kept the wrong page: %q", result.Documents[0].Content)
	}
}

func TestScraper_SkipsBannedDomains(t *testing.T) {
	s := New(Config{})

	tests := []struct {
		host string
		want bool
	}{
		{"facebook.com", true},
		{"www.linkedin.com", true},
		{"X.com", true},
		{"box.com", false},
		{"www.sec.gov", false},
	}
	for _, tt := range tests {
		if got := s.banned(tt.host); got != tt.want {
			t.Errorf("banned(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestScraper_HandlesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Internal Error", http.StatusInternalServerError)
	}))
	defer server.Close()

	s := New(Config{
		Delay:     10 * time.Millisecond,
		MaxDepth:  1,
		UserAgent: "test-agent",
	})

	result, err := s.Scrape(t.Context(), "SEC", server.URL)
	if err != nil {
		t.Logf("Scrape returned error (acceptable): %v", err)
	}

	if result != nil && len(result.Documents) > 0 {
		t.Errorf("expected 0 documents for error response, got %d", len(result.Documents))
	}
}

func TestScraper_SetsUserAgent(t *testing.T) {
	var receivedUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body>Test</body></html>`))
	}))
	defer server.Close()

	s := New(Config{
		Delay:    10 * time.Millisecond,
		MaxDepth: 1,
	})

	if _, err := s.Scrape(t.Context(), "SEC", server.URL); err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	if receivedUA != "regcorpus/1.0" {
		t.Errorf("User-Agent = %q, want %q", receivedUA, "regcorpus/1.0")
	}
}
