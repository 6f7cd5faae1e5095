package processor

import (
	"strings"
	"testing"
)

func TestProcessor_Convert(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		contains []string
	}{
		{
			name:     "converts headings",
			html:     `<html><body><h1>Market Abuse Regulation</h1><h2>Article 14</h2></body></html>`,
			contains: []string{"# Market Abuse Regulation", "## Article 14"},
		},
		{
			name:     "converts paragraphs",
			html:     `<html><body><p>Insider dealing is prohibited.</p><p>So is market manipulation.</p></body></html>`,
			contains: []string{"Insider dealing is prohibited.", "So is market manipulation."},
		},
		{
			name:     "keeps links",
			html:     `<html><body><p>See <a href="https://eur-lex.europa.eu/eli/reg/2014/596">MAR</a>.</p></body></html>`,
			contains: []string{"[MAR](https://eur-lex.europa.eu/eli/reg/2014/596)"},
		},
		{
			name:     "converts lists",
			html:     `<html><body><ul><li>KYC</li><li>AML</li></ul></body></html>`,
			contains: []string{"KYC", "AML"},
		},
	}

	p := New()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Convert(tt.html)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}

			for _, expected := range tt.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("expected output to contain %q, got:\n%s", expected, result)
				}
			}
		})
	}
}

func TestProcessor_Convert_EmptyInput(t *testing.T) {
	result, err := New().Convert("")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if result != "" {
		t.Errorf("Convert(\"\") = %q, want empty", result)
	}
}

func TestProcessor_ExtractTitle(t *testing.T) {
	p := New()

	if got := p.ExtractTitle(`<html><head><title> Deposit Guarantee </title></head></html>`); got != "Deposit Guarantee" {
		t.Errorf("ExtractTitle() = %q, want %q", got, "Deposit Guarantee")
	}
	if got := p.ExtractTitle(`<html><body><p>No title here</p></body></html>`); got != "" {
		t.Errorf("ExtractTitle() should return empty for no title, got %q", got)
	}
}

func TestProcessor_ToText(t *testing.T) {
	p := New()

	t.Run("html page", func(t *testing.T) {
		title, text, err := p.ToText("https://www.sec.gov/rules", "text/html",
			`<html><head><title>SEC Rules</title></head><body><h1>Rule 10b-5</h1></body></html>`)
		if err != nil {
			t.Fatalf("ToText() error = %v", err)
		}
		if title != "SEC Rules" {
			t.Errorf("title = %q, want %q", title, "SEC Rules")
		}
		if !strings.Contains(text, "# Rule 10b-5") {
			t.Errorf("text = %q, want converted heading", text)
		}
		if strings.Contains(text, "<h1>") {
			t.Errorf("text still contains HTML: %q", text)
		}
	})

	t.Run("markdown page passes through", func(t *testing.T) {
		body := "# Solvency II\n\nCapital requirements for insurers.\n"
		title, text, err := p.ToText("https://example.org/solvency.md", "", body)
		if err != nil {
			t.Fatalf("ToText() error = %v", err)
		}
		if title != "Solvency II" {
			t.Errorf("title = %q, want %q", title, "Solvency II")
		}
		if text != strings.TrimSpace(body) {
			t.Errorf("text = %q, want body unchanged", text)
		}
	})

	t.Run("title falls back to url", func(t *testing.T) {
		title, _, err := p.ToText("https://www.esma.europa.eu/", "text/html", "<html><body><p>x</p></body></html>")
		if err != nil {
			t.Fatalf("ToText() error = %v", err)
		}
		if title != "https://www.esma.europa.eu/" {
			t.Errorf("title = %q, want url", title)
		}
	})
}

func TestIsMarkdown(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		contentType string
		content     string
		want        bool
	}{
		{"markdown content type", "https://x.org/a", "text/markdown; charset=utf-8", "", true},
		{"x-markdown content type", "https://x.org/a", "text/x-markdown", "", true},
		{"md extension", "https://x.org/README.md", "text/plain", "", true},
		{"markdown extension", "https://x.org/doc.MARKDOWN", "", "", true},
		{"heading", "https://x.org/a", "text/plain", "# Title\n\nBody", true},
		{"list", "https://x.org/a", "", "Intro\n- item one\n- item two", true},
		{"link", "https://x.org/a", "", "see [MiFID](https://x.org/mifid)", true},
		{"html document", "https://x.org/a", "text/html", "<!DOCTYPE html><html><body># x</body></html>", false},
		{"html body", "https://x.org/a", "", "<body>- x</body>", false},
		{"plain text", "https://x.org/a", "text/plain", "Just some words.", false},
		{"md directory is not an extension", "https://x.org/md/page", "", "", false},
		{"empty", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMarkdown(tt.url, tt.contentType, tt.content); got != tt.want {
				t.Errorf("IsMarkdown(%q, %q, %q) = %v, want %v", tt.url, tt.contentType, tt.content, got, tt.want)
			}
		})
	}
}

func TestMarkdownTitle(t *testing.T) {
	if got := MarkdownTitle("intro\n  # Basel III  \n# Second"); got != "Basel III" {
		t.Errorf("MarkdownTitle() = %q, want %q", got, "Basel III")
	}
	if got := MarkdownTitle("## only h2"); got != "" {
		t.Errorf("MarkdownTitle() = %q, want empty", got)
	}
}
