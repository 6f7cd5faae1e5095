// Package processor turns fetched pages into plain document text.
package processor

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

var (
	headingPattern = regexp.MustCompile(`^#{1,6}\s+\S`)
	listPattern    = regexp.MustCompile(`(?m)^[\-\*]\s+\S`)
	linkPattern    = regexp.MustCompile(`\[.+?\]\(.+?\)`)
)

// Processor converts HTML pages to Markdown text.
type Processor struct{}

// New creates a new Processor.
func New() *Processor {
	return &Processor{}
}

// Convert transforms HTML content into Markdown.
func (p *Processor) Convert(htmlContent string) (string, error) {
	if htmlContent == "" {
		return "", nil
	}

	markdown, err := htmltomarkdown.ConvertString(htmlContent)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(markdown), nil
}

// ExtractTitle extracts the <title> content from HTML.
func (p *Processor) ExtractTitle(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	var title string
	var findTitle func(*html.Node)
	findTitle = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil {
				title = n.FirstChild.Data
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findTitle(c)
		}
	}
	findTitle(doc)

	return strings.TrimSpace(title)
}

// ToText returns the title and Markdown text of a fetched page. Pages that
// are already Markdown pass through unchanged. An empty title falls back to
// the page URL.
func (p *Processor) ToText(pageURL, contentType, body string) (title, text string, err error) {
	if IsMarkdown(pageURL, contentType, body) {
		text = strings.TrimSpace(body)
		title = MarkdownTitle(text)
	} else {
		title = p.ExtractTitle(body)
		text, err = p.Convert(body)
		if err != nil {
			return "", "", err
		}
	}
	if title == "" {
		title = pageURL
	}
	return title, text, nil
}

// MarkdownTitle returns the first H1 heading of a Markdown document.
func MarkdownTitle(content string) string {
	for line := range strings.SplitSeq(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimPrefix(line, "# ")
		}
	}
	return ""
}

// IsMarkdown reports whether a page is Markdown, checking the Content-Type
// header, then the URL extension, then the content itself.
func IsMarkdown(pageURL, contentType, content string) bool {
	ct := strings.ToLower(contentType)
	if strings.HasPrefix(ct, "text/markdown") || strings.HasPrefix(ct, "text/x-markdown") {
		return true
	}

	lower := strings.ToLower(pageURL)
	if strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown") {
		return true
	}

	return looksLikeMarkdown(content)
}

func looksLikeMarkdown(content string) bool {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || looksLikeHTML(trimmed) {
		return false
	}
	return headingPattern.MatchString(trimmed) ||
		listPattern.MatchString(trimmed) ||
		linkPattern.MatchString(trimmed)
}

func looksLikeHTML(content string) bool {
	lower := strings.ToLower(content)
	for _, prefix := range []string{"<!doctype", "<html", "<head", "<body"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
