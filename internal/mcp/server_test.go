package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mfenderov/regcorpus/internal/elasticsearch"
	"github.com/mfenderov/regcorpus/pkg/models"
)

type fakeSearcher struct {
	docs     []models.Document
	lastOpts elasticsearch.SearchOptions
	err      error
}

func (f *fakeSearcher) Search(ctx context.Context, query string, opts elasticsearch.SearchOptions) ([]models.Document, error) {
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Document
	for _, d := range f.docs {
		if strings.Contains(d.Content, query) && (opts.Source == "" || d.Source == opts.Source) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeSearcher) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	for _, d := range f.docs {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, nil
}

type constScorer float64

func (c constScorer) Score(string) float64 { return float64(c) }

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return text.Text
}

func testServer(t *testing.T, searcher Searcher, scorer Scorer) *Server {
	t.Helper()
	s, err := NewServer(Config{Name: "regcorpus", Version: "1.0.0"}, searcher, scorer)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return s
}

var corpus = []models.Document{
	models.NewDocument("https://www.sec.gov/insider", "SEC", "insider trading enforcement"),
	models.NewDocument("https://www.esma.europa.eu/mar", "ESMA", "insider dealing under market abuse rules"),
}

func TestNewServer(t *testing.T) {
	s := testServer(t, &fakeSearcher{}, nil)
	if s.mcpServer == nil {
		t.Error("mcpServer should not be nil")
	}

	if _, err := NewServer(Config{}, nil, nil); err == nil {
		t.Error("NewServer() should require a searcher")
	}
}

func TestServer_SearchTool(t *testing.T) {
	searcher := &fakeSearcher{docs: corpus}
	s := testServer(t, searcher, nil)

	res, err := s.searchHandler(t.Context(), callRequest(map[string]any{"query": "insider", "source": "SEC", "limit": 5}))
	if err != nil {
		t.Fatalf("searchHandler() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("searchHandler() returned tool error: %s", resultText(t, res))
	}

	var docs []models.Document
	if err := json.Unmarshal([]byte(resultText(t, res)), &docs); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if len(docs) != 1 || docs[0].Source != "SEC" {
		t.Errorf("docs = %+v, want the SEC document only", docs)
	}
	if searcher.lastOpts.Limit != 5 {
		t.Errorf("limit = %d, want 5", searcher.lastOpts.Limit)
	}
}

func TestServer_SearchTool_Errors(t *testing.T) {
	s := testServer(t, &fakeSearcher{err: errors.New("cluster down")}, nil)

	res, _ := s.searchHandler(t.Context(), callRequest(map[string]any{}))
	if !res.IsError {
		t.Error("missing query should be a tool error")
	}

	res, _ = s.searchHandler(t.Context(), callRequest(map[string]any{"query": "x"}))
	if !res.IsError || !strings.Contains(resultText(t, res), "cluster down") {
		t.Error("search failure should be reported as a tool error")
	}
}

func TestServer_GetDocumentTool(t *testing.T) {
	s := testServer(t, &fakeSearcher{docs: corpus}, nil)

	res, err := s.getDocumentHandler(t.Context(), callRequest(map[string]any{"id": corpus[1].ID}))
	if err != nil {
		t.Fatalf("getDocumentHandler() error = %v", err)
	}

	var doc models.Document
	if err := json.Unmarshal([]byte(resultText(t, res)), &doc); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if doc.URL != corpus[1].URL {
		t.Errorf("URL = %q, want %q", doc.URL, corpus[1].URL)
	}

	res, _ = s.getDocumentHandler(t.Context(), callRequest(map[string]any{"id": "missing"}))
	if !res.IsError {
		t.Error("missing document should be a tool error")
	}
}

func TestServer_ScoreTool(t *testing.T) {
	s := testServer(t, &fakeSearcher{}, constScorer(0.25))

	res, err := s.scoreHandler(t.Context(), callRequest(map[string]any{"text": "capital requirements"}))
	if err != nil {
		t.Fatalf("scoreHandler() error = %v", err)
	}

	var got scoreResult
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if got.Score != 0.25 || !got.Relevant {
		t.Errorf("score result = %+v", got)
	}

	res, _ = s.scoreHandler(t.Context(), callRequest(map[string]any{}))
	if !res.IsError {
		t.Error("missing text should be a tool error")
	}
}
