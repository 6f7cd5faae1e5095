package corpus

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfenderov/regcorpus/internal/textproc"
	"github.com/mfenderov/regcorpus/pkg/models"
)

func TestRead_MinimalColumns(t *testing.T) {
	in := "url,source,content\n" +
		"https://www.sec.gov/rules,SEC,\"Rule 10b-5, in full\"\n" +
		"https://eur-lex.europa.eu/x,EUR-LEX,\"multi\nline\"\n"

	docs, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "https://www.sec.gov/rules", docs[0].URL)
	assert.Equal(t, "SEC", docs[0].Source)
	assert.Equal(t, "Rule 10b-5, in full", docs[0].Content)
	assert.Equal(t, models.GenerateDocumentID("https://www.sec.gov/rules"), docs[0].ID)
	assert.Equal(t, "multi\nline", docs[1].Content)
}

func TestRead_DataframeExport(t *testing.T) {
	in := "url,source,content,num_tokens,token_count,score\nhttps://a,FED,body,12,512.0,0.25\n"

	docs, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, 512, docs[0].TokenCount)
	assert.Equal(t, 0.25, docs[0].Score)
}

func TestRead_MissingColumn(t *testing.T) {
	_, err := Read(strings.NewReader("url,source\nhttps://a,SEC\n"))
	assert.Error(t, err)
}

func TestRead_Empty(t *testing.T) {
	docs, err := Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "corpus.csv")
	doc := models.NewDocument("https://www.fdic.gov/laws", "FDIC", "Deposit insurance, \"quoted\"")
	doc.Title = "Laws"
	doc.TokenCount = 700
	doc.Score = 0.125
	doc.ScrapedAt = time.Date(2024, 12, 4, 17, 30, 0, 0, time.UTC)

	require.NoError(t, Save(path, []models.Document{doc}))
	got, err := Load(path)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, doc, got[0])
}

func TestWrite_Header(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))
	assert.Equal(t, "id,url,source,title,content,token_count,score,scraped_at\n", buf.String())
}

func TestDedupe(t *testing.T) {
	docs := []models.Document{
		models.NewDocument("https://a", "SEC", "first"),
		models.NewDocument("https://b", "SEC", "b"),
		models.NewDocument("https://a", "FED", "second"),
	}

	got := Dedupe(docs)

	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Content)
}

func TestCountTokensAndFilter(t *testing.T) {
	docs := []models.Document{
		models.NewDocument("https://a", "SEC", "one two three"),
		models.NewDocument("https://b", "SEC", "one two"),
		models.NewDocument("https://c", "SEC", "one two three four"),
	}

	CountTokens(docs, textproc.WhitespaceCounter{})
	got := FilterMinTokens(docs, 3)

	assert.Equal(t, 3, docs[0].TokenCount)
	require.Len(t, got, 1, "documents at the threshold are dropped")
	assert.Equal(t, "https://c", got[0].URL)
}

func TestFilterSources(t *testing.T) {
	docs := []models.Document{
		{URL: "a", Source: "SEC"},
		{URL: "b", Source: "OSI"},
	}

	assert.Len(t, FilterSources(docs, nil), 2)
	got := FilterSources(docs, []string{"OSI"})
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].URL)
}

func TestFromRecords(t *testing.T) {
	cost := 0.1
	records := []models.ResponseRecord{
		{URL: "https://a", Source: "SEC", GeneratedText: "cleaned text", Cost: &cost},
		{URL: "https://b", Source: "SEC", GeneratedText: "", Cost: &cost},
		{URL: "https://c", Source: "SEC", GeneratedText: "failed"},
	}

	docs := FromRecords(records)

	require.Len(t, docs, 1)
	assert.Equal(t, "cleaned text", docs[0].Content)
	assert.Equal(t, models.GenerateDocumentID("https://a"), docs[0].ID)
}
