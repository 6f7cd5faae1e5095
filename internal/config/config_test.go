package config

import "testing"

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Relevance.BootstrapScore != 0.3 || cfg.Relevance.BootstrapSource != "OSI" {
		t.Errorf("unexpected bootstrap defaults: %+v", cfg.Relevance)
	}
	if cfg.Corpus.MinTokens != 500 {
		t.Errorf("MinTokens = %d, want 500", cfg.Corpus.MinTokens)
	}
	if cfg.Orchestrator.JitterMin > cfg.Orchestrator.JitterMax {
		t.Error("jitter min above max")
	}
	if cfg.Orchestrator.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.Orchestrator.MaxAttempts)
	}
	if cfg.Storage.Enabled || cfg.Elasticsearch.Enabled {
		t.Error("external services should be opt-in")
	}
	if len(cfg.Sources) == 0 {
		t.Fatal("expected default sources")
	}
}

func TestDefaultSources(t *testing.T) {
	seen := make(map[string]bool)
	for _, s := range DefaultSources() {
		if s.Name == "" || s.URL == "" {
			t.Errorf("incomplete source %+v", s)
		}
		if seen[s.Name] {
			t.Errorf("duplicate source name %q", s.Name)
		}
		seen[s.Name] = true
		if s.MaxDepth < 1 {
			t.Errorf("source %s has depth %d", s.Name, s.MaxDepth)
		}
	}
	if !seen["OSI"] {
		t.Error("OSI bootstrap source should be crawled by default")
	}
}
