package config

import "time"

// Config holds all application configuration.
type Config struct {
	LLM           LLM           `mapstructure:"llm"`
	Pricing       Pricing       `mapstructure:"pricing"`
	Orchestrator  Orchestrator  `mapstructure:"orchestrator"`
	Relevance     Relevance     `mapstructure:"relevance"`
	Corpus        Corpus        `mapstructure:"corpus"`
	Scraper       Scraper       `mapstructure:"scraper"`
	Storage       Storage       `mapstructure:"storage"`
	Elasticsearch Elasticsearch `mapstructure:"elasticsearch"`
	MCP           MCP           `mapstructure:"mcp"`
	Sources       []Source      `mapstructure:"sources"`
	Tasks         []Task        `mapstructure:"tasks"`
}

// LLM holds the chat completions endpoint configuration.
type LLM struct {
	BaseURL           string        `mapstructure:"base_url"`
	SocketPath        string        `mapstructure:"socket_path"`
	APIKey            string        `mapstructure:"api_key"`
	APIVersion        string        `mapstructure:"api_version"` // Azure OpenAI only
	Model             string        `mapstructure:"model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// Pricing holds per-token prices used for cost accounting.
type Pricing struct {
	InputPerToken  float64 `mapstructure:"input_per_token"`
	OutputPerToken float64 `mapstructure:"output_per_token"`
}

// Orchestrator holds batch run configuration.
type Orchestrator struct {
	ResultsDir     string        `mapstructure:"results_dir"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	BackoffBase    time.Duration `mapstructure:"backoff_base"`
	BackoffFactor  float64       `mapstructure:"backoff_factor"`
	JitterMin      time.Duration `mapstructure:"jitter_min"`
	JitterMax      time.Duration `mapstructure:"jitter_max"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	CostLimit      float64       `mapstructure:"cost_limit"`
}

// Relevance holds ranking configuration.
type Relevance struct {
	ArtifactsDir    string   `mapstructure:"artifacts_dir"`
	KeepFraction    float64  `mapstructure:"keep_fraction"` // Share of ranked documents dropped from the bottom
	BootstrapSource string   `mapstructure:"bootstrap_source"`
	BootstrapScore  float64  `mapstructure:"bootstrap_score"`
	PositiveQuery   string   `mapstructure:"positive_query"` // Empty uses the built-in query
	NegativeQuery   string   `mapstructure:"negative_query"`
	CompositeTerms  []string `mapstructure:"composite_terms"` // Nil uses the built-in list
}

// Corpus holds document table locations and filters.
type Corpus struct {
	Path        string `mapstructure:"path"`
	RefinedPath string `mapstructure:"refined_path"`
	MinTokens   int    `mapstructure:"min_tokens"`
	Encoding    string `mapstructure:"encoding"` // tiktoken encoding name
}

// Scraper holds web scraping configuration.
type Scraper struct {
	Delay       time.Duration `mapstructure:"delay"`
	MaxDepth    int           `mapstructure:"max_depth"`
	FollowLinks bool          `mapstructure:"follow_links"`
	Timeout     time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	Keywords    []string      `mapstructure:"keywords"` // Pages must mention one of these; empty disables the gate
}

// Storage holds S3/MinIO storage configuration.
type Storage struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Elasticsearch holds ES connection configuration.
type Elasticsearch struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Index     string   `mapstructure:"index"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

// MCP holds MCP server configuration.
type MCP struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// Source defines a regulatory website to scrape.
type Source struct {
	Name     string `mapstructure:"name"` // Source tag, e.g. "SEC"
	URL      string `mapstructure:"url"`
	MaxDepth int    `mapstructure:"max_depth"` // Zero uses scraper.max_depth
}

// Task overrides or adds a prompt task. Unset fields keep built-in values.
type Task struct {
	Name         string   `mapstructure:"name"`
	Prompt       string   `mapstructure:"prompt"`
	System       string   `mapstructure:"system"`
	Sources      []string `mapstructure:"sources"`
	BatchSize    int      `mapstructure:"batch_size"`
	ParsedOutput string   `mapstructure:"parsed_output"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		LLM: LLM{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
			Timeout: 120 * time.Second,
		},
		Pricing: Pricing{
			InputPerToken:  0.15 / 1_000_000,
			OutputPerToken: 0.60 / 1_000_000,
		},
		Orchestrator: Orchestrator{
			ResultsDir:     "results",
			MaxAttempts:    5, // First call plus four retries
			BackoffBase:    time.Second,
			BackoffFactor:  2,
			JitterMin:      300 * time.Millisecond,
			JitterMax:      1200 * time.Millisecond,
			RequestTimeout: 2 * time.Minute,
		},
		Relevance: Relevance{
			ArtifactsDir:    "artifacts",
			KeepFraction:    0.8,
			BootstrapSource: "OSI",
			BootstrapScore:  0.3,
		},
		Corpus: Corpus{
			Path:        "data/corpus.csv",
			RefinedPath: "data/refined.csv",
			MinTokens:   500,
			Encoding:    "o200k_base",
		},
		Scraper: Scraper{
			Delay:       1 * time.Second,
			MaxDepth:    3,
			FollowLinks: true,
			Timeout:     30 * time.Second,
			UserAgent:   "regcorpus/1.0",
			Keywords:    []string{"regulation", "financial", "insurance", "deposit", "law", "act"},
		},
		Storage: Storage{
			Enabled:         false, // Requires a running MinIO
			Endpoint:        "localhost:9002",
			Bucket:          "regcorpus",
			AccessKeyID:     "minioadmin",
			SecretAccessKey: "minioadmin",
			UseSSL:          false,
		},
		Elasticsearch: Elasticsearch{
			Enabled:   false, // Requires a running cluster
			Addresses: []string{"http://localhost:9200"},
			Index:     "regcorpus-documents",
		},
		MCP: MCP{
			Name:    "regcorpus",
			Version: "1.0.0",
		},
		Sources: DefaultSources(),
	}
}

// DefaultSources lists the regulator and standards sites crawled when no
// sources are configured.
func DefaultSources() []Source {
	return []Source{
		{Name: "EUR-LEX", URL: "https://eur-lex.europa.eu/oj/direct-access.html", MaxDepth: 4},
		{Name: "ESMA", URL: "https://www.esma.europa.eu/", MaxDepth: 4},
		{Name: "SEC", URL: "https://www.sec.gov/", MaxDepth: 4},
		{Name: "SEC_RULES", URL: "https://www.sec.gov/rules-regulations", MaxDepth: 3},
		{Name: "CFTC", URL: "https://www.cftc.gov/", MaxDepth: 4},
		{Name: "FINRA", URL: "https://www.finra.org/registration-exams-ce/qualification-exams/terms-and-acronyms", MaxDepth: 2},
		{Name: "FED", URL: "https://www.federalreserve.gov/", MaxDepth: 4},
		{Name: "FDIC", URL: "https://www.fdic.gov/federal-deposit-insurance-act", MaxDepth: 2},
		{Name: "III", URL: "https://www.iii.org/publications/insurance-handbook/regulatory-and-financial-environment/", MaxDepth: 2},
		{Name: "SBOA", URL: "https://www.in.gov/sboa/about-us/sboa-glossary-of-accounting-and-audit-terms/", MaxDepth: 2},
		{Name: "NYSE", URL: "https://www.nyse.com/index", MaxDepth: 4},
		{Name: "ECFR", URL: "https://www.ecfr.gov/", MaxDepth: 4},
		{Name: "XBRL_WEB", URL: "https://www.xbrl.org/guidance/xbrl-glossary/", MaxDepth: 1},
		{Name: "XBRL_DOC", URL: "https://www.sec.gov/data-research/osd_xbrlglossary", MaxDepth: 1},
		{Name: "CDM", URL: "https://cdm.finos.org/", MaxDepth: 4},
		{Name: "FINOS", URL: "https://www.finos.org/faq", MaxDepth: 1},
		{Name: "OSI", URL: "https://opensource.org/licenses", MaxDepth: 4},
	}
}
