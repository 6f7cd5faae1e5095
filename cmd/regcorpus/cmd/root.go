package cmd

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mfenderov/regcorpus/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "regcorpus",
	Short: "regcorpus: a financial-regulation corpus builder",
	Long: `regcorpus scrapes regulatory websites, ranks the pages by relevance to
financial regulation, and runs batched LLM prompt tasks over the retained
corpus to produce instruction datasets.

Commands:
  scrape       Crawl configured sources into the raw corpus
  ingest       Read an S3 scrape snapshot into the raw corpus
  rank         Rank the raw corpus and keep the most relevant documents
  score        Score text against saved relevance artifacts
  run          Run a prompt task over the refined corpus
  consolidate  Merge a task's batch files into one dataset
  instruct     Build instruction JSON from consolidated task results
  search       Search the indexed corpus
  serve        Start the MCP server`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogger() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func initConfig() {
	// API keys usually live in .env
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/regcorpus")
		viper.AddConfigPath(".")
	}

	// REGCORPUS_LLM_API_KEY -> llm.api_key
	viper.SetEnvPrefix("REGCORPUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	for _, key := range []string{
		"llm.base_url", "llm.socket_path", "llm.api_key", "llm.api_version", "llm.model",
		"llm.requests_per_second",
		"orchestrator.results_dir", "orchestrator.cost_limit",
		"relevance.artifacts_dir", "relevance.keep_fraction",
		"corpus.path", "corpus.refined_path", "corpus.min_tokens",
		"storage.enabled", "storage.endpoint", "storage.bucket",
		"storage.access_key_id", "storage.secret_access_key",
		"elasticsearch.enabled", "elasticsearch.addresses", "elasticsearch.index",
		"elasticsearch.username", "elasticsearch.password",
		"scraper.delay", "scraper.max_depth",
	} {
		viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file error", "error", err)
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Warn("failed to parse config", "error", err)
	}

	// Addresses as a comma-separated string from env
	if addrs := os.Getenv("REGCORPUS_ELASTICSEARCH_ADDRESSES"); addrs != "" {
		cfg.Elasticsearch.Addresses = strings.Split(addrs, ",")
	}
}
