package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	CacheBackendYAML   = "yaml"
	CacheBackendSQLite = "sqlite"
)

type Config struct {
	DBPath     string
	RecordRuns bool
	LogLevel   string

	ShelfmarkCachePath    string
	ShelfmarkCacheBackend string

	MdprocURLFormat    string
	MdprocTimeoutMs    int
	MdprocRateLimitRPS int

	SkipBibIDs []string

	KeywordsSourceCSV string
	KeywordsOutputDir string
	KeywordsFileName  string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:     getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		RecordRuns: getEnvBool("RECORD_RUNS", true),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		ShelfmarkCachePath:    getEnv("SHELFMARK_CACHE_PATH", filepath.Join(cwd, "data", "shelfmark_cache.yml")),
		ShelfmarkCacheBackend: strings.ToLower(getEnv("SHELFMARK_CACHE_BACKEND", CacheBackendYAML)),

		MdprocURLFormat:    getEnv("MDPROC_URL_FORMAT", "http://mdproc.library.upenn.edu:9292/records/%s/create?format=marc21"),
		MdprocTimeoutMs:    getEnvInt("MDPROC_TIMEOUT_MS", 30000),
		MdprocRateLimitRPS: getEnvInt("MDPROC_RATE_LIMIT_RPS", 5),

		SkipBibIDs: getEnvList("SKIP_BIBIDS"),

		KeywordsSourceCSV: getEnv("KEYWORDS_SOURCE_CSV", filepath.Join(cwd, "data", "folders_keywords.csv")),
		KeywordsOutputDir: getEnv("KEYWORDS_OUTPUT_DIR", filepath.Join(cwd, "mss_with_keywords")),
		KeywordsFileName:  getEnv("KEYWORDS_FILE_NAME", "keywords.txt"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func (c Config) validate() error {
	switch c.ShelfmarkCacheBackend {
	case CacheBackendYAML, CacheBackendSQLite:
	default:
		return fmt.Errorf("unsupported SHELFMARK_CACHE_BACKEND: %s", c.ShelfmarkCacheBackend)
	}
	if !strings.Contains(c.MdprocURLFormat, "%s") {
		return fmt.Errorf("MDPROC_URL_FORMAT must contain %%s: %s", c.MdprocURLFormat)
	}
	if err := c.Require("KEYWORDS_FILE_NAME", c.KeywordsFileName); err != nil {
		return err
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}

// getEnvList splits a comma or whitespace separated value.
func getEnvList(key string) []string {
	value := getEnv(key, "")
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}
