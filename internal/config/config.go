// Package config loads the omnisearch configuration from per-environment
// YAML files with ${VAR} environment expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/quran-omni/omnisearch/internal/domain"
)

// Config holds the omnisearch API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GoodMem  GoodMemConfig  `yaml:"goodmem"`
	Spaces   SpacesConfig   `yaml:"spaces"`
	Search   SearchConfig   `yaml:"search"`
	Overview OverviewConfig `yaml:"overview"`
	Data     DataConfig     `yaml:"data"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// GoodMemConfig holds upstream retrieval service settings.
type GoodMemConfig struct {
	BaseURL     string         `yaml:"base_url"`
	APIKey      string         `yaml:"api_key"`
	InsecureTLS bool           `yaml:"insecure_tls"`
	Reranker    RerankerConfig `yaml:"reranker"`
}

// RerankerConfig holds reranker post-processor settings. An empty ID
// disables reranking.
type RerankerConfig struct {
	ID                  string `yaml:"id"`
	CandidatePoolSize   int    `yaml:"candidate_pool_size"`
	ChronologicalResort bool   `yaml:"chronological_resort"`
}

// SpacesConfig holds space-id resolution settings.
type SpacesConfig struct {
	// IDOverrides is a bulk "type=id,type=id" list.
	IDOverrides string `yaml:"id_overrides"`
	// IDs maps individual space names to fixed ids; wins over IDOverrides.
	IDs         map[string]string `yaml:"ids"`
	Limits      map[string]int    `yaml:"limits"`
	CacheTTLSec int               `yaml:"cache_ttl_sec"`
}

// SearchConfig holds consolidation settings.
type SearchConfig struct {
	DefaultLanguage string `yaml:"default_language"`
	WorkerPoolSize  int    `yaml:"worker_pool_size"`
	FallbackBatch   int    `yaml:"fallback_batch_size"`
}

// OverviewConfig holds overview generation settings. An empty LLMID
// disables the feature.
type OverviewConfig struct {
	LLMID              string   `yaml:"llm_id"`
	SysPrompt          string   `yaml:"sys_prompt"`
	Prompt             string   `yaml:"prompt"`
	TokenBudget        int      `yaml:"gen_token_budget"`
	Temperature        float64  `yaml:"temperature"`
	MaxResults         int      `yaml:"max_results"`
	CandidatePoolSize  int      `yaml:"candidate_pool_size"`
	RelevanceThreshold *float64 `yaml:"relevance_threshold"`
}

// DataConfig holds paths to the bundled fallback datasets.
type DataConfig struct {
	QuranPath       string `yaml:"quran_path"`
	TranslationPath string `yaml:"translation_db_path"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 7070
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Fan-out blocks on upstream calls bounded by a 60s timeout.
		c.HTTP.WriteTimeoutSec = 90
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.GoodMem.Reranker.CandidatePoolSize <= 0 {
		c.GoodMem.Reranker.CandidatePoolSize = 100
	}
	if c.Spaces.CacheTTLSec <= 0 {
		c.Spaces.CacheTTLSec = 600
	}
	if c.Spaces.Limits == nil {
		c.Spaces.Limits = map[string]int{}
	}
	defaultLimits := map[domain.SpaceType]int{
		domain.SpaceQuran:       6,
		domain.SpaceTranslation: 12,
		domain.SpaceTafsir:      10,
		domain.SpacePost:        8,
		domain.SpaceCourse:      6,
		domain.SpaceArticle:     6,
	}
	for st, limit := range defaultLimits {
		if _, ok := c.Spaces.Limits[st.String()]; !ok {
			c.Spaces.Limits[st.String()] = limit
		}
	}
	if c.Search.DefaultLanguage == "" {
		c.Search.DefaultLanguage = "en"
	}
	c.Search.DefaultLanguage = strings.ToLower(c.Search.DefaultLanguage)
	if c.Search.WorkerPoolSize <= 0 {
		c.Search.WorkerPoolSize = 6
	}
	if c.Search.FallbackBatch <= 0 {
		c.Search.FallbackBatch = 25
	}
	if c.Overview.CandidatePoolSize <= 0 {
		c.Overview.CandidatePoolSize = 24
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.GoodMem.BaseURL == "" {
		return fmt.Errorf("goodmem.base_url is required")
	}
	if c.GoodMem.APIKey == "" {
		return fmt.Errorf("goodmem.api_key is required")
	}
	for name := range c.Spaces.IDs {
		if _, ok := domain.ParseSpaceType(name); !ok {
			return fmt.Errorf("spaces.ids: unknown space type %q", name)
		}
	}
	for name := range c.Spaces.Limits {
		if _, ok := domain.ParseSpaceType(name); !ok {
			return fmt.Errorf("spaces.limits: unknown space type %q", name)
		}
	}
	return nil
}

// SpaceIDOverrides merges the bulk CSV overrides with per-type ids.
// Per-type ids win over the CSV list.
func (c *Config) SpaceIDOverrides() map[domain.SpaceType]string {
	overrides := make(map[domain.SpaceType]string)
	for _, entry := range strings.Split(c.Spaces.IDOverrides, ",") {
		name, id, found := strings.Cut(entry, "=")
		if !found {
			continue
		}
		st, ok := domain.ParseSpaceType(name)
		if !ok {
			continue
		}
		if id = strings.TrimSpace(id); id != "" {
			overrides[st] = id
		}
	}
	for name, id := range c.Spaces.IDs {
		st, ok := domain.ParseSpaceType(name)
		if !ok {
			continue
		}
		if id = strings.TrimSpace(id); id != "" {
			overrides[st] = id
		}
	}
	return overrides
}

// SpaceLimit returns the default result limit for a space type.
func (c *Config) SpaceLimit(st domain.SpaceType) int {
	if limit, ok := c.Spaces.Limits[st.String()]; ok && limit > 0 {
		return limit
	}
	return 8
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
