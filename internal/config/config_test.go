package config

import (
	"testing"

	"github.com/quran-omni/omnisearch/internal/domain"
)

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 7070},
		GoodMem: GoodMemConfig{
			BaseURL: "https://goodmem.example.com:8080",
			APIKey:  "test-key",
		},
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.GoodMem.APIKey = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing api key")
	}

	expected := "goodmem.api_key is required"
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_MissingBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.GoodMem.BaseURL = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing base url")
	}
}

func TestValidate_UnknownSpaceName(t *testing.T) {
	cfg := validConfig()
	cfg.Spaces.IDs = map[string]string{"podcast": "abc"}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown space type in spaces.ids")
	}

	cfg = validConfig()
	cfg.Spaces.Limits = map[string]int{"podcast": 5}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown space type in spaces.limits")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.Search.DefaultLanguage = "EN"
	cfg.ApplyDefaults()

	if cfg.Search.DefaultLanguage != "en" {
		t.Errorf("default language not lower-cased: %q", cfg.Search.DefaultLanguage)
	}
	if cfg.Search.WorkerPoolSize != 6 {
		t.Errorf("worker pool size = %d, want 6", cfg.Search.WorkerPoolSize)
	}
	if cfg.Search.FallbackBatch != 25 {
		t.Errorf("fallback batch = %d, want 25", cfg.Search.FallbackBatch)
	}
	if cfg.Spaces.CacheTTLSec != 600 {
		t.Errorf("cache ttl = %d, want 600", cfg.Spaces.CacheTTLSec)
	}
	if cfg.GoodMem.Reranker.CandidatePoolSize != 100 {
		t.Errorf("rerank pool = %d, want 100", cfg.GoodMem.Reranker.CandidatePoolSize)
	}
	if cfg.Overview.CandidatePoolSize != 24 {
		t.Errorf("overview pool = %d, want 24", cfg.Overview.CandidatePoolSize)
	}
	if got := cfg.SpaceLimit(domain.SpaceTranslation); got != 12 {
		t.Errorf("translation limit = %d, want 12", got)
	}
}

func TestSpaceIDOverrides(t *testing.T) {
	cfg := validConfig()
	cfg.Spaces.IDOverrides = "quran=q-1, tafsirs=t-1,bogus=x,course="
	cfg.Spaces.IDs = map[string]string{"tafsir": "t-2"}

	got := cfg.SpaceIDOverrides()

	if got[domain.SpaceQuran] != "q-1" {
		t.Errorf("quran override = %q, want q-1", got[domain.SpaceQuran])
	}
	// Per-type ids win over the bulk CSV.
	if got[domain.SpaceTafsir] != "t-2" {
		t.Errorf("tafsir override = %q, want t-2", got[domain.SpaceTafsir])
	}
	if _, ok := got[domain.SpaceCourse]; ok {
		t.Error("blank override value must be dropped")
	}
	if len(got) != 2 {
		t.Errorf("override count = %d, want 2 (%v)", len(got), got)
	}
}
