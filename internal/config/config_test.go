package config

import "testing"

func validConfig() Config {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		Embedding: EmbeddingConfig{
			APIKey:     "test-key",
			Model:      "text-embedding-3-small",
			Dimensions: 1536,
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_MissingDimensions(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Dimensions = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding dimensions")
	}
}

func TestValidate_WeightsMustSumToOne(t *testing.T) {
	cfg := validConfig()
	cfg.Search.SemanticWeight = 0.7
	cfg.Search.KeywordWeight = 0.4

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for weights not summing to 1")
	}
}

func TestValidate_NegativeWeight(t *testing.T) {
	cfg := validConfig()
	cfg.Search.SemanticWeight = -0.2
	cfg.Search.KeywordWeight = 1.2

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative weight")
	}
}

func TestValidate_RecencyBoostsMustGrow(t *testing.T) {
	cfg := validConfig()
	cfg.Search.RecencyBoosts = []RecencyBoost{
		{MaxAgeDays: 30, Factor: 1.05},
		{MaxAgeDays: 7, Factor: 1.10},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-growing age buckets")
	}
}

func TestValidate_RecencyBoostFactorBelowOne(t *testing.T) {
	cfg := validConfig()
	cfg.Search.RecencyBoosts = []RecencyBoost{
		{MaxAgeDays: 7, Factor: 0.9},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for factor below 1")
	}
}

func TestValidate_LegTimeoutBelowTotal(t *testing.T) {
	cfg := validConfig()
	cfg.Search.SemanticTimeoutMS = cfg.Search.TotalTimeoutMS

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for semantic timeout at total budget")
	}

	cfg = validConfig()
	cfg.Search.KeywordTimeoutMS = cfg.Search.TotalTimeoutMS + 1

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for keyword timeout above total budget")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Index.HNSWM != 32 {
		t.Errorf("expected HNSWM=32, got %d", cfg.Index.HNSWM)
	}
	if cfg.Index.TitleWeight != 2.0 {
		t.Errorf("expected TitleWeight=2.0, got %g", cfg.Index.TitleWeight)
	}
	if cfg.Search.SemanticWeight != 0.7 || cfg.Search.KeywordWeight != 0.3 {
		t.Errorf("expected default 0.7/0.3 weights, got %g/%g",
			cfg.Search.SemanticWeight, cfg.Search.KeywordWeight)
	}
	if len(cfg.Search.RecencyBoosts) != 2 {
		t.Fatalf("expected 2 default recency boosts, got %d", len(cfg.Search.RecencyBoosts))
	}
	if cfg.Search.RecencyBoosts[0].MaxAgeDays != 7 || cfg.Search.RecencyBoosts[0].Factor != 1.10 {
		t.Errorf("unexpected first boost: %+v", cfg.Search.RecencyBoosts[0])
	}
	if cfg.Search.TotalTimeoutMS != 200 {
		t.Errorf("expected TotalTimeoutMS=200, got %d", cfg.Search.TotalTimeoutMS)
	}
	if cfg.Search.CacheTTLSec != 300 {
		t.Errorf("expected CacheTTLSec=300, got %d", cfg.Search.CacheTTLSec)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:  HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Index: IndexConfig{HNSWM: 16, HNSWEFConstruct: 200, TitleWeight: 3.0},
		Search: SearchConfig{
			SemanticWeight: 0.5,
			KeywordWeight:  0.5,
			CacheTTLSec:    60,
		},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Index.TitleWeight != 3.0 {
		t.Errorf("expected TitleWeight=3.0, got %g", cfg.Index.TitleWeight)
	}
	if cfg.Search.SemanticWeight != 0.5 {
		t.Errorf("expected SemanticWeight=0.5, got %g", cfg.Search.SemanticWeight)
	}
	if cfg.Search.CacheTTLSec != 60 {
		t.Errorf("expected CacheTTLSec=60, got %d", cfg.Search.CacheTTLSec)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_SEARCHD_VAR", "from-env")

	tests := []struct {
		in, want string
	}{
		{"plain text", "plain text"},
		{"${TEST_SEARCHD_VAR}", "from-env"},
		{"${TEST_SEARCHD_UNSET:-fallback}", "fallback"},
		{"${TEST_SEARCHD_VAR:-fallback}", "from-env"},
		{"${TEST_SEARCHD_UNSET}", ""},
	}
	for _, tc := range tests {
		got := string(expandEnvVars([]byte(tc.in)))
		if got != tc.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
