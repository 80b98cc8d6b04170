package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"dbName":  "backend",
		},
		"secretKey": map[string]any{
			"access": "",
		},
		"category": map[string]any{
			"maxLevelHops": 10,
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_DBNAME", want: "postgres.dbName"},
		{envKey: "SECRETKEY_ACCESS", want: "secretKey.access"},
		{envKey: "CATEGORY_MAXLEVELHOPS", want: "category.maxLevelHops"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	if cfg.HTTP.MaxRequestBodySize != defaultMaxRequestBodySize {
		t.Fatalf("MaxRequestBodySize = %q, want %q", cfg.HTTP.MaxRequestBodySize, defaultMaxRequestBodySize)
	}
	if cfg.Auth.BcryptCost != defaultBcryptCost {
		t.Fatalf("BcryptCost = %d, want %d", cfg.Auth.BcryptCost, defaultBcryptCost)
	}
	if cfg.Auth.TokenTTL != defaultTokenTTL {
		t.Fatalf("TokenTTL = %v, want %v", cfg.Auth.TokenTTL, defaultTokenTTL)
	}
	if cfg.Category.MaxLevelHops != defaultMaxLevelHops {
		t.Fatalf("MaxLevelHops = %d, want %d", cfg.Category.MaxLevelHops, defaultMaxLevelHops)
	}
}
