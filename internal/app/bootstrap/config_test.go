package bootstrap

import (
	"testing"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "staffhub",
		TokenKey:        "a-real-signing-key-0123456789ABCDEF",
		TokenTTL:        12 * time.Hour,
		LoginRateLimit:  10,
		LoginRateWindow: time.Minute,
	}
}

func TestValidateConfig_Valid(t *testing.T) {
	coreCfg := &config.CoreConfig{Env: "dev"}
	if err := ValidateConfig(coreCfg, validAppConfig(), testLogger()); err != nil {
		t.Fatalf("ValidateConfig failed: %v", err)
	}
}

func TestValidateConfig_BadMongoURI(t *testing.T) {
	coreCfg := &config.CoreConfig{Env: "dev"}
	appCfg := validAppConfig()
	appCfg.MongoURI = "http://not-a-mongo-uri"
	if err := ValidateConfig(coreCfg, appCfg, testLogger()); err == nil {
		t.Fatal("expected error for non-mongodb URI")
	}
}

func TestValidateConfig_EmptyTokenKey(t *testing.T) {
	coreCfg := &config.CoreConfig{Env: "dev"}
	appCfg := validAppConfig()
	appCfg.TokenKey = ""
	if err := ValidateConfig(coreCfg, appCfg, testLogger()); err == nil {
		t.Fatal("expected error for empty token key")
	}
}

func TestValidateConfig_DevKeyRejectedInProd(t *testing.T) {
	appCfg := validAppConfig()
	appCfg.TokenKey = "dev-only-change-me-please-0123456789ABCDEF"

	// Fine in dev.
	if err := ValidateConfig(&config.CoreConfig{Env: "dev"}, appCfg, testLogger()); err != nil {
		t.Fatalf("dev default should pass in dev: %v", err)
	}
	// Refused in prod.
	if err := ValidateConfig(&config.CoreConfig{Env: "prod"}, appCfg, testLogger()); err == nil {
		t.Fatal("expected error for dev default key in prod")
	}
}

func TestValidateConfig_NonPositiveTTL(t *testing.T) {
	appCfg := validAppConfig()
	appCfg.TokenTTL = 0
	if err := ValidateConfig(&config.CoreConfig{Env: "dev"}, appCfg, testLogger()); err == nil {
		t.Fatal("expected error for zero token TTL")
	}
}

func TestSplitOrigins(t *testing.T) {
	got := splitOrigins(" http://localhost:5173 , https://app.example.com ,, ")
	want := []string{"http://localhost:5173", "https://app.example.com"}
	if len(got) != len(want) {
		t.Fatalf("expected %d origins, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("origin %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
