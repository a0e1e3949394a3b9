package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.Pipeline.DefaultSeed != 1 {
		t.Errorf("expected DefaultSeed=1, got: %d", cfg.Pipeline.DefaultSeed)
	}
	if cfg.Genesis.MinWords != 50 || cfg.Genesis.MaxWords != 50000 {
		t.Errorf("expected genesis word bounds [50, 50000], got: [%d, %d]", cfg.Genesis.MinWords, cfg.Genesis.MaxWords)
	}
	if cfg.Voice.Language != "en" {
		t.Errorf("expected Voice.Language='en', got: %s", cfg.Voice.Language)
	}
	if cfg.Provider.Mode != "mock" {
		t.Errorf("expected Provider.Mode='mock', got: %s", cfg.Provider.Mode)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	configContent := `{
		"pipeline": {
			"default_seed": 42,
			"emotion_mode": "hybrid"
		},
		"provider": {
			"mode": "hosted"
		}
	}`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.Pipeline.DefaultSeed != 42 {
		t.Errorf("expected DefaultSeed=42, got: %d", cfg.Pipeline.DefaultSeed)
	}
	if cfg.Pipeline.EmotionMode != "hybrid" {
		t.Errorf("expected EmotionMode='hybrid', got: %s", cfg.Pipeline.EmotionMode)
	}
	if cfg.Provider.Mode != "hosted" {
		t.Errorf("expected Provider.Mode='hosted', got: %s", cfg.Provider.Mode)
	}
	// Check default is preserved for unspecified fields
	if cfg.Genesis.MaxWords != 50000 {
		t.Errorf("expected MaxWords=50000 (default), got: %d", cfg.Genesis.MaxWords)
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("OMEGA_DEFAULT_SEED", "25")
	os.Setenv("OMEGA_PROVIDER_MODE", "local")
	os.Setenv("OMEGA_VOICE_ENABLE_D7_D8", "false")
	os.Setenv("OMEGA_LOG_LEVEL", "debug")
	defer func() {
		os.Unsetenv("OMEGA_DEFAULT_SEED")
		os.Unsetenv("OMEGA_PROVIDER_MODE")
		os.Unsetenv("OMEGA_VOICE_ENABLE_D7_D8")
		os.Unsetenv("OMEGA_LOG_LEVEL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Pipeline.DefaultSeed != 25 {
		t.Errorf("expected DefaultSeed=25, got: %d", cfg.Pipeline.DefaultSeed)
	}
	if cfg.Provider.Mode != "local" {
		t.Errorf("expected Provider.Mode='local', got: %s", cfg.Provider.Mode)
	}
	if cfg.Voice.EnableD7D8 != false {
		t.Errorf("expected Voice.EnableD7D8=false, got: %v", cfg.Voice.EnableD7D8)
	}
	if cfg.Telemetry.LogLevel != "debug" {
		t.Errorf("expected LogLevel='debug', got: %s", cfg.Telemetry.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		config func() *Config
		valid  bool
		errors int
	}{
		{
			name:   "valid default config",
			config: func() *Config { return Default() },
			valid:  true,
		},
		{
			name: "invalid emotion mode",
			config: func() *Config {
				cfg := Default()
				cfg.Pipeline.EmotionMode = "invalid"
				return cfg
			},
			valid:  false,
			errors: 1,
		},
		{
			name: "genesis min exceeds max",
			config: func() *Config {
				cfg := Default()
				cfg.Genesis.MinWords = 60000
				return cfg
			},
			valid:  false,
			errors: 1,
		},
		{
			name: "invalid provider mode",
			config: func() *Config {
				cfg := Default()
				cfg.Provider.Mode = "invalid"
				return cfg
			},
			valid:  false,
			errors: 1,
		},
		{
			name: "hosted mode without api key",
			config: func() *Config {
				cfg := Default()
				cfg.Provider.Mode = "hosted"
				return cfg
			},
			valid:  false,
			errors: 1,
		},
		{
			name: "invalid log level",
			config: func() *Config {
				cfg := Default()
				cfg.Telemetry.LogLevel = "invalid"
				return cfg
			},
			valid:  false,
			errors: 1,
		},
		{
			name: "negative canon max value bytes",
			config: func() *Config {
				cfg := Default()
				cfg.Canon.MaxFactValueBytes = -1
				return cfg
			},
			valid:  false,
			errors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.config()
			result := cfg.Validate()

			if tt.valid && !result.Valid() {
				t.Errorf("expected valid config, got errors: %s", result.Error())
			}
			if !tt.valid && result.Valid() {
				t.Error("expected invalid config, but validation passed")
			}
			if !tt.valid && len(result.Errors) != tt.errors {
				t.Errorf("expected %d errors, got: %d (%s)", tt.errors, len(result.Errors), result.Error())
			}
		})
	}
}

func TestValidateWithDefaults(t *testing.T) {
	cfg := &Config{
		Pipeline: PipelineConfig{
			// Leave most fields as zero values
		},
	}

	err := cfg.ValidateWithDefaults()
	if err != nil {
		t.Fatalf("ValidateWithDefaults failed: %v", err)
	}

	if cfg.Pipeline.DefaultSeed != 1 {
		t.Errorf("expected DefaultSeed=1 (default), got: %d", cfg.Pipeline.DefaultSeed)
	}
	if cfg.Genesis.MaxWords != 50000 {
		t.Errorf("expected MaxWords=50000 (default), got: %d", cfg.Genesis.MaxWords)
	}
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	cfg := Default()
	cfg.Pipeline.DefaultSeed = 50

	if err := Save(cfg, configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if loaded.Pipeline.DefaultSeed != 50 {
		t.Errorf("expected DefaultSeed=50, got: %d", loaded.Pipeline.DefaultSeed)
	}
}

func TestGetEnvDocs(t *testing.T) {
	docs := GetEnvDocs()
	if len(docs) == 0 {
		t.Error("expected some environment variable documentation")
	}

	if _, ok := docs["OMEGA_DEFAULT_SEED"]; !ok {
		t.Error("expected OMEGA_DEFAULT_SEED in docs")
	}
	if _, ok := docs["OMEGA_LOG_LEVEL"]; !ok {
		t.Error("expected OMEGA_LOG_LEVEL in docs")
	}
}

func TestValidationResult(t *testing.T) {
	result := &ValidationResult{
		Errors: []*ValidationError{
			{Field: "test", Message: "error 1"},
			{Field: "test2", Message: "error 2"},
		},
	}

	if result.Valid() {
		t.Error("result with errors should not be valid")
	}

	errStr := result.Error()
	if errStr == "" {
		t.Error("Error() should return non-empty string for invalid result")
	}
	if !contains(errStr, "error 1") || !contains(errStr, "error 2") {
		t.Error("Error() should include all error messages")
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(s) > 0 && containsHelper(s, substr))
}

func containsHelper(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
