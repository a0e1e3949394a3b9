package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"time"
)

// Load loads configuration from defaults, file, and environment.
// Resolution order (highest priority last):
// 1. Defaults
// 2. Config file
// 3. Environment variables
func Load() (*Config, error) {
	cfg := Default()

	if path := configFilePath(); path != "" {
		if err := loadFromFile(cfg, path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific file.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cfg)
}

func loadFromEnv(cfg *Config) error {
	return loadStructFromEnv(reflect.ValueOf(cfg).Elem())
}

// loadStructFromEnv recursively loads struct fields from environment.
func loadStructFromEnv(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			if field.Kind() == reflect.Struct {
				if err := loadStructFromEnv(field); err != nil {
					return err
				}
			}
			continue
		}

		if value := os.Getenv(envTag); value != "" {
			if err := setField(field, value); err != nil {
				return fmt.Errorf("setting %s: %w", envTag, err)
			}
		}
	}

	return nil
}

// setField sets a struct field from a string value.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("parsing duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("parsing int: %w", err)
			}
			field.SetInt(n)
		}
	case reflect.Uint, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing uint: %w", err)
		}
		field.SetUint(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("parsing bool: %w", err)
		}
		field.SetBool(b)
	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("parsing float64: %w", err)
		}
		field.SetFloat(f)
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

// configFilePath returns the path to the config file.
func configFilePath() string {
	if path := os.Getenv("OMEGA_CONFIG_PATH"); path != "" {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, ".omega", "config.json"),
		filepath.Join(home, ".omega.json"),
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// Save saves configuration to a file.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// GetEnvDocs returns documentation for all environment variables.
func GetEnvDocs() map[string]string {
	return map[string]string{
		"OMEGA_DEFAULT_SEED":           "Default seed for runs that omit one (default: 1)",
		"OMEGA_MAX_INPUT_BYTES":        "CanonGuard input size ceiling in bytes (default: 1048576)",
		"OMEGA_EMOTION_MODE":           "Emotion pass analyzer: deterministic, hybrid, or boost (default: deterministic)",
		"OMEGA_LEXICON_VERSION":        "Emotion lexicon version recorded in artifacts (default: v1)",
		"OMEGA_GENESIS_MIN_WORDS":      "GENESIS minimum target word count (default: 50)",
		"OMEGA_GENESIS_MAX_WORDS":      "GENESIS maximum target word count (default: 50000)",
		"OMEGA_GENESIS_MIN_ACT_COUNT":  "GENESIS minimum act count (default: 1)",
		"OMEGA_GENESIS_MAX_ACT_COUNT":  "GENESIS maximum act count (default: 10)",
		"OMEGA_GENESIS_MAX_CLAIMS":     "GENESIS maximum continuity claims per request (default: 1000)",
		"OMEGA_GENESIS_MAX_MAJOR_TURNS": "GENESIS maximum arc major turns per request (default: 100)",
		"OMEGA_GENESIS_MAX_CONSTRAINTS": "GENESIS maximum constraints per request (default: 100)",
		"OMEGA_CANON_MAX_VALUE_BYTES":  "CANON maximum fact value size in bytes (default: 65536)",
		"OMEGA_CANON_SNAPSHOT_INTERVAL": "CANON ledger events between snapshots, 0 = never (default: 100)",
		"OMEGA_VOICE_LANGUAGE":         "VOICE analyzer language (default: en)",
		"OMEGA_VOICE_ENABLE_D7_D8":     "Enable VOICE D7/D8 dimensions (default: true)",
		"OMEGA_VOICE_SIGNATURE_TOP_N":  "VOICE signature token cap (default: 24)",
		"OMEGA_VOICE_MIN_TEXT_LENGTH":  "VOICE minimum input length in runes (default: 50)",
		"OMEGA_PROVIDER_MODE":          "Provider tier: hosted, local, or mock (default: mock)",
		"OMEGA_PROVIDER_API_KEY":       "Primary provider API key",
		"OMEGA_PROVIDER_BASE_URL":      "Primary provider base URL",
		"OMEGA_PROVIDER_TIMEOUT":       "Primary provider timeout in seconds (default: 30)",
		"OMEGA_PROVIDER_MAX_RETRIES":   "Primary provider max retries (default: 3)",
		"OMEGA_LOG_LEVEL":              "Log level: debug, info, warn, error, fatal (default: info)",
		"OMEGA_LOG_DIR":                "Log directory",
		"OMEGA_METRICS_ENABLED":        "Enable metrics (default: true)",
		"OMEGA_METRICS_PATH":           "Metrics output path",
		"OMEGA_CONFIG_PATH":            "Path to config file",
	}
}
