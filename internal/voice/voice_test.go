package voice

import "testing"

func sampleText() string {
	return "The vault woke, slow and grim. Why now? I felt cold, then warm... " +
		"\"Run,\" she said, and ran.\n\nHe grabbed the key and threw the door wide; the light was magnificent."
}

func TestAnalyzeProducesValidProfile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinTextLength = 10
	result, err := Analyze(sampleText(), cfg)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if err := ValidateProfile(result.Profile); err != nil {
		t.Fatalf("profile failed validation: %v", err)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinTextLength = 10
	r1, err := Analyze(sampleText(), cfg)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	r2, err := Analyze(sampleText(), cfg)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if r1.Profile.ProfileID != r2.Profile.ProfileID {
		t.Fatal("profile_id diverged across identical runs")
	}
	if r1.Profile.CorpusHash != r2.Profile.CorpusHash {
		t.Fatal("corpus_hash diverged across identical runs")
	}
	if len(r1.Profile.Metrics) != len(r2.Profile.Metrics) {
		t.Fatal("metric count diverged across identical runs")
	}
}

func TestAnalyzeEmptyInputRejected(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := Analyze("   \n\n  ", cfg); err == nil {
		t.Fatal("expected empty-input error")
	}
}

func TestAnalyzeMetricsSortedByKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinTextLength = 10
	result, err := Analyze(sampleText(), cfg)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	for i := 1; i < len(result.Profile.Metrics); i++ {
		if result.Profile.Metrics[i-1].Key > result.Profile.Metrics[i].Key {
			t.Fatalf("metrics not sorted: %q before %q", result.Profile.Metrics[i-1].Key, result.Profile.Metrics[i].Key)
		}
	}
}

func TestAnalyzeNoNaNOrInf(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinTextLength = 10
	result, err := Analyze(sampleText(), cfg)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	for _, m := range result.Profile.Metrics {
		if err := m.Validate(); err != nil {
			t.Errorf("metric %s invalid: %v", m.Key, err)
		}
	}
}

func TestAnalyzeRatiosBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinTextLength = 10
	result, err := Analyze(sampleText(), cfg)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	for _, m := range result.Profile.Metrics {
		if m.Unit == "ratio" && (m.Value < 0 || m.Value > 1) {
			t.Errorf("ratio %s out of [0,1]: %v", m.Key, m.Value)
		}
	}
}

func TestAnalyzeSignatureTokensSortedUnique(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinTextLength = 10
	result, err := Analyze(sampleText(), cfg)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	toks := result.Profile.SignatureTokens
	for i := 1; i < len(toks); i++ {
		if toks[i-1] >= toks[i] {
			t.Fatalf("signature_tokens not sorted/unique at %d: %q, %q", i, toks[i-1], toks[i])
		}
	}
}

func TestAnalyzeProfileIDVariesWithConfig(t *testing.T) {
	cfg1 := DefaultConfig()
	cfg1.MinTextLength = 10
	cfg2 := cfg1
	cfg2.SignatureTopN = 12

	r1, err := Analyze(sampleText(), cfg1)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	r2, err := Analyze(sampleText(), cfg2)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if r1.Profile.ProfileID == r2.Profile.ProfileID {
		t.Fatal("expected profile_id to vary with signature_top_n")
	}
	if r1.Profile.CorpusHash != r2.Profile.CorpusHash {
		t.Fatal("corpus_hash should not depend on config")
	}
}

func TestConfigRejectsUnsupportedLanguage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Language = "xx"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unsupported language to be rejected")
	}
}

func TestConfigRejectsNonDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Deterministic = false
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected non-deterministic config to be rejected")
	}
}

func TestValidateProfileDetectsUnsortedMetrics(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinTextLength = 10
	result, err := Analyze(sampleText(), cfg)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(result.Profile.Metrics) < 2 {
		t.Fatal("expected at least two metrics")
	}
	result.Profile.Metrics[0], result.Profile.Metrics[1] = result.Profile.Metrics[1], result.Profile.Metrics[0]
	if err := ValidateProfile(result.Profile); err == nil {
		t.Fatal("expected unsorted metrics to fail validation")
	}
}
