package voicehybrid

import (
	"context"
	"testing"

	"omega/internal/model"
	"omega/internal/voice"
)

func sampleText() string {
	return "The vault woke, slow and grim. Why now? I felt cold, then warm... " +
		"\"Run,\" she said, and ran.\n\nHe grabbed the key and threw the door wide; the light was magnificent."
}

func testPolicy() Policy {
	return MinimalPolicy("TEST_POL", "en")
}

func testConfig() Config {
	cfg := Config{
		RunID:                 "RUN_TEST_0001",
		RequiredPolicyVersion: "2.0.0",
		Mode:                  ModeOff,
		Seed:                  7,
		VoiceConfig:           voice.DefaultConfig(),
	}
	cfg.VoiceConfig.MinTextLength = 10
	return cfg
}

func TestPolicyMinimalValid(t *testing.T) {
	p := testPolicy()
	if err := p.Validate(); err != nil {
		t.Fatalf("expected minimal policy to validate, got %v", err)
	}
	if p.PolicyVersion != "2.0.0" {
		t.Fatalf("unexpected default policy_version %q", p.PolicyVersion)
	}
}

func TestPolicyEmptyIDInvalid(t *testing.T) {
	p := MinimalPolicy("", "en")
	if err := p.Validate(); err == nil {
		t.Fatal("expected empty policy_id to be rejected")
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	cfg := testConfig()
	base, err := voice.Analyze(sampleText(), cfg.VoiceConfig)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	policy := testPolicy()
	first := BuildPrompt(policy, base.Profile)
	for i := 0; i < 20; i++ {
		g := BuildPrompt(policy, base.Profile)
		if g.GuidanceHash != first.GuidanceHash || g.Text != first.Text {
			t.Fatalf("guidance diverged on iteration %d", i)
		}
	}
}

func TestBuildPromptHash64Hex(t *testing.T) {
	base, err := voice.Analyze(sampleText(), testConfig().VoiceConfig)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	g := BuildPrompt(testPolicy(), base.Profile)
	if len(g.GuidanceHash) != 64 {
		t.Fatalf("expected 64-char guidance_hash, got %d", len(g.GuidanceHash))
	}
	for _, r := range g.GuidanceHash {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			t.Fatalf("guidance_hash is not lowercase hex: %q", g.GuidanceHash)
		}
	}
}

func TestBuildPromptDirectivesSorted(t *testing.T) {
	base, err := voice.Analyze(sampleText(), testConfig().VoiceConfig)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	policy := testPolicy()
	policy.SoftRules = []string{"Z rule last", "A rule first", "M rule middle"}
	g := BuildPrompt(policy, base.Profile)
	for i := 1; i < len(g.Directives); i++ {
		if g.Directives[i-1] > g.Directives[i] {
			t.Fatalf("directives not sorted: %q before %q", g.Directives[i-1], g.Directives[i])
		}
	}
}

func TestBuildPromptDifferentPolicyDifferentHash(t *testing.T) {
	base, err := voice.Analyze(sampleText(), testConfig().VoiceConfig)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	g1 := BuildPrompt(MinimalPolicy("AUTHOR_A", "en"), base.Profile)
	g2 := BuildPrompt(MinimalPolicy("AUTHOR_B", "en"), base.Profile)
	if g1.GuidanceHash == g2.GuidanceHash {
		t.Fatal("expected different policies to produce different guidance_hash")
	}
}

func TestAnalyzeHybridModeOffNoProvider(t *testing.T) {
	cfg := testConfig()
	store := NewInMemoryReplayStore()
	result, err := AnalyzeHybrid(context.Background(), sampleText(), testPolicy(), cfg, nil, store)
	if err != nil {
		t.Fatalf("AnalyzeHybrid failed: %v", err)
	}
	if result.Completion != nil {
		t.Fatal("expected no completion without a provider")
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %v", result.Warnings)
	}
}

func TestAnalyzeHybridRecordThenReplay(t *testing.T) {
	store := NewInMemoryReplayStore()
	provider := model.NewDeterministicMockProvider()
	policy := testPolicy()

	recordCfg := testConfig()
	recordCfg.Mode = ModeRecord
	recorded, err := AnalyzeHybrid(context.Background(), sampleText(), policy, recordCfg, provider, store)
	if err != nil {
		t.Fatalf("record pass failed: %v", err)
	}
	if recorded.Completion == nil {
		t.Fatal("expected a completion from the record pass")
	}
	if recorded.Replay == nil {
		t.Fatal("expected a replay record from the record pass")
	}

	replayCfg := testConfig()
	replayCfg.Mode = ModeReplay
	replayed, err := AnalyzeHybrid(context.Background(), sampleText(), policy, replayCfg, nil, store)
	if err != nil {
		t.Fatalf("replay pass failed: %v", err)
	}
	if replayed.Completion == nil || *replayed.Completion != *recorded.Completion {
		t.Fatal("replay completion does not match recorded completion")
	}
}

func TestAnalyzeHybridReplayRefusesInputMismatch(t *testing.T) {
	store := NewInMemoryReplayStore()
	provider := model.NewDeterministicMockProvider()
	policy := testPolicy()

	recordCfg := testConfig()
	recordCfg.Mode = ModeRecord
	if _, err := AnalyzeHybrid(context.Background(), sampleText(), policy, recordCfg, provider, store); err != nil {
		t.Fatalf("record pass failed: %v", err)
	}

	replayCfg := testConfig()
	replayCfg.Mode = ModeReplay
	differentText := sampleText() + " A wholly different closing line changes the input hash."
	_, err := AnalyzeHybrid(context.Background(), differentText, policy, replayCfg, nil, store)
	if err == nil {
		t.Fatal("expected replay with a different input to be refused")
	}
}

func TestAnalyzeHybridReplayRefusesPolicyMismatch(t *testing.T) {
	store := NewInMemoryReplayStore()
	provider := model.NewDeterministicMockProvider()
	policy := testPolicy()

	recordCfg := testConfig()
	recordCfg.Mode = ModeRecord
	if _, err := AnalyzeHybrid(context.Background(), sampleText(), policy, recordCfg, provider, store); err != nil {
		t.Fatalf("record pass failed: %v", err)
	}

	replayCfg := testConfig()
	replayCfg.Mode = ModeReplay
	differentPolicy := MinimalPolicy("DIFFERENT_POLICY", "en")
	_, err := AnalyzeHybrid(context.Background(), sampleText(), differentPolicy, replayCfg, nil, store)
	if err == nil {
		t.Fatal("expected replay with a different policy_id to be refused")
	}
}

func TestAnalyzeHybridReplayMissingRecord(t *testing.T) {
	store := NewInMemoryReplayStore()
	cfg := testConfig()
	cfg.Mode = ModeReplay
	_, err := AnalyzeHybrid(context.Background(), sampleText(), testPolicy(), cfg, nil, store)
	if err == nil {
		t.Fatal("expected replay with no stored record to fail")
	}
}

func TestAnalyzeHybridRecordRequiresProvider(t *testing.T) {
	store := NewInMemoryReplayStore()
	cfg := testConfig()
	cfg.Mode = ModeRecord
	_, err := AnalyzeHybrid(context.Background(), sampleText(), testPolicy(), cfg, nil, store)
	if err == nil {
		t.Fatal("expected mode=Record without a provider to fail")
	}
}

func TestAnalyzeHybridRejectsPolicyVersionMismatch(t *testing.T) {
	store := NewInMemoryReplayStore()
	cfg := testConfig()
	cfg.RequiredPolicyVersion = "9.9.9"
	_, err := AnalyzeHybrid(context.Background(), sampleText(), testPolicy(), cfg, nil, store)
	if err == nil {
		t.Fatal("expected a policy_version mismatch to be rejected")
	}
}

func TestReplayRecordTamperDetected(t *testing.T) {
	store := NewInMemoryReplayStore()
	rec := NewReplayRecord("RUN_TAMPER", "mock")
	rec.PolicyID = "P1"
	rec.PolicyVersion = "2.0.0"
	if err := store.WriteRecord(recordKey("RUN_TAMPER"), rec); err != nil {
		t.Fatalf("WriteRecord failed: %v", err)
	}

	tampered, err := store.ReadRecord(recordKey("RUN_TAMPER"))
	if err != nil {
		t.Fatalf("ReadRecord failed: %v", err)
	}
	tampered.Completion = "a completion that was never recorded"
	store.records[recordKey("RUN_TAMPER")] = tampered

	if _, err := store.ReadRecord(recordKey("RUN_TAMPER")); err == nil {
		t.Fatal("expected tampered record to fail record_hash verification")
	}
}
