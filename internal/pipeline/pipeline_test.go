package pipeline

import (
	"testing"

	"omega/internal/hashing"
	"omega/internal/telemetry"
)

func runOnce(input string, seed uint64) PipelineRun {
	ctx := NewContext("run-1", seed, "mock-deterministic-v1", input, hashing.PlainHash(input))
	runner := NewRunner(DefaultPasses(EmotionModeDeterministic)...)
	return runner.Run(ctx)
}

func TestRunnerHappyPath(t *testing.T) {
	run := runOnce("I was so happy and joyful today.", 42)
	if !run.Success {
		t.Fatalf("expected success, got flags/passes: %+v", run.Passes)
	}
	if len(run.Passes) != 3 {
		t.Fatalf("expected 3 passes, got %d", len(run.Passes))
	}
	if run.Passes[0].PassID != "Intake" || run.Passes[1].PassID != "CanonGuard" || run.Passes[2].PassID != "Emotion" {
		t.Errorf("unexpected pass order: %v", []string{run.Passes[0].PassID, run.Passes[1].PassID, run.Passes[2].PassID})
	}
}

func TestCanonGuardHaltsOnEmptyInput(t *testing.T) {
	run := runOnce("   ", 42)
	if run.Success {
		t.Fatal("expected failure for empty input")
	}
	if len(run.Passes) != 2 {
		t.Fatalf("expected run to halt after CanonGuard, got %d passes", len(run.Passes))
	}
	if run.Passes[1].PassID != "CanonGuard" || run.Passes[1].Success {
		t.Errorf("expected CanonGuard to fail, got %+v", run.Passes[1])
	}
}

func TestCanonGuardHaltsOnZeroSeed(t *testing.T) {
	run := runOnce("hello world", 0)
	if run.Success {
		t.Fatal("expected failure for zero seed")
	}
}

func TestDeterminism(t *testing.T) {
	first := runOnce("The quick brown fox was afraid of the terrified dog.", 7)
	for i := 0; i < 50; i++ {
		next := runOnce("The quick brown fox was afraid of the terrified dog.", 7)
		if next.GlobalHash != first.GlobalHash {
			t.Fatalf("run %d: global hash drifted: %s vs %s", i, next.GlobalHash, first.GlobalHash)
		}
	}
}

func TestRunnerRecordsTelemetry(t *testing.T) {
	metrics := telemetry.NewMetrics()
	tracer := telemetry.NewTracer()

	ctx := NewContext("run-1", 42, "mock-deterministic-v1", "I was so happy and joyful today.", hashing.PlainHash("I was so happy and joyful today."))
	runner := NewRunner(DefaultPasses(EmotionModeDeterministic)...).WithTelemetry(metrics, tracer)
	run := runner.Run(ctx)

	if !run.Success {
		t.Fatalf("expected success, got: %+v", run.Passes)
	}
	if got := metrics.GetCounter("pipeline.run.started"); got != 1 {
		t.Errorf("expected pipeline.run.started=1, got %d", got)
	}
	if got := metrics.GetCounter("pipeline.run.succeeded"); got != 1 {
		t.Errorf("expected pipeline.run.succeeded=1, got %d", got)
	}
	for _, id := range []string{"Intake", "CanonGuard", "Emotion"} {
		if got := metrics.GetCounter("pipeline.pass." + id + ".runs"); got != 1 {
			t.Errorf("expected pipeline.pass.%s.runs=1, got %d", id, got)
		}
	}

	spans := tracer.Snapshot()
	if len(spans) != 4 {
		t.Fatalf("expected 4 spans (1 run + 3 passes), got %d", len(spans))
	}
	for _, s := range spans {
		if !s.IsFinished() {
			t.Errorf("expected span %s to be finished", s.Name)
		}
	}
}

func TestChainHashInvariant(t *testing.T) {
	run := runOnce("hello there, a joyful and happy day", 3)
	prev := "GENESIS_HASH"
	for _, pass := range run.Passes {
		want := hashing.PlainHash(pass.Proof.PassID, prev, pass.Proof.InputHash, pass.Proof.OutputHash)
		if pass.Proof.ChainHash != want {
			t.Errorf("pass %s: chain hash mismatch: got %s want %s", pass.PassID, pass.Proof.ChainHash, want)
		}
		prev = pass.Proof.ChainHash
	}
}
