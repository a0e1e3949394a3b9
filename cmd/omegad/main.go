// Command omegad is the OMEGA CLI: a minimal stdlib flag-based tool over
// the pipeline runner, the GENESIS planner, the CANON fact store, and
// the VOICE analyzer. Grounded on cmd/runnerd/main.go's simplicity and
// cmd/reachctl/main.go's run(ctx, args, out, errOut) int dispatch
// pattern — no cobra/urfave is wired in, matching the plain-stdlib
// command-line tools this shape is drawn from.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	humanize "github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"omega/internal/audit"
	"omega/internal/canon"
	"omega/internal/canonicaljson"
	"omega/internal/config"
	"omega/internal/contextkeys"
	"omega/internal/determinism"
	"omega/internal/genesis"
	"omega/internal/hashing"
	"omega/internal/persist"
	"omega/internal/pipeline"
	"omega/internal/telemetry"
	"omega/internal/voice"
)

const version = "omegad 0.1.0"

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) < 1 {
		usage(errOut)
		return 1
	}

	switch args[0] {
	case "run":
		return runPipeline(ctx, args[1:], out, errOut)
	case "genesis-plan":
		return runGenesisPlan(ctx, args[1:], out, errOut)
	case "canon":
		return runCanon(ctx, args[1:], out, errOut)
	case "voice":
		return runVoice(ctx, args[1:], out, errOut)
	case "version", "-v", "--version":
		fmt.Fprintln(out, version)
		return 0
	case "help", "-h", "--help":
		usage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "omegad: unknown command %q\n\n", args[0])
		usage(errOut)
		return 1
	}
}

func usage(w io.Writer) {
	_, _ = io.WriteString(w, `omegad - OMEGA deterministic text pipeline

USAGE:
  omegad <command> [options]

COMMANDS:
  run             Execute Intake -> CanonGuard -> Emotion over a text file or stdin
  genesis-plan    Build a GENESIS plan from a GenesisRequest JSON file or stdin
  canon           Assert, query, export, or import CANON facts against a snapshot
  voice           Profile a text file's style (8-dimension VOICE analysis)
  version         Show version information

Run 'omegad <command> -h' for command-specific options.
`)
}

// emitCanonical writes v as canonical JSON (spec.md §4.2) to out, or to
// outPath if non-empty.
func emitCanonical(out, errOut io.Writer, outPath string, v any) int {
	text, err := canonicaljson.Marshal(v)
	if err != nil {
		fmt.Fprintln(errOut, "encoding result:", err)
		return 1
	}
	if outPath == "" {
		fmt.Fprintln(out, text)
		return 0
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintln(errOut, "creating output directory:", err)
			return 1
		}
	}
	if err := os.WriteFile(outPath, []byte(text+"\n"), 0o644); err != nil {
		fmt.Fprintln(errOut, "writing output:", err)
		return 1
	}
	return 0
}

func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

// summaryWriter returns a writer for human-readable progress notes: a
// no-op when stdout isn't a terminal (scripts piping omegad's JSON
// output shouldn't see extra lines mixed in), errOut otherwise.
func summaryWriter(out io.Writer, errOut io.Writer) io.Writer {
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return errOut
	}
	return io.Discard
}

func runPipeline(ctx context.Context, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(errOut)
	input := fs.String("input", "", "path to input text file (default: stdin)")
	seedFlag := fs.Uint64("seed", 0, "seed override (0 = use the configured default)")
	providerFlag := fs.String("provider", "", "provider id override (default: config provider.mode)")
	outPath := fs.String("o", "", "write the result to this path instead of stdout")
	persistPath := fs.String("persist", "", "sqlite database path to durably save the run")
	manifestPath := fs.String("manifest", "", "write a manifest.sha256 covering -o's output (requires -o)")
	receiptSecret := fs.String("receipt-secret", "", "sign an audit receipt under this shared secret")
	verifyN := fs.Int("verify-determinism", 0, "run the pipeline this many times and confirm every global_hash matches (0 = skip)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *manifestPath != "" && *outPath == "" {
		fmt.Fprintln(errOut, "run: -manifest requires -o")
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(errOut, "loading config:", err)
		return 1
	}

	text, err := readInput(*input)
	if err != nil {
		fmt.Fprintln(errOut, "reading input:", err)
		return 1
	}
	if int64(len(text)) > cfg.Pipeline.MaxInputBytes {
		fmt.Fprintf(errOut, "input exceeds configured max_input_bytes (%s > %s)\n",
			humanize.Bytes(uint64(len(text))), humanize.Bytes(uint64(cfg.Pipeline.MaxInputBytes)))
		return 1
	}

	seed := *seedFlag
	if seed == 0 {
		seed = cfg.Pipeline.DefaultSeed
	}
	providerID := strings.TrimSpace(*providerFlag)
	if providerID == "" {
		providerID = cfg.Provider.Mode
	}

	inputHash := hashing.PlainHash(text)
	// run_id pairs the input's content hash with an opaque uuid suffix
	// so two runs over identical input remain distinguishable without
	// disturbing the hash chain, which never includes the suffix.
	runID := "RUN_" + inputHash[:16] + "-" + uuid.New().String()[:8]

	logCtx := contextkeys.ContextWithRunID(ctx, runID)
	logger := telemetry.Default().WithContext(logCtx)
	logger.Infof("starting run provider=%s seed=%d", providerID, seed)

	trial := func() (string, error) {
		c := pipeline.NewContext(runID, seed, providerID, text, inputHash)
		r := pipeline.NewRunner(pipeline.DefaultPasses(pipeline.EmotionMode(cfg.Pipeline.EmotionMode))...)
		return r.Run(c).GlobalHash, nil
	}

	if *verifyN > 0 {
		if _, err := determinism.VerifyDeterminism(*verifyN, trial, &determinism.WriterReporter{Out: summaryWriter(out, errOut)}); err != nil {
			fmt.Fprintln(errOut, "determinism verification failed:", err)
			return 1
		}
		logger.Infof("determinism verified across %d trials", *verifyN)
	}

	var metrics *telemetry.Metrics
	if cfg.Telemetry.MetricsEnabled {
		metrics = telemetry.NewMetrics().WithTag("provider_id", providerID)
		if cfg.Telemetry.MetricsPath != "" {
			if sunk, err := metrics.WithSink(cfg.Telemetry.MetricsPath); err != nil {
				logger.Warnf("opening metrics sink %s: %v", cfg.Telemetry.MetricsPath, err)
			} else {
				metrics = sunk
				defer metrics.CloseSink()
			}
		}
	}
	tracer := telemetry.NewTracer()

	pctx := pipeline.NewContext(runID, seed, providerID, text, inputHash)
	runner := pipeline.NewRunner(pipeline.DefaultPasses(pipeline.EmotionMode(cfg.Pipeline.EmotionMode))...).WithTelemetry(metrics, tracer)
	result := runner.Run(pctx)

	if metrics != nil {
		logger.Debugf("pipeline metrics: %+v", metrics.Snapshot())
	}

	if !result.Success {
		logger.Warnf("run completed with failures: %s", strings.Join(pctx.Flags, "; "))
	} else {
		logger.Info("run completed")
	}

	output := struct {
		pipeline.PipelineRun
		Receipt *audit.ExecutionReceipt `json:"receipt,omitempty"`
	}{PipelineRun: result}

	if *receiptSecret != "" {
		receipt, err := audit.NewReceiptManager(*receiptSecret).GenerateReceipt(result)
		if err != nil {
			fmt.Fprintln(errOut, "generating receipt:", err)
			return 1
		}
		output.Receipt = receipt
	}

	if *persistPath != "" {
		store, err := persist.Open(*persistPath)
		if err != nil {
			fmt.Fprintln(errOut, "opening persist store:", err)
			return 1
		}
		defer store.Close()
		if err := store.SaveRun(ctx, result); err != nil {
			fmt.Fprintln(errOut, "saving run:", err)
			return 1
		}
	}

	if code := emitCanonical(out, errOut, *outPath, output); code != 0 {
		return code
	}

	if *manifestPath != "" {
		if err := persist.SaveManifest(*manifestPath, map[string]string{filepath.Base(*outPath): *outPath}); err != nil {
			fmt.Fprintln(errOut, "writing manifest:", err)
			return 1
		}
	}

	return 0
}

func runGenesisPlan(ctx context.Context, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("genesis-plan", flag.ContinueOnError)
	fs.SetOutput(errOut)
	input := fs.String("input", "", "path to a GenesisRequest JSON file (default: stdin)")
	outPath := fs.String("o", "", "write the plan to this path instead of stdout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	raw, err := readInput(*input)
	if err != nil {
		fmt.Fprintln(errOut, "reading input:", err)
		return 1
	}

	var req genesis.Request
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		fmt.Fprintln(errOut, "parsing GenesisRequest:", err)
		return 1
	}
	if req.SagaID == "" {
		req.SagaID = "SAGA:" + uuid.New().String()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(errOut, "loading config:", err)
		return 1
	}

	plan, err := genesis.BuildPlan(req, cfg.Genesis.Bounds())
	if err != nil {
		fmt.Fprintln(errOut, "building plan:", err)
		return 1
	}
	if len(plan.Warnings) > 0 {
		fmt.Fprintf(summaryWriter(out, errOut), "genesis-plan: %d warning(s): %s\n",
			len(plan.Warnings), strings.Join(plan.Warnings, "; "))
	}

	return emitCanonical(out, errOut, *outPath, plan)
}

func runVoice(ctx context.Context, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("voice", flag.ContinueOnError)
	fs.SetOutput(errOut)
	input := fs.String("input", "", "path to a text file to profile (default: stdin)")
	outPath := fs.String("o", "", "write the profile to this path instead of stdout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	text, err := readInput(*input)
	if err != nil {
		fmt.Fprintln(errOut, "reading input:", err)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(errOut, "loading config:", err)
		return 1
	}

	result, err := voice.Analyze(text, cfg.Voice.ToVoiceConfig())
	if err != nil {
		fmt.Fprintln(errOut, "analyzing voice:", err)
		return 1
	}

	return emitCanonical(out, errOut, *outPath, result)
}

func runCanon(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) < 1 {
		usageCanon(errOut)
		return 1
	}
	switch args[0] {
	case "assert":
		return runCanonAssert(ctx, args[1:], out, errOut)
	case "query":
		return runCanonQuery(ctx, args[1:], out, errOut)
	case "export":
		return runCanonExport(ctx, args[1:], out, errOut)
	case "import":
		return runCanonImport(ctx, args[1:], out, errOut)
	case "-h", "--help", "help":
		usageCanon(out)
		return 0
	default:
		fmt.Fprintf(errOut, "omegad canon: unknown subcommand %q\n\n", args[0])
		usageCanon(errOut)
		return 1
	}
}

func usageCanon(w io.Writer) {
	_, _ = io.WriteString(w, `omegad canon - CANON fact store operations

USAGE:
  omegad canon assert --snapshot <path> --entity <TYPE:ID> --key <key> --value <json> [--source SRC] [--policy POLICY] [--confidence N] [--lock LEVEL]
  omegad canon query   --snapshot <path> --entity <TYPE:ID> [--key <key>]
  omegad canon export  --snapshot <path> [-o <path>]
  omegad canon import  --snapshot <path> --from <path> [--policy POLICY]

Every subcommand loads a CANON snapshot file (creating an empty store if
absent), applies the operation, and (except for query/export, and
import with --policy DryRun) re-saves the snapshot.
`)
}

// loadSnapshot returns the store reconstructed from the snapshot at
// path, or a fresh empty store if path does not exist.
func loadSnapshot(path string) (*canon.Store, error) {
	store := canon.NewStore()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, err
	}
	var snapshot canon.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if _, err := store.ImportSnapshot(snapshot, canon.ImportReplaceAll); err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	return store, nil
}

func saveSnapshot(store *canon.Store, path string) error {
	snapshot := store.ExportSnapshot(nil)
	text, err := canonicaljson.Marshal(snapshot)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(text+"\n"), 0o644)
}

func runCanonAssert(ctx context.Context, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("canon assert", flag.ContinueOnError)
	fs.SetOutput(errOut)
	snapshotPath := fs.String("snapshot", "", "CANON snapshot file path")
	entity := fs.String("entity", "", "entity id (TYPE:ID)")
	key := fs.String("key", "", "fact key")
	valueRaw := fs.String("value", "", "fact value as JSON")
	source := fs.String("source", string(canon.SourceSystem), "fact source")
	policy := fs.String("policy", string(canon.PolicyAskUser), "conflict policy")
	confidence := fs.Float64("confidence", 0, "confidence override (0 = source default)")
	lock := fs.String("lock", string(canon.LockNone), "lock level")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *snapshotPath == "" || *entity == "" || *key == "" || *valueRaw == "" {
		fmt.Fprintln(errOut, "canon assert: -snapshot, -entity, -key, and -value are required")
		return 2
	}

	var value any
	if err := json.Unmarshal([]byte(*valueRaw), &value); err != nil {
		fmt.Fprintln(errOut, "parsing -value:", err)
		return 1
	}

	store, err := loadSnapshot(*snapshotPath)
	if err != nil {
		fmt.Fprintln(errOut, "loading snapshot:", err)
		return 1
	}

	confidenceValue := *confidence
	if confidenceValue == 0 {
		confidenceValue = canon.DefaultConfidence(canon.Source(*source))
	}

	outcome, fact, err := store.AssertFact(canon.Fact{
		EntityID:   *entity,
		Key:        *key,
		Value:      value,
		Source:     canon.Source(*source),
		Confidence: confidenceValue,
		Lock:       canon.Lock(*lock),
	}, canon.Policy(*policy))
	if err != nil {
		fmt.Fprintln(errOut, "asserting fact:", err)
		return 1
	}

	if err := saveSnapshot(store, *snapshotPath); err != nil {
		fmt.Fprintln(errOut, "saving snapshot:", err)
		return 1
	}

	return emitCanonical(out, errOut, "", struct {
		Outcome canon.AssertOutcome `json:"outcome"`
		Fact    canon.Fact          `json:"fact"`
	}{outcome, fact})
}

func runCanonQuery(ctx context.Context, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("canon query", flag.ContinueOnError)
	fs.SetOutput(errOut)
	snapshotPath := fs.String("snapshot", "", "CANON snapshot file path")
	entity := fs.String("entity", "", "entity id (TYPE:ID)")
	key := fs.String("key", "", "fact key (omit to list the whole entity)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *snapshotPath == "" || *entity == "" {
		fmt.Fprintln(errOut, "canon query: -snapshot and -entity are required")
		return 2
	}

	store, err := loadSnapshot(*snapshotPath)
	if err != nil {
		fmt.Fprintln(errOut, "loading snapshot:", err)
		return 1
	}

	if *key != "" {
		fact, ok := store.Query(*entity, *key)
		if !ok {
			fmt.Fprintf(errOut, "no fact at %s.%s\n", *entity, *key)
			return 1
		}
		return emitCanonical(out, errOut, "", fact)
	}
	return emitCanonical(out, errOut, "", store.QueryEntity(*entity))
}

func runCanonExport(ctx context.Context, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("canon export", flag.ContinueOnError)
	fs.SetOutput(errOut)
	snapshotPath := fs.String("snapshot", "", "CANON snapshot file path")
	outPath := fs.String("o", "", "write the snapshot to this path instead of stdout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *snapshotPath == "" {
		fmt.Fprintln(errOut, "canon export: -snapshot is required")
		return 2
	}

	store, err := loadSnapshot(*snapshotPath)
	if err != nil {
		fmt.Fprintln(errOut, "loading snapshot:", err)
		return 1
	}

	return emitCanonical(out, errOut, *outPath, store.ExportSnapshot(nil))
}

func runCanonImport(ctx context.Context, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("canon import", flag.ContinueOnError)
	fs.SetOutput(errOut)
	snapshotPath := fs.String("snapshot", "", "CANON snapshot file path to update")
	fromPath := fs.String("from", "", "snapshot file to import")
	policy := fs.String("policy", string(canon.ImportValidateThenMerge), "import policy")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *snapshotPath == "" || *fromPath == "" {
		fmt.Fprintln(errOut, "canon import: -snapshot and -from are required")
		return 2
	}

	store, err := loadSnapshot(*snapshotPath)
	if err != nil {
		fmt.Fprintln(errOut, "loading snapshot:", err)
		return 1
	}

	incomingData, err := os.ReadFile(*fromPath)
	if err != nil {
		fmt.Fprintln(errOut, "reading -from:", err)
		return 1
	}
	var incoming canon.Snapshot
	if err := json.Unmarshal(incomingData, &incoming); err != nil {
		fmt.Fprintln(errOut, "parsing -from:", err)
		return 1
	}

	result, err := store.ImportSnapshot(incoming, canon.ImportPolicy(*policy))
	if err != nil {
		fmt.Fprintln(errOut, "importing snapshot:", err)
		return 1
	}

	if canon.ImportPolicy(*policy) != canon.ImportDryRun {
		if err := saveSnapshot(store, *snapshotPath); err != nil {
			fmt.Fprintln(errOut, "saving snapshot:", err)
			return 1
		}
	}

	return emitCanonical(out, errOut, "", result)
}
