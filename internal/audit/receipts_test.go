package audit

import (
	"testing"
	"time"

	"omega/internal/pipeline"
)

func testRun() pipeline.PipelineRun {
	return pipeline.PipelineRun{
		Schema:     "OMEGA_RUN_V1",
		RunID:      "RUN_TEST_0001",
		Seed:       7,
		ProviderID: "mock",
		InputHash:  "deadbeef",
		GlobalHash: "cafebabe",
		Success:    true,
		Timestamp:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestGenerateAndVerifyReceipt(t *testing.T) {
	m := NewReceiptManager("test-secret")
	receipt, err := m.GenerateReceipt(testRun())
	if err != nil {
		t.Fatalf("GenerateReceipt failed: %v", err)
	}
	if receipt.ReceiptHash == "" || receipt.Signature == "" {
		t.Fatal("expected receipt_hash and signature to be populated")
	}
	if !m.VerifyReceipt(receipt) {
		t.Fatal("expected freshly issued receipt to verify")
	}
}

func TestVerifyReceiptWrongSecret(t *testing.T) {
	issuer := NewReceiptManager("secret-a")
	verifier := NewReceiptManager("secret-b")

	receipt, err := issuer.GenerateReceipt(testRun())
	if err != nil {
		t.Fatalf("GenerateReceipt failed: %v", err)
	}
	if verifier.VerifyReceipt(receipt) {
		t.Fatal("expected receipt signed under a different secret to fail verification")
	}
}

func TestVerifyReceiptTamperedHash(t *testing.T) {
	m := NewReceiptManager("test-secret")
	receipt, err := m.GenerateReceipt(testRun())
	if err != nil {
		t.Fatalf("GenerateReceipt failed: %v", err)
	}
	receipt.GlobalHash = "tampered-hash-value"
	if m.VerifyReceipt(receipt) {
		t.Fatal("expected receipt with tampered content to fail verification")
	}
}

func TestGenerateReceiptRequiresRunID(t *testing.T) {
	m := NewReceiptManager("test-secret")
	run := testRun()
	run.RunID = ""
	if _, err := m.GenerateReceipt(run); err == nil {
		t.Fatal("expected missing run_id to be rejected")
	}
}

func TestGenerateReceiptRequiresGlobalHash(t *testing.T) {
	m := NewReceiptManager("test-secret")
	run := testRun()
	run.GlobalHash = ""
	if _, err := m.GenerateReceipt(run); err == nil {
		t.Fatal("expected missing global_hash to be rejected")
	}
}

func TestVerifyReceiptChainOrdered(t *testing.T) {
	receipts := []ExecutionReceipt{
		{RunID: "RUN_1", Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{RunID: "RUN_2", Timestamp: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
	if err := VerifyReceiptChain(receipts); err != nil {
		t.Fatalf("expected ordered chain to pass, got %v", err)
	}
}

func TestVerifyReceiptChainOutOfOrder(t *testing.T) {
	receipts := []ExecutionReceipt{
		{RunID: "RUN_1", Timestamp: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)},
		{RunID: "RUN_2", Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	if err := VerifyReceiptChain(receipts); err == nil {
		t.Fatal("expected out-of-order chain to be rejected")
	}
}
