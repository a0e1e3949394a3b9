// Package audit provides an optional cryptographic audit trail layered
// on top of a PipelineRun: a signed receipt an operator can hand to a
// third party to attest "this run's global_hash is exactly this, and
// I attested to it at this time" without exposing the run's full
// content. This sits alongside, not inside, the pipeline's own hash
// chain (spec.md §3/§4.3) — the chain proves internal consistency, the
// receipt proves external provenance.
package audit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"omega/internal/pipeline"
)

// ExecutionReceipt is a signed proof that a PipelineRun with a given
// run_id and global_hash was attested to at a point in time.
type ExecutionReceipt struct {
	RunID       string    `json:"run_id"`
	Seed        uint64    `json:"seed"`
	ProviderID  string    `json:"provider_id"`
	Timestamp   time.Time `json:"timestamp"`
	InputHash   string    `json:"input_hash"`
	GlobalHash  string    `json:"global_hash"`
	ReceiptHash string    `json:"receipt_hash"` // SHA256 of the receipt content
	Signature   string    `json:"signature"`    // HMAC-SHA256 signature
}

// ReceiptManager issues and verifies receipts under a shared secret.
type ReceiptManager struct {
	SecretKey string
}

// NewReceiptManager returns a ReceiptManager signing with secret.
func NewReceiptManager(secret string) *ReceiptManager {
	if secret == "" {
		panic("audit: ReceiptManager requires a non-empty secret key")
	}
	return &ReceiptManager{SecretKey: secret}
}

// canonicalJSON produces deterministic JSON by sorting map keys,
// ensuring receipt hashes are reproducible across serialization order changes.
func canonicalJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return marshalSorted(raw)
}

func marshalSorted(v interface{}) ([]byte, error) {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := []byte("{")
		for i, k := range keys {
			if i > 0 {
				out = append(out, ',')
			}
			keyBytes, _ := json.Marshal(k)
			out = append(out, keyBytes...)
			out = append(out, ':')
			valBytes, err := marshalSorted(val[k])
			if err != nil {
				return nil, err
			}
			out = append(out, valBytes...)
		}
		out = append(out, '}')
		return out, nil
	case []interface{}:
		out := []byte("[")
		for i, item := range val {
			if i > 0 {
				out = append(out, ',')
			}
			itemBytes, err := marshalSorted(item)
			if err != nil {
				return nil, err
			}
			out = append(out, itemBytes...)
		}
		out = append(out, ']')
		return out, nil
	default:
		return json.Marshal(v)
	}
}

// GenerateReceipt issues a signed receipt attesting to run's identity
// and global_hash at the current moment.
func (m *ReceiptManager) GenerateReceipt(run pipeline.PipelineRun) (*ExecutionReceipt, error) {
	if run.RunID == "" {
		return nil, fmt.Errorf("run_id is required")
	}
	if run.GlobalHash == "" {
		return nil, fmt.Errorf("global_hash is required")
	}

	receipt := &ExecutionReceipt{
		RunID:      run.RunID,
		Seed:       run.Seed,
		ProviderID: run.ProviderID,
		Timestamp:  time.Now().UTC(),
		InputHash:  run.InputHash,
		GlobalHash: run.GlobalHash,
	}

	rData, err := canonicalJSON(receipt)
	if err != nil {
		return nil, fmt.Errorf("marshaling receipt for hashing: %w", err)
	}
	h := sha256.New()
	h.Write(rData)
	receipt.ReceiptHash = hex.EncodeToString(h.Sum(nil))

	mac := hmac.New(sha256.New, []byte(m.SecretKey))
	mac.Write([]byte(receipt.ReceiptHash))
	receipt.Signature = hex.EncodeToString(mac.Sum(nil))

	return receipt, nil
}

// VerifyReceipt checks the integrity and signature of a receipt.
func (m *ReceiptManager) VerifyReceipt(r *ExecutionReceipt) bool {
	if r == nil || r.ReceiptHash == "" || r.Signature == "" {
		return false
	}
	if r.RunID == "" || r.GlobalHash == "" {
		return false
	}

	unsigned := *r
	unsigned.ReceiptHash = ""
	unsigned.Signature = ""
	rData, err := canonicalJSON(&unsigned)
	if err != nil {
		return false
	}
	h := sha256.New()
	h.Write(rData)
	if hex.EncodeToString(h.Sum(nil)) != r.ReceiptHash {
		return false
	}

	mac := hmac.New(sha256.New, []byte(m.SecretKey))
	mac.Write([]byte(r.ReceiptHash))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(r.Signature), []byte(expected))
}

// VerifyReceiptChain validates an ordered sequence of receipts for temporal consistency.
func VerifyReceiptChain(receipts []ExecutionReceipt) error {
	for i := 1; i < len(receipts); i++ {
		if receipts[i].Timestamp.Before(receipts[i-1].Timestamp) {
			return fmt.Errorf("receipt chain broken at index %d: timestamp %v is before previous %v",
				i, receipts[i].Timestamp, receipts[i-1].Timestamp)
		}
	}
	return nil
}
