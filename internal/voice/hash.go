package voice

import (
	"crypto/sha256"
	"encoding/hex"

	"omega/internal/canonicalizer"
)

// sha256Hex is the plain (non-domain-separated) hash VOICE uses for
// corpus_hash and profile_id, per spec.md §4.6.
func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// corpusHash is SHA-256 of the canonicalized text.
func corpusHash(canonicalText string) string {
	return sha256Hex(canonicalText)
}

// buildProfileID derives profile_id from the corpus hash and a config
// fingerprint: "VOICE_" + SHA256("VOICE_PROFILE|" + corpus_hash + "|" + fingerprint).
func buildProfileID(corpusHash, cfgFingerprint string) string {
	return "VOICE_" + sha256Hex("VOICE_PROFILE|"+corpusHash+"|"+cfgFingerprint)
}

func canonicalizeText(text string) string {
	return canonicalizer.Canonicalize(text)
}
