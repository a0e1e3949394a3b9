package genesis

import (
	"sort"

	"omega/internal/canonicaljson"
	"omega/internal/canonicalizer"
	"omega/internal/hashing"
)

// CanonicalRequest is the NFKC'd, sorted form of a Request that
// everything downstream hashes and re-derives from. Metadata timestamps
// are deliberately excluded (spec.md §4.5 step 2).
type CanonicalRequest struct {
	SagaID             string
	Seed               uint64
	SchemaVersion      string
	CanonReadScope     []string
	VoiceProfileRef    string
	TargetCanonical    string
	ConstraintsCanonical string
	ArcCanonical       string
	ContinuityCanonical string
}

// Canonicalize performs phase 2: NFKC normalization, scope sorting, and
// canonical-JSON serialization of the structured sub-objects.
func Canonicalize(req Request) (CanonicalRequest, error) {
	scope := make([]string, len(req.CanonReadScope))
	copy(scope, req.CanonReadScope)
	sort.Strings(scope)

	targetJSON, err := canonicaljson.Marshal(req.Target)
	if err != nil {
		return CanonicalRequest{}, err
	}
	constraintsJSON, err := canonicaljson.Marshal(req.Constraints)
	if err != nil {
		return CanonicalRequest{}, err
	}
	arcJSON, err := canonicaljson.Marshal(req.ArcSpec)
	if err != nil {
		return CanonicalRequest{}, err
	}

	claims := make([]ContinuityClaim, len(req.ContinuityClaims))
	copy(claims, req.ContinuityClaims)
	sort.Slice(claims, func(i, j int) bool { return claims[i].ClaimID < claims[j].ClaimID })
	continuityJSON, err := canonicaljson.Marshal(claims)
	if err != nil {
		return CanonicalRequest{}, err
	}

	return CanonicalRequest{
		SagaID:               canonicalizer.NFKC(req.SagaID),
		Seed:                 req.Seed,
		SchemaVersion:        req.Metadata.SchemaVersion,
		CanonReadScope:       scope,
		VoiceProfileRef:      canonicalizer.NFKC(req.VoiceProfileRef),
		TargetCanonical:      targetJSON,
		ConstraintsCanonical: constraintsJSON,
		ArcCanonical:         arcJSON,
		ContinuityCanonical:  continuityJSON,
	}, nil
}

// HashRequest performs phase 3: domain-separated hash of the canonical
// request, fields fed in the fixed order spec.md §4.5 step 3 names.
func HashRequest(c CanonicalRequest) string {
	return hashing.NewDomainHasher(hashing.DomainRequest).
		UpdateString(c.SagaID).
		UpdateUint64(c.Seed).
		UpdateString(c.SchemaVersion).
		UpdateStringList(c.CanonReadScope).
		UpdateString(c.VoiceProfileRef).
		UpdateString(c.TargetCanonical).
		UpdateString(c.ConstraintsCanonical).
		UpdateString(c.ArcCanonical).
		UpdateString(c.ContinuityCanonical).
		FinalizeHex()
}
