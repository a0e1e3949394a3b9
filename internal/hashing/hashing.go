// Package hashing implements the two hash conventions used across OMEGA:
// plain `|`-delimited SHA-256 hex (pipeline runner, CANON store) and
// domain-separated length-prefixed SHA-256 (GENESIS, VOICE). The two must
// never be conflated: callers pick the convention that matches their
// subsystem.
//
// The sync.Pool'd hasher pattern follows a standard pooled-hash-object
// shape; the length-prefixed domain-hasher design (domain prefix written
// first, 8-byte big-endian length before every payload, explicit
// list/bool/optional encodings) follows genesis/modules/genesis/crypto.rs.
package hashing

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"strings"
	"sync"
)

var hasherPool = sync.Pool{
	New: func() any {
		return sha256.New()
	},
}

// PlainHash joins parts with "|" and returns the hex-encoded SHA-256 of the
// result. Callers are responsible for ensuring no part contains the "|"
// delimiter itself; this package does not escape it.
func PlainHash(parts ...string) string {
	h := hasherPool.Get().(hash.Hash)
	defer func() {
		h.Reset()
		hasherPool.Put(h)
	}()

	for i, p := range parts {
		if i > 0 {
			h.Write(pipeDelimiter)
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

var pipeDelimiter = []byte("|")

// Domain is a fixed byte prefix identifying the hashing context. Domains
// prevent a hash computed for one purpose from being replayed as valid
// input in another.
type Domain string

const (
	DomainRequest       Domain = "GENESIS:REQ:V1:"
	DomainScene         Domain = "GENESIS:SCN:V1:"
	DomainChainLink     Domain = "GENESIS:LNK:V1:"
	DomainManifest      Domain = "GENESIS:MAN:V1:"
	DomainVoiceSelector Domain = "GENESIS:SEL:V1:"
)

// DomainHasher accumulates length-prefixed fields under a domain tag and
// produces a SHA-256 digest. Every Update* call prepends an 8-byte
// big-endian length before the payload, which prevents extension attacks
// (H("ab"+"cd") would otherwise equal H("a"+"bcd")).
type DomainHasher struct {
	h hash.Hash
}

// NewDomainHasher creates a hasher seeded with domain's prefix bytes.
func NewDomainHasher(domain Domain) *DomainHasher {
	h := sha256.New()
	h.Write([]byte(domain))
	return &DomainHasher{h: h}
}

// Update writes length-prefixed raw bytes.
func (d *DomainHasher) Update(data []byte) *DomainHasher {
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(data)))
	d.h.Write(lenBuf[:])
	d.h.Write(data)
	return d
}

// UpdateString writes a length-prefixed string.
func (d *DomainHasher) UpdateString(s string) *DomainHasher {
	return d.Update([]byte(s))
}

// UpdateUint64 writes a length-prefixed 8-byte big-endian encoding of v.
func (d *DomainHasher) UpdateUint64(v uint64) *DomainHasher {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return d.Update(buf[:])
}

// UpdateUint32 writes a length-prefixed 4-byte big-endian encoding of v.
func (d *DomainHasher) UpdateUint32(v uint32) *DomainHasher {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return d.Update(buf[:])
}

// UpdateBool writes a single 0x00/0x01 byte (length-prefixed like every
// other field, for uniformity).
func (d *DomainHasher) UpdateBool(v bool) *DomainHasher {
	if v {
		return d.Update([]byte{1})
	}
	return d.Update([]byte{0})
}

// UpdateOptionalString writes a presence byte (0x00 absent, 0x01 present)
// followed by the string if present. Absent and present-empty hash
// differently, matching the convention in §4.2.
func (d *DomainHasher) UpdateOptionalString(s *string) *DomainHasher {
	if s == nil {
		d.h.Write([]byte{0})
		return d
	}
	d.h.Write([]byte{1})
	return d.UpdateString(*s)
}

// UpdateStringList writes the element count as a u64, then each element
// length-prefixed in order.
func (d *DomainHasher) UpdateStringList(list []string) *DomainHasher {
	d.UpdateUint64(uint64(len(list)))
	for _, s := range list {
		d.UpdateString(s)
	}
	return d
}

// FinalizeHex returns the hex-encoded digest. The hasher must not be
// reused after calling FinalizeHex.
func (d *DomainHasher) FinalizeHex() string {
	return hex.EncodeToString(d.h.Sum(nil))
}

// ChainHash computes chain_hash(prev, current) = H_ChainLink(prev ‖ current)
// per §4.2.
func ChainHash(prevHash, currentHash string) string {
	return NewDomainHasher(DomainChainLink).
		UpdateString(prevHash).
		UpdateString(currentHash).
		FinalizeHex()
}

// VerifyChain walks a hash chain from expectedRoot, recomputing each link.
// linkChainHashes holds the recorded chain hash of each link in order, and
// itemHashes the hash of each link's payload (e.g. a scene hash) that was
// folded into that link's chain hash. VerifyChain returns the final computed tip hash and
// -1 on success, or the index of the first failing link.
func VerifyChain(expectedRoot string, linkChainHashes []string, itemHashes []string) (tip string, failedIndex int) {
	prev := expectedRoot
	for i, itemHash := range itemHashes {
		computed := ChainHash(prev, itemHash)
		if i >= len(linkChainHashes) || computed != linkChainHashes[i] {
			return "", i
		}
		prev = computed
	}
	return prev, -1
}

// IsHexSHA256 reports whether s looks like a lowercase-hex SHA-256 digest
// (64 hex characters). It does not verify that the digest corresponds to
// any particular payload.
func IsHexSHA256(s string) bool {
	if len(s) != 64 {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool {
		return !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f'))
	}) == -1
}
