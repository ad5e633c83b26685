package plugindomain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"
)

// Fingerprint is a canonical digest of a registry's full content
type Fingerprint [sha256.Size]byte

// String returns the hex form of the fingerprint
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Short returns the first 12 hex characters, enough to tell snapshots apart in logs
func (f Fingerprint) Short() string {
	return f.String()[:12]
}

// ComputeFingerprint hashes the registry in name order. Each plugin is
// encoded as a length-prefixed name followed by its two flags, so no two
// distinct plugin sets share an encoding.
func ComputeFingerprint(r Registry) Fingerprint {
	h := sha256.New()
	var lenBuf [8]byte
	for _, p := range r.Plugins() {
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(p.Name)))
		h.Write(lenBuf[:])
		h.Write([]byte(p.Name))
		h.Write([]byte{boolByte(p.Enabled), boolByte(p.Installed)})
	}

	var f Fingerprint
	copy(f[:], h.Sum(nil))
	return f
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// Snapshot pairs an immutable registry with its fingerprint. It is the unit
// exchanged between the registry watcher and the reconciliation loop.
type Snapshot struct {
	Registry    Registry
	Fingerprint Fingerprint
	TakenAt     time.Time
}

// NewSnapshot wraps registry and computes its fingerprint
func NewSnapshot(registry Registry) Snapshot {
	return Snapshot{
		Registry:    registry,
		Fingerprint: ComputeFingerprint(registry),
		TakenAt:     time.Now(),
	}
}

// SameContent reports whether both snapshots describe the same plugin set
func (s Snapshot) SameContent(other Snapshot) bool {
	return s.Fingerprint == other.Fingerprint
}

// String returns a log-friendly description of the snapshot
func (s Snapshot) String() string {
	return fmt.Sprintf("Snapshot(fingerprint: %s, plugins: %d)", s.Fingerprint.Short(), s.Registry.Len())
}
