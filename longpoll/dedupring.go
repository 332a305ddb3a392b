package longpoll

import "crypto/sha256"

// dedupRingCapacity is fixed at 8 per spec's DedupRing definition and
// is load-bearing for correctness during backlog replay (spec §9) —
// replace only with another structure preserving the same
// "most-recent N unique ids" semantics.
const dedupRingCapacity = 8

type dedupEntry struct {
	updateID string
	hash     [sha256.Size]byte
	valid    bool
}

// dedupRing is a fixed-capacity circular buffer of (update-id,
// payload-hash) pairs used to suppress replayed updates received
// during backlog replay.
type dedupRing struct {
	entries [dedupRingCapacity]dedupEntry
	cursor  int
}

func newDedupRing() *dedupRing {
	return &dedupRing{}
}

// checkResult is what Check reports for one (updateID, payload) pair.
type checkResult int

const (
	// checkResultNew: no entry with this updateID exists; insert it.
	checkResultNew checkResult = iota
	// checkResultDuplicate: same updateID, same hash — drop the batch.
	checkResultDuplicate
	// checkResultChanged: same updateID, different hash — stop the
	// scan and insert the new entry at the ring cursor.
	checkResultChanged
)

// hashPayload computes the SHA-256 of payload, the "computed once"
// hash spec §4.5.3 describes.
func hashPayload(payload []byte) [sha256.Size]byte {
	return sha256.Sum256(payload)
}

// Check scans the ring for updateID. Per spec §4.5.3: if the same id
// appears with the same hash, the caller should drop the whole batch;
// if it appears with a different hash, the scan stops and the new
// entry replaces the ring's current cursor slot; otherwise the entry
// is inserted normally (advancing the cursor).
func (r *dedupRing) Check(updateID string, hash [sha256.Size]byte) checkResult {
	for _, e := range r.entries {
		if !e.valid || e.updateID != updateID {
			continue
		}
		if e.hash == hash {
			return checkResultDuplicate
		}
		r.insertAtCursor(updateID, hash)
		return checkResultChanged
	}
	r.insertAdvancing(updateID, hash)
	return checkResultNew
}

func (r *dedupRing) insertAdvancing(updateID string, hash [sha256.Size]byte) {
	r.entries[r.cursor] = dedupEntry{updateID: updateID, hash: hash, valid: true}
	r.cursor = (r.cursor + 1) % dedupRingCapacity
}

func (r *dedupRing) insertAtCursor(updateID string, hash [sha256.Size]byte) {
	r.entries[r.cursor] = dedupEntry{updateID: updateID, hash: hash, valid: true}
	r.cursor = (r.cursor + 1) % dedupRingCapacity
}
