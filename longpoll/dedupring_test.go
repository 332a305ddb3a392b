package longpoll

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupRingNewThenDuplicate(t *testing.T) {
	r := newDedupRing()
	h1 := hashPayload([]byte("a"))

	assert.Equal(t, checkResultNew, r.Check("u1", h1))
	assert.Equal(t, checkResultDuplicate, r.Check("u1", h1))
}

func TestDedupRingChangedHashReplacesEntry(t *testing.T) {
	r := newDedupRing()
	h1 := hashPayload([]byte("a"))
	h2 := hashPayload([]byte("b"))

	assert.Equal(t, checkResultNew, r.Check("u1", h1))
	assert.Equal(t, checkResultChanged, r.Check("u1", h2))
	assert.Equal(t, checkResultDuplicate, r.Check("u1", h2))
}

func TestDedupRingEvictsOldestAfterCapacity(t *testing.T) {
	r := newDedupRing()
	for i := 0; i < dedupRingCapacity; i++ {
		id := string(rune('a' + i))
		assert.Equal(t, checkResultNew, r.Check(id, hashPayload([]byte(id))))
	}
	// One more insert evicts "a" from the ring.
	assert.Equal(t, checkResultNew, r.Check("z", hashPayload([]byte("z"))))
	assert.Equal(t, checkResultNew, r.Check("a", hashPayload([]byte("a"))))
}
