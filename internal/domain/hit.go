package domain

// MemoryHit is one deduplicated scored item returned by the retrieval
// gateway. Produced only by the gateway and never mutated afterwards.
type MemoryHit struct {
	Space    SpaceType
	MemoryID string
	Metadata Metadata
	Text     string
	Score    float64
}
