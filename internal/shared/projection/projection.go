// Package projection pairs a stored aggregate with the timestamps its store keeps for it.
package projection

import "time"

// Metadata records when a stored aggregate was first written and last replaced.
type Metadata struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Touch returns the metadata of a write at now. The first write sets both
// timestamps; later writes keep CreatedAt.
func (m Metadata) Touch(now time.Time) Metadata {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	return m
}

// Projection is what repositories hand out: the aggregate plus its metadata.
type Projection[T any] struct {
	Entity   T
	Metadata Metadata
}

// New wraps entity with meta.
func New[T any](entity T, meta Metadata) *Projection[T] {
	return &Projection[T]{Entity: entity, Metadata: meta}
}
