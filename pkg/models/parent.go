package models

import (
	"fmt"

	"github.com/google/uuid"
)

// ParentType discriminates which planning-item table a parent ID belongs to.
// The wire values are fixed; the unified junction tables store them verbatim.
type ParentType string

const (
	ParentTypeTask        ParentType = "task"
	ParentTypeEvent       ParentType = "event"
	ParentTypeDepositIdea ParentType = "depositIdea"
)

// ParentTypes lists every valid parent type.
var ParentTypes = []ParentType{ParentTypeTask, ParentTypeEvent, ParentTypeDepositIdea}

// IsValid returns true for a known parent type
func (t ParentType) IsValid() bool {
	switch t {
	case ParentTypeTask, ParentTypeEvent, ParentTypeDepositIdea:
		return true
	}
	return false
}

// ParentRef identifies one planning item as the owner of relationship links
type ParentRef struct {
	Type ParentType `json:"parent_type"`
	ID   uuid.UUID  `json:"parent_id"`
}

func (r ParentRef) String() string {
	return fmt.Sprintf("%s:%s", r.Type, r.ID)
}

// UniqueIDs collapses duplicate IDs, keeping first-occurrence order. Facet
// selections are sets; callers dedupe before counting or writing link rows.
func UniqueIDs(ids []uuid.UUID) []uuid.UUID {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
