// Package schema resolves which junction table a relationship link lives in.
//
// The product moved from one junction table per (item kind, facet kind) pair
// to a single polymorphic table per facet kind discriminated by a parent_type
// column. Both shapes remain in the wild, so table selection is a strategy the
// repositories take as a parameter; sync semantics are identical through
// either.
package schema

import (
	"fmt"

	"github.com/Ramsey-B/clover/pkg/models"
)

// FacetKind names one relation kind between a parent and a facet
type FacetKind string

const (
	FacetRole            FacetKind = "role"
	FacetDomain          FacetKind = "domain"
	FacetKeyRelationship FacetKind = "keyRelationship"
)

// FacetKinds lists every syncable relation kind
var FacetKinds = []FacetKind{FacetRole, FacetDomain, FacetKeyRelationship}

// Column returns the facet foreign-key column for this kind
func (k FacetKind) Column() string {
	switch k {
	case FacetRole:
		return "role_id"
	case FacetDomain:
		return "domain_id"
	case FacetKeyRelationship:
		return "key_relationship_id"
	}
	return ""
}

func (k FacetKind) segment() string {
	switch k {
	case FacetRole:
		return "roles"
	case FacetDomain:
		return "domains"
	case FacetKeyRelationship:
		return "key_relationships"
	}
	return ""
}

// DerivedKind names one materialized cross-product relation
type DerivedKind string

const (
	DerivedRoleDomain            DerivedKind = "roleDomain"
	DerivedKeyRelationshipDomain DerivedKind = "keyRelationshipDomain"
)

// DerivedKinds lists every derived relation kind
var DerivedKinds = []DerivedKind{DerivedRoleDomain, DerivedKeyRelationshipDomain}

// Columns returns the two facet columns of the cross product, left then right
func (k DerivedKind) Columns() (string, string) {
	switch k {
	case DerivedRoleDomain:
		return "role_id", "domain_id"
	case DerivedKeyRelationshipDomain:
		return "key_relationship_id", "domain_id"
	}
	return "", ""
}

func (k DerivedKind) segment() string {
	switch k {
	case DerivedRoleDomain:
		return "role_domains"
	case DerivedKeyRelationshipDomain:
		return "key_relationship_domains"
	}
	return ""
}

// Junction describes where link rows for one (parent type, relation) live.
// ParentTypeColumn is empty when the table itself is parent-kind specific.
type Junction struct {
	Table            string
	ParentTypeColumn string
	ParentIDColumn   string
}

// Layout is the schema discriminator: it picks junction tables without ever
// changing the replace-all sync contract.
type Layout interface {
	Name() string
	FacetJunction(pt models.ParentType, kind FacetKind) Junction
	DerivedJunction(pt models.ParentType, kind DerivedKind) Junction
	NoteJunction(pt models.ParentType) Junction
	// NoteJunctions returns every note-link table, for orphan sweeps
	NoteJunctions() []Junction
}

// ForName resolves a layout from its configured name
func ForName(name string) (Layout, error) {
	switch name {
	case "unified", "":
		return UnifiedLayout{}, nil
	case "perKind":
		return PerKindLayout{}, nil
	}
	return nil, fmt.Errorf("unknown junction layout %q", name)
}

// UnifiedLayout is the current schema: one polymorphic junction table per
// relation kind with an explicit parent_type column.
type UnifiedLayout struct{}

func (UnifiedLayout) Name() string { return "unified" }

func (UnifiedLayout) FacetJunction(_ models.ParentType, kind FacetKind) Junction {
	return Junction{
		Table:            "parent_" + kind.segment(),
		ParentTypeColumn: "parent_type",
		ParentIDColumn:   "parent_id",
	}
}

func (UnifiedLayout) DerivedJunction(_ models.ParentType, kind DerivedKind) Junction {
	return Junction{
		Table:            "parent_" + kind.segment(),
		ParentTypeColumn: "parent_type",
		ParentIDColumn:   "parent_id",
	}
}

func (UnifiedLayout) NoteJunction(_ models.ParentType) Junction {
	return Junction{
		Table:            "parent_notes",
		ParentTypeColumn: "parent_type",
		ParentIDColumn:   "parent_id",
	}
}

func (UnifiedLayout) NoteJunctions() []Junction {
	return []Junction{UnifiedLayout{}.NoteJunction(models.ParentTypeTask)}
}

// PerKindLayout is the legacy schema: a junction table per (item kind, facet
// kind) pair, e.g. task_roles vs deposit_idea_roles.
type PerKindLayout struct{}

func (PerKindLayout) Name() string { return "perKind" }

func tablePrefix(pt models.ParentType) string {
	switch pt {
	case models.ParentTypeTask:
		return "task"
	case models.ParentTypeEvent:
		return "event"
	case models.ParentTypeDepositIdea:
		return "deposit_idea"
	}
	return string(pt)
}

func idColumn(pt models.ParentType) string {
	return fmt.Sprintf("%s_id", tablePrefix(pt))
}

func (PerKindLayout) FacetJunction(pt models.ParentType, kind FacetKind) Junction {
	return Junction{
		Table:          fmt.Sprintf("%s_%s", tablePrefix(pt), kind.segment()),
		ParentIDColumn: idColumn(pt),
	}
}

func (PerKindLayout) DerivedJunction(pt models.ParentType, kind DerivedKind) Junction {
	return Junction{
		Table:          fmt.Sprintf("%s_%s", tablePrefix(pt), kind.segment()),
		ParentIDColumn: idColumn(pt),
	}
}

func (PerKindLayout) NoteJunction(pt models.ParentType) Junction {
	return Junction{
		Table:          fmt.Sprintf("%s_notes", tablePrefix(pt)),
		ParentIDColumn: idColumn(pt),
	}
}

func (PerKindLayout) NoteJunctions() []Junction {
	junctions := make([]Junction, 0, len(models.ParentTypes))
	for _, pt := range models.ParentTypes {
		junctions = append(junctions, PerKindLayout{}.NoteJunction(pt))
	}
	return junctions
}
