package sync

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/repositories"
	"github.com/Ramsey-B/clover/pkg/schema"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// DerivedBuilder maintains the materialized cross-product joins (role ×
// domain, key relationship × domain). The rows are a denormalized cache of
// the primary links and are always rebuilt whole, never patched, so the
// cache cannot drift.
type DerivedBuilder struct {
	links  *repositories.LinkRepository
	logger ectologger.Logger
}

// NewDerivedBuilder creates a new derived join builder
func NewDerivedBuilder(links *repositories.LinkRepository, logger ectologger.Logger) *DerivedBuilder {
	return &DerivedBuilder{
		links:  links,
		logger: logger,
	}
}

// Rebuild deletes every derived row for the parent, then re-inserts the
// cross products. A product with an empty operand inserts nothing, so the
// row count is always |left| × |right|.
func (b *DerivedBuilder) Rebuild(ctx context.Context, parent models.ParentRef, roles, domains, keyRelationships []uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "sync.DerivedBuilder.Rebuild")
	defer span.End()

	if err := b.links.ReplaceDerivedLinks(ctx, parent, schema.DerivedRoleDomain, crossProduct(roles, domains)); err != nil {
		return err
	}

	if err := b.links.ReplaceDerivedLinks(ctx, parent, schema.DerivedKeyRelationshipDomain, crossProduct(keyRelationships, domains)); err != nil {
		return err
	}

	b.logger.WithContext(ctx).WithFields(map[string]any{
		"parent_type":    parent.Type,
		"parent_id":      parent.ID,
		"role_domain":    len(roles) * len(domains),
		"key_rel_domain": len(keyRelationships) * len(domains),
	}).Debug("Rebuilt derived links")
	return nil
}

// crossProduct pairs every left ID with every right ID. Empty operands
// produce an empty product.
func crossProduct(left, right []uuid.UUID) []repositories.DerivedPair {
	if len(left) == 0 || len(right) == 0 {
		return nil
	}

	pairs := make([]repositories.DerivedPair, 0, len(left)*len(right))
	for _, l := range left {
		for _, r := range right {
			pairs = append(pairs, repositories.DerivedPair{Left: l, Right: r})
		}
	}
	return pairs
}
