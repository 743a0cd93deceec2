// Package sync keeps the many-to-many associations between a planning item
// and its facets consistent on every save. Selections are replace-all per
// relation kind, derived cross products are recomputed rather than patched,
// and the whole save sequence for one parent runs in a single database
// transaction.
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

// Synchronizer makes the stored link set for one (parent, relation kind)
// equal exactly the desired facet ID set.
type Synchronizer struct {
	links  *repositories.LinkRepository
	logger ectologger.Logger
}

// NewSynchronizer creates a new relationship synchronizer
func NewSynchronizer(links *repositories.LinkRepository, logger ectologger.Logger) *Synchronizer {
	return &Synchronizer{
		links:  links,
		logger: logger,
	}
}

// Sync replaces the parent's links of the given kind with desired. The parent
// row must already exist. An empty desired set clears all links of this kind;
// syncing the same set twice is a no-op in effect, though each call still
// performs the full delete and insert.
func (s *Synchronizer) Sync(ctx context.Context, parent models.ParentRef, kind schema.FacetKind, desired []uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "sync.Synchronizer.Sync")
	defer span.End()

	if err := s.links.ReplaceFacetLinks(ctx, parent, kind, desired); err != nil {
		return err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"parent_type": parent.Type,
		"parent_id":   parent.ID,
		"facet_kind":  kind,
		"count":       len(desired),
	}).Debug("Synced relationship links")
	return nil
}
