package sync

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/redis"
	"github.com/Ramsey-B/clover/pkg/repositories"
	"github.com/Ramsey-B/clover/pkg/schema"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const (
	saveLockTTL  = 10 * time.Second
	saveLockWait = 5 * time.Second
)

// RetentionPolicy controls whether the engine ever sweeps rows the save path
// leaves behind (orphaned note rows, stale goal links). Saves themselves
// never delete anything regardless of policy.
type RetentionPolicy string

const (
	// RetainAll keeps orphaned notes and stale goal links forever
	RetainAll RetentionPolicy = "retainAll"
	// PruneOrphans allows explicit sweeps of unlinked note rows
	PruneOrphans RetentionPolicy = "pruneOrphans"
)

// SaveResult reports what one save produced
type SaveResult struct {
	Parent  models.ParentRef `json:"parent"`
	Created bool             `json:"created"`
	NoteID  *uuid.UUID       `json:"note_id,omitempty"`
}

// Engine runs the full save sequence for one planning item: item upsert,
// relationship sync per facet kind, derived rebuild, note attach, and goal
// link, all inside a single database transaction so a failed step leaves no
// partial relational state behind.
type Engine struct {
	db        database.DB
	items     *repositories.PlanningItemRepository
	links     *repositories.LinkRepository
	notesRepo *repositories.NoteRepository

	synchronizer *Synchronizer
	derived      *DerivedBuilder
	notes        *NoteAttacher
	goals        *GoalLinker

	locker    *redis.Locker
	producer  *kafka.Producer
	retention RetentionPolicy
	logger    ectologger.Logger
}

// NewEngine creates a save engine from its repositories
func NewEngine(
	db database.DB,
	items *repositories.PlanningItemRepository,
	links *repositories.LinkRepository,
	notes *repositories.NoteRepository,
	goals *repositories.GoalRepository,
	logger ectologger.Logger,
) *Engine {
	return &Engine{
		db:           db,
		items:        items,
		links:        links,
		notesRepo:    notes,
		synchronizer: NewSynchronizer(links, logger),
		derived:      NewDerivedBuilder(links, logger),
		notes:        NewNoteAttacher(notes, links, logger),
		goals:        NewGoalLinker(goals, logger),
		retention:    RetainAll,
		logger:       logger,
	}
}

// WithLocker enables the per-parent distributed save lock
func (e *Engine) WithLocker(locker *redis.Locker) *Engine {
	e.locker = locker
	return e
}

// WithProducer enables post-commit lifecycle events
func (e *Engine) WithProducer(producer *kafka.Producer) *Engine {
	e.producer = producer
	return e
}

// WithRetention sets the retention policy for orphan sweeps
func (e *Engine) WithRetention(policy RetentionPolicy) *Engine {
	e.retention = policy
	return e
}

// Save processes one save request. Validation failures happen before any
// write; after the transaction commits, the stored relational state for the
// parent equals exactly the request's selections. A cleared goal flag does
// not retract an existing goal link.
func (e *Engine) Save(ctx context.Context, req *models.SaveRequest) (*SaveResult, error) {
	ctx, span := tracing.StartSpan(ctx, "sync.Engine.Save")
	defer span.End()

	start := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	userID, err := repositories.GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	item := req.Item(userID)
	parent := item.Ref()
	created := req.ID == nil

	if e.locker != nil {
		lock, err := e.locker.TryAcquire(ctx, "save:"+parent.String(), saveLockTTL, saveLockWait)
		if errors.Is(err, redis.ErrLockNotAcquired) {
			metrics.SaveLockWaits.Inc()
			return nil, httperror.NewHTTPError(http.StatusConflict, "another save for this item is in progress")
		}
		if err != nil {
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to acquire save lock")
		}
		defer lock.Release(ctx)
	}

	roles := models.UniqueIDs(req.SelectedRoleIDs)
	domains := models.UniqueIDs(req.SelectedDomainIDs)
	keyRelationships := models.UniqueIDs(req.SelectedKeyRelationshipIDs)

	result, err := e.saveTx(ctx, req, item, parent, roles, domains, keyRelationships, created)

	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.SavesTotal.WithLabelValues(string(parent.Type), status).Inc()
	metrics.SaveDuration.WithLabelValues(string(parent.Type)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	metrics.LinkRowsWritten.WithLabelValues(string(schema.FacetRole)).Add(float64(len(roles)))
	metrics.LinkRowsWritten.WithLabelValues(string(schema.FacetDomain)).Add(float64(len(domains)))
	metrics.LinkRowsWritten.WithLabelValues(string(schema.FacetKeyRelationship)).Add(float64(len(keyRelationships)))

	e.publishSaved(ctx, userID, req, result, len(roles), len(domains), len(keyRelationships))

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"parent_type": parent.Type,
		"parent_id":   parent.ID,
		"created":     created,
	}).Info("Saved planning item")

	return result, nil
}

func (e *Engine) saveTx(
	ctx context.Context,
	req *models.SaveRequest,
	item *models.PlanningItem,
	parent models.ParentRef,
	roles, domains, keyRelationships []uuid.UUID,
	created bool,
) (*SaveResult, error) {
	ctx, tx, err := e.db.GetTx(ctx, nil)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	if err := e.items.Upsert(ctx, item); err != nil {
		return nil, err
	}

	if err := e.synchronizer.Sync(ctx, parent, schema.FacetRole, roles); err != nil {
		return nil, err
	}
	if err := e.synchronizer.Sync(ctx, parent, schema.FacetDomain, domains); err != nil {
		return nil, err
	}
	if err := e.synchronizer.Sync(ctx, parent, schema.FacetKeyRelationship, keyRelationships); err != nil {
		return nil, err
	}

	if err := e.derived.Rebuild(ctx, parent, roles, domains, keyRelationships); err != nil {
		return nil, err
	}

	noteID, err := e.notes.Attach(ctx, parent, req.Notes)
	if err != nil {
		return nil, err
	}

	if req.IsTwelveWeekGoal && req.GoalID != nil {
		if err := e.goals.Link(ctx, *req.GoalID, parent, roles, domains, keyRelationships); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit save")
	}

	return &SaveResult{Parent: parent, Created: created, NoteID: noteID}, nil
}

func (e *Engine) publishSaved(ctx context.Context, userID uuid.UUID, req *models.SaveRequest, result *SaveResult, roleCount, domainCount, keyRelCount int) {
	if e.producer == nil {
		return
	}

	eventType := "item.updated"
	if result.Created {
		eventType = "item.created"
	}

	msg := &kafka.ItemSavedMessage{
		Type:                 eventType,
		UserID:               userID.String(),
		ParentType:           string(result.Parent.Type),
		ParentID:             result.Parent.ID.String(),
		RoleCount:            roleCount,
		DomainCount:          domainCount,
		KeyRelationshipCount: keyRelCount,
		NoteAttached:         result.NoteID != nil,
	}
	if req.GoalID != nil && req.IsTwelveWeekGoal {
		goalID := req.GoalID.String()
		msg.GoalID = &goalID
	}

	// The save already committed; a publish failure is logged, not returned.
	if err := e.producer.PublishItemSaved(ctx, msg); err != nil {
		e.logger.WithContext(ctx).WithError(err).Warn("Failed to publish item saved event")
	}
}

// Delete removes a planning item and its facet, derived, and note links in
// one transaction. Goal rows are aggregation history and stay behind; note
// bodies stay behind too, subject to the retention policy.
func (e *Engine) Delete(ctx context.Context, ref models.ParentRef) error {
	ctx, span := tracing.StartSpan(ctx, "sync.Engine.Delete")
	defer span.End()

	ctx, tx, err := e.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	for _, kind := range []schema.FacetKind{schema.FacetRole, schema.FacetDomain, schema.FacetKeyRelationship} {
		if err := e.synchronizer.Sync(ctx, ref, kind, nil); err != nil {
			return err
		}
	}
	if err := e.derived.Rebuild(ctx, ref, nil, nil, nil); err != nil {
		return err
	}
	if err := e.links.ReplaceNoteLink(ctx, ref, nil); err != nil {
		return err
	}
	if err := e.items.Delete(ctx, ref); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit delete")
	}

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"parent_type": ref.Type,
		"parent_id":   ref.ID,
	}).Info("Deleted planning item")
	return nil
}

// PruneOrphanedNotes sweeps note rows no parent links to anymore. It only
// acts under the PruneOrphans policy; the default policy keeps everything.
func (e *Engine) PruneOrphanedNotes(ctx context.Context) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "sync.Engine.PruneOrphanedNotes")
	defer span.End()

	if e.retention != PruneOrphans {
		return 0, nil
	}
	return e.notesRepo.DeleteOrphans(ctx, e.links.Layout())
}
