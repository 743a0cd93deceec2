package repositories

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const (
	rolesTable            = "roles"
	domainsTable          = "domains"
	keyRelationshipsTable = "key_relationships"
)

var (
	roleStruct            = database.NewStruct(new(models.Role))
	domainStruct          = database.NewStruct(new(models.Domain))
	keyRelationshipStruct = database.NewStruct(new(models.KeyRelationship))
)

// FacetRepository reads role, domain, and key relationship facets. The sync
// engine never creates or mutates facets, so this repository is read-only.
type FacetRepository struct {
	*Repository
}

// NewFacetRepository creates a new facet repository
func NewFacetRepository(db database.DB, logger ectologger.Logger) *FacetRepository {
	return &FacetRepository{
		Repository: NewRepository(db, logger),
	}
}

// ListRoles retrieves all roles for the current user
func (r *FacetRepository) ListRoles(ctx context.Context) ([]models.Role, error) {
	ctx, span := tracing.StartSpan(ctx, "FacetRepository.ListRoles")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	sb := roleStruct.SelectFrom(rolesTable)
	sb.Where(sb.Equal("user_id", userID))
	sb.OrderBy("name")

	query, args := sb.Build()
	var roles []models.Role
	if err := r.db.SelectContext(ctx, &roles, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list roles")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list roles")
	}
	return roles, nil
}

// ListDomains retrieves all wellness domains for the current user
func (r *FacetRepository) ListDomains(ctx context.Context) ([]models.Domain, error) {
	ctx, span := tracing.StartSpan(ctx, "FacetRepository.ListDomains")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	sb := domainStruct.SelectFrom(domainsTable)
	sb.Where(sb.Equal("user_id", userID))
	sb.OrderBy("name")

	query, args := sb.Build()
	var domains []models.Domain
	if err := r.db.SelectContext(ctx, &domains, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list domains")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list domains")
	}
	return domains, nil
}

// ListKeyRelationships retrieves all key relationships for the current user
func (r *FacetRepository) ListKeyRelationships(ctx context.Context) ([]models.KeyRelationship, error) {
	ctx, span := tracing.StartSpan(ctx, "FacetRepository.ListKeyRelationships")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	sb := keyRelationshipStruct.SelectFrom(keyRelationshipsTable)
	sb.Where(sb.Equal("user_id", userID))
	sb.OrderBy("name")

	query, args := sb.Build()
	var keyRelationships []models.KeyRelationship
	if err := r.db.SelectContext(ctx, &keyRelationships, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list key relationships")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list key relationships")
	}
	return keyRelationships, nil
}
