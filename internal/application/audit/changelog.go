package audit

import (
	"context"
	"errors"

	"github.com/datahub/backend/internal/domain/adviser"
	"github.com/datahub/backend/internal/domain/audit"
	"github.com/datahub/backend/internal/domain/company"
	"github.com/datahub/backend/internal/domain/metadata"
	"github.com/datahub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ChangelogService builds the audit history of records
type ChangelogService struct {
	versions  audit.Repository
	advisers  adviser.Repository
	companies company.Repository
	contacts  company.ContactRepository
	meta      metadata.Repository
}

// NewChangelogService creates a ChangelogService
func NewChangelogService(
	versions audit.Repository,
	advisers adviser.Repository,
	companies company.Repository,
	contacts company.ContactRepository,
	meta metadata.Repository,
) *ChangelogService {
	return &ChangelogService{
		versions:  versions,
		advisers:  advisers,
		companies: companies,
		contacts:  contacts,
		meta:      meta,
	}
}

// Changelog returns the changes between consecutive versions of a record,
// newest first. The count is the number of versions minus one.
func (s *ChangelogService) Changelog(ctx context.Context, objectType string, id uuid.UUID, offset, limit int) (*shared.Paginated[audit.Entry], error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = shared.DefaultPageSize
	}

	total, err := s.versions.CountForObject(ctx, objectType, id)
	if err != nil {
		return nil, err
	}
	count := max(total-1, 0)

	// one extra version gives the last entry on the page its predecessor
	versions, err := s.versions.FindForObject(ctx, objectType, id, offset, limit+1)
	if err != nil {
		return nil, err
	}

	values, err := s.valueNames(ctx, versions)
	if err != nil {
		return nil, err
	}
	entries, err := audit.BuildChangelog(ctx, versions, userResolver{s.advisers}, values)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(entries, count)
	return &result, nil
}

type userResolver struct {
	advisers adviser.Repository
}

func (r userResolver) ResolveUsers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]audit.User, error) {
	found, err := r.advisers.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	users := make(map[uuid.UUID]audit.User, len(found))
	for i := range found {
		a := &found[i]
		users[a.ID] = audit.User{ID: a.ID, Name: a.Name(), Email: a.Email}
	}
	return users, nil
}

// nameResolver replaces related record ids with their display names
type nameResolver map[string]string

func (r nameResolver) ResolveValue(ctx context.Context, field string, value any) any {
	switch v := value.(type) {
	case string:
		if name, ok := r[v]; ok {
			return name
		}
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = r.ResolveValue(ctx, field, item)
		}
		return out
	}
	return value
}

// valueNames looks up display names for every id appearing in the versions
func (s *ChangelogService) valueNames(ctx context.Context, versions []audit.Version) (nameResolver, error) {
	seen := map[uuid.UUID]struct{}{}
	var ids []uuid.UUID
	for _, v := range versions {
		for field, value := range v.SerializedData {
			if field == "id" {
				continue
			}
			for _, id := range collectIDs(value) {
				if _, ok := seen[id]; !ok {
					seen[id] = struct{}{}
					ids = append(ids, id)
				}
			}
		}
	}
	names := nameResolver{}
	if len(ids) == 0 {
		return names, nil
	}

	metaNames, err := s.meta.Names(ctx, ids)
	if err != nil {
		return nil, err
	}
	for id, name := range metaNames {
		names[id.String()] = name
	}

	advisers, err := s.advisers.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range advisers {
		names[advisers[i].ID.String()] = advisers[i].Name()
	}

	companies, err := s.companies.FindByIDs(ctx, ids)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	for _, c := range companies {
		names[c.ID.String()] = c.Name
	}

	contacts, err := s.contacts.FindByIDs(ctx, ids)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	for i := range contacts {
		names[contacts[i].ID.String()] = contacts[i].Name()
	}
	return names, nil
}

func collectIDs(value any) []uuid.UUID {
	switch v := value.(type) {
	case string:
		if id, err := uuid.Parse(v); err == nil {
			return []uuid.UUID{id}
		}
	case []any:
		var ids []uuid.UUID
		for _, item := range v {
			ids = append(ids, collectIDs(item)...)
		}
		return ids
	}
	return nil
}
