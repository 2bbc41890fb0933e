package audit

import (
	"context"
	"reflect"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ExcludedFields are never reported as changes
var ExcludedFields = map[string]struct{}{
	"created_on":    {},
	"created_by":    {},
	"modified_on":   {},
	"modified_by":   {},
	"password_hash": {},
	"last_login":    {},
}

// User identifies who made a change
type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Entry is one changelog item: the difference between a version and its predecessor
type Entry struct {
	ID        uuid.UUID        `json:"id"`
	User      *User            `json:"user"`
	Timestamp time.Time        `json:"timestamp"`
	Comment   string           `json:"comment"`
	Changes   map[string][]any `json:"changes"`
}

// UserResolver looks up the users that created revisions
type UserResolver interface {
	ResolveUsers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]User, error)
}

// ValueResolver replaces related record ids with display names. Fields it
// does not know about are returned unchanged.
type ValueResolver interface {
	ResolveValue(ctx context.Context, field string, value any) any
}

// BuildChangelog pairs consecutive versions, given newest first, and diffs
// them. The oldest version has no predecessor so it produces no entry.
func BuildChangelog(ctx context.Context, versions []Version, users UserResolver, values ValueResolver) ([]Entry, error) {
	if len(versions) < 2 {
		return []Entry{}, nil
	}

	var userIDs []uuid.UUID
	for _, v := range versions {
		if v.Revision.UserID != nil {
			userIDs = append(userIDs, *v.Revision.UserID)
		}
	}
	userMap := map[uuid.UUID]User{}
	if users != nil && len(userIDs) > 0 {
		resolved, err := users.ResolveUsers(ctx, userIDs)
		if err != nil {
			return nil, err
		}
		userMap = resolved
	}

	entries := make([]Entry, 0, len(versions)-1)
	for i := 0; i < len(versions)-1; i++ {
		newer, older := versions[i], versions[i+1]
		entry := Entry{
			ID:        newer.ID,
			Timestamp: newer.Revision.DateCreated,
			Comment:   newer.Revision.Comment,
			Changes:   Diff(ctx, older.SerializedData, newer.SerializedData, values),
		}
		if newer.Revision.UserID != nil {
			if u, ok := userMap[*newer.Revision.UserID]; ok {
				u := u
				entry.User = &u
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Diff returns {field: [old, new]} for every non-excluded field whose value differs
func Diff(ctx context.Context, older, newer map[string]any, values ValueResolver) map[string][]any {
	fields := map[string]struct{}{}
	for k := range older {
		fields[k] = struct{}{}
	}
	for k := range newer {
		fields[k] = struct{}{}
	}

	names := make([]string, 0, len(fields))
	for k := range fields {
		if _, excluded := ExcludedFields[k]; !excluded {
			names = append(names, k)
		}
	}
	sort.Strings(names)

	changes := map[string][]any{}
	for _, field := range names {
		oldValue, newValue := older[field], newer[field]
		if reflect.DeepEqual(oldValue, newValue) {
			continue
		}
		if values != nil {
			oldValue = values.ResolveValue(ctx, field, oldValue)
			newValue = values.ResolveValue(ctx, field, newValue)
		}
		changes[field] = []any{oldValue, newValue}
	}
	return changes
}
