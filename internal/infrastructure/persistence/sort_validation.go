package persistence

import (
	"fmt"
	"strings"

	"github.com/datahub/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// orderClause builds the ORDER BY clause for a filter. Unknown fields fall back to
// defaultOrder, which may list several columns. id is always the final tiebreaker.
func orderClause(filter shared.Filter, allowed map[string]bool, defaultOrder string) string {
	field := ValidateSortField(filter.OrderBy, allowed, "")
	if field == "" {
		return defaultOrder + ", id ASC"
	}
	return field + " " + ValidateSortOrder(filter.OrderDir) + ", id ASC"
}

// CommonSortFields contains fields every model carries
var CommonSortFields = map[string]bool{
	"created_on":  true,
	"modified_on": true,
}

// CompanySortFields contains allowed sort fields for companies
var CompanySortFields = map[string]bool{
	"created_on":  true,
	"modified_on": true,
	"name":        true,
}

// ContactSortFields contains allowed sort fields for contacts
var ContactSortFields = map[string]bool{
	"created_on":  true,
	"modified_on": true,
	"first_name":  true,
	"last_name":   true,
}

// InteractionSortFields contains allowed sort fields for interactions
var InteractionSortFields = map[string]bool{
	"created_on": true,
	"date":       true,
	"subject":    true,
}

// ProjectSortFields contains allowed sort fields for investment projects
var ProjectSortFields = map[string]bool{
	"created_on":          true,
	"modified_on":         true,
	"name":                true,
	"estimated_land_date": true,
}

// PropositionSortFields contains allowed sort fields for propositions
var PropositionSortFields = map[string]bool{
	"created_on": true,
	"deadline":   true,
	"name":       true,
	"status":     true,
}

// AdviserSortFields contains allowed sort fields for advisers
var AdviserSortFields = map[string]bool{
	"first_name": true,
	"last_name":  true,
	"email":      true,
}

// findPage counts the rows matched by scope and loads one page of them
func findPage[M any](db *gorm.DB, filter shared.Filter, order string, scope func(*gorm.DB) *gorm.DB) ([]M, int64, error) {
	filter = filter.Normalize()

	var total int64
	if err := scope(db.Model(new(M))).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []M
	if total == 0 {
		return rows, 0, nil
	}
	if err := scope(db.Model(new(M))).
		Order(order).
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// iterate walks every row matched by scope in id order, batchSize rows at a time
func iterate[M any](db *gorm.DB, batchSize int, scope func(*gorm.DB) *gorm.DB, fn func([]M) error) error {
	if batchSize <= 0 {
		batchSize = 1000
	}
	offset := 0
	for {
		var rows []M
		if err := scope(db.Model(new(M))).Order("id ASC").Offset(offset).Limit(batchSize).Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		if err := fn(rows); err != nil {
			return err
		}
		if len(rows) < batchSize {
			return nil
		}
		offset += len(rows)
	}
}

// whereJSONContains matches rows whose JSON array column holds value
func whereJSONContains(db *gorm.DB, column string, value string) *gorm.DB {
	cond, arg := jsonContains(db, column, value)
	return db.Where(cond, arg)
}

// jsonContains returns a condition matching a JSON array column holding value
func jsonContains(db *gorm.DB, column string, value string) (string, string) {
	if db.Dialector.Name() == "postgres" {
		return column + " @> ?::jsonb", `["` + value + `"]`
	}
	return column + " LIKE ?", `%"` + value + `"%`
}

// noScope leaves a query unchanged
func noScope(db *gorm.DB) *gorm.DB {
	return db
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
