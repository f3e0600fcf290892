package catalog

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultSortField = "createdAt"
	maxSearchTerms   = 10
)

// Filters holds the optional listing filters. A nil pointer or empty search
// means the filter is not applied. Category is matched as given; unknown
// values simply match nothing.
type Filters struct {
	Category *string
	Featured *bool
	Search   string
}

// Sort selects the listing order.
type Sort struct {
	Field string
	Desc  bool
}

var sortColumns = map[string]string{
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
	"price":         "price",
	"rating":        "rating",
	"reviewCount":   "review_count",
	"name":          "name",
	"stockQuantity": "stock_quantity",
}

// SortFields lists the accepted sort keys.
func SortFields() []string {
	return []string{"createdAt", "updatedAt", "price", "rating", "reviewCount", "name", "stockQuantity"}
}

// ParseSort validates a sort field and direction. Empty values fall back to
// createdAt descending.
func ParseSort(field, order string) (Sort, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		field = DefaultSortField
	}
	if _, ok := sortColumns[field]; !ok {
		return Sort{}, fmt.Errorf("sortBy must be one of: %s", strings.Join(SortFields(), ", "))
	}

	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", "desc":
		return Sort{Field: field, Desc: true}, nil
	case "asc":
		return Sort{Field: field, Desc: false}, nil
	default:
		return Sort{}, fmt.Errorf("order must be one of: asc, desc")
	}
}

func (s Sort) column() string {
	if col, ok := sortColumns[s.Field]; ok {
		return col
	}
	return sortColumns[DefaultSortField]
}

// SearchTerms splits a free-text query on whitespace into at most ten
// lower-cased, de-duplicated terms.
func SearchTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
		if len(terms) == maxSearchTerms {
			break
		}
	}
	return terms
}

func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

// filterScope translates Filters into WHERE clauses. A product matches the
// search when any term is a substring of its name or description.
func filterScope(f Filters) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Category != nil {
			db = db.Where("category = ?", *f.Category)
		}
		if f.Featured != nil {
			db = db.Where("featured = ?", *f.Featured)
		}
		terms := SearchTerms(f.Search)
		if len(terms) == 0 {
			return db
		}
		clauses := make([]string, 0, len(terms))
		args := make([]any, 0, len(terms)*2)
		for _, term := range terms {
			pattern := "%" + escapeLike(term) + "%"
			clauses = append(clauses, `(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`)
			args = append(args, pattern, pattern)
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

// orderScope orders by the sort column and breaks ties by id.
func orderScope(s Sort) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Order(clause.OrderByColumn{Column: clause.Column{Name: s.column()}, Desc: s.Desc}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
}
