package postgres

import (
	"fmt"

	"gorm.io/gorm"
)

// applyPaginationAndSort applies shared sorting and pagination rules.
// Unknown sort columns fall back to created_at to keep ORDER BY injection
// out of reach.
func applyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	allowed := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"title":      true,
		"name":       true,
		"position":   true,
	}
	if !allowed[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
