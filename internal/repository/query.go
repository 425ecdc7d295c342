package repository

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/noah-isme/school-portal-api/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// conditions accumulates positional WHERE clauses for a query.
type conditions struct {
	clauses []string
	args    []interface{}
}

// add appends a clause whose single %d placeholder receives the next arg position.
func (c *conditions) add(format string, value interface{}) {
	c.args = append(c.args, value)
	c.clauses = append(c.clauses, fmt.Sprintf(format, len(c.args)))
}

// raw appends a clause that needs no argument.
func (c *conditions) raw(clause string) {
	c.clauses = append(c.clauses, clause)
}

// classScope restricts column to the scoped classes when the scope is restricted.
func (c *conditions) classScope(column string, scope models.ClassScope) {
	if !scope.Restricted {
		return
	}
	c.add(column+" = ANY($%d)", pq.Array(scope.ClassIDs))
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

func pageWindow(page, size int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > maxPageSize {
		size = defaultPageSize
	}
	return page, size, (page - 1) * size
}

func sortOrder(raw string, fallback string) string {
	order := strings.ToUpper(raw)
	if order != "ASC" && order != "DESC" {
		return fallback
	}
	return order
}

func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

func roleStrings(roles []models.UserRole) []string {
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		out = append(out, string(role))
	}
	return out
}
