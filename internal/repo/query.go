package repo

import (
	"fmt"
	"strings"
	"time"

	dom "tasktracker/internal/domain"
)

// Predicate is a structured filter over the tasks table. All supplied
// conditions are ANDed; Status, when set, takes precedence over
// ExcludeClosedAndDeleted (they are mutually exclusive, not combined).
type Predicate struct {
	Status                  *dom.Status
	ExcludeClosedAndDeleted bool
	DueBefore               *time.Time
	DueAfter                *time.Time
	// HasDueDate: nil = don't filter, true = due_date IS NOT NULL,
	// false = due_date IS NULL.
	HasDueDate *bool
}

// Order describes the result ordering. Field is validated by the engine
// against the sortable column set before it reaches the store.
type Order struct {
	Field string
	Desc  bool
}

// FieldChanges names the columns one ApplyUpdate touches. UpdatedAt is
// always written; the rest only when marked present.
type FieldChanges struct {
	Title     *string
	DueDate   dom.OptTime
	Status    *dom.Status
	Comments  dom.OptString
	UpdatedAt time.Time
}

const taskColumns = "id, title, due_date, status, comments, created_at, updated_at"

// sortColumns closes ORDER BY over fixed column names so no caller-supplied
// string is ever interpolated into query text.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"due_date":   "due_date",
	"updated_at": "updated_at",
	"title":      "title",
	"status":     "status",
}

// buildListQuery renders a Predicate and Order into SQL with positional
// binds. Pure, so ordering and composition are testable without a database.
func buildListQuery(p Predicate, o Order) (string, []any) {
	var (
		where []string
		args  []any
	)
	bind := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if p.Status != nil {
		where = append(where, "status = "+bind(string(*p.Status)))
	} else if p.ExcludeClosedAndDeleted {
		where = append(where, fmt.Sprintf("status NOT IN (%s, %s)",
			bind(string(dom.StatusClosed)), bind(string(dom.StatusDeleted))))
	}
	if p.DueBefore != nil {
		where = append(where, "due_date < "+bind(*p.DueBefore))
	}
	if p.DueAfter != nil {
		where = append(where, "due_date > "+bind(*p.DueAfter))
	}
	if p.HasDueDate != nil {
		if *p.HasDueDate {
			where = append(where, "due_date IS NOT NULL")
		} else {
			where = append(where, "due_date IS NULL")
		}
	}

	col, ok := sortColumns[o.Field]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	orderBy := "ORDER BY " + col + " " + dir
	if col == "due_date" {
		// Nulls sort last in both directions, never interleaved.
		orderBy += " NULLS LAST"
	}

	query := "SELECT " + taskColumns + " FROM tasks"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	return query + " " + orderBy, args
}

// buildUpdateQuery renders a sparse field set into a single UPDATE statement.
// Column names are fixed; only values are bound.
func buildUpdateQuery(id string, ch FieldChanges) (string, []any) {
	var (
		set  []string
		args []any
	)
	bind := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if ch.Title != nil {
		set = append(set, "title = "+bind(*ch.Title))
	}
	if ch.DueDate.Set {
		if ch.DueDate.Value != nil {
			set = append(set, "due_date = "+bind(*ch.DueDate.Value))
		} else {
			set = append(set, "due_date = NULL")
		}
	}
	if ch.Status != nil {
		set = append(set, "status = "+bind(string(*ch.Status)))
	}
	if ch.Comments.Set {
		if ch.Comments.Value != nil {
			set = append(set, "comments = "+bind(*ch.Comments.Value))
		} else {
			set = append(set, "comments = NULL")
		}
	}
	set = append(set, "updated_at = "+bind(ch.UpdatedAt))

	query := "UPDATE tasks SET " + strings.Join(set, ", ") +
		" WHERE id = " + bind(id) +
		" RETURNING " + taskColumns
	return query, args
}
