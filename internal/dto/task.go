package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	dom "tasktracker/internal/domain"
)

// DueDate parses due_date from JSON as either date-only ("2006-01-02") or an
// ISO-8601 datetime. A trailing Z is UTC; date-only is stored as start of
// that day in UTC.
type DueDate struct{ t *time.Time }

var dueDateLayouts = []string{
	"2006-01-02", // date only
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05", // naive datetime, taken as UTC
}

func (d *DueDate) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		d.t = nil
		return nil
	}
	t, err := ParseDueDate(*raw)
	if err != nil {
		return err
	}
	d.t = t
	return nil
}

// Ptr returns *time.Time for use in the engine.
func (d DueDate) Ptr() *time.Time { return d.t }

// ParseDueDate parses a date string in any accepted layout.
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueDateLayouts {
		parsed, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" || layout == "2006-01-02T15:04:05" {
			parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(),
				parsed.Hour(), parsed.Minute(), parsed.Second(), 0, time.UTC)
		}
		parsed = parsed.UTC()
		return &parsed, nil
	}
	return nil, fmt.Errorf("due_date: use date (YYYY-MM-DD) or ISO-8601 datetime")
}

// OptDueDate tracks JSON presence: UnmarshalJSON only runs for keys that
// exist, so Set=false means the field was absent and Set=true with a nil
// value means an explicit null (clear the date).
type OptDueDate struct {
	Set   bool
	Value *time.Time
}

func (o *OptDueDate) UnmarshalJSON(data []byte) error {
	o.Set = true
	var d DueDate
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	o.Value = d.Ptr()
	return nil
}

// OptText is the string counterpart of OptDueDate, used for comments.
type OptText struct {
	Set   bool
	Value *string
}

func (o *OptText) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}

type CreateTaskRequest struct {
	Title    string  `json:"title" binding:"required"`
	DueDate  DueDate `json:"due_date"` // optional: "2026-02-19" or ISO-8601
	Status   string  `json:"status"`   // optional, defaults to Open
	Comments *string `json:"comments"`
}

// ToInput converts the request to engine input, validating the status enum.
func (r CreateTaskRequest) ToInput() (dom.CreateInput, error) {
	in := dom.CreateInput{
		Title:    r.Title,
		DueDate:  r.DueDate.Ptr(),
		Comments: r.Comments,
	}
	if r.Status != "" {
		status, err := dom.ParseStatus(r.Status)
		if err != nil {
			return dom.CreateInput{}, err
		}
		in.Status = status
	}
	return in, nil
}

type UpdateTaskRequest struct {
	Title    *string    `json:"title"`
	DueDate  OptDueDate `json:"due_date"` // null clears the date
	Status   *string    `json:"status"`
	Comments OptText    `json:"comments"` // null clears the comments
}

// ToChanges converts the request to a sparse change set.
func (r UpdateTaskRequest) ToChanges() (dom.TaskChanges, error) {
	ch := dom.TaskChanges{
		Title:    r.Title,
		DueDate:  dom.OptTime{Set: r.DueDate.Set, Value: r.DueDate.Value},
		Comments: dom.OptString{Set: r.Comments.Set, Value: r.Comments.Value},
	}
	if r.Status != nil {
		status, err := dom.ParseStatus(*r.Status)
		if err != nil {
			return dom.TaskChanges{}, err
		}
		ch.Status = &status
	}
	return ch, nil
}

type TaskResponse struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	DueDate   *time.Time `json:"due_date"`
	Status    string     `json:"status"`
	Comments  *string    `json:"comments"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// FromTask shapes a domain task for the wire.
func FromTask(t dom.Task) TaskResponse {
	return TaskResponse{
		ID:        t.ID,
		Title:     t.Title,
		DueDate:   t.DueDate,
		Status:    string(t.Status),
		Comments:  t.Comments,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// FromTasks shapes a task list; never nil so JSON renders [] not null.
func FromTasks(list []dom.Task) []TaskResponse {
	out := make([]TaskResponse, len(list))
	for i := range list {
		out[i] = FromTask(list[i])
	}
	return out
}
