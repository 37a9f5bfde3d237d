package domain

import "time"

// Task is the business entity. It does not depend on Gin, Postgres or Redis.
type Task struct {
	ID       string
	Title    string
	DueDate  *time.Time
	Status   Status
	Comments *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateInput carries caller-supplied fields for a new task. ID and
// timestamps are always generated server-side.
type CreateInput struct {
	Title    string
	DueDate  *time.Time
	Status   Status // empty means default (Open)
	Comments *string
}

// TaskChanges is a sparse update: only fields marked present are applied.
// Title and Status cannot be cleared, so a plain pointer is enough for them;
// DueDate and Comments are nullable and need the tri-state optionals to tell
// "not mentioned" apart from "explicitly cleared".
type TaskChanges struct {
	Title    *string
	DueDate  OptTime
	Status   *Status
	Comments OptString
}

// IsZero reports whether no field is mentioned at all.
func (c TaskChanges) IsZero() bool {
	return c.Title == nil && !c.DueDate.Set && c.Status == nil && !c.Comments.Set
}

// OptTime is an optional nullable timestamp: Set=false means "leave
// untouched", Set=true with Value=nil means "clear".
type OptTime struct {
	Set   bool
	Value *time.Time
}

// OptString is an optional nullable string with the same semantics as OptTime.
type OptString struct {
	Set   bool
	Value *string
}

// NewOptTime marks a due date as present.
func NewOptTime(v *time.Time) OptTime { return OptTime{Set: true, Value: v} }

// NewOptString marks a comments value as present.
func NewOptString(v *string) OptString { return OptString{Set: true, Value: v} }
