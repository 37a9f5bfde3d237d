package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"tasktracker/internal/cache"
	dom "tasktracker/internal/domain"
	"tasktracker/internal/repo"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	maxTitleLen    = 500
	maxCommentsLen = 5000
)

// Sort directions accepted by Query.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

var validSortFields = []string{"created_at", "due_date", "updated_at", "title", "status"}

// ListFilter is the simple listing form: at most one of StatusExact /
// ExcludeClosedAndDeleted applies; StatusExact wins when both are set.
type ListFilter struct {
	StatusExact             *dom.Status
	ExcludeClosedAndDeleted bool
	SortByDueDate           bool
}

// QueryCriteria is the general filter/sort form. Zero-value SortField and
// SortDirection mean created_at / desc.
type QueryCriteria struct {
	StatusExact             *dom.Status
	DueBefore               *time.Time
	DueAfter                *time.Time
	HasDueDate              *bool
	ExcludeClosedAndDeleted bool
	SortField               string
	SortDirection           string
}

// TaskService owns the task business rules: validation, defaulting, id and
// timestamp generation, and the status lifecycle. All persistence goes
// through the injected Store; no package-level state.
type TaskService struct {
	store repo.Store
	cache *cache.TaskCache
	log   *zap.SugaredLogger
	sf    singleflight.Group
}

// NewTaskService creates a TaskService. If c is nil, caching is disabled.
func NewTaskService(store repo.Store, c *cache.TaskCache, log *zap.SugaredLogger) *TaskService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &TaskService{store: store, cache: c, log: log}
}

// Create validates the input, fills server-side fields and persists the task.
// Status defaults to Open; some HTTP entry points force Open regardless, but
// that is adapter policy, the engine takes any valid status.
func (s *TaskService) Create(ctx context.Context, in dom.CreateInput) (dom.Task, error) {
	title := strings.TrimSpace(in.Title)
	if err := validateTitle(title); err != nil {
		return dom.Task{}, err
	}
	if err := validateComments(in.Comments); err != nil {
		return dom.Task{}, err
	}
	status := in.Status
	if status == "" {
		status = dom.StatusOpen
	}
	if !status.Valid() {
		return dom.Task{}, dom.NewInvalidInput("status", string(status), dom.Statuses())
	}

	now := time.Now().UTC()
	t := dom.Task{
		ID:        uuid.NewString(),
		Title:     title,
		DueDate:   toUTC(in.DueDate),
		Status:    status,
		Comments:  in.Comments,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, t); err != nil {
		return dom.Task{}, err
	}
	s.invalidateCache(ctx)
	s.log.Infow("task created", "id", t.ID, "title", t.Title, "status", string(t.Status))
	return t, nil
}

// Get returns the task for id, including soft-deleted ones.
func (s *TaskService) Get(ctx context.Context, id string) (dom.Task, error) {
	return s.store.Get(ctx, id)
}

// List returns tasks for the simple filter form. It never fails validation;
// storage errors propagate.
func (s *TaskService) List(ctx context.Context, f ListFilter) ([]dom.Task, error) {
	p := repo.Predicate{
		Status:                  f.StatusExact,
		ExcludeClosedAndDeleted: f.StatusExact == nil && f.ExcludeClosedAndDeleted,
	}
	o := repo.Order{Field: "created_at", Desc: true}
	if f.SortByDueDate {
		o = repo.Order{Field: "due_date", Desc: false}
	}
	return s.listCached(ctx, p, o)
}

// Query is the general form: every supplied filter is ANDed; an exact status
// takes precedence over the closed/deleted exclusion. Sort parameters are
// validated before the store is touched.
func (s *TaskService) Query(ctx context.Context, q QueryCriteria) ([]dom.Task, error) {
	field := q.SortField
	if field == "" {
		field = "created_at"
	}
	if !contains(validSortFields, field) {
		return nil, dom.NewInvalidInput("sort_by", q.SortField, validSortFields)
	}
	dir := strings.ToLower(q.SortDirection)
	if dir == "" {
		dir = SortDesc
	}
	if dir != SortAsc && dir != SortDesc {
		return nil, dom.NewInvalidInput("sort_order", q.SortDirection, []string{SortAsc, SortDesc})
	}

	p := repo.Predicate{
		Status:                  q.StatusExact,
		ExcludeClosedAndDeleted: q.StatusExact == nil && q.ExcludeClosedAndDeleted,
		DueBefore:               toUTC(q.DueBefore),
		DueAfter:                toUTC(q.DueAfter),
		HasDueDate:              q.HasDueDate,
	}
	o := repo.Order{Field: field, Desc: dir == SortDesc}
	return s.listCached(ctx, p, o)
}

// Update applies a sparse change set. Absent fields stay untouched;
// present-with-null clears due_date/comments. Empty titles are rejected here;
// the one legacy route that tolerated them handles that before calling in.
// updated_at advances on every successful call, changed fields or not.
func (s *TaskService) Update(ctx context.Context, id string, ch dom.TaskChanges) (dom.Task, error) {
	fc := repo.FieldChanges{
		DueDate:  dom.OptTime{Set: ch.DueDate.Set, Value: toUTC(ch.DueDate.Value)},
		Status:   ch.Status,
		Comments: ch.Comments,
	}
	if ch.Title != nil {
		title := strings.TrimSpace(*ch.Title)
		if err := validateTitle(title); err != nil {
			return dom.Task{}, err
		}
		fc.Title = &title
	}
	if ch.Status != nil && !ch.Status.Valid() {
		return dom.Task{}, dom.NewInvalidInput("status", string(*ch.Status), dom.Statuses())
	}
	if ch.Comments.Set {
		if err := validateComments(ch.Comments.Value); err != nil {
			return dom.Task{}, err
		}
	}

	// Fail fast on unknown ids; the zero-rows check in ApplyUpdate still
	// guards the race where the row vanishes in between.
	if _, err := s.store.Get(ctx, id); err != nil {
		return dom.Task{}, err
	}

	fc.UpdatedAt = time.Now().UTC()
	t, err := s.store.ApplyUpdate(ctx, id, fc)
	if err != nil {
		return dom.Task{}, err
	}
	s.invalidateCache(ctx)
	s.log.Infow("task updated", "id", id)
	return t, nil
}

// Delete soft-deletes: the row stays, status becomes Deleted. Deleting an
// already-Deleted task succeeds and still advances updated_at.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	status := dom.StatusDeleted
	if _, err := s.Update(ctx, id, dom.TaskChanges{Status: &status}); err != nil {
		return err
	}
	s.log.Infow("task deleted", "id", id)
	return nil
}

func (s *TaskService) listCached(ctx context.Context, p repo.Predicate, o repo.Order) ([]dom.Task, error) {
	if s.cache == nil {
		return s.store.List(ctx, p, o)
	}
	key := cacheKey(p, o)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		if list, err := s.cache.GetList(ctx, key); err == nil && list != nil {
			return list, nil
		}
		list, err := s.store.List(ctx, p, o)
		if err != nil {
			return nil, err
		}
		_ = s.cache.SetList(ctx, key, list)
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Task), nil
}

func (s *TaskService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		if err := s.cache.InvalidateAll(ctx); err != nil {
			s.log.Warnw("cache invalidation failed", "err", err)
		}
	}
}

// cacheKey renders predicate and order into a canonical string so identical
// queries share a cache entry.
func cacheKey(p repo.Predicate, o repo.Order) string {
	var b strings.Builder
	if p.Status != nil {
		b.WriteString("s=" + string(*p.Status))
	}
	if p.ExcludeClosedAndDeleted {
		b.WriteString("|x")
	}
	if p.DueBefore != nil {
		b.WriteString("|b=" + p.DueBefore.Format(time.RFC3339Nano))
	}
	if p.DueAfter != nil {
		b.WriteString("|a=" + p.DueAfter.Format(time.RFC3339Nano))
	}
	if p.HasDueDate != nil {
		b.WriteString("|h=" + strconv.FormatBool(*p.HasDueDate))
	}
	fmt.Fprintf(&b, "|o=%s,%t", o.Field, o.Desc)
	return b.String()
}

func validateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n < 1 || n > maxTitleLen {
		return dom.NewInvalidInputReason("title", fmt.Sprintf("length must be 1-%d characters", maxTitleLen))
	}
	return nil
}

func validateComments(comments *string) error {
	if comments != nil && utf8.RuneCountInString(*comments) > maxCommentsLen {
		return dom.NewInvalidInputReason("comments", fmt.Sprintf("length must be at most %d characters", maxCommentsLen))
	}
	return nil
}

func toUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
