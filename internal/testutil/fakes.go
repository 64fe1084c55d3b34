// Package testutil provides in-memory fakes of the store and completion
// interfaces for tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"taskboard/pkg/activity"
	"taskboard/pkg/task"
	"taskboard/pkg/user"
)

// TaskStore is an in-memory task.Store.
type TaskStore struct {
	mu    sync.Mutex
	seq   int
	Tasks map[string]*task.Task
}

// NewTaskStore creates an empty TaskStore.
func NewTaskStore() *TaskStore {
	return &TaskStore{Tasks: make(map[string]*task.Task)}
}

// Put seeds a task under an explicit id.
func (s *TaskStore) Put(t *task.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.Tasks[t.ID] = &cp
}

// Len returns the number of stored tasks.
func (s *TaskStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Tasks)
}

func (s *TaskStore) Create(_ context.Context, t *task.Task) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	// Ids mimic the production shape: 24 hex characters.
	t.ID = fmt.Sprintf("%024x", s.seq)
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = task.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = task.PriorityLow
	}
	cp := *t
	s.Tasks[t.ID] = &cp
	return t, nil
}

func (s *TaskStore) Get(_ context.Context, id string) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.Tasks[id]
	if !ok {
		return nil, task.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *TaskStore) Find(_ context.Context, q task.Query) ([]task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var idSet map[string]bool
	if q.IDs != nil {
		idSet = make(map[string]bool, len(q.IDs))
		for _, id := range q.IDs {
			idSet[id] = true
		}
	}

	var result []task.Task
	for _, t := range s.Tasks {
		if t.CreatedBy.UserID != q.CreatedByID {
			continue
		}
		if idSet != nil && !idSet[t.ID] {
			continue
		}
		if q.TitleContains != "" && !containsFold(t.Title, q.TitleContains) {
			continue
		}
		if q.DescriptionContains != "" && !containsFold(t.Description, q.DescriptionContains) {
			continue
		}
		if q.Status != "" && t.Status != q.Status {
			continue
		}
		if q.Priority != "" && t.Priority != q.Priority {
			continue
		}
		if q.DueDate != "" && t.DueDate != q.DueDate {
			continue
		}
		if q.DueTime != "" && t.DueTime != q.DueTime {
			continue
		}
		if q.AssigneeID != "" && t.Assignee.UserID != q.AssigneeID {
			continue
		}
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (s *TaskStore) Update(_ context.Context, id string, updates map[string]any) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.Tasks[id]
	if !ok {
		return nil, task.ErrNotFound
	}
	for k, v := range updates {
		switch k {
		case "title":
			t.Title = v.(string)
		case "description":
			t.Description = v.(string)
		case "status":
			t.Status = v.(string)
		case "priority":
			t.Priority = v.(string)
		case "due_date":
			t.DueDate = v.(string)
		case "due_time":
			t.DueTime = v.(string)
		case "assignee":
			t.Assignee = v.(task.UserRef)
		}
	}
	t.UpdatedAt = time.Now()
	cp := *t
	return &cp, nil
}

func (s *TaskStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Tasks[id]; !ok {
		return false, nil
	}
	delete(s.Tasks, id)
	return true, nil
}

func (s *TaskStore) EnsureTable(_ context.Context) error { return nil }

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// UserStore is an in-memory user.Store.
type UserStore struct {
	mu    sync.Mutex
	seq   int
	Users []user.User
}

// NewUserStore creates a UserStore seeded with the given users.
func NewUserStore(users ...user.User) *UserStore {
	return &UserStore{Users: users}
}

func (s *UserStore) Create(_ context.Context, name, email, passwordHash string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.Users {
		if u.Email == email {
			return nil, user.ErrEmailTaken
		}
	}
	s.seq++
	u := user.User{
		ID:           fmt.Sprintf("u%023x", s.seq),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	s.Users = append(s.Users, u)
	return &u, nil
}

func (s *UserStore) ByID(_ context.Context, id string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.Users {
		if u.ID == id {
			cp := u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *UserStore) ByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.Users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *UserStore) MatchName(_ context.Context, pattern string) ([]user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []user.User
	for _, u := range s.Users {
		if containsFold(u.Name, pattern) {
			matches = append(matches, u)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	return matches, nil
}

func (s *UserStore) List(_ context.Context) ([]user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]user.User(nil), s.Users...), nil
}

func (s *UserStore) EnsureTable(_ context.Context) error { return nil }

// ActivityStore is an in-memory activity.Store.
type ActivityStore struct {
	mu     sync.Mutex
	seq    int
	Events []activity.Event
}

// NewActivityStore creates an empty ActivityStore.
func NewActivityStore() *ActivityStore {
	return &ActivityStore{}
}

func (s *ActivityStore) Append(_ context.Context, eventType, actorID string, content map[string]any) (*activity.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	e := activity.Event{
		ID:        fmt.Sprintf("evt-%d", s.seq),
		Type:      eventType,
		Timestamp: time.Now(),
		ActorID:   actorID,
		Content:   content,
	}
	s.Events = append(s.Events, e)
	return &e, nil
}

func (s *ActivityStore) Recent(_ context.Context, limit int) ([]activity.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := append([]activity.Event(nil), s.Events...)
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, nil
}

func (s *ActivityStore) ByType(_ context.Context, eventType string, limit int) ([]activity.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var events []activity.Event
	for _, e := range s.Events {
		if e.Type == eventType {
			events = append(events, e)
		}
	}
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, nil
}

func (s *ActivityStore) ByActor(_ context.Context, actorID string, limit int) ([]activity.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var events []activity.Event
	for _, e := range s.Events {
		if e.ActorID == actorID {
			events = append(events, e)
		}
	}
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, nil
}

func (s *ActivityStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Events), nil
}

func (s *ActivityStore) EnsureTable(_ context.Context) error { return nil }

// Completer returns a canned response and records what it was asked.
type Completer struct {
	Response string
	Err      error

	LastSystem string
	LastUser   string
}

func (c *Completer) Complete(_ context.Context, system, user string) (string, error) {
	c.LastSystem = system
	c.LastUser = user
	if c.Err != nil {
		return "", c.Err
	}
	return c.Response, nil
}
