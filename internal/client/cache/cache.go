// Package cache keeps an in-memory copy of the task list and decides
// when it must be refetched. Invalidation is a generation counter: every
// successful mutation bumps it, and a snapshot fetched under an older
// generation is stale. Invalidation is deliberately coarse — any
// mutation drops the whole list, never a single entry.
package cache

import (
	"context"
	"sync"

	"github.com/ndubrovin/TaskKeeper/internal/client/api"
	"github.com/ndubrovin/TaskKeeper/internal/models"
)

// TaskAPI is the slice of the API client the cache drives.
type TaskAPI interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	CreateTask(ctx context.Context, draft api.TaskDraft) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, patch api.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Mirror receives successful reads and creates so the offline copy
// tracks the server. May be nil.
type Mirror interface {
	Store(task models.Task)
	SyncTasks(tasks []models.Task)
}

// TaskCache is the process-wide task cache. All mutation of the cached
// list goes through its methods; readers get copies.
type TaskCache struct {
	api    TaskAPI
	mirror Mirror

	mu      sync.Mutex
	tasks   []models.Task
	haveSnp bool
	gen     uint64 // bumped by every successful mutation
	snapGen uint64 // generation the snapshot was fetched under
}

// New constructs a TaskCache. mirror may be nil when no offline copy is
// wanted (tests, short-lived tools).
func New(taskAPI TaskAPI, mirror Mirror) *TaskCache {
	return &TaskCache{api: taskAPI, mirror: mirror}
}

// List returns the cached task list, refetching first when no snapshot
// exists or a mutation has invalidated it. A failed refetch leaves the
// stale snapshot in place (still marked stale) and returns the error.
func (c *TaskCache) List(ctx context.Context) ([]models.Task, error) {
	c.mu.Lock()
	if c.haveSnp && c.snapGen == c.gen {
		out := append([]models.Task(nil), c.tasks...)
		c.mu.Unlock()
		return out, nil
	}
	fetchGen := c.gen
	c.mu.Unlock()

	tasks, err := c.api.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	if c.mirror != nil {
		c.mirror.SyncTasks(tasks)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// A mutation that completed during the fetch outranks this snapshot.
	if c.gen == fetchGen {
		c.tasks = tasks
		c.haveSnp = true
		c.snapGen = fetchGen
	}
	return append([]models.Task(nil), tasks...), nil
}

// Get returns a single task, served from a fresh snapshot when the id
// is in it, otherwise fetched from the server.
func (c *TaskCache) Get(ctx context.Context, id string) (*models.Task, error) {
	c.mu.Lock()
	if c.haveSnp && c.snapGen == c.gen {
		for _, t := range c.tasks {
			if t.ID == id {
				out := t
				c.mu.Unlock()
				return &out, nil
			}
		}
	}
	c.mu.Unlock()
	return c.api.GetTask(ctx, id)
}

// Create sends the draft to the server. On success the list cache is
// invalidated and the new task is mirrored; on failure the cache is
// left exactly as it was.
func (c *TaskCache) Create(ctx context.Context, draft api.TaskDraft) (*models.Task, error) {
	task, err := c.api.CreateTask(ctx, draft)
	if err != nil {
		return nil, err
	}
	if c.mirror != nil {
		c.mirror.Store(*task)
	}
	c.bump()
	return task, nil
}

// Update applies a partial update; the cache is invalidated only on
// success.
func (c *TaskCache) Update(ctx context.Context, id string, patch api.TaskPatch) (*models.Task, error) {
	task, err := c.api.UpdateTask(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	c.bump()
	return task, nil
}

// Delete removes a task; the cache is invalidated only on success.
func (c *TaskCache) Delete(ctx context.Context, id string) error {
	if err := c.api.DeleteTask(ctx, id); err != nil {
		return err
	}
	c.bump()
	return nil
}

// Invalidate drops the snapshot unconditionally. The session layer calls
// it when the authenticated user changes, so one user's list can never
// be served to another.
func (c *TaskCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = nil
	c.haveSnp = false
	c.gen++
}

func (c *TaskCache) bump() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
}
