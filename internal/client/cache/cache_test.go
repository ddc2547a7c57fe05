package cache_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ndubrovin/TaskKeeper/internal/client/api"
	"github.com/ndubrovin/TaskKeeper/internal/client/cache"
	"github.com/ndubrovin/TaskKeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves tasks from an in-memory slice and counts list fetches
// so tests can tell a cache hit from a refetch.
type fakeAPI struct {
	tasks     []models.Task
	listCalls int
	listErr   error
	mutateErr error
	nextID    int
}

func (f *fakeAPI) ListTasks(ctx context.Context) ([]models.Task, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Task(nil), f.tasks...), nil
}

func (f *fakeAPI) GetTask(ctx context.Context, id string) (*models.Task, error) {
	for _, t := range f.tasks {
		if t.ID == id {
			out := t
			return &out, nil
		}
	}
	return nil, &api.APIError{StatusCode: 404, Message: "task not found"}
}

func (f *fakeAPI) CreateTask(ctx context.Context, draft api.TaskDraft) (*models.Task, error) {
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	f.nextID++
	task := models.Task{
		ID:          string(rune('a' + f.nextID)),
		Title:       draft.Title,
		Description: draft.Description,
		DueDate:     draft.DueDate,
		Priority:    draft.Priority,
		Category:    draft.Category,
	}
	f.tasks = append(f.tasks, task)
	return &task, nil
}

func (f *fakeAPI) UpdateTask(ctx context.Context, id string, patch api.TaskPatch) (*models.Task, error) {
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			if patch.Title != nil {
				f.tasks[i].Title = *patch.Title
			}
			if patch.Completed != nil {
				f.tasks[i].Completed = *patch.Completed
			}
			out := f.tasks[i]
			return &out, nil
		}
	}
	return nil, &api.APIError{StatusCode: 404, Message: "task not found"}
}

func (f *fakeAPI) DeleteTask(ctx context.Context, id string) error {
	if f.mutateErr != nil {
		return f.mutateErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return &api.APIError{StatusCode: 404, Message: "task not found"}
}

func draft(title string) api.TaskDraft {
	return api.TaskDraft{
		Title:       title,
		Description: "d",
		DueDate:     "2024-01-01",
		Priority:    models.PriorityHigh,
		Category:    "work",
	}
}

func TestList_ServedFromCache(t *testing.T) {
	f := &fakeAPI{tasks: []models.Task{{ID: "t1", Title: "one"}}}
	c := cache.New(f, nil)
	ctx := context.Background()

	first, err := c.List(ctx)
	require.NoError(t, err)
	second, err := c.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.listCalls, "second read must come from the cache")
}

func TestCreate_InvalidatesList(t *testing.T) {
	f := &fakeAPI{}
	c := cache.New(f, nil)
	ctx := context.Background()

	_, err := c.List(ctx)
	require.NoError(t, err)

	created, err := c.Create(ctx, draft("X"))
	require.NoError(t, err)

	tasks, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.listCalls, "mutation must force a refetch")

	titles := make([]string, 0, len(tasks))
	for _, task := range tasks {
		titles = append(titles, task.Title)
	}
	assert.Contains(t, titles, "X")
	assert.NotEmpty(t, created.ID)
}

func TestDelete_InvalidatesList(t *testing.T) {
	f := &fakeAPI{tasks: []models.Task{{ID: "t1"}, {ID: "t2"}}}
	c := cache.New(f, nil)
	ctx := context.Background()

	_, err := c.List(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, "t1"))

	tasks, err := c.List(ctx)
	require.NoError(t, err)
	for _, task := range tasks {
		assert.NotEqual(t, "t1", task.ID)
	}
}

func TestUpdate_InvalidatesList(t *testing.T) {
	f := &fakeAPI{tasks: []models.Task{{ID: "t1", Title: "old"}}}
	c := cache.New(f, nil)
	ctx := context.Background()

	_, err := c.List(ctx)
	require.NoError(t, err)

	title := "new"
	_, err = c.Update(ctx, "t1", api.TaskPatch{Title: &title})
	require.NoError(t, err)

	tasks, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "new", tasks[0].Title)
}

func TestFailedMutation_LeavesCacheIntact(t *testing.T) {
	f := &fakeAPI{tasks: []models.Task{{ID: "t1", Title: "one"}}}
	c := cache.New(f, nil)
	ctx := context.Background()

	before, err := c.List(ctx)
	require.NoError(t, err)

	f.mutateErr = errors.New("server exploded")
	_, err = c.Create(ctx, draft("X"))
	require.Error(t, err)
	_, err = c.Update(ctx, "t1", api.TaskPatch{})
	require.Error(t, err)
	require.Error(t, c.Delete(ctx, "t1"))

	after, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, f.listCalls, "failed mutations must not trigger a refetch")
}

func TestGet_ServedFromFreshSnapshot(t *testing.T) {
	f := &fakeAPI{tasks: []models.Task{{ID: "t1", Title: "one"}}}
	c := cache.New(f, nil)
	ctx := context.Background()

	_, err := c.List(ctx)
	require.NoError(t, err)

	task, err := c.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "one", task.Title)
	assert.Equal(t, 1, f.listCalls)
}

func TestInvalidate_DropsSnapshot(t *testing.T) {
	f := &fakeAPI{tasks: []models.Task{{ID: "t1"}}}
	c := cache.New(f, nil)
	ctx := context.Background()

	_, err := c.List(ctx)
	require.NoError(t, err)

	c.Invalidate()

	_, err = c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.listCalls)
}

// mirrorRecorder records what the cache pushes to the offline copy.
type mirrorRecorder struct {
	stored []models.Task
	synced [][]models.Task
}

func (m *mirrorRecorder) Store(task models.Task)        { m.stored = append(m.stored, task) }
func (m *mirrorRecorder) SyncTasks(tasks []models.Task) { m.synced = append(m.synced, tasks) }

func TestMirror_TracksReadsAndCreates(t *testing.T) {
	f := &fakeAPI{tasks: []models.Task{{ID: "t1"}}}
	m := &mirrorRecorder{}
	c := cache.New(f, m)
	ctx := context.Background()

	_, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, m.synced, 1)

	_, err = c.Create(ctx, draft("X"))
	require.NoError(t, err)
	require.Len(t, m.stored, 1)
	assert.Equal(t, "X", m.stored[0].Title)
}
