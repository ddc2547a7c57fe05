package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/ndubrovin/TaskKeeper/internal/models"
	"go.uber.org/zap"
)

const mirrorFile = "tasks.json"

// TaskMirror is the offline fallback copy of the task list. It is not a
// sync queue: SyncTasks overwrites the previous snapshot wholesale, and
// the server stays the source of truth. Persistence failures are logged
// and swallowed; losing the mirror loses nothing authoritative.
type TaskMirror struct {
	path string
	log  *zap.Logger
	mu   sync.Mutex
}

// NewTaskMirror returns a mirror rooted at dir.
func NewTaskMirror(dir string, log *zap.Logger) *TaskMirror {
	return &TaskMirror{path: filepath.Join(dir, mirrorFile), log: log}
}

// Store appends one task to the mirrored snapshot.
func (m *TaskMirror) Store(task models.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := m.load()
	tasks = append(tasks, task)
	m.save(tasks)
}

// GetAll returns the mirrored snapshot, degrading to an empty list when
// the file is missing or unreadable.
func (m *TaskMirror) GetAll() []models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load()
}

// SyncTasks replaces the snapshot with the given list.
func (m *TaskMirror) SyncTasks(tasks []models.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.save(tasks)
}

func (m *TaskMirror) load() []models.Task {
	raw, err := os.ReadFile(m.path)
	if err != nil {
		if !os.IsNotExist(err) {
			m.log.Warn("failed to read task mirror", zap.Error(err))
		}
		return []models.Task{}
	}
	var tasks []models.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		m.log.Warn("task mirror is corrupt, starting empty", zap.Error(err))
		return []models.Task{}
	}
	return tasks
}

func (m *TaskMirror) save(tasks []models.Task) {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		m.log.Warn("failed to create state dir", zap.Error(err))
		return
	}
	raw, err := json.Marshal(tasks)
	if err != nil {
		m.log.Warn("failed to encode task mirror", zap.Error(err))
		return
	}
	if err := os.WriteFile(m.path, raw, 0o600); err != nil {
		m.log.Warn("failed to write task mirror", zap.Error(err))
	}
}
