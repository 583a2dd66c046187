package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/schedulink/schedulink/core"
	"github.com/schedulink/schedulink/core/task"
)

type taskRepository struct {
	db *taskTable
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *DB) *taskRepository {
	return &taskRepository{db: db.task}
}

func (repo *taskRepository) query() []task.Task {
	tasks := make([]task.Task, 0, len(repo.db.table))
	for _, tsk := range repo.db.table {
		tasks = append(tasks, *tsk)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

func (repo *taskRepository) CreateTask(_ context.Context, tsk task.Task) (task.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	tsk.ID = repo.db.seq
	repo.db.table[tsk.ID] = &tsk
	return tsk, nil
}

func (repo *taskRepository) QueryTasks(_ context.Context, filter *task.QueryFilter, _ []core.DBOrdering) ([]task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tasks := repo.query()
	if filter == nil {
		return tasks, nil
	}

	filtered := make([]task.Task, 0, len(tasks))
	for _, tsk := range tasks {
		if filter.Search != "" {
			kw := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(tsk.Title), kw) &&
				!strings.Contains(strings.ToLower(tsk.Description), kw) {
				continue
			}
		}
		if filter.AssigneeID != nil && (!tsk.AssigneeID.Valid || tsk.AssigneeID.Int != *filter.AssigneeID) {
			continue
		}
		if filter.Status != "" && tsk.Status != filter.Status {
			continue
		}
		filtered = append(filtered, tsk)
	}
	return filtered, nil
}

func (repo *taskRepository) GetTaskByID(_ context.Context, id int) (task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if tsk, ok := repo.db.table[id]; ok {
		return *tsk, nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) UpdateTask(_ context.Context, tsk task.Task) (task.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[tsk.ID]; !ok {
		return task.Task{}, task.ErrNotFound
	}
	repo.db.table[tsk.ID] = &tsk
	return tsk, nil
}

func (repo *taskRepository) DeleteTasksByID(_ context.Context, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
