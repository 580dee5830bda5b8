package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskmanager/internal/model"
)

// TaskFilter narrows a task listing. Nil fields do not filter. Page is
// zero-based; a Size of zero returns every match.
type TaskFilter struct {
	AssignedToID *uint
	Status       *model.TaskStatus
	Priority     *model.TaskPriority
	Page         int
	Size         int
}

// TaskRepository defines task store operations.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]model.Task, int64, error)
	AddDocuments(ctx context.Context, docs []model.TaskDocument) error
	FindDocumentByName(ctx context.Context, name string) (*model.TaskDocument, error)
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo TaskRepository) error) error
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func orderedDocuments(db *gorm.DB) *gorm.DB {
	return db.Order("task_documents.position ASC")
}

// Create inserts the task row only; relations are managed separately.
func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

// Update saves the task columns without touching its documents.
func (r *taskRepository) Update(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
}

// Delete removes a task together with its document rows.
func (r *taskRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&model.TaskDocument{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Task{}, id).Error
	})
}

// FindByID loads a task with its documents in upload order.
func (r *taskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).
		Preload("Documents", orderedDocuments).
		First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering and pagination, plus the total number
// of matches.
func (r *taskRepository) List(ctx context.Context, filter TaskFilter) ([]model.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Task{})

	if filter.AssignedToID != nil {
		query = query.Where("tasks.assigned_to_id = ?", *filter.AssignedToID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.id ASC")
	if filter.Size > 0 {
		listQuery = listQuery.Offset(filter.Page * filter.Size).Limit(filter.Size)
	}

	var tasks []model.Task
	if err := listQuery.Preload("Documents", orderedDocuments).Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// AddDocuments inserts all document rows or none of them.
func (r *taskRepository) AddDocuments(ctx context.Context, docs []model.TaskDocument) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range docs {
			if err := tx.Create(&docs[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindDocumentByName looks up a document by its stored name.
func (r *taskRepository) FindDocumentByName(ctx context.Context, name string) (*model.TaskDocument, error) {
	var doc model.TaskDocument
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// WithTransaction executes a function within a database transaction.
func (r *taskRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo TaskRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &taskRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
