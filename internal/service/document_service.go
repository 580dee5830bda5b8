package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"taskmanager/internal/access"
	apperrors "taskmanager/internal/errors"
	"taskmanager/internal/model"
	"taskmanager/internal/repository"
	"taskmanager/internal/storage"
	"taskmanager/internal/upload"
)

// IncomingFile is one file of an upload batch.
type IncomingFile struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// DocumentService attaches PDF documents to tasks and serves them back.
type DocumentService interface {
	Upload(ctx context.Context, p access.Principal, taskID uint, files []IncomingFile) (*model.Task, error)
	Open(ctx context.Context, p access.Principal, name string) (io.ReadCloser, error)
}

type documentService struct {
	taskRepo repository.TaskRepository
	files    storage.Store
	log      *slog.Logger
	now      func() time.Time
}

// NewDocumentService builds a DocumentService over a content store.
func NewDocumentService(taskRepo repository.TaskRepository, files storage.Store, log *slog.Logger) DocumentService {
	return &documentService{
		taskRepo: taskRepo,
		files:    files,
		log:      log,
		now:      time.Now,
	}
}

// Upload validates the whole batch against the task's remaining capacity,
// stores the accepted prefix and records it after the existing documents.
// Files beyond the capacity are dropped without error.
func (s *documentService) Upload(ctx context.Context, p access.Principal, taskID uint, files []IncomingFile) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find task %d: %w", taskID, err)
	}
	if err := access.CheckTask(p, task.AssignedToID, access.OpUpload); err != nil {
		return nil, err
	}

	batch := make([]upload.Candidate, len(files))
	for i, f := range files {
		batch[i] = upload.Candidate{Name: f.Name, Size: f.Size}
	}
	accept, err := upload.Plan(len(task.Documents), batch)
	if err != nil {
		return nil, err
	}

	stored := make([]string, 0, accept)
	for _, f := range files[:accept] {
		name := upload.StoredName(f.Name, s.now())
		if err := s.put(ctx, name, f); err != nil {
			s.discard(ctx, stored)
			return nil, err
		}
		stored = append(stored, name)
	}

	// Capacity is checked again inside the transaction. Two concurrent
	// uploads can still both pass it since no row lock is taken.
	err = s.taskRepo.WithTransaction(ctx, func(ctx context.Context, repo repository.TaskRepository) error {
		current, err := repo.FindByID(ctx, taskID)
		if err != nil {
			return fmt.Errorf("reload task %d: %w", taskID, err)
		}
		if len(current.Documents)+len(stored) > upload.MaxDocuments {
			return upload.ErrCeilingReached
		}

		docs := make([]model.TaskDocument, len(stored))
		for i, name := range stored {
			docs[i] = model.TaskDocument{
				TaskID:   taskID,
				Name:     name,
				Position: len(current.Documents) + i,
			}
		}
		return repo.AddDocuments(ctx, docs)
	})
	if err != nil {
		s.discard(ctx, stored)
		if errors.Is(err, upload.ErrCeilingReached) {
			return nil, err
		}
		return nil, fmt.Errorf("record documents for task %d: %w", taskID, err)
	}

	s.log.InfoContext(ctx, "documents uploaded", "task_id", taskID, "accepted", len(stored), "discarded", len(files)-len(stored))

	updated, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("reload task %d: %w", taskID, err)
	}
	return updated, nil
}

func (s *documentService) put(ctx context.Context, name string, f IncomingFile) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open upload %q: %w", f.Name, err)
	}
	defer rc.Close()

	if err := s.files.Put(ctx, name, rc, f.Size); err != nil {
		return fmt.Errorf("store upload %q: %w", f.Name, err)
	}
	return nil
}

// discard removes content written for a failed upload.
func (s *documentService) discard(ctx context.Context, names []string) {
	for _, name := range names {
		if err := s.files.Delete(ctx, name); err != nil {
			s.log.ErrorContext(ctx, "discard uploaded file", "file", name, "error", err)
		}
	}
}

// Open returns the content of a stored document if p may read its task.
func (s *documentService) Open(ctx context.Context, p access.Principal, name string) (io.ReadCloser, error) {
	if !upload.ValidStoredName(name) {
		return nil, apperrors.ErrNotFound
	}

	doc, err := s.taskRepo.FindDocumentByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find document %q: %w", name, err)
	}

	task, err := s.taskRepo.FindByID(ctx, doc.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find task %d: %w", doc.TaskID, err)
	}
	if err := access.CheckTask(p, task.AssignedToID, access.OpDownload); err != nil {
		return nil, err
	}

	ok, err := s.files.Exists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("stat document %q: %w", name, err)
	}
	if !ok {
		s.log.WarnContext(ctx, "document record without content", "name", name, "task_id", task.ID)
		return nil, apperrors.ErrNotFound
	}

	rc, err := s.files.Get(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("read document %q: %w", name, err)
	}
	return rc, nil
}
