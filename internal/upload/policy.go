// Package upload holds the per-task document ceiling policy.
//
// A task carries at most MaxDocuments stored documents across all upload
// calls. A batch is validated as a whole: one bad file rejects every file in
// it. When the batch is valid but larger than the remaining capacity, the
// first files in input order fill the capacity and the rest are discarded
// without an error.
package upload

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

const (
	// MaxDocuments is the ceiling of stored documents per task.
	MaxDocuments = 3
	// MaxBatchSize is the largest batch accepted in a single call.
	MaxBatchSize = 3

	pdfSuffix = ".pdf"
)

var (
	ErrEmptyBatch      = errors.New("at least one file must be uploaded")
	ErrBatchTooLarge   = fmt.Errorf("you can upload a maximum of %d files only", MaxBatchSize)
	ErrCeilingReached  = fmt.Errorf("this task already has %d files attached", MaxDocuments)
	ErrNotPDF          = errors.New("only PDF files are allowed")
	ErrEmptyFile       = errors.New("empty file not allowed")
	ErrInvalidFileName = errors.New("invalid file name")
)

// FileError reports which file in a batch failed validation.
type FileError struct {
	Name string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file %q: %v", e.Name, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Candidate is an incoming file as seen by the policy.
type Candidate struct {
	Name string
	Size int64
}

// Plan validates batch against a task that already has existing documents
// and returns how many files from the front of batch are to be stored.
func Plan(existing int, batch []Candidate) (int, error) {
	if len(batch) == 0 {
		return 0, ErrEmptyBatch
	}
	if len(batch) > MaxBatchSize {
		return 0, ErrBatchTooLarge
	}
	for _, c := range batch {
		if err := validateCandidate(c); err != nil {
			return 0, err
		}
	}

	remaining := MaxDocuments - existing
	if remaining <= 0 {
		return 0, ErrCeilingReached
	}
	return min(remaining, len(batch)), nil
}

func validateCandidate(c Candidate) error {
	base := BaseName(c.Name)
	if base == "" {
		return &FileError{Name: c.Name, Err: ErrInvalidFileName}
	}
	if !strings.HasSuffix(strings.ToLower(base), pdfSuffix) {
		return &FileError{Name: c.Name, Err: ErrNotPDF}
	}
	if c.Size <= 0 {
		return &FileError{Name: c.Name, Err: ErrEmptyFile}
	}
	return nil
}

// BaseName strips any client-supplied directory components.
func BaseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}

// StoredName derives the content-store name for an accepted file: the upload
// time in milliseconds, a random suffix and the sanitised base name. The
// result always satisfies ValidStoredName.
func StoredName(original string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d_%s_%s", now.UnixMilli(), suffix, safeBase(original))
}

// safeBase replaces control characters and collapses dot runs so a name like
// "q3..final.pdf" stays storable.
func safeBase(original string) string {
	base := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return '_'
		}
		return r
	}, BaseName(original))
	for strings.Contains(base, "..") {
		base = strings.ReplaceAll(base, "..", ".")
	}
	return base
}

// ValidStoredName reports whether name is safe to resolve in a content store.
func ValidStoredName(name string) bool {
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return false
	}
	return true
}
