package upload

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pdfs(names ...string) []Candidate {
	batch := make([]Candidate, 0, len(names))
	for _, n := range names {
		batch = append(batch, Candidate{Name: n, Size: 128})
	}
	return batch
}

func TestPlan_Accepts(t *testing.T) {
	tests := []struct {
		name     string
		existing int
		batch    []Candidate
		want     int
	}{
		{name: "empty task, one file", existing: 0, batch: pdfs("a.pdf"), want: 1},
		{name: "empty task, full batch", existing: 0, batch: pdfs("a.pdf", "b.pdf", "c.pdf"), want: 3},
		{name: "one existing, two files", existing: 1, batch: pdfs("a.pdf", "b.pdf"), want: 2},
		{name: "two existing, batch of three truncates to one", existing: 2, batch: pdfs("a.pdf", "b.pdf", "c.pdf"), want: 1},
		{name: "uppercase extension", existing: 0, batch: pdfs("SCAN.PDF"), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Plan(tt.existing, tt.batch)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlan_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		existing int
		batch    []Candidate
		wantErr  error
	}{
		{name: "empty batch", existing: 0, batch: nil, wantErr: ErrEmptyBatch},
		{name: "batch over limit", existing: 0, batch: pdfs("a.pdf", "b.pdf", "c.pdf", "d.pdf"), wantErr: ErrBatchTooLarge},
		{name: "ceiling reached", existing: 3, batch: pdfs("a.pdf"), wantErr: ErrCeilingReached},
		{name: "non pdf among valid", existing: 0, batch: append(pdfs("a.pdf"), Candidate{Name: "report.txt", Size: 10}), wantErr: ErrNotPDF},
		{name: "non pdf beyond capacity", existing: 2, batch: append(pdfs("a.pdf"), Candidate{Name: "report.txt", Size: 10}), wantErr: ErrNotPDF},
		{name: "zero length", existing: 0, batch: []Candidate{{Name: "a.pdf", Size: 0}}, wantErr: ErrEmptyFile},
		{name: "no name", existing: 0, batch: []Candidate{{Name: "", Size: 4}}, wantErr: ErrInvalidFileName},
		{name: "pdf only in directory", existing: 0, batch: []Candidate{{Name: "x.pdf/evil.exe", Size: 4}}, wantErr: ErrNotPDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Plan(tt.existing, tt.batch)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, got)
		})
	}
}

func TestPlan_FileErrorNamesOffender(t *testing.T) {
	_, err := Plan(0, append(pdfs("a.pdf"), Candidate{Name: "report.txt", Size: 10}))

	var fileErr *FileError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, "report.txt", fileErr.Name)
	assert.Contains(t, err.Error(), "report.txt")
}

func TestStoredName(t *testing.T) {
	now := time.UnixMilli(1767225600000)

	first := StoredName("../../etc/scan.pdf", now)
	second := StoredName("scan.pdf", now)

	assert.True(t, strings.HasPrefix(first, "1767225600000_"))
	assert.True(t, strings.HasSuffix(first, "_scan.pdf"))
	assert.NotEqual(t, first, second)
	assert.True(t, ValidStoredName(first))
}

func TestStoredName_AlwaysValidForAcceptedFiles(t *testing.T) {
	now := time.UnixMilli(1767225600000)

	for _, name := range []string{
		"q3..final.pdf",
		"a...b.pdf",
		"..hidden.pdf",
		"report\x00.pdf",
		"tab\tname.pdf",
		"dir/sub/..x..pdf",
	} {
		n, err := Plan(0, []Candidate{{Name: name, Size: 10}})
		require.NoError(t, err, name)
		require.Equal(t, 1, n)

		stored := StoredName(name, now)
		assert.True(t, ValidStoredName(stored), "%q -> %q", name, stored)
		assert.True(t, strings.HasSuffix(strings.ToLower(stored), ".pdf"), stored)
	}

	assert.True(t, strings.HasSuffix(StoredName("q3..final.pdf", now), "_q3.final.pdf"))
}

func TestValidStoredName(t *testing.T) {
	assert.True(t, ValidStoredName("1700000000000_ab12cd34_scan.pdf"))
	assert.False(t, ValidStoredName(""))
	assert.False(t, ValidStoredName("../secret.pdf"))
	assert.False(t, ValidStoredName("dir/scan.pdf"))
	assert.False(t, ValidStoredName(`dir\scan.pdf`))
}
