package validation

import (
	"fmt"
	"regexp"
	"strings"

	"docvault/internal/apperr"
	"docvault/internal/model"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// File describes an uploaded file as declared by the caller.
type File struct {
	Name        string
	ContentType string
	Size        int64
}

// UploadMetadata is the caller-supplied metadata accompanying an upload.
type UploadMetadata struct {
	User string
	Name string
	Tags []string
}

// Validator checks caller input against configured limits. It has no side effects.
type Validator struct {
	maxFileSizeBytes int64
	maxFileSizeMB    int64
	maxPageSize      int
}

// New returns a Validator enforcing the given upload and page size limits.
func New(maxFileSizeMB int64, maxPageSize int) *Validator {
	return &Validator{
		maxFileSizeBytes: maxFileSizeMB * 1024 * 1024,
		maxFileSizeMB:    maxFileSizeMB,
		maxPageSize:      maxPageSize,
	}
}

// ValidateUploadFile rejects missing, empty, non-PDF or oversized files.
// A file exactly at the size limit is accepted.
func (v *Validator) ValidateUploadFile(f *File) error {
	if f == nil || f.Size <= 0 {
		return apperr.InvalidInput("file is required and cannot be empty")
	}
	if f.ContentType != model.PDFContentType {
		return apperr.InvalidInput(fmt.Sprintf("only PDF files are allowed, received content type: %s", f.ContentType))
	}
	if !model.HasPDFExtension(f.Name) {
		return apperr.InvalidInput("file must have .pdf extension")
	}
	if f.Size > v.maxFileSizeBytes {
		return apperr.InvalidInput(fmt.Sprintf("file size exceeds maximum allowed size of %d MB", v.maxFileSizeMB))
	}
	return nil
}

// ValidatePagination checks a zero-based page and a page size within [1, max].
func (v *Validator) ValidatePagination(page, size int) error {
	if page < 0 {
		return apperr.InvalidInput("page number must be greater than or equal to 0")
	}
	if size < 1 {
		return apperr.InvalidInput("page size must be greater than 0")
	}
	if size > v.maxPageSize {
		return apperr.InvalidInput(fmt.Sprintf("page size must not exceed %d items", v.maxPageSize))
	}
	return nil
}

// ValidateDocumentID requires canonical 8-4-4-4-12 hexadecimal UUID text.
func (v *Validator) ValidateDocumentID(id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.InvalidInput("document ID is required")
	}
	if !uuidPattern.MatchString(id) {
		return apperr.InvalidInput("invalid document ID format, expected UUID")
	}
	return nil
}

// ValidateUploadMetadata requires a user, a name and at least one tag entry.
func (v *Validator) ValidateUploadMetadata(m *UploadMetadata) error {
	if m == nil {
		return apperr.InvalidInput("metadata is required")
	}
	var missing []string
	if strings.TrimSpace(m.User) == "" {
		missing = append(missing, "user is required")
	}
	if strings.TrimSpace(m.Name) == "" {
		missing = append(missing, "document name is required")
	}
	if len(m.Tags) == 0 {
		missing = append(missing, "at least one tag is required")
	}
	if len(missing) > 0 {
		return apperr.InvalidInput("validation failed: " + strings.Join(missing, "; "))
	}
	return nil
}
