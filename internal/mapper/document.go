// Package mapper converts persisted documents into transfer records.
package mapper

import (
	"strings"
	"time"

	"docvault/internal/apperr"
	"docvault/internal/dto"
	"docvault/internal/model"
)

// CreatedAtLayout renders timestamps as local date-time without zone, in UTC.
const CreatedAtLayout = "2006-01-02T15:04:05"

// ToDTO maps a document, rejecting records that lack a required field.
func ToDTO(doc *model.Document) (dto.Document, error) {
	if doc == nil {
		return dto.Document{}, apperr.InvalidInput("document cannot be null")
	}
	switch {
	case doc.ID == "":
		return dto.Document{}, apperr.InvalidInput("document ID cannot be null")
	case doc.Owner == "":
		return dto.Document{}, apperr.InvalidInput("document user cannot be null")
	case doc.Name == "":
		return dto.Document{}, apperr.InvalidInput("document name cannot be null")
	case doc.Size < 0:
		return dto.Document{}, apperr.InvalidInput("document file size cannot be null")
	case doc.ContentType == "":
		return dto.Document{}, apperr.InvalidInput("document file type cannot be null")
	case doc.CreatedAt.IsZero():
		return dto.Document{}, apperr.InvalidInput("document created date cannot be null")
	}

	return dto.Document{
		ID:        doc.ID,
		User:      doc.Owner,
		Name:      doc.Name,
		Tags:      tagNames(doc.Tags),
		Size:      doc.Size,
		Type:      doc.ContentType,
		CreatedAt: FormatTime(doc.CreatedAt),
	}, nil
}

// ToDTOs maps a slice, failing on the first invalid record.
func ToDTOs(docs []model.Document) ([]dto.Document, error) {
	out := make([]dto.Document, 0, len(docs))
	for i := range docs {
		d, err := ToDTO(&docs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// FormatTime renders t in UTC with CreatedAtLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(CreatedAtLayout)
}

func tagNames(tags []model.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		if strings.TrimSpace(t.Name) == "" {
			continue
		}
		names = append(names, t.Name)
	}
	return names
}
