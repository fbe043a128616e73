package model

import (
	"strings"
	"time"
)

// PDF is the only accepted file type.
const (
	PDFContentType = "application/pdf"
	PDFExtension   = ".pdf"
)

// HasPDFExtension reports whether name ends with ".pdf", ignoring case.
func HasPDFExtension(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), PDFExtension)
}

// Document is a stored PDF with its owner, derived storage path and tags.
// This is a pure domain model with no database-specific dependencies.
type Document struct {
	ID          string
	Owner       string
	Name        string
	StoragePath string
	Size        int64
	ContentType string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Tags        []Tag
}

// Tag is a label attached to exactly one document. DocumentID is a plain reference,
// not an object pointer.
type Tag struct {
	ID         int64
	DocumentID string
	Name       string
}

// SameName reports whether two tags carry the same name. The owning document is
// deliberately ignored; comparison is exact and case-sensitive.
func (t Tag) SameName(other Tag) bool {
	return t.Name == other.Name
}

// AddTag attaches a tag to the document unless one with the same name is already present.
// It returns false when the tag was a duplicate or blank.
func (d *Document) AddTag(name string) bool {
	tag := Tag{DocumentID: d.ID, Name: strings.TrimSpace(name)}
	if tag.Name == "" {
		return false
	}
	if d.HasTag(tag.Name) {
		return false
	}
	d.Tags = append(d.Tags, tag)
	return true
}

// RemoveTag detaches the tag with the given name. It returns false if none matched.
func (d *Document) RemoveTag(name string) bool {
	probe := Tag{Name: name}
	for i, t := range d.Tags {
		if t.SameName(probe) {
			d.Tags = append(d.Tags[:i], d.Tags[i+1:]...)
			return true
		}
	}
	return false
}

// HasTag reports whether a tag with exactly this name is attached.
func (d *Document) HasTag(name string) bool {
	probe := Tag{Name: name}
	for _, t := range d.Tags {
		if t.SameName(probe) {
			return true
		}
	}
	return false
}

// TagNames returns the attached tag names in attachment order.
func (d *Document) TagNames() []string {
	names := make([]string, 0, len(d.Tags))
	for _, t := range d.Tags {
		names = append(names, t.Name)
	}
	return names
}
