// Package query turns optional search criteria into a backend-neutral predicate.
//
// A Predicate is an ordered list of conditions combined with AND. Storage backends
// translate each condition into their own expression language; tag membership is
// always an existence test so a document never appears twice in a result set.
package query

import (
	"strings"

	"docvault/internal/model"
)

// Criteria are the optional search filters supplied by a caller.
type Criteria struct {
	User         string
	NameContains string
	Tags         []string
}

// Condition is a single boolean test over a document.
type Condition interface {
	Matches(doc *model.Document) bool
}

// OwnerEquals matches documents whose owner equals Owner exactly (case-sensitive).
type OwnerEquals struct {
	Owner string
}

func (c OwnerEquals) Matches(doc *model.Document) bool {
	return doc.Owner == c.Owner
}

// NameContains matches documents whose name contains Fragment, ignoring case.
// Fragment is a literal; it carries no wildcard semantics.
type NameContains struct {
	Fragment string
}

func (c NameContains) Matches(doc *model.Document) bool {
	return strings.Contains(strings.ToLower(doc.Name), strings.ToLower(c.Fragment))
}

// HasTag matches documents carrying at least one tag named exactly Name.
type HasTag struct {
	Name string
}

func (c HasTag) Matches(doc *model.Document) bool {
	return doc.HasTag(c.Name)
}

// Predicate is the conjunction of its conditions. The zero value matches everything.
type Predicate struct {
	Conditions []Condition
}

// IsEmpty reports whether the predicate imposes no constraint.
func (p Predicate) IsEmpty() bool {
	return len(p.Conditions) == 0
}

// Matches evaluates the predicate in process.
func (p Predicate) Matches(doc *model.Document) bool {
	for _, c := range p.Conditions {
		if !c.Matches(doc) {
			return false
		}
	}
	return true
}

// And returns a predicate with cond appended.
func (p Predicate) And(cond Condition) Predicate {
	conds := make([]Condition, 0, len(p.Conditions)+1)
	conds = append(conds, p.Conditions...)
	return Predicate{Conditions: append(conds, cond)}
}

// Build composes a predicate from criteria. Blank fields impose no constraint; each
// non-blank tag adds its own existence condition, so every listed tag is required.
func Build(c *Criteria) Predicate {
	var p Predicate
	if c == nil {
		return p
	}
	if !isBlank(c.User) {
		p = p.And(OwnerEquals{Owner: c.User})
	}
	if !isBlank(c.NameContains) {
		p = p.And(NameContains{Fragment: c.NameContains})
	}
	seen := make(map[string]struct{}, len(c.Tags))
	for _, tag := range c.Tags {
		if isBlank(tag) {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		p = p.And(HasTag{Name: tag})
	}
	return p
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
