// Package journal contains the academic-records domain model: the closed set
// of entity kinds, their static field sets, field-bag validation, and the
// repository contract. This package has no external dependencies.
package journal

import (
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY KINDS
// ══════════════════════════════════════════════════════════════════════════════

// Kind identifies one of the five journal entities. The set is closed: every
// dispatch over kinds is an explicit switch, never reflection.
type Kind string

const (
	KindTeacher Kind = "teacher"
	KindStudent Kind = "student"
	KindGroup   Kind = "group"
	KindSubject Kind = "subject"
	KindGrade   Kind = "grade"
)

// AllKinds returns every entity kind in declaration order.
func AllKinds() []Kind {
	return []Kind{KindTeacher, KindStudent, KindGroup, KindSubject, KindGrade}
}

// ParseKind maps a caller-supplied entity name to a Kind.
// Returns ErrUnknownEntity for anything outside the closed set.
func ParseKind(name string) (Kind, error) {
	switch Kind(name) {
	case KindTeacher, KindStudent, KindGroup, KindSubject, KindGrade:
		return Kind(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEntity, name)
	}
}

// Table returns the relation name backing the kind.
func (k Kind) Table() string {
	switch k {
	case KindTeacher:
		return "teachers"
	case KindStudent:
		return "students"
	case KindGroup:
		return "groups"
	case KindSubject:
		return "subjects"
	case KindGrade:
		return "grades"
	default:
		return ""
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Static field sets
// ─────────────────────────────────────────────────────────────────────────────

// ColType describes how a column's values are typed in Go and in SQL.
type ColType int

const (
	// ColID is the integer surrogate key.
	ColID ColType = iota
	// ColText is a free-form text field.
	ColText
	// ColInt is an integer field (foreign keys, scores).
	ColInt
	// ColDate is a calendar date in ISO-8601 (YYYY-MM-DD) form.
	ColDate
)

// Column is one attribute of an entity kind.
type Column struct {
	Name string
	Type ColType
}

// Columns returns the kind's attributes in declaration order, surrogate key
// first. List output uses exactly this order for table headers.
func (k Kind) Columns() []Column {
	switch k {
	case KindTeacher, KindGroup:
		return []Column{{"id", ColID}, {"name", ColText}}
	case KindStudent:
		return []Column{{"id", ColID}, {"name", ColText}, {"group_id", ColInt}}
	case KindSubject:
		return []Column{{"id", ColID}, {"name", ColText}, {"teacher_id", ColInt}}
	case KindGrade:
		return []Column{
			{"id", ColID},
			{"student_id", ColInt},
			{"subject_id", ColInt},
			{"grade", ColInt},
			{"date_of", ColDate},
		}
	default:
		return nil
	}
}

// ColumnNames returns the attribute names in declaration order.
func (k Kind) ColumnNames() []string {
	cols := k.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// Column looks up one attribute by name.
func (k Kind) Column(name string) (Column, bool) {
	for _, c := range k.Columns() {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Required returns the fields that must be present on create.
func (k Kind) Required() []string {
	switch k {
	case KindTeacher, KindGroup:
		return []string{"name"}
	case KindStudent:
		return []string{"name", "group_id"}
	case KindSubject:
		return []string{"name", "teacher_id"}
	case KindGrade:
		return []string{"student_id", "subject_id", "grade", "date_of"}
	default:
		return nil
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// FIELD BAGS AND RECORDS
// ══════════════════════════════════════════════════════════════════════════════

// DateFormat is the wire format for date_of values.
const DateFormat = "2006-01-02"

// Grade value bounds, mirrored by a CHECK constraint in the schema.
const (
	GradeMin = 0
	GradeMax = 100
)

// FieldBag is an unordered mapping from attribute name to value supplied by a
// caller for create/update. Values are string for text and date fields and
// int64 for integer fields.
type FieldBag map[string]any

// Record is one persisted row: attribute name to stored value. Use the kind's
// column order when rendering.
type Record map[string]any

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// ValidateCreate checks that every mandatory field of the kind is present and
// that all supplied values are well-formed. The first missing field is named
// in the returned error.
func ValidateCreate(k Kind, bag FieldBag) error {
	for _, field := range k.Required() {
		if _, ok := bag[field]; !ok {
			return fmt.Errorf("%w: %s is required to create a %s", ErrValidation, field, k)
		}
	}
	return validateValues(k, bag)
}

// ValidateUpdate checks that the bag carries at least one known field and that
// all supplied values are well-formed.
func ValidateUpdate(k Kind, bag FieldBag) error {
	if len(bag) == 0 {
		return fmt.Errorf("%w: at least one field to update must be provided", ErrValidation)
	}
	return validateValues(k, bag)
}

func validateValues(k Kind, bag FieldBag) error {
	for name, value := range bag {
		col, ok := k.Column(name)
		if !ok || col.Type == ColID {
			return fmt.Errorf("%w: %s has no settable field %q", ErrValidation, k, name)
		}

		switch col.Type {
		case ColText:
			s, ok := value.(string)
			if !ok || s == "" {
				return fmt.Errorf("%w: %s must be a non-empty string", ErrValidation, name)
			}
		case ColInt:
			n, ok := value.(int64)
			if !ok {
				return fmt.Errorf("%w: %s must be an integer", ErrValidation, name)
			}
			if name == "grade" {
				if n < GradeMin || n > GradeMax {
					return fmt.Errorf("%w: grade must be between %d and %d", ErrValidation, GradeMin, GradeMax)
				}
			} else if n <= 0 {
				return fmt.Errorf("%w: %s must be a positive id", ErrValidation, name)
			}
		case ColDate:
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: %s must be a date string", ErrValidation, name)
			}
			if _, err := time.Parse(DateFormat, s); err != nil {
				return fmt.Errorf("%w: %s must be a date in YYYY-MM-DD format", ErrValidation, name)
			}
		}
	}
	return nil
}
