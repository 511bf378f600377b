// Package command implements the write side of the journal: creating,
// listing, updating, and removing records of any entity kind.
package command

import (
	"context"
	"fmt"

	"github.com/gradebook-hub/gradebook/internal/domain/journal"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACTIONS
// ══════════════════════════════════════════════════════════════════════════════

// Action is one of the four CRUD verbs of the command surface.
type Action string

const (
	ActionCreate Action = "create"
	ActionList   Action = "list"
	ActionUpdate Action = "update"
	ActionRemove Action = "remove"
)

// ParseAction resolves a verb string to an Action.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionCreate, ActionList, ActionUpdate, ActionRemove:
		return Action(s), nil
	default:
		return "", fmt.Errorf("%w: %q", journal.ErrUnknownAction, s)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// COMMAND SERVICE
// ══════════════════════════════════════════════════════════════════════════════

// Service executes journal commands. Entity kind and field validation happen
// here, before the store is touched, so a bad invocation never opens a
// transaction.
type Service struct {
	repo journal.Repository
}

// NewService creates a new command service.
func NewService(repo journal.Repository) *Service {
	return &Service{repo: repo}
}

// Create validates the field bag and inserts a new record, returning it with
// its generated id.
func (s *Service) Create(ctx context.Context, kind journal.Kind, fields journal.FieldBag) (journal.Record, error) {
	if err := journal.ValidateCreate(kind, fields); err != nil {
		return nil, err
	}

	id, err := s.repo.Insert(ctx, kind, fields)
	if err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, kind, id)
}

// List returns every record of the kind in insertion order.
func (s *Service) List(ctx context.Context, kind journal.Kind) ([]journal.Record, error) {
	return s.repo.List(ctx, kind)
}

// Update applies the supplied fields to an existing record and returns the
// updated state.
func (s *Service) Update(ctx context.Context, kind journal.Kind, id int64, fields journal.FieldBag) (journal.Record, error) {
	if err := journal.ValidateUpdate(kind, fields); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateFields(ctx, kind, id, fields); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, kind, id)
}

// Remove deletes a record. Records still referenced by others are not
// deleted; the call fails with journal.ErrConstraint.
func (s *Service) Remove(ctx context.Context, kind journal.Kind, id int64) error {
	return s.repo.Delete(ctx, kind, id)
}
