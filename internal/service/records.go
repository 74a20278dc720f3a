package service

import (
	"context"

	"github.com/iliyamo/record-tracker/internal/authz"
	"github.com/iliyamo/record-tracker/internal/model"
)

// RecordStore is the persistence the record service needs.
type RecordStore interface {
	Create(ctx context.Context, rec *model.Record) error
	GetByID(ctx context.Context, id string) (*model.Record, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Record, error)
	Update(ctx context.Context, rec *model.Record) error
	Delete(ctx context.Context, id, userID string) error
}

// Records implements record CRUD for standard users.
type Records struct {
	Store RecordStore
	Gate  *authz.Gate
}

func NewRecords(store RecordStore, gate *authz.Gate) *Records {
	return &Records{Store: store, Gate: gate}
}

// List returns the caller's records, newest first.
func (s *Records) List(ctx context.Context, identity *model.User) ([]*model.Record, error) {
	if _, err := s.Gate.Authorize(ctx, authz.Request{Identity: identity, Action: authz.ListRecords}); err != nil {
		return nil, err
	}
	return s.Store.ListByUser(ctx, identity.ID)
}

// Create stores a new pending record owned by the caller.
func (s *Records) Create(ctx context.Context, identity *model.User, date, content string) (*model.Record, error) {
	if _, err := s.Gate.Authorize(ctx, authz.Request{Identity: identity, Action: authz.CreateRecord}); err != nil {
		return nil, err
	}
	rec, err := model.NewRecord(identity.ID, date, content)
	if err != nil {
		return nil, err
	}
	if err := s.Store.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update applies a partial update to a record the caller owns.
func (s *Records) Update(ctx context.Context, identity *model.User, id string, patch model.RecordPatch) (*model.Record, error) {
	tgt, err := s.Gate.Authorize(ctx, authz.Request{Identity: identity, Action: authz.UpdateRecord, TargetID: id})
	if err != nil {
		return nil, err
	}
	rec := tgt.Record
	if err := rec.Apply(patch); err != nil {
		return nil, err
	}
	if err := s.Store.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// MarkGreen, MarkRed and Restore are the explicit lifecycle actions.
func (s *Records) MarkGreen(ctx context.Context, identity *model.User, id string) (*model.Record, error) {
	return s.setStatus(ctx, identity, id, model.StatusGreen)
}

func (s *Records) MarkRed(ctx context.Context, identity *model.User, id string) (*model.Record, error) {
	return s.setStatus(ctx, identity, id, model.StatusRed)
}

func (s *Records) Restore(ctx context.Context, identity *model.User, id string) (*model.Record, error) {
	return s.setStatus(ctx, identity, id, model.StatusPending)
}

func (s *Records) setStatus(ctx context.Context, identity *model.User, id string, st model.Status) (*model.Record, error) {
	v := string(st)
	return s.Update(ctx, identity, id, model.RecordPatch{Status: &v})
}

// Delete removes a record the caller owns.
func (s *Records) Delete(ctx context.Context, identity *model.User, id string) error {
	tgt, err := s.Gate.Authorize(ctx, authz.Request{Identity: identity, Action: authz.DeleteRecord, TargetID: id})
	if err != nil {
		return err
	}
	return s.Store.Delete(ctx, tgt.Record.ID, identity.ID)
}
