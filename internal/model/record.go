package model

import (
	"errors"
	"time"
	"unicode/utf8"
)

// Status is the lifecycle state of a Record.
type Status string

const (
	StatusPending Status = "pending"
	StatusGreen   Status = "green"
	StatusRed     Status = "red"
)

var (
	// ErrInvalidStatus is returned for a status outside pending/green/red.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidTransition is returned when moving directly between the
	// two completed states. Callers must restore to pending first.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrMissingFields is returned when a record is created without a
	// date or content.
	ErrMissingFields  = errors.New("date and content are required")
	ErrDateTooLong    = errors.New("date must be at most 255 characters")
	ErrContentTooLong = errors.New("content must be at most 65535 characters")
)

// Column limits for records.date and records.content, in characters.
const (
	MaxDateLen    = 255
	MaxContentLen = 65535
)

func checkLengths(date, content *string) error {
	if date != nil && utf8.RuneCountInString(*date) > MaxDateLen {
		return ErrDateTooLong
	}
	if content != nil && utf8.RuneCountInString(*content) > MaxContentLen {
		return ErrContentTooLong
	}
	return nil
}

// ParseStatus validates a raw status value.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusGreen, StatusRed:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// CanTransition reports whether a record in state s may move to next.
// Staying in the same state is allowed.
//
//	pending -> green | red
//	green   -> pending
//	red     -> pending
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	return s == StatusPending || next == StatusPending
}

// Record mirrors the `records` table.
type Record struct {
	ID        string    // records.id
	UserID    string    // records.user_id, owner, never changes
	Date      string    // records.date, free-form calendar date
	Content   string    // records.content
	Status    Status    // records.status
	CreatedAt time.Time // records.created_at
}

// NewRecord builds a pending record for owner. The id and timestamp are
// filled in by the repository.
func NewRecord(ownerID, date, content string) (*Record, error) {
	if date == "" || content == "" {
		return nil, ErrMissingFields
	}
	if err := checkLengths(&date, &content); err != nil {
		return nil, err
	}
	return &Record{UserID: ownerID, Date: date, Content: content, Status: StatusPending}, nil
}

// RecordPatch is a partial update; nil fields are left untouched.
type RecordPatch struct {
	Date    *string
	Content *string
	Status  *string
}

// Apply validates the whole patch and only then mutates r, so a rejected
// patch leaves the record unchanged.
func (r *Record) Apply(p RecordPatch) error {
	if err := checkLengths(p.Date, p.Content); err != nil {
		return err
	}
	next := r.Status
	if p.Status != nil {
		st, err := ParseStatus(*p.Status)
		if err != nil {
			return err
		}
		if !r.Status.CanTransition(st) {
			return ErrInvalidTransition
		}
		next = st
	}
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Content != nil {
		r.Content = *p.Content
	}
	r.Status = next
	return nil
}
