package services

import (
	"errors"

	"syllabus-tracker/internal/database"
)

var (
	ErrNotFound         = errors.New("syllabus not found")
	ErrPaused           = errors.New("syllabus is paused")
	ErrNoActiveSyllabus = errors.New("no active syllabus")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrIndexOutOfRange  = errors.New("task index out of range")

	// ErrSyllabusCompleted reports the terminal state: every task is done.
	ErrSyllabusCompleted = errors.New("syllabus completed")

	// ErrNoProgress is a NotFound kind: the syllabus exists but has never
	// been started.
	ErrNoProgress = &kindError{msg: "no progress recorded", kind: ErrNotFound}

	ErrStorageUnavailable = database.ErrStorageUnavailable
)

type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }
