package service

import "errors"

var (
	ErrPatientNotFound   = errors.New("patient not found")
	ErrNoteNotFound      = errors.New("note not found")
	ErrInvalidPatientRef = errors.New("patient reference must be a numeric id or an MRN")
	ErrEmptyQuery        = errors.New("query must not be empty")
	ErrEmptyText         = errors.New("text must not be empty")
	ErrReindexRunning    = errors.New("a reindex is already running")
	// ErrThresholdRequired is returned when neither the request nor the
	// configuration provides a similarity threshold.
	ErrThresholdRequired = errors.New("similarity threshold is required")
)
