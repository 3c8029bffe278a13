package layout

import (
	"errors"
	"fmt"
)

// Rejection reasons reported by the VisualPageGate
const (
	ReasonNoText         = "no extractable text"
	ReasonImageDensity   = "high image density"
	ReasonLowText        = "very low text content"
	ReasonFigureCount    = "high box/figure count"
	ReasonFormLikeLayout = "rectangular/structured (form-like) layout"
)

var (
	// ErrDocumentRejected matches any *RejectionError
	ErrDocumentRejected = errors.New("document rejected for heuristic reconstruction")

	// ErrExtractionFailed matches any *ExtractionError
	ErrExtractionFailed = errors.New("positioned text extraction failed")
)

// RejectionError is returned when the gate refuses a document
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("document cannot be converted by layout reconstruction (%s); "+
		"use the document-intelligence conversion for this file", e.Reason)
}

// Is matches ErrDocumentRejected
func (e *RejectionError) Is(target error) bool {
	return target == ErrDocumentRejected
}

// ExtractionError reports a failure of the positioned-text extraction pass
type ExtractionError struct {
	Op   string
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("extraction %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("extraction %s: %v", e.Op, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is matches ErrExtractionFailed
func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtractionFailed
}

// RejectionReason extracts the gate reason from err, if it is a rejection
func RejectionReason(err error) (string, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return "", false
}
