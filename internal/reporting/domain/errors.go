package reporting

import "errors"

var (
	// ErrEmptyCompany indicates a missing company scope on an operation.
	ErrEmptyCompany = errors.New("reporting: company id required")
	// ErrEmptyRecordID indicates a missing record id.
	ErrEmptyRecordID = errors.New("reporting: record id required")
	// ErrRecordNotFound indicates the record does not exist.
	ErrRecordNotFound = errors.New("reporting: record not found")
	// ErrStageTerminal indicates a forward transition out of Finalizado.
	ErrStageTerminal = errors.New("reporting: record already finalized")
	// ErrStageInitial indicates a return transition out of Carga.
	ErrStageInitial = errors.New("reporting: record has no prior stage")
)
