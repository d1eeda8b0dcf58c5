package app

import "time"

// Operation tracks one CLI invocation for the log. It starts out successful
// and is marked failed by the first app call that returns an error.
type Operation struct {
	Name       string
	Parameters string
	Status     string // "success" or "error"
	Started    time.Time
}

// NewOperation creates an operation started at now.
func NewOperation(name, parameters string, now time.Time) *Operation {
	return &Operation{
		Name:       name,
		Parameters: parameters,
		Status:     "success",
		Started:    now,
	}
}

// Record marks the operation failed when err is non-nil and returns err.
func (op *Operation) Record(err error) error {
	if err != nil {
		op.Status = "error"
	}
	return err
}

// Failed returns true if any recorded call failed.
func (op *Operation) Failed() bool {
	return op.Status == "error"
}
