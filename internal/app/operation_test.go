package app

import (
	"errors"
	"testing"
	"time"
)

func TestNewOperation(t *testing.T) {
	now := time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)
	op := NewOperation("export", "work", now)

	if op.Name != "export" || op.Parameters != "work" || !op.Started.Equal(now) {
		t.Errorf("NewOperation() = %+v", op)
	}
	if op.Status != "success" || op.Failed() {
		t.Errorf("new operation Status = %q, want success", op.Status)
	}
}

func TestOperation_Record(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name       string
		errs       []error
		wantFailed bool
	}{
		{name: "no calls", wantFailed: false},
		{name: "successful calls", errs: []error{nil, nil}, wantFailed: false},
		{name: "one failure", errs: []error{nil, boom}, wantFailed: true},
		{name: "failure is sticky", errs: []error{boom, nil}, wantFailed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := NewOperation("exec", "", time.Time{})
			for _, err := range tt.errs {
				if got := op.Record(err); got != err {
					t.Errorf("Record(%v) = %v, want the same error", err, got)
				}
			}
			if got := op.Failed(); got != tt.wantFailed {
				t.Errorf("Failed() = %v, want %v", got, tt.wantFailed)
			}
		})
	}
}
