package reservationRepo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"tourly/database"
)

type labeledErr struct {
	labels []string
}

func (e labeledErr) Error() string { return "labeled failure" }

func (e labeledErr) HasErrorLabel(label string) bool {
	for _, l := range e.labels {
		if l == label {
			return true
		}
	}
	return false
}

func TestMapTxError(t *testing.T) {
	other := errors.New("boom")

	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "nil", err: nil, expected: nil},
		{name: "transient label", err: labeledErr{labels: []string{"TransientTransactionError"}}, expected: database.ErrTransactionConflict},
		{name: "wrapped transient label", err: fmt.Errorf("commit: %w", labeledErr{labels: []string{"TransientTransactionError"}}), expected: database.ErrTransactionConflict},
		{name: "command error with label", err: mongo.CommandError{Code: 112, Name: "WriteConflict", Labels: []string{"TransientTransactionError"}}, expected: database.ErrTransactionConflict},
		{name: "other label", err: labeledErr{labels: []string{"UnknownTransactionCommitResult"}}, expected: nil},
		{name: "plain error", err: other, expected: other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapTxError(context.Background(), tt.err)
			switch {
			case tt.err == nil:
				assert.NoError(t, got)
			case tt.expected == nil:
				assert.Equal(t, tt.err, got)
			default:
				assert.ErrorIs(t, got, tt.expected)
			}
		})
	}
}

func TestMapTxErrorPrefersContextError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := mapTxError(ctx, labeledErr{labels: []string{"TransientTransactionError"}})
	assert.ErrorIs(t, got, context.Canceled)
	assert.NotErrorIs(t, got, database.ErrTransactionConflict)
}
