package stress

import (
	"context"
	"testing"

	"github.com/arthur-debert/delg/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		wantClosed int
	}{
		{"adders only", Options{Adders: 32}, 0},
		{"adders and invokers", Options{Adders: 64, Invokers: 4, Invokes: 25}, 0},
		{"with mortal owners", Options{Adders: 40, Invokers: 3, Invokes: 10, Mortal: 4}, 10},
		{"every owner mortal", Options{Adders: 8, Invokers: 2, Invokes: 5, Mortal: 1}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := Run(context.Background(), tt.opts)
			require.NoError(t, err)
			require.NoError(t, report.Verify())

			assert.Equal(t, tt.opts.Adders, report.Added)
			assert.Equal(t, tt.wantClosed, report.Closed)
			assert.Equal(t, tt.opts.Adders-tt.wantClosed, report.Stored)
			assert.Equal(t, int64(tt.opts.Invokers*tt.opts.Invokes), report.Passes)
			assert.Zero(t, report.Partial)
		})
	}
}

func TestMortalCount(t *testing.T) {
	tests := []struct {
		opts Options
		want int
	}{
		{Options{Adders: 40, Mortal: 4}, 10},
		{Options{Adders: 41, Mortal: 4}, 11},
		{Options{Adders: 3, Mortal: 1}, 3},
		{Options{Adders: 3, Mortal: 5}, 1},
		{Options{Adders: 3}, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, mortalCount(tt.opts), "%+v", tt.opts)
	}
}

func TestRunClosesOwnersWhileInvoking(t *testing.T) {
	// Long enough that closes overlap the invokers' passes.
	report, err := Run(context.Background(), Options{Adders: 256, Invokers: 4, Invokes: 200, Mortal: 2})
	require.NoError(t, err)
	require.NoError(t, report.Verify())

	assert.Equal(t, 128, report.Closed)
	assert.Equal(t, 128, report.Stored)
	assert.Zero(t, report.MortalCalls)
}

func TestRunRejectsNoAdders(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Options{Adders: 4, Invokers: 1, Invokes: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVerifyReportsMismatch(t *testing.T) {
	r := &Report{Added: 10, Closed: 2, Stored: 9, FinalCalls: 8, MortalCalls: 1}

	err := r.Verify()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrStressMismatch))
	assert.Contains(t, err.Error(), "stored handlers: want 8, got 9")
	assert.Contains(t, err.Error(), "handlers of closed owners run")
	assert.NotContains(t, err.Error(), "handlers run in final pass")
}
