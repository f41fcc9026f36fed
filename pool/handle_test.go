package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukis-h3cellstore/h3cellstore/columnbatch"
	"github.com/ukis-h3cellstore/h3cellstore/errs"
)

func TestAsyncResultHandleAwaitReturnsResolvedValue(t *testing.T) {
	batch := columnbatch.NewBatch()
	h := NewResolvedHandle(batch, nil)

	got, err := h.Await()
	require.NoError(t, err)
	assert.Same(t, batch, got)
}

func TestAsyncResultHandleSecondAwaitFailsWithHandleConsumed(t *testing.T) {
	h := NewResolvedHandle(columnbatch.NewBatch(), nil)
	_, err := h.Await()
	require.NoError(t, err)

	_, err = h.Await()
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.HandleConsumed))
}

func TestAsyncResultHandlePropagatesRunError(t *testing.T) {
	h := NewResolvedHandle(nil, assertError{"boom"})
	_, err := h.Await()
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.DatabaseError))
}

func TestAsyncResultHandlePreservesKindOfAlreadyKindedError(t *testing.T) {
	h := NewResolvedHandle(nil, errs.Wrap(errs.SchedulerFailure, assertError{"could not schedule"}, "could not schedule query"))
	_, err := h.Await()
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.SchedulerFailure))
	assert.False(t, errs.Is(err, errs.DatabaseError))
}

type assertError struct{ msg string }

func (e assertError) Error() string { return e.msg }
