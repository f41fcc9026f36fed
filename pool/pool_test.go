package pool

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukis-h3cellstore/h3cellstore/errs"
	"github.com/ukis-h3cellstore/h3cellstore/internal/audit"
)

func TestSubmitRecoversPanicInBackgroundTaskAsSchedulerFailure(t *testing.T) {
	log, _ := test.NewNullLogger()
	p := &ConnectionPool{
		log:   logrus.NewEntry(log),
		sch:   newScheduler(logrus.NewEntry(log)),
		audit: audit.NopMethod{},
	}
	p.sch.init(1)

	// p.db is nil: RunQuery's call into it panics with a nil pointer
	// dereference, standing in for any panic inside the background task.
	h := p.Submit(context.Background(), "select 1")

	_, err := h.Await()
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.SchedulerFailure))
}
