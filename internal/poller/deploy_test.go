package poller

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onmodulus/xervo/internal/domain"
)

func TestDeploy_SingleDeployingTransition(t *testing.T) {
	api := &scriptedProjects{statuses: []string{"uploading", "uploading", "deploying", "deploying", "running"}}
	ind := &fakeIndicator{}
	clock := &instantClock{}
	p := New(ind, nil, Options{Clock: clock})

	project, err := p.Deploy(context.Background(), api, Deploy{ProjectID: "p1", ProjectName: "api"})
	require.NoError(t, err)
	assert.Equal(t, "running", project.Status)

	_, messages, _, stops := ind.snapshot()
	deploying := 0
	for _, m := range messages {
		if m == msgDeploying {
			deploying++
		}
	}
	assert.Equal(t, 1, deploying, "exactly one deploying message transition")
	assert.Equal(t, 1, stops)

	gets, _, _ := api.counts()
	assert.Equal(t, 5, gets)
	assert.Equal(t, int64(5), clock.ticks.Load(), "no poll scheduled after running")
}

func TestDeploy_StaleRunningIsNotTerminal(t *testing.T) {
	// The first poll can still see the previous deploy's running status.
	api := &scriptedProjects{statuses: []string{"running", "running"}}
	p := New(&fakeIndicator{}, nil, Options{Clock: &instantClock{}})

	_, err := p.Deploy(context.Background(), api, Deploy{ProjectID: "p1"})
	require.NoError(t, err)
	gets, _, _ := api.counts()
	assert.Equal(t, 2, gets)
}

func TestDeploy_MissedDeployingState(t *testing.T) {
	// The server may go straight from uploading to running between polls.
	api := &scriptedProjects{statuses: []string{"uploading", "running", "running"}}
	p := New(&fakeIndicator{}, nil, Options{Clock: &instantClock{}})

	project, err := p.Deploy(context.Background(), api, Deploy{ProjectID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "running", project.Status)
}

func TestDeploy_LogTailPrintsEachLineOnce(t *testing.T) {
	full := "step 1\nstep 2\nstep 3\n"
	var served atomic.Bool
	api := &scriptedProjects{
		logs: func(call int) string {
			n := call * 7
			if n >= len(full) {
				served.Store(true)
				return full
			}
			return full[:n]
		},
	}
	// Stay deploying until the whole log has been served once.
	api.statuses = []string{"deploying"}

	ind := &fakeIndicator{}
	p := New(ind, nil, Options{Interval: time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() {
		for !served.Load() && ctx.Err() == nil {
			time.Sleep(time.Millisecond)
		}
		time.Sleep(5 * time.Millisecond)
		api.mu.Lock()
		api.statuses = []string{"running"}
		api.gets = 0
		api.mu.Unlock()
	}()

	_, err := p.Deploy(ctx, api, Deploy{ProjectID: "p1", ShowLogs: true})
	require.NoError(t, err)

	_, _, printed, _ := ind.snapshot()
	var shown strings.Builder
	for _, line := range printed {
		shown.WriteString(line + "\n")
	}
	assert.Equal(t, full, shown.String(), "printed suffixes must add up to the full log exactly once")
}

func TestDeploy_LogTailIdleUnlessDeploying(t *testing.T) {
	api := &scriptedProjects{
		statuses: []string{"uploading"},
		logs:     func(int) string { return "should not be fetched" },
	}
	p := New(&fakeIndicator{}, nil, Options{Interval: time.Millisecond, Timeout: 30 * time.Millisecond})

	_, err := p.Deploy(context.Background(), api, Deploy{ProjectID: "p1", ShowLogs: true})
	require.ErrorIs(t, err, domain.ErrTimeout)
	_, logs, _ := api.counts()
	assert.Zero(t, logs)
}

func TestDeploy_UploadProgressErrorsAreSwallowed(t *testing.T) {
	progressed := make(chan struct{})
	var closed atomic.Bool
	api := &scriptedProjects{
		statuses: []string{"uploading", "uploading", "deploying", "running"},
		progress: func(call int) (float64, error) {
			switch {
			case call == 1:
				return 0, errors.New("progress endpoint unavailable")
			case call >= 3:
				if closed.CompareAndSwap(false, true) {
					close(progressed)
				}
				return 0.75, nil
			}
			return 0.5, nil
		},
	}
	bar := &fakeBar{}
	ind := &fakeIndicator{}
	p := New(ind, nil, Options{Interval: time.Millisecond})

	upload := func(ctx context.Context) error {
		select {
		case <-progressed:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	project, err := p.Deploy(context.Background(), api, Deploy{ProjectID: "p1", Upload: upload, Bar: bar})
	require.NoError(t, err)
	assert.Equal(t, "running", project.Status)

	assert.InDelta(t, 0.75, bar.Percent(), 1e-9)
	assert.Equal(t, 1, bar.done)
	starts, _, _, stops := ind.snapshot()
	assert.Len(t, starts, 1, "indicator starts once the upload is done")
	assert.Equal(t, 1, stops)
}

func TestDeploy_StatusPollingWaitsForUpload(t *testing.T) {
	// The previous build is still running while the new archive uploads.
	api := &scriptedProjects{statuses: []string{"running"}}
	p := New(&fakeIndicator{}, nil, Options{Interval: time.Millisecond})

	var getsDuringUpload int
	upload := func(ctx context.Context) error {
		time.Sleep(50 * time.Millisecond)
		getsDuringUpload, _, _ = api.counts()
		return nil
	}

	_, err := p.Deploy(context.Background(), api, Deploy{ProjectID: "p1", Upload: upload, Bar: &fakeBar{}})
	require.NoError(t, err)
	assert.Zero(t, getsDuringUpload, "status must not be polled before the upload is accepted")

	gets, _, _ := api.counts()
	assert.Equal(t, 2, gets, "the first running after the upload follows an assumed uploading status")
}

func TestDeploy_LongUploadDoesNotSpendFetchRetries(t *testing.T) {
	api := &scriptedProjects{
		statuses: []string{"deploying", "running"},
		getErr: func(int) error { return errBlip },
	}
	p := New(&fakeIndicator{}, nil, Options{Interval: time.Millisecond})

	var failed atomic.Bool
	upload := func(ctx context.Context) error {
		time.Sleep(30 * time.Millisecond)
		if gets, _, _ := api.counts(); gets > 0 {
			failed.Store(true)
		}
		api.mu.Lock()
		api.getErr = nil
		api.mu.Unlock()
		return nil
	}

	project, err := p.Deploy(context.Background(), api, Deploy{ProjectID: "p1", Upload: upload})
	require.NoError(t, err)
	assert.False(t, failed.Load())
	assert.Equal(t, "running", project.Status)
}

func TestDeploy_UploadFailure(t *testing.T) {
	api := &scriptedProjects{statuses: []string{"uploading"}}
	ind := &fakeIndicator{}
	p := New(ind, nil, Options{Interval: time.Millisecond})

	_, err := p.Deploy(context.Background(), api, Deploy{
		ProjectID: "p1",
		Upload:    func(context.Context) error { return errAPI },
		Bar:       &fakeBar{},
	})
	require.ErrorIs(t, err, errAPI)
	_, _, _, stops := ind.snapshot()
	assert.Equal(t, 1, stops)
}

func TestDeploy_StatusErrorStopsLogTail(t *testing.T) {
	api := &scriptedProjects{
		statuses: []string{"deploying"},
		getErr: func(call int) error {
			if call >= 3 {
				return errAPI
			}
			return nil
		},
		logs: func(int) string { return "line\n" },
	}
	p := New(&fakeIndicator{}, nil, Options{Interval: time.Millisecond})

	_, err := p.Deploy(context.Background(), api, Deploy{ProjectID: "p1", ShowLogs: true})
	require.ErrorIs(t, err, errAPI)

	_, logs, _ := api.counts()
	time.Sleep(10 * time.Millisecond)
	_, after, _ := api.counts()
	assert.Equal(t, logs, after, "log tail must stop with the status loop")
}
