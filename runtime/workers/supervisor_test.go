package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pairchat/mocks"
)

func Test_Supervisor_Stops_Workers_On_Cancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	worker := mocks.NewMockWorker(ctrl)
	worker.EXPECT().Run(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	supervisor := NewSupervisor(slog.Default())
	supervisor.Add(worker)

	done := make(chan struct{})
	go func() {
		defer close(done)
		supervisor.Run(context.Background())
	}()

	time.Sleep(50 * time.Millisecond)
	supervisor.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "supervisor did not drain after Stop")
	}
}

func Test_Supervisor_Restarts_Panicking_Worker(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	var runs atomic.Int32
	finished := make(chan struct{})

	worker := mocks.NewMockWorker(ctrl)
	worker.EXPECT().Run(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		if runs.Add(1) == 1 {
			panic("boom")
		}
		close(finished)
		return nil
	}).Times(2)

	supervisor := NewSupervisor(slog.Default())
	supervisor.Add(worker)

	done := make(chan struct{})
	go func() {
		defer close(done)
		supervisor.Run(context.Background())
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		req.Fail("worker was not restarted after panic")
	}
	<-done
	req.Equal(int32(2), runs.Load())
}

func Test_Supervisor_Does_Not_Restart_Clean_Exit(t *testing.T) {
	ctrl := gomock.NewController(t)

	worker := mocks.NewMockWorker(ctrl)
	worker.EXPECT().Run(gomock.Any()).Return(nil).Times(1)

	supervisor := NewSupervisor(slog.Default())
	supervisor.Add(worker)
	supervisor.Run(context.Background())
}

func Test_Supervisor_One_Crash_Does_Not_Stop_Siblings(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	crashing := mocks.NewMockWorker(ctrl)
	crashing.EXPECT().Run(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		panic("boom")
	}).MinTimes(1)

	var healthyRunning atomic.Bool
	healthy := mocks.NewMockWorker(ctrl)
	healthy.EXPECT().Run(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		healthyRunning.Store(true)
		<-ctx.Done()
		return nil
	})

	supervisor := NewSupervisor(slog.Default())
	supervisor.Add(crashing, healthy)

	done := make(chan struct{})
	go func() {
		defer close(done)
		supervisor.Run(context.Background())
	}()

	time.Sleep(300 * time.Millisecond)
	req.True(healthyRunning.Load())

	supervisor.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("supervisor did not drain after Stop")
	}
}
