package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pairchat/domain/event"
	"pairchat/errors"
	"pairchat/hub"
	"pairchat/mocks"
)

func Test_Fanout_Publishes_To_Hub_And_Sinks(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	h := hub.New(slog.Default(), hub.DefaultQueueSize)
	events := make(chan event.DomainEvent, 4)

	consumed := make(chan event.DomainEvent, 4)
	sink := mocks.NewMockEventSink(ctrl)
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, evt event.DomainEvent) error {
			consumed <- evt
			return nil
		})

	sub := h.Subscribe(event.UserSubject("alice"))
	defer sub.Cancel()

	fanout := NewEventFanout(slog.Default(), h, events, time.Second).Add(sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = fanout.Run(ctx)
	}()

	events <- event.PresenceChanged{UserID: "alice", Online: true}

	select {
	case evt := <-sub.Events():
		req.True(evt.(event.PresenceChanged).Online)
	case <-time.After(time.Second):
		req.Fail("hub never saw the event")
	}
	select {
	case evt := <-consumed:
		req.Equal("alice", evt.(event.PresenceChanged).UserID)
	case <-time.After(time.Second):
		req.Fail("sink never saw the event")
	}

	cancel()
	<-done
}

// A sink error never aborts the fanout: the healthy sink's expectation
// is satisfied even though its predecessor failed.
func Test_Fanout_Survives_Failing_Sink(t *testing.T) {
	ctrl := gomock.NewController(t)

	h := hub.New(slog.Default(), hub.DefaultQueueSize)

	failing := mocks.NewMockEventSink(ctrl)
	failing.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(errors.ErrUnavailable)

	healthy := mocks.NewMockEventSink(ctrl)
	healthy.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil)

	fanout := NewEventFanout(slog.Default(), h, nil, time.Second).Add(failing, healthy)
	fanout.Fanout(context.Background(), event.PresenceChanged{UserID: "alice"})
}

func Test_Fanout_Run_Exits_On_Closed_Channel(t *testing.T) {
	h := hub.New(slog.Default(), hub.DefaultQueueSize)
	events := make(chan event.DomainEvent)
	close(events)

	fanout := NewEventFanout(slog.Default(), h, events, 0)
	require.NoError(t, fanout.Run(context.Background()))
}
