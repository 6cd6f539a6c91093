package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/studyplan/core/events"
	coremqtt "github.com/kilianp07/studyplan/core/mqtt"
	"github.com/kilianp07/studyplan/internal/eventbus"
)

func TestNotifyTopics(t *testing.T) {
	pub := NewMockPublisher()
	n := NewNotifier(pub, "study")
	n.now = func() time.Time { return time.Unix(1700000000, 0) }

	require.NoError(t, n.Notify(events.PlanGenerated{Trigger: events.TriggerGenerate, Sessions: 3, Minutes: 150}))
	require.NoError(t, n.Notify(events.DayMissed{Sessions: 2}))
	require.NoError(t, n.Notify(events.SessionCompleted{SessionID: "s1", SubjectID: "math", Minutes: 60}))
	require.NoError(t, n.Notify("unrelated"))

	msgs := pub.Snapshot()
	require.Len(t, msgs, 3)
	assert.Equal(t, "study/plan/generated", msgs[0].Topic)
	assert.Equal(t, "study/day/missed", msgs[1].Topic)
	assert.Equal(t, "study/session/completed", msgs[2].Topic)

	var env struct {
		ID        string                  `json:"id"`
		Type      string                  `json:"type"`
		Timestamp int64                   `json:"timestamp"`
		Data      events.SessionCompleted `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msgs[2].Payload, &env))
	assert.NotEmpty(t, env.ID)
	assert.Equal(t, "session_completed", env.Type)
	assert.Equal(t, int64(1700000000000), env.Timestamp)
	assert.Equal(t, "math", env.Data.SubjectID)
}

func TestNotifyPublishError(t *testing.T) {
	pub := &MockPublisher{FailAll: true}
	n := NewNotifier(pub, "")
	assert.Error(t, n.Notify(events.DayMissed{}))
}

func TestNotifierForwardsBusEvents(t *testing.T) {
	bus := eventbus.New()
	pub := NewMockPublisher()
	ctx, cancel := context.WithCancel(context.Background())
	done := NewNotifier(pub, "").Start(ctx, bus)

	// Publish after the subscriber is registered by Start.
	bus.Publish(events.PlanGenerated{Sessions: 1})
	require.Eventually(t, func() bool { return len(pub.Snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "studyplan/"+coremqtt.TopicPlanGenerated, pub.Snapshot()[0].Topic)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notifier did not stop")
	}
}
