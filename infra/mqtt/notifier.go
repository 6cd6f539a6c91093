package mqtt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/studyplan/core/events"
	coremqtt "github.com/kilianp07/studyplan/core/mqtt"
	"github.com/kilianp07/studyplan/infra/logger"
	"github.com/kilianp07/studyplan/internal/eventbus"
)

// Notifier forwards planning events from the bus to the broker.
type Notifier struct {
	pub    coremqtt.Publisher
	prefix string
	log    logger.Logger
	now    func() time.Time
}

// NewNotifier publishes under prefix using pub.
func NewNotifier(pub coremqtt.Publisher, prefix string) *Notifier {
	if prefix == "" {
		prefix = "studyplan"
	}
	return &Notifier{pub: pub, prefix: prefix, log: logger.New("mqtt_notifier"), now: time.Now}
}

// Start subscribes to bus and publishes every planning event until ctx is
// canceled or the bus is closed. The returned channel is closed on exit.
func (n *Notifier) Start(ctx context.Context, bus eventbus.EventBus) <-chan struct{} {
	done := make(chan struct{})
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := n.Notify(ev); err != nil {
					n.log.Errorf("notify: %v", err)
				}
			}
		}
	}()
	return done
}

// Notify publishes a single event. Unknown event types are ignored.
func (n *Notifier) Notify(ev eventbus.Event) error {
	var topic, kind string
	switch ev.(type) {
	case events.PlanGenerated:
		topic, kind = coremqtt.TopicPlanGenerated, "plan_generated"
	case events.DayMissed:
		topic, kind = coremqtt.TopicDayMissed, "day_missed"
	case events.SessionCompleted:
		topic, kind = coremqtt.TopicSessionCompleted, "session_completed"
	default:
		return nil
	}
	payload, err := json.Marshal(coremqtt.Envelope{
		ID:        uuid.NewString(),
		Type:      kind,
		Timestamp: n.now().UnixMilli(),
		Data:      ev,
	})
	if err != nil {
		return err
	}
	return n.pub.Publish(n.prefix+"/"+topic, payload)
}
