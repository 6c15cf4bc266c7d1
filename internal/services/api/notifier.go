package api

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/LeonardoBeccarini/irrixa/internal/model"
	"github.com/LeonardoBeccarini/irrixa/internal/model/messages"
	"github.com/LeonardoBeccarini/irrixa/internal/pkg/logger"
	"github.com/LeonardoBeccarini/irrixa/pkg/rabbitmq"
)

type publishObserver interface {
	EventPublished(topic string, err error)
}

// notifier announces successful writes on the broker. Failures are logged only:
// the backend already holds the data.
type notifier struct {
	pub rabbitmq.IPublisher
	obs publishObserver
	now func() time.Time
}

func (n *notifier) publish(ctx context.Context, family, topic string, v any) {
	if n == nil || n.pub == nil {
		return
	}
	err := n.pub.PublishJSON(ctx, topic, v)
	if err != nil {
		logger.Warnf(ctx, "announce on %s failed: %v", topic, err)
	}
	if n.obs != nil {
		n.obs.EventPublished(family, err)
	}
}

func (n *notifier) configSaved(ctx context.Context, doc model.ConfigDocument) {
	if n == nil {
		return
	}
	n.publish(ctx, messages.TopicConfigSaved, messages.ConfigSavedTopic(doc.Block), model.ConfigSavedEvent{
		EventID:   uuid.NewString(),
		Block:     doc.Block,
		Config:    doc.Config,
		Timestamp: n.now().UTC(),
	})
}

func (n *notifier) actualRecorded(ctx context.Context, rec model.ActualIrrigationRecord) {
	if n == nil {
		return
	}
	n.publish(ctx, messages.TopicActualIrrigation, messages.ActualIrrigationTopic(rec.BlockName), model.ActualIrrigationEvent{
		EventID:   uuid.NewString(),
		Block:     rec.BlockName,
		Date:      rec.Date,
		MM:        rec.DepthMM,
		Timestamp: n.now().UTC(),
	})
}
