package notify

import (
	"context"

	rd "github.com/go-redis/redis/v9"
	"go.uber.org/zap"

	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/util"
)

// Notifier pushes domain events to connected dashboard clients. The core
// never depends on delivery.
type Notifier interface {
	Publish(event model.Event)
}

type noopNotifier struct{}

func NewNoopNotifier() Notifier {
	return &noopNotifier{}
}

func (n *noopNotifier) Publish(event model.Event) {}

type redisNotifier struct {
	redisClient    rd.UniversalClient
	channel        string
	encoderDecoder util.EncoderDecoder[model.Event]
}

func NewRedisNotifier(addrs []string, namespace string) Notifier {
	return &redisNotifier{
		redisClient: rd.NewUniversalClient(&rd.UniversalOptions{
			Addrs: addrs,
		}),
		channel:        namespace + ":events",
		encoderDecoder: util.NewJsonEncoderDecoder[model.Event](),
	}
}

func (n *redisNotifier) Publish(event model.Event) {
	data, err := n.encoderDecoder.Encode(event)
	if err != nil {
		logger.Error("error encoding event", zap.String("type", string(event.Type)), zap.Error(err))
		return
	}
	if err := n.redisClient.Publish(context.Background(), n.channel, data).Err(); err != nil {
		logger.Error("error publishing event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
