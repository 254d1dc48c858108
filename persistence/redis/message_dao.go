package redis

import (
	"context"

	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence"
	"github.com/convoflow/convoflow/util"
)

var _ persistence.MessageDao = new(redisMessageDao)

const MESSAGES string = "MESSAGES"

// Messages live in a redis list per conversation; RPUSH keeps creation order
// so LRANGE returns the transcript ascending.
type redisMessageDao struct {
	*baseDao
	encoderDecoder util.EncoderDecoder[model.Message]
}

func NewRedisMessageDao(conf Config) *redisMessageDao {
	return &redisMessageDao{
		baseDao:        newBaseDao(conf),
		encoderDecoder: util.NewJsonEncoderDecoder[model.Message](),
	}
}

func (d *redisMessageDao) Append(message model.Message) error {
	key := d.baseDao.getNamespaceKey(MESSAGES, message.ConversationId)
	ctx := context.Background()
	data, err := d.encoderDecoder.Encode(message)
	if err != nil {
		return err
	}
	if err := d.redisClient.RPush(ctx, key, data).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (d *redisMessageDao) GetAll(conversationId string) ([]model.Message, error) {
	key := d.baseDao.getNamespaceKey(MESSAGES, conversationId)
	ctx := context.Background()
	vals, err := d.redisClient.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	messages := make([]model.Message, 0, len(vals))
	for _, val := range vals {
		msg, err := d.encoderDecoder.Decode([]byte(val))
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}
	return messages, nil
}
