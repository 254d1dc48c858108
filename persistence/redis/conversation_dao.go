package redis

import (
	"context"

	rd "github.com/go-redis/redis/v9"

	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence"
	"github.com/convoflow/convoflow/util"
)

var _ persistence.ConversationDao = new(redisConversationDao)

const CONVERSATION string = "CONVERSATION"

type redisConversationDao struct {
	*baseDao
	encoderDecoder util.EncoderDecoder[model.Conversation]
}

func NewRedisConversationDao(conf Config) *redisConversationDao {
	return &redisConversationDao{
		baseDao:        newBaseDao(conf),
		encoderDecoder: util.NewJsonEncoderDecoder[model.Conversation](),
	}
}

func (d *redisConversationDao) Save(conversation model.Conversation) error {
	key := d.baseDao.getNamespaceKey(CONVERSATION, conversation.Id)
	ctx := context.Background()
	data, err := d.encoderDecoder.Encode(conversation)
	if err != nil {
		return err
	}
	if err := d.redisClient.Set(ctx, key, data, 0).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (d *redisConversationDao) Get(id string) (*model.Conversation, error) {
	key := d.baseDao.getNamespaceKey(CONVERSATION, id)
	ctx := context.Background()
	val, err := d.redisClient.Get(ctx, key).Result()
	if err != nil {
		if err == rd.Nil {
			return nil, persistence.NotFoundError{Kind: "conversation", Id: id}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return d.encoderDecoder.Decode([]byte(val))
}
