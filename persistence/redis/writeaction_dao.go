package redis

import (
	"context"

	rd "github.com/go-redis/redis/v9"

	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence"
	"github.com/convoflow/convoflow/util"
)

var _ persistence.WriteActionDao = new(redisWriteActionDao)

const WRITE_ACTION string = "WRITE_ACTION"

type redisWriteActionDao struct {
	*baseDao
	encoderDecoder util.EncoderDecoder[model.WriteAction]
}

func NewRedisWriteActionDao(conf Config) *redisWriteActionDao {
	return &redisWriteActionDao{
		baseDao:        newBaseDao(conf),
		encoderDecoder: util.NewJsonEncoderDecoder[model.WriteAction](),
	}
}

func (d *redisWriteActionDao) Save(action model.WriteAction) error {
	key := d.baseDao.getNamespaceKey(WRITE_ACTION)
	ctx := context.Background()
	data, err := d.encoderDecoder.Encode(action)
	if err != nil {
		return err
	}
	if err := d.redisClient.HSet(ctx, key, action.Name, string(data)).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (d *redisWriteActionDao) Get(name string) (*model.WriteAction, error) {
	key := d.baseDao.getNamespaceKey(WRITE_ACTION)
	ctx := context.Background()
	val, err := d.redisClient.HGet(ctx, key, name).Result()
	if err != nil {
		if err == rd.Nil {
			return nil, persistence.NotFoundError{Kind: "write action", Id: name}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return d.encoderDecoder.Decode([]byte(val))
}

func (d *redisWriteActionDao) Delete(name string) error {
	key := d.baseDao.getNamespaceKey(WRITE_ACTION)
	ctx := context.Background()
	if err := d.redisClient.HDel(ctx, key, name).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}
