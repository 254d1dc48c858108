package redis

import (
	"context"

	"github.com/convoflow/convoflow/persistence"
)

var _ persistence.VariableDao = new(redisVariableDao)

const VARIABLES string = "VARIABLES"

type redisVariableDao struct {
	*baseDao
}

func NewRedisVariableDao(conf Config) *redisVariableDao {
	return &redisVariableDao{
		baseDao: newBaseDao(conf),
	}
}

func (d *redisVariableDao) Upsert(conversationId string, name string, value string) error {
	key := d.baseDao.getNamespaceKey(VARIABLES, conversationId)
	ctx := context.Background()
	if err := d.redisClient.HSet(ctx, key, name, value).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (d *redisVariableDao) GetAll(conversationId string) (map[string]string, error) {
	key := d.baseDao.getNamespaceKey(VARIABLES, conversationId)
	ctx := context.Background()
	vals, err := d.redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return vals, nil
}
