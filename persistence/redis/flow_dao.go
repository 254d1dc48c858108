package redis

import (
	"context"

	rd "github.com/go-redis/redis/v9"

	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence"
	"github.com/convoflow/convoflow/util"
)

var _ persistence.FlowDao = new(redisFlowDao)

const FLOW_DEF string = "FLOW_DEF"
const FLOW_ACTIVE string = "FLOW_ACTIVE"

type redisFlowDao struct {
	*baseDao
	encoderDecoder util.EncoderDecoder[model.FlowDefinition]
}

func NewRedisFlowDao(conf Config) *redisFlowDao {
	return &redisFlowDao{
		baseDao:        newBaseDao(conf),
		encoderDecoder: util.NewJsonEncoderDecoder[model.FlowDefinition](),
	}
}

func (d *redisFlowDao) Save(def model.FlowDefinition) error {
	key := d.baseDao.getNamespaceKey(FLOW_DEF)
	ctx := context.Background()
	data, err := d.encoderDecoder.Encode(def)
	if err != nil {
		return err
	}
	if err := d.redisClient.HSet(ctx, key, def.Id, string(data)).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (d *redisFlowDao) Get(id string) (*model.FlowDefinition, error) {
	key := d.baseDao.getNamespaceKey(FLOW_DEF)
	ctx := context.Background()
	val, err := d.redisClient.HGet(ctx, key, id).Result()
	if err != nil {
		if err == rd.Nil {
			return nil, persistence.NotFoundError{Kind: "flow", Id: id}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return d.encoderDecoder.Decode([]byte(val))
}

func (d *redisFlowDao) GetAll() ([]model.FlowDefinition, error) {
	key := d.baseDao.getNamespaceKey(FLOW_DEF)
	ctx := context.Background()
	vals, err := d.redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	defs := make([]model.FlowDefinition, 0, len(vals))
	for _, val := range vals {
		def, err := d.encoderDecoder.Decode([]byte(val))
		if err != nil {
			return nil, err
		}
		defs = append(defs, *def)
	}
	return defs, nil
}

// Activate flips the isActive flag of every stored definition inside one
// transactional pipeline, so readers never observe two active flows.
func (d *redisFlowDao) Activate(id string) error {
	ctx := context.Background()
	defs, err := d.GetAll()
	if err != nil {
		return err
	}
	found := false
	for i := range defs {
		if defs[i].Id == id {
			found = true
		}
	}
	if !found {
		return persistence.NotFoundError{Kind: "flow", Id: id}
	}
	key := d.baseDao.getNamespaceKey(FLOW_DEF)
	activeKey := d.baseDao.getNamespaceKey(FLOW_ACTIVE)
	_, err = d.redisClient.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
		for i := range defs {
			defs[i].IsActive = defs[i].Id == id
			data, err := d.encoderDecoder.Encode(defs[i])
			if err != nil {
				return err
			}
			pipe.HSet(ctx, key, defs[i].Id, string(data))
		}
		pipe.Set(ctx, activeKey, id, 0)
		return nil
	})
	if err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (d *redisFlowDao) GetActive() (*model.FlowDefinition, error) {
	activeKey := d.baseDao.getNamespaceKey(FLOW_ACTIVE)
	ctx := context.Background()
	id, err := d.redisClient.Get(ctx, activeKey).Result()
	if err != nil {
		if err == rd.Nil {
			return nil, persistence.NotFoundError{Kind: "active flow", Id: ""}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return d.Get(id)
}

func (d *redisFlowDao) Delete(id string) error {
	key := d.baseDao.getNamespaceKey(FLOW_DEF)
	ctx := context.Background()
	if err := d.redisClient.HDel(ctx, key, id).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}
