package redis

import "github.com/convoflow/convoflow/persistence"

var _ persistence.Storage = new(redisStorage)

type redisStorage struct {
	conversations *redisConversationDao
	messages      *redisMessageDao
	variables     *redisVariableDao
	flows         *redisFlowDao
	writeActions  *redisWriteActionDao
}

func NewRedisStorage(conf Config) *redisStorage {
	return &redisStorage{
		conversations: NewRedisConversationDao(conf),
		messages:      NewRedisMessageDao(conf),
		variables:     NewRedisVariableDao(conf),
		flows:         NewRedisFlowDao(conf),
		writeActions:  NewRedisWriteActionDao(conf),
	}
}

func (s *redisStorage) Conversations() persistence.ConversationDao {
	return s.conversations
}

func (s *redisStorage) Messages() persistence.MessageDao {
	return s.messages
}

func (s *redisStorage) Variables() persistence.VariableDao {
	return s.variables
}

func (s *redisStorage) Flows() persistence.FlowDao {
	return s.flows
}

func (s *redisStorage) WriteActions() persistence.WriteActionDao {
	return s.writeActions
}
