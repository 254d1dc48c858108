package inmem

import (
	"sync"

	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence"
)

var _ persistence.Storage = new(inMemStorage)

// inMemStorage backs the "memory" storage type. Mostly used by tests and
// single binary evaluation setups.
type inMemStorage struct {
	mu            sync.RWMutex
	conversations map[string]model.Conversation
	messages      map[string][]model.Message
	variables     map[string]map[string]string
	flows         map[string]model.FlowDefinition
	activeFlowId  string
	writeActions  map[string]model.WriteAction
}

func NewInMemStorage() *inMemStorage {
	return &inMemStorage{
		conversations: make(map[string]model.Conversation),
		messages:      make(map[string][]model.Message),
		variables:     make(map[string]map[string]string),
		flows:         make(map[string]model.FlowDefinition),
		writeActions:  make(map[string]model.WriteAction),
	}
}

func (s *inMemStorage) Conversations() persistence.ConversationDao { return (*conversationDao)(s) }
func (s *inMemStorage) Messages() persistence.MessageDao           { return (*messageDao)(s) }
func (s *inMemStorage) Variables() persistence.VariableDao         { return (*variableDao)(s) }
func (s *inMemStorage) Flows() persistence.FlowDao                 { return (*flowDao)(s) }
func (s *inMemStorage) WriteActions() persistence.WriteActionDao   { return (*writeActionDao)(s) }

type conversationDao inMemStorage

func (d *conversationDao) Save(conversation model.Conversation) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.conversations[conversation.Id] = conversation
	return nil
}

func (d *conversationDao) Get(id string) (*model.Conversation, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	conv, ok := d.conversations[id]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "conversation", Id: id}
	}
	return &conv, nil
}

type messageDao inMemStorage

func (d *messageDao) Append(message model.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages[message.ConversationId] = append(d.messages[message.ConversationId], message)
	return nil
}

func (d *messageDao) GetAll(conversationId string) ([]model.Message, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	msgs := d.messages[conversationId]
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

type variableDao inMemStorage

func (d *variableDao) Upsert(conversationId string, name string, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	vars, ok := d.variables[conversationId]
	if !ok {
		vars = make(map[string]string)
		d.variables[conversationId] = vars
	}
	vars[name] = value
	return nil
}

func (d *variableDao) GetAll(conversationId string) (map[string]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]string, len(d.variables[conversationId]))
	for k, v := range d.variables[conversationId] {
		out[k] = v
	}
	return out, nil
}

type flowDao inMemStorage

func (d *flowDao) Save(def model.FlowDefinition) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flows[def.Id] = def
	if def.IsActive {
		d.activeFlowId = def.Id
	}
	return nil
}

func (d *flowDao) Get(id string) (*model.FlowDefinition, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	def, ok := d.flows[id]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "flow", Id: id}
	}
	return &def, nil
}

func (d *flowDao) GetAll() ([]model.FlowDefinition, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]model.FlowDefinition, 0, len(d.flows))
	for _, def := range d.flows {
		out = append(out, def)
	}
	return out, nil
}

func (d *flowDao) Activate(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.flows[id]; !ok {
		return persistence.NotFoundError{Kind: "flow", Id: id}
	}
	for fid, def := range d.flows {
		def.IsActive = fid == id
		d.flows[fid] = def
	}
	d.activeFlowId = id
	return nil
}

func (d *flowDao) GetActive() (*model.FlowDefinition, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.activeFlowId) == 0 {
		return nil, persistence.NotFoundError{Kind: "active flow", Id: ""}
	}
	def, ok := d.flows[d.activeFlowId]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "active flow", Id: d.activeFlowId}
	}
	return &def, nil
}

func (d *flowDao) Delete(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.flows, id)
	if d.activeFlowId == id {
		d.activeFlowId = ""
	}
	return nil
}

type writeActionDao inMemStorage

func (d *writeActionDao) Save(action model.WriteAction) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writeActions[action.Name] = action
	return nil
}

func (d *writeActionDao) Get(name string) (*model.WriteAction, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	action, ok := d.writeActions[name]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "write action", Id: name}
	}
	return &action, nil
}

func (d *writeActionDao) Delete(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.writeActions, name)
	return nil
}
