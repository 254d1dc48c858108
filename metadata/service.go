package metadata

import (
	"time"

	"github.com/google/uuid"
	c "github.com/patrickmn/go-cache"

	"github.com/convoflow/convoflow/flow"
	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence"
)

// FlowService owns flow definition lifecycle: validation at publish time,
// atomic activation, and the converted active flow served from cache.
type FlowService interface {
	ValidateFlow(def model.FlowDefinition) error
	SaveFlow(def model.FlowDefinition) (*model.FlowDefinition, error)
	GetFlow(id string) (*model.FlowDefinition, error)
	ListFlows() ([]model.FlowDefinition, error)
	ActivateFlow(id string) error
	DeleteFlow(id string) error
	GetActiveFlow() (*flow.Flow, error)
}

const activeFlowCacheKey string = "active-flow"

type flowServiceImpl struct {
	storage persistence.FlowDao
	deps    flow.Dependencies
	cache   *c.Cache
}

func NewFlowService(storage persistence.FlowDao, deps flow.Dependencies) FlowService {
	return &flowServiceImpl{
		storage: storage,
		deps:    deps,
		cache:   c.New(1*time.Minute, 10*time.Minute),
	}
}

func (s *flowServiceImpl) ValidateFlow(def model.FlowDefinition) error {
	return flow.Validate(def, s.deps)
}

func (s *flowServiceImpl) SaveFlow(def model.FlowDefinition) (*model.FlowDefinition, error) {
	if err := flow.Validate(def, s.deps); err != nil {
		return nil, err
	}
	if len(def.Id) == 0 {
		def.Id = uuid.New().String()
	}
	wantActive := def.IsActive
	def.IsActive = false
	if err := s.storage.Save(def); err != nil {
		return nil, err
	}
	if wantActive {
		if err := s.ActivateFlow(def.Id); err != nil {
			return nil, err
		}
		def.IsActive = true
	}
	return &def, nil
}

func (s *flowServiceImpl) GetFlow(id string) (*model.FlowDefinition, error) {
	return s.storage.Get(id)
}

func (s *flowServiceImpl) ListFlows() ([]model.FlowDefinition, error) {
	return s.storage.GetAll()
}

func (s *flowServiceImpl) ActivateFlow(id string) error {
	if err := s.storage.Activate(id); err != nil {
		return err
	}
	s.cache.Delete(activeFlowCacheKey)
	return nil
}

func (s *flowServiceImpl) DeleteFlow(id string) error {
	if err := s.storage.Delete(id); err != nil {
		return err
	}
	s.cache.Delete(activeFlowCacheKey)
	return nil
}

func (s *flowServiceImpl) GetActiveFlow() (*flow.Flow, error) {
	if cached, found := s.cache.Get(activeFlowCacheKey); found {
		return cached.(*flow.Flow), nil
	}
	def, err := s.storage.GetActive()
	if err != nil {
		return nil, err
	}
	fl, err := flow.Convert(*def, s.deps)
	if err != nil {
		return nil, err
	}
	s.cache.Set(activeFlowCacheKey, fl, c.DefaultExpiration)
	return fl, nil
}
