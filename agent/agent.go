package agent

import (
	"errors"
	"net/http"
	"sync"

	"github.com/convoflow/convoflow/closure"
	"github.com/convoflow/convoflow/config"
	"github.com/convoflow/convoflow/conversation"
	"github.com/convoflow/convoflow/erp"
	"github.com/convoflow/convoflow/flow"
	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/metadata"
	"github.com/convoflow/convoflow/notify"
	"github.com/convoflow/convoflow/persistence"
	"github.com/convoflow/convoflow/persistence/inmem"
	"github.com/convoflow/convoflow/persistence/redis"
	"github.com/convoflow/convoflow/rest"
	"github.com/convoflow/convoflow/writeaction"
)

type Agent struct {
	Config              config.Config
	storage             persistence.Storage
	erpClient           *erp.Client
	flowService         metadata.FlowService
	conversationService *conversation.Service
	closurePipeline     *closure.Pipeline
	notifier            notify.Notifier
	httpServer          *rest.Server
	shutdown            bool
	shutdownLock        sync.Mutex
	wg                  sync.WaitGroup
}

func New(conf config.Config) (*Agent, error) {
	a := &Agent{
		Config: conf,
	}
	setup := []func() error{
		a.setupStorage,
		a.setupNotifier,
		a.setupErpClient,
		a.setupFlowService,
		a.setupClosurePipeline,
		a.setupConversationService,
		a.setupHttpServer,
	}
	for _, fn := range setup {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Agent) setupStorage() error {
	switch a.Config.StorageType {
	case config.STORAGE_TYPE_INMEM:
		a.storage = inmem.NewInMemStorage()
	default:
		a.storage = redis.NewRedisStorage(redis.Config{
			Addrs:     a.Config.RedisConfig.Addrs,
			Namespace: a.Config.RedisConfig.Namespace,
		})
	}
	return nil
}

func (a *Agent) setupNotifier() error {
	switch a.Config.NotifierType {
	case config.NOTIFIER_TYPE_REDIS:
		a.notifier = notify.NewRedisNotifier(a.Config.RedisConfig.Addrs, a.Config.RedisConfig.Namespace)
	default:
		a.notifier = notify.NewNoopNotifier()
	}
	return nil
}

func (a *Agent) setupErpClient() error {
	a.erpClient = erp.NewClient(a.Config.ErpConfig)
	return nil
}

func (a *Agent) setupFlowService() error {
	deps := flow.Dependencies{
		Reader: a.erpClient,
		Writer: writeaction.NewExecutor(a.storage.WriteActions(), a.Config.ErpConfig.ReadTimeout),
	}
	a.flowService = metadata.NewFlowService(a.storage.Flows(), deps)
	return nil
}

func (a *Agent) setupClosurePipeline() error {
	a.closurePipeline = closure.NewPipeline(a.storage, a.erpClient, a.notifier, &a.wg, a.Config.ClosureQueueCapacity)
	return nil
}

func (a *Agent) setupConversationService() error {
	a.conversationService = conversation.NewService(a.storage, a.flowService, a.notifier, a.closurePipeline)
	return nil
}

func (a *Agent) setupHttpServer() error {
	var err error
	a.httpServer, err = rest.NewServer(a.Config.HttpPort, a.conversationService, a.flowService,
		a.storage.WriteActions(), a.closurePipeline)
	if err != nil {
		return err
	}
	return nil
}

func (a *Agent) Start() error {
	a.closurePipeline.Start()
	go func() {
		err := a.httpServer.Start()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = a.Shutdown()
			panic(err)
		}
	}()
	return nil
}

func (a *Agent) Shutdown() error {
	logger.Info("shutting down server")
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()
	if a.shutdown {
		return nil
	}
	a.shutdown = true

	shutdown := []func() error{
		a.httpServer.Stop,
		func() error {
			a.closurePipeline.Stop()
			return nil
		},
	}
	for _, fn := range shutdown {
		if err := fn(); err != nil {
			return err
		}
	}
	a.wg.Wait()
	return nil
}
