package writeaction

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/persistence"
)

// Executor renders a configured write action's template with the
// conversation's variables and performs the outbound call. A non-2xx or
// transport failure is a failed write; retries are up to the operator.
type Executor struct {
	storage    persistence.WriteActionDao
	httpClient *http.Client
	timeout    time.Duration
}

func NewExecutor(storage persistence.WriteActionDao, timeout time.Duration) *Executor {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Executor{
		storage:    storage,
		httpClient: &http.Client{},
		timeout:    timeout,
	}
}

func (e *Executor) Run(ctx context.Context, name string, variables map[string]string) error {
	action, err := e.storage.Get(name)
	if err != nil {
		return err
	}
	if !action.IsActive {
		return fmt.Errorf("write action %s is not active", name)
	}
	body := Render(action.RequestBodyTemplate, variables)
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(callCtx, string(action.HttpMethod), action.Endpoint, strings.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.httpClient.Do(req)
	if err != nil {
		logger.Error("write action call failed", zap.String("action", name), zap.Error(err))
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Error("write action returned non-2xx", zap.String("action", name), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("write action %s returned status %d", name, resp.StatusCode)
	}
	logger.Info("write action executed", zap.String("action", name), zap.Int("status", resp.StatusCode))
	return nil
}
