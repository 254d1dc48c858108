package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/oliveagle/jsonpath"
	"go.uber.org/zap"

	"github.com/convoflow/convoflow/config"
	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/model"
)

const READ_INVOICE_LOOKUP string = "invoice_lookup"
const READ_CUSTOMER_HISTORY string = "customer_history"
const READ_ORDER_STATUS string = "order_status"
const READ_PRODUCT_LOOKUP string = "product_lookup"

var readEndpoints = map[string]string{
	READ_INVOICE_LOOKUP:   "/faturas/buscar",
	READ_CUSTOMER_HISTORY: "/clientes/historico",
	READ_ORDER_STATUS:     "/pedidos/status",
	READ_PRODUCT_LOOKUP:   "/produtos/buscar",
}

// ValidReadAction reports whether action names a configured read endpoint.
func ValidReadAction(action string) bool {
	_, ok := readEndpoints[action]
	return ok
}

type ErrorKind string

const ERROR_UNREACHABLE ErrorKind = "UNREACHABLE"
const ERROR_TIMEOUT ErrorKind = "TIMEOUT"
const ERROR_UNAUTHORIZED ErrorKind = "UNAUTHORIZED"
const ERROR_NOT_FOUND ErrorKind = "NOT_FOUND"
const ERROR_BAD_RESPONSE ErrorKind = "BAD_RESPONSE"
const ERROR_FAILED ErrorKind = "FAILED"

// ServiceError classifies a failed boundary call so callers can degrade to a
// user safe message instead of surfacing transport detail.
type ServiceError struct {
	Kind   ErrorKind
	Status int
	Cause  error
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("erp call failed: %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("erp call failed: %s, status=%d", e.Kind, e.Status)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

type Client struct {
	baseUrl         string
	authToken       string
	httpClient      *http.Client
	readTimeout     time.Duration
	registerTimeout time.Duration
}

func NewClient(conf config.ErpConfig) *Client {
	readTimeout := conf.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 10 * time.Second
	}
	registerTimeout := conf.RegisterTimeout
	if registerTimeout == 0 {
		registerTimeout = 15 * time.Second
	}
	return &Client{
		baseUrl:         conf.BaseUrl,
		authToken:       conf.AuthToken,
		httpClient:      &http.Client{},
		readTimeout:     readTimeout,
		registerTimeout: registerTimeout,
	}
}

// Read performs a read only lookup for the given action with query params.
func (c *Client) Read(ctx context.Context, action string, params map[string]string) (map[string]any, error) {
	path, ok := readEndpoints[action]
	if !ok {
		return nil, fmt.Errorf("unknown read action %s", action)
	}
	reqUrl := c.baseUrl + path
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		reqUrl = reqUrl + "?" + q.Encode()
	}
	return c.doGet(ctx, reqUrl, c.readTimeout)
}

func (c *Client) GetCustomer(ctx context.Context, id string) (map[string]any, error) {
	return c.doGet(ctx, fmt.Sprintf("%s/customers/%s", c.baseUrl, id), c.readTimeout)
}

func (c *Client) GetCustomerInvoices(ctx context.Context, id string) (map[string]any, error) {
	return c.doGet(ctx, fmt.Sprintf("%s/customers/%s/invoices", c.baseUrl, id), c.readTimeout)
}

type TranscriptEntry struct {
	Sender  model.SenderType `json:"sender"`
	Content string           `json:"content"`
	SentAt  time.Time        `json:"sentAt"`
}

type RegistrationPayload struct {
	CustomerIdentifier   string            `json:"customerIdentifier"`
	ChannelId            string            `json:"channelId"`
	Queue                string            `json:"queue,omitempty"`
	Transcript           []TranscriptEntry `json:"transcript"`
	StartedAt            time.Time         `json:"startedAt"`
	ClosedAt             time.Time         `json:"closedAt"`
	TotalMessages        int               `json:"totalMessages"`
	HadHumanIntervention bool              `json:"hadHumanIntervention"`
	AssigneeId           string            `json:"assigneeId,omitempty"`
}

// Field names under which the registration endpoint is known to return the
// protocol identifier.
var protocolPaths = []string{"$.protocol", "$.protocolo", "$.protocolNumber", "$.numeroProtocolo", "$.id"}

// RegisterConversation posts the closure payload and returns the protocol
// identifier found in the response body.
func (c *Client) RegisterConversation(ctx context.Context, payload RegistrationPayload) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	callCtx, cancel := context.WithTimeout(ctx, c.registerTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseUrl+"/conversations/register", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", classifyStatus(resp.StatusCode)
	}
	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &ServiceError{Kind: ERROR_BAD_RESPONSE, Cause: err}
	}
	for _, path := range protocolPaths {
		val, err := jsonpath.JsonPathLookup(decoded, path)
		if err != nil || val == nil {
			continue
		}
		protocol := fmt.Sprintf("%v", val)
		if len(protocol) > 0 {
			return protocol, nil
		}
	}
	logger.Warn("registration response has no protocol field", zap.Any("body", decoded))
	return "", &ServiceError{Kind: ERROR_BAD_RESPONSE, Cause: errors.New("no protocol field in response")}
}

func (c *Client) doGet(ctx context.Context, reqUrl string, timeout time.Duration) (map[string]any, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, reqUrl, nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, classifyStatus(resp.StatusCode)
	}
	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &ServiceError{Kind: ERROR_BAD_RESPONSE, Cause: err}
	}
	return decoded, nil
}

func (c *Client) authorize(req *http.Request) {
	if len(c.authToken) > 0 {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
}

func classifyTransportError(err error) *ServiceError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ServiceError{Kind: ERROR_TIMEOUT, Cause: err}
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return &ServiceError{Kind: ERROR_TIMEOUT, Cause: err}
	}
	return &ServiceError{Kind: ERROR_UNREACHABLE, Cause: err}
}

func classifyStatus(status int) *ServiceError {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &ServiceError{Kind: ERROR_UNAUTHORIZED, Status: status}
	case http.StatusNotFound:
		return &ServiceError{Kind: ERROR_NOT_FOUND, Status: status}
	default:
		return &ServiceError{Kind: ERROR_FAILED, Status: status}
	}
}
