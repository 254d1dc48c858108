package erp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convoflow/convoflow/config"
	"github.com/convoflow/convoflow/model"
)

func testClient(baseUrl string) *Client {
	return NewClient(config.ErpConfig{
		BaseUrl:         baseUrl,
		AuthToken:       "s3cret",
		ReadTimeout:     2 * time.Second,
		RegisterTimeout: 2 * time.Second,
	})
}

func TestReadHitsActionEndpoint(t *testing.T) {
	var gotPath string
	var gotCpf string
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCpf = r.URL.Query().Get("cpf")
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"faturas": []any{}})
	}))
	defer server.Close()

	result, err := testClient(server.URL).Read(context.Background(), READ_INVOICE_LOOKUP,
		map[string]string{"cpf": "52998224725"})
	require.NoError(t, err)
	assert.Equal(t, "/faturas/buscar", gotPath)
	assert.Equal(t, "52998224725", gotCpf)
	assert.Equal(t, "Bearer s3cret", gotAuth)
	assert.Contains(t, result, "faturas")
}

func TestReadUnknownAction(t *testing.T) {
	_, err := testClient("http://localhost:1").Read(context.Background(), "launch_rocket", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "launch_rocket")
}

func TestReadClassifiesStatusCodes(t *testing.T) {
	scenarios := map[int]ErrorKind{
		http.StatusUnauthorized:        ERROR_UNAUTHORIZED,
		http.StatusForbidden:           ERROR_UNAUTHORIZED,
		http.StatusNotFound:            ERROR_NOT_FOUND,
		http.StatusInternalServerError: ERROR_FAILED,
	}
	for status, kind := range scenarios {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		_, err := testClient(server.URL).Read(context.Background(), READ_ORDER_STATUS, nil)
		server.Close()
		require.Error(t, err)
		serr, ok := err.(*ServiceError)
		require.True(t, ok)
		assert.Equal(t, kind, serr.Kind, "status %d", status)
	}
}

func TestReadUnreachable(t *testing.T) {
	// port 1 refuses connections
	_, err := testClient("http://localhost:1").Read(context.Background(), READ_ORDER_STATUS, nil)
	require.Error(t, err)
	serr, ok := err.(*ServiceError)
	require.True(t, ok)
	assert.Equal(t, ERROR_UNREACHABLE, serr.Kind)
}

func TestReadTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(config.ErpConfig{BaseUrl: server.URL, ReadTimeout: 20 * time.Millisecond})
	_, err := client.Read(context.Background(), READ_ORDER_STATUS, nil)
	require.Error(t, err)
	serr, ok := err.(*ServiceError)
	require.True(t, ok)
	assert.Equal(t, ERROR_TIMEOUT, serr.Kind)
}

func TestReadBadResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	}))
	defer server.Close()

	_, err := testClient(server.URL).Read(context.Background(), READ_ORDER_STATUS, nil)
	require.Error(t, err)
	serr, ok := err.(*ServiceError)
	require.True(t, ok)
	assert.Equal(t, ERROR_BAD_RESPONSE, serr.Kind)
}

func TestRegisterConversation(t *testing.T) {
	var gotPayload RegistrationPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/conversations/register", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		json.NewEncoder(w).Encode(map[string]any{"protocolo": "2026-000123"})
	}))
	defer server.Close()

	payload := RegistrationPayload{
		CustomerIdentifier: "52998224725",
		ChannelId:          "whatsapp",
		Transcript: []TranscriptEntry{
			{Sender: model.SENDER_CUSTOMER, Content: "oi", SentAt: time.Now()},
		},
		TotalMessages: 1,
	}
	protocol, err := testClient(server.URL).RegisterConversation(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "2026-000123", protocol)
	assert.Equal(t, "52998224725", gotPayload.CustomerIdentifier)
	assert.Len(t, gotPayload.Transcript, 1)
}

func TestRegisterConversationProtocolFieldVariants(t *testing.T) {
	for _, field := range []string{"protocol", "protocolo", "protocolNumber", "numeroProtocolo", "id"} {
		field := field
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{field: "P-1"})
		}))
		protocol, err := testClient(server.URL).RegisterConversation(context.Background(), RegistrationPayload{})
		server.Close()
		require.NoError(t, err, "field %s", field)
		assert.Equal(t, "P-1", protocol)
	}
}

func TestRegisterConversationNoProtocolField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer server.Close()

	_, err := testClient(server.URL).RegisterConversation(context.Background(), RegistrationPayload{})
	require.Error(t, err)
	serr, ok := err.(*ServiceError)
	require.True(t, ok)
	assert.Equal(t, ERROR_BAD_RESPONSE, serr.Kind)
}

func TestCustomerReads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/customers/42":
			json.NewEncoder(w).Encode(map[string]any{"id": "42", "nome": "Maria"})
		case "/customers/42/invoices":
			json.NewEncoder(w).Encode(map[string]any{"faturas": []any{map[string]any{"valor": 10}}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()
	client := testClient(server.URL)

	customer, err := client.GetCustomer(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "Maria", customer["nome"])

	invoices, err := client.GetCustomerInvoices(context.Background(), "42")
	require.NoError(t, err)
	assert.Contains(t, invoices, "faturas")
}

func TestValidReadAction(t *testing.T) {
	assert.True(t, ValidReadAction(READ_INVOICE_LOOKUP))
	assert.True(t, ValidReadAction(READ_CUSTOMER_HISTORY))
	assert.True(t, ValidReadAction(READ_PRODUCT_LOOKUP))
	assert.False(t, ValidReadAction("launch_rocket"))
}
