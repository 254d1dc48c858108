package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oliveagle/jsonpath"
	"go.uber.org/zap"

	"github.com/convoflow/convoflow/erp"
	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/model"
)

var _ Node = new(integrationNode)

// integrationNode performs a read only lookup against the back office. When
// the required input variable has not been collected yet it asks for it; the
// engine round trips back here once the customer answers.
type integrationNode struct {
	baseNode
	action        string
	inputVariable string
	inputType     string
	prompt        string
	reader        IntegrationReader
}

func NewIntegrationNode(action string, inputVariable string, inputType string, prompt string, reader IntegrationReader, bNode baseNode) *integrationNode {
	return &integrationNode{
		baseNode:      bNode,
		action:        action,
		inputVariable: inputVariable,
		inputType:     inputType,
		prompt:        prompt,
		reader:        reader,
	}
}

func (n *integrationNode) Validate() error {
	if !erp.ValidReadAction(n.action) {
		return fmt.Errorf("nodeId=%s, unknown integration action %s", n.id, n.action)
	}
	if len(n.inputVariable) == 0 {
		return fmt.Errorf("nodeId=%s, integration requires an input variable", n.id)
	}
	return nil
}

func (n *integrationNode) InputVariable() string {
	return n.inputVariable
}

func (n *integrationNode) Execute(ctx context.Context, ectx ExecutionContext) (*model.BotResponse, error) {
	value, ok := ectx.Variables[n.inputVariable]
	if !ok || len(value) == 0 {
		return &model.BotResponse{
			Type:      model.RESPONSE_TYPE_INPUT_REQUEST,
			Content:   n.prompt,
			InputType: n.inputType,
		}, nil
	}
	result, err := n.reader.Read(ctx, n.action, map[string]string{n.inputVariable: value})
	if err != nil {
		logger.Warn("integration read failed", zap.String("node", n.id), zap.String("action", n.action), zap.Error(err))
		return &model.BotResponse{
			Type:    model.RESPONSE_TYPE_MESSAGE,
			Content: userSafeErrorMessage(err),
		}, nil
	}
	return &model.BotResponse{
		Type:    model.RESPONSE_TYPE_MESSAGE,
		Content: formatReadResult(n.action, result),
	}, nil
}

func userSafeErrorMessage(err error) string {
	var serr *erp.ServiceError
	if !errors.As(err, &serr) {
		return MSG_GENERIC_ERROR
	}
	switch serr.Kind {
	case erp.ERROR_UNREACHABLE:
		return MSG_ERP_UNREACHABLE
	case erp.ERROR_TIMEOUT:
		return MSG_ERP_TIMEOUT
	case erp.ERROR_UNAUTHORIZED:
		return MSG_ERP_UNAUTHORIZED
	case erp.ERROR_NOT_FOUND:
		return MSG_ERP_NOT_FOUND
	default:
		return MSG_GENERIC_ERROR
	}
}

func formatReadResult(action string, result map[string]any) string {
	switch action {
	case erp.READ_INVOICE_LOOKUP:
		return formatInvoices(result)
	case erp.READ_CUSTOMER_HISTORY:
		return formatHistory(result)
	case erp.READ_ORDER_STATUS:
		return formatOrderStatus(result)
	case erp.READ_PRODUCT_LOOKUP:
		return formatProducts(result)
	}
	return MSG_GENERIC_ERROR
}

func lookupList(result map[string]any, path string) []any {
	val, err := jsonpath.JsonPathLookup(result, path)
	if err != nil {
		return nil
	}
	list, ok := val.([]any)
	if !ok {
		return nil
	}
	return list
}

func formatInvoices(result map[string]any) string {
	invoices := lookupList(result, "$.faturas")
	if len(invoices) == 0 {
		return MSG_NO_OPEN_INVOICES
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Encontramos %d fatura(s) em aberto:\n", len(invoices))
	for _, item := range invoices {
		invoice, ok := item.(map[string]any)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "- R$ %v com vencimento em %v\n", invoice["valor"], invoice["vencimento"])
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatHistory(result map[string]any) string {
	entries := lookupList(result, "$.atendimentos")
	if len(entries) == 0 {
		return "Você ainda não possui atendimentos registrados no nosso histórico."
	}
	return fmt.Sprintf("Você possui %d atendimento(s) registrado(s) no nosso histórico.", len(entries))
}

func formatOrderStatus(result map[string]any) string {
	status, err := jsonpath.JsonPathLookup(result, "$.status")
	if err != nil || status == nil {
		return "Não encontramos informações sobre o seu pedido."
	}
	msg := fmt.Sprintf("Seu pedido está: %v.", status)
	if eta, err := jsonpath.JsonPathLookup(result, "$.previsaoEntrega"); err == nil && eta != nil {
		msg = msg + fmt.Sprintf(" Previsão de entrega: %v.", eta)
	}
	return msg
}

func formatProducts(result map[string]any) string {
	products := lookupList(result, "$.produtos")
	if len(products) == 0 {
		return "Não encontramos produtos com os dados informados."
	}
	var sb strings.Builder
	sb.WriteString("Encontramos os seguintes produtos:\n")
	for _, item := range products {
		product, ok := item.(map[string]any)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "- %v (R$ %v)\n", product["nome"], product["preco"])
	}
	return strings.TrimRight(sb.String(), "\n")
}
