package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convoflow/convoflow/model"
)

func graphFixture() model.FlowGraph {
	return model.FlowGraph{
		Nodes: []model.NodeDef{
			{Id: "start", Type: model.NODE_TYPE_START_MESSAGE, Data: map[string]any{"message": "Olá!"}},
			{Id: "menu", Type: model.NODE_TYPE_MENU_BUTTONS, Data: map[string]any{
				"message": "Como posso ajudar?",
				"buttons": []any{"Segunda via de fatura", "Falar com atendente"},
			}},
			{Id: "invoice", Type: model.NODE_TYPE_INTEGRATION, Data: map[string]any{
				"action": "invoice_lookup", "input": "cpf", "inputType": "cpf", "prompt": "Me informa seu CPF?",
			}},
			{Id: "transfer", Type: model.NODE_TYPE_TRANSFER, Data: map[string]any{"queue": "human"}},
		},
		Edges: []model.Edge{
			{Source: "start", Target: "menu"},
			{Source: "menu", Target: "invoice"},
			{Source: "menu", Target: "transfer"},
		},
	}
}

func TestResolveInitialNode(t *testing.T) {
	node, err := ResolveInitialNode(graphFixture())
	require.NoError(t, err)
	assert.Equal(t, "start", node.Id)
}

func TestResolveInitialNodeNoStart(t *testing.T) {
	graph := model.FlowGraph{
		Nodes: []model.NodeDef{
			{Id: "a", Type: model.NODE_TYPE_SEND_MESSAGE},
			{Id: "b", Type: model.NODE_TYPE_SEND_MESSAGE},
		},
		Edges: []model.Edge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "a"},
		},
	}
	_, err := ResolveInitialNode(graph)
	require.Error(t, err)
	_, ok := err.(InvalidFlowError)
	require.True(t, ok)
}

func TestResolveInitialNodeMultipleStarts(t *testing.T) {
	graph := model.FlowGraph{
		Nodes: []model.NodeDef{
			{Id: "a", Type: model.NODE_TYPE_SEND_MESSAGE},
			{Id: "b", Type: model.NODE_TYPE_SEND_MESSAGE},
			{Id: "c", Type: model.NODE_TYPE_SEND_MESSAGE},
		},
		Edges: []model.Edge{
			{Source: "a", Target: "c"},
			{Source: "b", Target: "c"},
		},
	}
	_, err := ResolveInitialNode(graph)
	require.Error(t, err)
	_, ok := err.(InvalidFlowError)
	require.True(t, ok)
}

func TestNextNodeUnconditional(t *testing.T) {
	next, err := NextNode(graphFixture(), "start", nil)
	require.NoError(t, err)
	assert.Equal(t, "menu", next.Id)
}

func TestNextNodeMenuOrdinals(t *testing.T) {
	graph := graphFixture()

	idx := 0
	next, err := NextNode(graph, "menu", &idx)
	require.NoError(t, err)
	assert.Equal(t, "invoice", next.Id)

	idx = 1
	next, err = NextNode(graph, "menu", &idx)
	require.NoError(t, err)
	assert.Equal(t, "transfer", next.Id)
}

func TestNextNodeMenuOutOfRange(t *testing.T) {
	graph := graphFixture()

	idx := 2
	_, err := NextNode(graph, "menu", &idx)
	require.Error(t, err)
	_, ok := err.(UnrecognizedInputError)
	require.True(t, ok)

	idx = -1
	_, err = NextNode(graph, "menu", &idx)
	require.Error(t, err)
}

func TestNextNodeMenuWithoutIndex(t *testing.T) {
	_, err := NextNode(graphFixture(), "menu", nil)
	require.Error(t, err)
	_, ok := err.(UnrecognizedInputError)
	require.True(t, ok)
}

func TestNextNodeTerminal(t *testing.T) {
	next, err := NextNode(graphFixture(), "transfer", nil)
	require.NoError(t, err)
	assert.Nil(t, next)
}
