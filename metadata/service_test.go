package metadata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convoflow/convoflow/flow"
	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence/inmem"
)

type nopReader struct{}

func (nopReader) Read(ctx context.Context, action string, params map[string]string) (map[string]any, error) {
	return nil, nil
}

type nopRunner struct{}

func (nopRunner) Run(ctx context.Context, name string, variables map[string]string) error {
	return nil
}

func testService() FlowService {
	storage := inmem.NewInMemStorage()
	return NewFlowService(storage.Flows(), flow.Dependencies{Reader: nopReader{}, Writer: nopRunner{}})
}

func simpleDefinition(name string, active bool) model.FlowDefinition {
	return model.FlowDefinition{
		Name:     name,
		IsActive: active,
		Graph: model.FlowGraph{
			Nodes: []model.NodeDef{
				{Id: "start", Type: model.NODE_TYPE_START_MESSAGE, Data: map[string]any{"message": "Olá!"}},
			},
		},
	}
}

func TestSaveFlowAssignsId(t *testing.T) {
	service := testService()
	saved, err := service.SaveFlow(simpleDefinition("v1", false))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.Id)
	assert.False(t, saved.IsActive)

	got, err := service.GetFlow(saved.Id)
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Name)
}

func TestSaveFlowRejectsInvalidDefinition(t *testing.T) {
	service := testService()
	def := simpleDefinition("broken", false)
	def.Graph.Nodes[0].Data = map[string]any{}
	_, err := service.SaveFlow(def)
	require.Error(t, err)
	_, ok := err.(flow.InvalidFlowError)
	require.True(t, ok)
}

func TestActivationIsExclusive(t *testing.T) {
	service := testService()
	_, err := service.SaveFlow(simpleDefinition("v1", true))
	require.NoError(t, err)
	second, err := service.SaveFlow(simpleDefinition("v2", false))
	require.NoError(t, err)

	require.NoError(t, service.ActivateFlow(second.Id))

	defs, err := service.ListFlows()
	require.NoError(t, err)
	require.Len(t, defs, 2)
	for _, def := range defs {
		assert.Equal(t, def.Id == second.Id, def.IsActive, "flow %s", def.Name)
	}
}

func TestGetActiveFlowConvertsAndCaches(t *testing.T) {
	service := testService()
	saved, err := service.SaveFlow(simpleDefinition("v1", true))
	require.NoError(t, err)

	fl, err := service.GetActiveFlow()
	require.NoError(t, err)
	assert.Equal(t, saved.Id, fl.Id)
	assert.Equal(t, "start", fl.StartNodeId)

	again, err := service.GetActiveFlow()
	require.NoError(t, err)
	assert.Same(t, fl, again)
}

func TestActivateInvalidatesActiveFlowCache(t *testing.T) {
	service := testService()
	_, err := service.SaveFlow(simpleDefinition("v1", true))
	require.NoError(t, err)
	_, err = service.GetActiveFlow()
	require.NoError(t, err)

	second, err := service.SaveFlow(simpleDefinition("v2", false))
	require.NoError(t, err)
	require.NoError(t, service.ActivateFlow(second.Id))

	fl, err := service.GetActiveFlow()
	require.NoError(t, err)
	assert.Equal(t, second.Id, fl.Id)
}

func TestGetActiveFlowWithoutActiveDefinition(t *testing.T) {
	service := testService()
	_, err := service.GetActiveFlow()
	require.Error(t, err)
}
