package flow

// CollectVariable reports the variable a CollectInfo node at nodeId stores
// the next customer message under.
func (f *Flow) CollectVariable(nodeId string) (string, bool) {
	node, ok := f.Nodes[nodeId]
	if !ok {
		return "", false
	}
	collect, ok := node.(*collectInfoNode)
	if !ok {
		return "", false
	}
	return collect.variable, true
}

// MenuButtons reports the ordered button labels of a MenuButtons node at
// nodeId.
func (f *Flow) MenuButtons(nodeId string) ([]string, bool) {
	node, ok := f.Nodes[nodeId]
	if !ok {
		return nil, false
	}
	menu, ok := node.(*menuButtonsNode)
	if !ok {
		return nil, false
	}
	return menu.buttons, true
}

// RequiredInput reports the input variable an Integration node at nodeId
// needs before it can perform its read.
func (f *Flow) RequiredInput(nodeId string) (string, bool) {
	node, ok := f.Nodes[nodeId]
	if !ok {
		return "", false
	}
	integration, ok := node.(*integrationNode)
	if !ok {
		return "", false
	}
	return integration.inputVariable, true
}
