package main

import (
	"testing"

	"github.com/fatih/color"
	"github.com/keboo/deckstatus/pkg/plugin"
	"github.com/keboo/deckstatus/pkg/status"
	"github.com/stretchr/testify/assert"
)

func Test_formatButton(t *testing.T) {
	color.NoColor = true

	target := status.Target{Position: 1, ID: "ci.yml", Repo: "keboo/api"}
	line := formatButton(plugin.ButtonState{
		Context:        "key1",
		Action:         plugin.ActionStatusUUID,
		Statuses:       status.NormalizeAll([]string{"success", "failure"}, status.GithubWorkflow),
		PriorityTarget: &target,
	})
	assert.Equal(t, "key1 com.keboo.github.actionstatus ✓ ✗ (keboo/api ci.yml)", line)

	line = formatButton(plugin.ButtonState{
		Context: "key2",
		Action:  plugin.PRCountUUID,
		Title:   "PR\n3",
	})
	assert.Equal(t, "key2 com.keboo.azuredevops.prcount PR 3", line)
}
