package status

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_normalizeAzure(t *testing.T) {
	cases := map[string]struct {
		state    State
		priority int
		color    string
		symbol   string
	}{
		"failed":             {StateFailed, 1, ColorRed, SymbolFailed},
		"partiallySucceeded": {StateDegraded, 2, ColorOrange, SymbolDegraded},
		"canceled":           {StateCanceled, 3, ColorGray, SymbolCanceled},
		"inProgress":         {StateRunning, 4, ColorBlue, SymbolRunning},
		"notStarted":         {StateRunning, 4, ColorBlue, SymbolRunning},
		"succeeded":          {StateSucceeded, 5, ColorGreen, SymbolSucceeded},
		"none":               {StateUnknown, 6, ColorGray, SymbolNone},
		"unknown":            {StateUnknown, 6, ColorGray, SymbolUnknown},
		"postponed":          {StateUnknown, 6, ColorGray, SymbolUnknown},
	}

	for raw, expected := range cases {
		n := Normalize(raw, AzurePipeline)
		assert.Equal(t, raw, n.Raw)
		assert.Equal(t, expected.state, n.State, raw)
		assert.Equal(t, expected.priority, n.Priority, raw)
		assert.Equal(t, expected.color, n.Color, raw)
		assert.Equal(t, expected.symbol, n.Symbol, raw)
	}
}

func Test_normalizeGithub(t *testing.T) {
	cases := map[string]struct {
		state    State
		priority int
		color    string
		symbol   string
	}{
		"failure":     {StateFailed, 1, ColorRed, SymbolFailed},
		"cancelled":   {StateCanceled, 2, ColorGray, SymbolCanceled},
		"skipped":     {StateCanceled, 2, ColorGray, SymbolCanceled},
		"none":        {StateCanceled, 2, ColorGray, SymbolNone},
		"unknown":     {StateCanceled, 2, ColorGray, SymbolUnknown},
		"in_progress": {StateRunning, 3, ColorYellow, SymbolRunning},
		"queued":      {StateRunning, 3, ColorYellow, SymbolRunning},
		"waiting":     {StateRunning, 3, ColorYellow, SymbolRunning},
		"success":     {StateSucceeded, 4, ColorGreen, SymbolSucceeded},
		"timed_out":   {StateUnknown, 5, ColorGray, SymbolUnknown},
		"succeeded":   {StateUnknown, 5, ColorGray, SymbolSucceeded},
	}

	for raw, expected := range cases {
		n := Normalize(raw, GithubWorkflow)
		assert.Equal(t, expected.state, n.State, raw)
		assert.Equal(t, expected.priority, n.Priority, raw)
		assert.Equal(t, expected.color, n.Color, raw)
		assert.Equal(t, expected.symbol, n.Symbol, raw)
	}
}

func Test_unmappedStatusesHitThePriorityFloor(t *testing.T) {
	for _, raw := range []string{"", "FAILED", "garbage", "completed"} {
		assert.Equal(t, 6, Normalize(raw, AzurePipeline).Priority)
		assert.Equal(t, StateUnknown, Normalize(raw, AzurePipeline).State)
		assert.Equal(t, 5, Normalize(raw, GithubWorkflow).Priority)
		assert.Equal(t, StateUnknown, Normalize(raw, GithubWorkflow).State)
	}
}

func targets(n int) []Target {
	var t []Target
	for i := 0; i < n; i++ {
		t = append(t, Target{Position: i, ID: fmt.Sprintf("%d", 100+i)})
	}
	return t
}

func Test_selectPriorityTarget(t *testing.T) {
	ts := targets(3)

	assert.Equal(t, ts[0], SelectPriorityTarget(ts, nil), "cold start goes to the first target")

	succeeded := Normalize("succeeded", AzurePipeline)
	failed := Normalize("failed", AzurePipeline)
	running := Normalize("inProgress", AzurePipeline)

	assert.Equal(t, ts[0], SelectPriorityTarget(ts[:2], []Normalized{succeeded, succeeded}))
	assert.Equal(t, ts[1], SelectPriorityTarget(ts, []Normalized{succeeded, failed, succeeded}))
	assert.Equal(t, ts[1], SelectPriorityTarget(ts, []Normalized{succeeded, failed, failed}), "later ties never override")
	assert.Equal(t, ts[2], SelectPriorityTarget(ts, []Normalized{succeeded, succeeded, running}))
	assert.Equal(t, ts[0], SelectPriorityTarget(ts, []Normalized{succeeded}), "only paired indices are scanned")
	assert.Equal(t, ts[1], SelectPriorityTarget(ts[:2], []Normalized{succeeded, failed, failed}))
	assert.Equal(t, Target{}, SelectPriorityTarget(nil, []Normalized{failed}))
}

func Test_buildRenderPlan(t *testing.T) {
	red := Normalize("failed", AzurePipeline)
	green := Normalize("succeeded", AzurePipeline)
	blue := Normalize("inProgress", AzurePipeline)

	plan := BuildRenderPlan([]Normalized{green})
	assert.Equal(t, []Slot{{BottomRight, ColorGreen, SymbolSucceeded}}, plan.Slots)

	plan = BuildRenderPlan([]Normalized{red, green})
	assert.Equal(t, []Slot{
		{BottomLeft, ColorRed, SymbolFailed},
		{BottomRight, ColorGreen, SymbolSucceeded},
	}, plan.Slots)

	plan = BuildRenderPlan([]Normalized{green, red, blue})
	assert.Equal(t, 3, len(plan.Slots))
	assert.Equal(t, BottomLeft, plan.Slots[0].Position)
	assert.Equal(t, BottomCenter, plan.Slots[1].Position)
	assert.Equal(t, BottomRight, plan.Slots[2].Position)
	assert.Equal(t, []string{ColorGreen, ColorRed, ColorBlue}, []string{plan.Slots[0].Color, plan.Slots[1].Color, plan.Slots[2].Color})
	assert.Equal(t, "✓ ✗ ⟳", plan.Title)

	plan = BuildRenderPlan(nil)
	assert.Equal(t, 0, len(plan.Slots))
	assert.Equal(t, "", plan.Title)
}

func Test_renderPlanOfIdenticalStatuses(t *testing.T) {
	for n := 1; n <= 3; n++ {
		raw := make([]string, n)
		for i := range raw {
			raw[i] = "succeeded"
		}
		statuses := NormalizeAll(raw, AzurePipeline)
		plan := BuildRenderPlan(statuses)

		assert.Equal(t, n, len(plan.Slots))
		for _, slot := range plan.Slots {
			assert.Equal(t, ColorGreen, slot.Color)
		}
		ts := targets(n)
		assert.Equal(t, ts[0], SelectPriorityTarget(ts, statuses))
	}
}

func Test_collect(t *testing.T) {
	raw := map[string]string{
		"100": "succeeded",
		"101": "failed",
		"102": "inProgress",
	}
	fetch := func(ctx context.Context, target Target) (string, error) {
		return raw[target.ID], nil
	}

	snapshot := Collect(context.Background(), AzurePipeline, targets(3), fetch, 0)
	assert.Equal(t, []string{"succeeded", "failed", "inProgress"}, snapshot.Raw)
	assert.Equal(t, "101", snapshot.PriorityTarget().ID)
	assert.Equal(t, ColorGreen, snapshot.Plan.Slots[0].Color)
	assert.Equal(t, ColorRed, snapshot.Plan.Slots[1].Color)
	assert.Equal(t, ColorBlue, snapshot.Plan.Slots[2].Color)
}

func Test_collectAbsorbsFailures(t *testing.T) {
	fetch := func(ctx context.Context, target Target) (string, error) {
		if target.ID == "101" {
			return "", fmt.Errorf("500 Internal Server Error")
		}
		return "success", nil
	}

	snapshot := Collect(context.Background(), GithubWorkflow, targets(3), fetch, 0)
	assert.Equal(t, 3, len(snapshot.Statuses))
	assert.Equal(t, []string{"success", RawUnknown, "success"}, snapshot.Raw)
	assert.Equal(t, SymbolUnknown, snapshot.Plan.Slots[1].Symbol)
	assert.Equal(t, "✓ ? ✓", snapshot.Plan.Title)
}

func Test_collectTimesOutSlowFetches(t *testing.T) {
	var calls int32
	fetch := func(ctx context.Context, target Target) (string, error) {
		atomic.AddInt32(&calls, 1)
		if target.ID == "100" {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "succeeded", nil
	}

	start := time.Now()
	snapshot := Collect(context.Background(), AzurePipeline, targets(2), fetch, 50*time.Millisecond)
	assert.True(t, time.Since(start) < 5*time.Second)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, []string{RawUnknown, "succeeded"}, snapshot.Raw)
}

func Test_scenarioThreeAzurePipelines(t *testing.T) {
	ts := targets(3)
	statuses := NormalizeAll([]string{"succeeded", "failed", "inProgress"}, AzurePipeline)

	priority := SelectPriorityTarget(ts, statuses)
	assert.Equal(t, ts[1], priority)
	assert.Equal(t, 1, statuses[1].Priority)

	plan := BuildRenderPlan(statuses)
	assert.Equal(t, ColorGreen, plan.Slots[0].Color)
	assert.Equal(t, ColorRed, plan.Slots[1].Color)
	assert.Equal(t, ColorBlue, plan.Slots[2].Color)
}
