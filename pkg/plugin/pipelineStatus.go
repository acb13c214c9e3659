package plugin

import (
	"context"
	"encoding/json"
	"time"

	"github.com/keboo/deckstatus/pkg/scm/customAzure"
	"github.com/keboo/deckstatus/pkg/status"
)

const pipelineStatusUnconfigured = "Build\n--"

// pipelineStatus shows the latest build of up to three Azure pipelines
type pipelineStatus struct {
	config Config
}

func NewPipelineStatus(config Config) Action {
	return &pipelineStatus{config: config}
}

func (a *pipelineStatus) Refresh(ctx context.Context, raw json.RawMessage) *Result {
	settings := parsePipelineStatusSettings(raw)
	targets := settings.targets()
	if !settings.complete() || len(targets) == 0 {
		return &Result{Title: pipelineStatusUnconfigured}
	}

	client := a.client(settings)
	fetch := a.config.countingFetcher(status.AzurePipeline, func(ctx context.Context, target status.Target) (string, error) {
		return client.LatestBuildStatus(ctx, target.ID, target.Branch)
	})

	snapshot := status.Collect(ctx, status.AzurePipeline, targets, fetch, a.config.FetchTimeout)
	return a.config.renderSnapshot(ctx, snapshot, client.ProjectAvatar)
}

// URL points to the builds of the pipeline that needs attention most
func (a *pipelineStatus) URL(raw json.RawMessage, last *Result) string {
	settings := parsePipelineStatusSettings(raw)
	targets := settings.targets()
	if settings.Organization.String() == "" || settings.Project.String() == "" || len(targets) == 0 {
		return ""
	}

	target := priorityTarget(targets, last)

	return a.client(settings).BuildsURL(target.ID)
}

func (a *pipelineStatus) Interval(raw json.RawMessage) time.Duration {
	return refreshInterval(parsePipelineStatusSettings(raw).RefreshInterval)
}

func (a *pipelineStatus) client(settings PipelineStatusSettings) *customAzure.AzureClient {
	return customAzure.NewAzureClient(
		a.config.AzureDevOpsURL,
		settings.Organization.String(),
		settings.Project.String(),
		settings.Token.String(),
		nil,
	)
}
