package plugin

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gimlet-io/go-scm/scm"
	"github.com/keboo/deckstatus/pkg/scm/customGithub"
	"github.com/keboo/deckstatus/pkg/status"
	"github.com/sirupsen/logrus"
)

const (
	actionStatusUnconfigured = "Actions\n--"
	actionStatusError        = "Actions\nErr"
)

// actionStatus shows the latest run of up to three GitHub workflows
type actionStatus struct {
	config Config
}

func NewActionStatus(config Config) Action {
	return &actionStatus{config: config}
}

func (a *actionStatus) Refresh(ctx context.Context, raw json.RawMessage) *Result {
	settings := parseActionStatusSettings(raw)
	targets := settings.targets()
	if settings.Owner.String() == "" || settings.Token.String() == "" || len(targets) == 0 {
		return &Result{Title: actionStatusUnconfigured}
	}

	client, err := customGithub.NewGithubClient(ctx, a.config.GithubAPIURL, a.config.GithubURL, settings.Token.String())
	if err != nil {
		logrus.Errorf("could not create github client: %s", err)
		return &Result{Title: actionStatusError}
	}

	fetch := a.config.countingFetcher(status.GithubWorkflow, func(ctx context.Context, target status.Target) (string, error) {
		owner, repo := scm.Split(target.Repo)
		return client.LatestRunStatus(ctx, owner, repo, target.ID, target.Branch)
	})

	snapshot := status.Collect(ctx, status.GithubWorkflow, targets, fetch, a.config.FetchTimeout)
	return a.config.renderSnapshot(ctx, snapshot, func(ctx context.Context) ([]byte, error) {
		return client.OwnerAvatar(ctx, settings.Owner.String())
	})
}

// URL points to the runs of the workflow that needs attention most
func (a *actionStatus) URL(raw json.RawMessage, last *Result) string {
	settings := parseActionStatusSettings(raw)
	targets := settings.targets()
	if len(targets) == 0 {
		return ""
	}

	target := priorityTarget(targets, last)

	client, err := customGithub.NewGithubClient(context.Background(), a.config.GithubAPIURL, a.config.GithubURL, "")
	if err != nil {
		logrus.Errorf("could not create github client: %s", err)
		return ""
	}
	owner, repo := scm.Split(target.Repo)
	return client.ActionsURL(owner, repo, target.ID, target.Branch)
}

func (a *actionStatus) Interval(raw json.RawMessage) time.Duration {
	return refreshInterval(parseActionStatusSettings(raw).RefreshInterval)
}
