package plugin

import (
	"context"
	"encoding/json"
	"time"

	"github.com/keboo/deckstatus/pkg/icon"
	"github.com/keboo/deckstatus/pkg/status"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const (
	PipelineStatusUUID = "com.keboo.azuredevops.pipelinestatus"
	ActionStatusUUID   = "com.keboo.github.actionstatus"
	PRCountUUID        = "com.keboo.azuredevops.prcount"
	OpenRepoUUID       = "com.keboo.github.action"
)

// Outbox is what actions may show on the host
type Outbox interface {
	SetTitle(context string, title string) error
	SetImage(context string, image string) error
	OpenURL(url string) error
}

// Action is one key type of the plugin. Actions hold no per-key state,
// the registry passes the key's settings and last result.
type Action interface {
	// Refresh never fails: problems end up in the result title
	Refresh(ctx context.Context, settings json.RawMessage) *Result
	// URL is opened on key release. Empty means nothing to open.
	URL(settings json.RawMessage, last *Result) string
	// Interval between background refreshes, zero disables polling
	Interval(settings json.RawMessage) time.Duration
}

// Result is what a refresh renders on a key
type Result struct {
	Title    string           `json:"title"`
	Image    string           `json:"-"`
	Snapshot *status.Snapshot `json:"snapshot,omitempty"`
	Link     string           `json:"link,omitempty"`
}

// Config is shared by all actions
type Config struct {
	AzureDevOpsURL string
	GithubAPIURL   string
	GithubURL      string

	// FetchTimeout bounds every single REST call of a refresh, zero is unbounded
	FetchTimeout time.Duration

	FetchFailures *prometheus.CounterVec
}

// Actions maps action UUIDs to their implementation
func Actions(config Config) map[string]Action {
	return map[string]Action{
		PipelineStatusUUID: NewPipelineStatus(config),
		ActionStatusUUID:   NewActionStatus(config),
		PRCountUUID:        NewPRCount(config),
		OpenRepoUUID:       NewOpenRepo(config),
	}
}

func (c Config) fetchFailed(platform status.Kind) {
	if c.FetchFailures != nil {
		c.FetchFailures.WithLabelValues(platform.String()).Inc()
	}
}

func (c Config) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.FetchTimeout > 0 {
		return context.WithTimeout(ctx, c.FetchTimeout)
	}
	return context.WithCancel(ctx)
}

// countingFetcher records failed fetches per platform
func (c Config) countingFetcher(kind status.Kind, fetch status.Fetcher) status.Fetcher {
	return func(ctx context.Context, target status.Target) (string, error) {
		raw, err := fetch(ctx, target)
		if err != nil {
			c.fetchFailed(kind)
		}
		return raw, err
	}
}

// priorityTarget is the target the last refresh found most urgent. Targets
// and statuses come from the same refresh; the configured targets are only
// used before the first refresh completes.
func priorityTarget(targets []status.Target, last *Result) status.Target {
	if last != nil && last.Snapshot != nil && len(last.Snapshot.Targets) > 0 {
		return last.Snapshot.PriorityTarget()
	}
	return status.SelectPriorityTarget(targets, nil)
}

// renderSnapshot draws the snapshot's indicators over the avatar, falling back
// to the symbol title when the avatar can't be had
func (c Config) renderSnapshot(
	ctx context.Context,
	snapshot *status.Snapshot,
	avatar func(ctx context.Context) ([]byte, error),
) *Result {
	result := &Result{
		Title:    snapshot.Plan.Title,
		Snapshot: snapshot,
	}

	avatarCtx, cancel := c.withTimeout(ctx)
	defer cancel()
	picture, err := avatar(avatarCtx)
	if err != nil {
		logrus.Debugf("no avatar, rendering symbols: %s", err)
		return result
	}

	image, err := icon.StatusIcon(picture, snapshot.Plan)
	if err != nil {
		logrus.Warnf("could not render status icon: %s", err)
		return result
	}

	result.Image = image
	result.Title = ""
	return result
}
