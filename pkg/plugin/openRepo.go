package plugin

import (
	"context"
	"encoding/json"
	"time"

	"github.com/keboo/deckstatus/pkg/scm/customGithub"
	"github.com/sirupsen/logrus"
)

const (
	openRepoDefaultTitle = "GitHub"
	openRepoFallbackURL  = "https://keboo.dev"
)

// openRepo is a plain shortcut to a GitHub repository
type openRepo struct {
	config Config
}

func NewOpenRepo(config Config) Action {
	return &openRepo{config: config}
}

func (a *openRepo) Refresh(ctx context.Context, raw json.RawMessage) *Result {
	settings := parseOpenRepoSettings(raw)
	if settings.Repo.String() == "" {
		return &Result{Title: openRepoDefaultTitle}
	}
	return &Result{Title: settings.Repo.String()}
}

func (a *openRepo) URL(raw json.RawMessage, last *Result) string {
	settings := parseOpenRepoSettings(raw)
	if settings.Repo.String() == "" {
		return openRepoFallbackURL
	}

	owner, repo := customGithub.SplitRepo(settings.Owner.String(), settings.Repo.String())
	if owner == "" || repo == "" {
		return openRepoFallbackURL
	}

	client, err := customGithub.NewGithubClient(context.Background(), a.config.GithubAPIURL, a.config.GithubURL, "")
	if err != nil {
		logrus.Errorf("could not create github client: %s", err)
		return openRepoFallbackURL
	}
	return client.RepoURL(owner, repo)
}

func (a *openRepo) Interval(raw json.RawMessage) time.Duration {
	return 0
}
