package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/keboo/deckstatus/pkg/icon"
	"github.com/keboo/deckstatus/pkg/scm/customAzure"
	"github.com/keboo/deckstatus/pkg/status"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	prCountUnconfigured = "PR\n--"
	prCountError        = "PR\nErr"

	reviewerLookups = 4
)

// prCount shows the number of active pull requests of an Azure project
type prCount struct {
	config Config
}

func NewPRCount(config Config) Action {
	return &prCount{config: config}
}

func (a *prCount) Refresh(ctx context.Context, raw json.RawMessage) *Result {
	settings := parsePRCountSettings(raw)
	if !settings.complete() {
		return &Result{Title: prCountUnconfigured}
	}

	client := customAzure.NewAzureClient(
		a.config.AzureDevOpsURL,
		settings.Organization.String(),
		settings.Project.String(),
		settings.Token.String(),
		nil,
	)

	listCtx, cancel := a.config.withTimeout(ctx)
	pullRequests, err := client.ActivePullRequests(listCtx)
	cancel()
	if err != nil {
		a.config.fetchFailed(status.AzurePipeline)
		logrus.Warnf("could not list pull requests: %s", err)
		return &Result{Title: prCountError}
	}

	if !settings.IncludeDrafts.Bool() {
		pullRequests = withoutDrafts(pullRequests)
	}
	if excluded := settings.excludedUsers(); len(excluded) > 0 {
		pullRequests = a.withoutExcludedUsers(ctx, client, pullRequests, excluded)
	}

	result := &Result{Title: fmt.Sprintf("PR\n%d", len(pullRequests))}
	if len(pullRequests) > 0 && pullRequests[0].RepoName != "" {
		result.Link = client.PullRequestsURL(pullRequests[0].RepoName)
	}

	avatarCtx, cancel := a.config.withTimeout(ctx)
	defer cancel()
	avatar, err := client.ProjectAvatar(avatarCtx)
	if err != nil {
		logrus.Debugf("no project avatar: %s", err)
		return result
	}
	image, err := icon.AvatarIcon(avatar, status.ColorBlue)
	if err != nil {
		logrus.Warnf("could not render project avatar: %s", err)
		return result
	}
	result.Image = image

	return result
}

// URL is the pull request page of the first counted pull request's repository
func (a *prCount) URL(raw json.RawMessage, last *Result) string {
	settings := parsePRCountSettings(raw)
	if settings.Organization.String() == "" || settings.Project.String() == "" || last == nil {
		return ""
	}
	return last.Link
}

func (a *prCount) Interval(raw json.RawMessage) time.Duration {
	return refreshInterval(parsePRCountSettings(raw).RefreshInterval)
}

func withoutDrafts(pullRequests []customAzure.PullRequest) []customAzure.PullRequest {
	var filtered []customAzure.PullRequest
	for _, pr := range pullRequests {
		if !pr.IsDraft {
			filtered = append(filtered, pr)
		}
	}
	return filtered
}

// withoutExcludedUsers drops pull requests authored by an excluded user, or
// voted on by one. Reviewer lookups that fail keep the pull request.
func (a *prCount) withoutExcludedUsers(
	ctx context.Context,
	client *customAzure.AzureClient,
	pullRequests []customAzure.PullRequest,
	excluded []string,
) []customAzure.PullRequest {
	keep := make([]bool, len(pullRequests))

	var g errgroup.Group
	g.SetLimit(reviewerLookups)
	for i, pr := range pullRequests {
		if matchesUser(pr.AuthorName, pr.AuthorID, excluded) {
			continue
		}

		i, pr := i, pr
		g.Go(func() error {
			reviewCtx, cancel := a.config.withTimeout(ctx)
			defer cancel()

			reviewers, err := client.Reviewers(reviewCtx, pr.RepoID, pr.ID)
			if err != nil {
				logrus.Warnf("could not get reviewers of pull request %d: %s", pr.ID, err)
				keep[i] = true
				return nil
			}
			keep[i] = !reviewedByExcluded(reviewers, excluded)
			return nil
		})
	}
	_ = g.Wait()

	var filtered []customAzure.PullRequest
	for i, pr := range pullRequests {
		if keep[i] {
			filtered = append(filtered, pr)
		}
	}
	return filtered
}

func reviewedByExcluded(reviewers []customAzure.Reviewer, excluded []string) bool {
	for _, reviewer := range reviewers {
		if reviewer.Vote == 0 {
			continue
		}
		if matchesUser(reviewer.DisplayName, reviewer.UniqueName, excluded) {
			return true
		}
	}
	return false
}

// matchesUser compares an Azure identity to the excluded list. The unique name
// is usually an email: its local part and the full address must match exactly,
// the name (unique name, or display name if there is none) may contain the entry.
func matchesUser(displayName, uniqueName string, excluded []string) bool {
	email := strings.ToLower(uniqueName)
	name := email
	if name == "" {
		name = strings.ToLower(displayName)
	}
	username := email
	if at := strings.Index(email, "@"); at >= 0 {
		username = email[:at]
	}

	for _, user := range excluded {
		if strings.Contains(name, user) || username == user || email == user {
			return true
		}
	}
	return false
}
