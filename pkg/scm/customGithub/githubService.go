package customGithub

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gimlet-io/go-scm/scm"
	"github.com/google/go-github/v37/github"
	"github.com/keboo/deckstatus/pkg/status"
	"github.com/pkg/errors"
	giturls "github.com/whilp/git-urls"
	"golang.org/x/oauth2"
)

const (
	DefaultAPIURL = "https://api.github.com/"
	DefaultWebURL = "https://github.com"
)

type GithubClient struct {
	client     *github.Client
	httpClient *http.Client
	webURL     string
}

// NewGithubClient authenticates with a personal access token. An empty apiURL
// means api.github.com
func NewGithubClient(ctx context.Context, apiURL, webURL, token string) (*GithubClient, error) {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	client := github.NewClient(httpClient)

	if apiURL != "" && apiURL != DefaultAPIURL {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		baseURL, err := url.Parse(apiURL)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid github api url %s", apiURL)
		}
		client.BaseURL = baseURL
	}

	if webURL == "" {
		webURL = DefaultWebURL
	}

	return &GithubClient{
		client:     client,
		httpClient: http.DefaultClient,
		webURL:     strings.TrimSuffix(webURL, "/"),
	}, nil
}

// LatestRunStatus returns the raw status of the newest workflow run: the
// conclusion for completed runs, the run status otherwise, and status.RawNone
// when nothing ran. An empty workflow means any workflow of the repository.
func (c *GithubClient) LatestRunStatus(ctx context.Context, owner, repo, workflow, branch string) (string, error) {
	opts := &github.ListWorkflowRunsOptions{
		Branch:      branch,
		ListOptions: github.ListOptions{PerPage: 1},
	}

	var runs *github.WorkflowRuns
	var err error
	if workflow == "" {
		runs, _, err = c.client.Actions.ListRepositoryWorkflowRuns(ctx, owner, repo, opts)
	} else if workflowID, parseErr := strconv.ParseInt(workflow, 10, 64); parseErr == nil {
		runs, _, err = c.client.Actions.ListWorkflowRunsByID(ctx, owner, repo, workflowID, opts)
	} else {
		runs, _, err = c.client.Actions.ListWorkflowRunsByFileName(ctx, owner, repo, workflow, opts)
	}
	if err != nil {
		return "", errors.Wrapf(err, "could not list workflow runs of %s/%s", owner, repo)
	}

	if runs == nil || len(runs.WorkflowRuns) == 0 {
		return status.RawNone, nil
	}

	latest := runs.WorkflowRuns[0]
	if latest.GetStatus() == "completed" {
		if latest.GetConclusion() == "" {
			return status.RawUnknown, nil
		}
		return latest.GetConclusion(), nil
	}
	if latest.GetStatus() == "" {
		return status.RawUnknown, nil
	}
	return latest.GetStatus(), nil
}

// OwnerAvatar returns the avatar image bytes of a user or organization
func (c *GithubClient) OwnerAvatar(ctx context.Context, owner string) ([]byte, error) {
	user, _, err := c.client.Users.Get(ctx, owner)
	if err != nil {
		return nil, errors.Wrapf(err, "could not get %s", owner)
	}
	if user.GetAvatarURL() == "" {
		return nil, errors.Errorf("%s has no avatar", owner)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, user.GetAvatarURL(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "could not download avatar of %s", owner)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("could not download avatar of %s: %d", owner, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// ActionsURL is the browser page of a workflow's runs, filtered to a branch if given
func (c *GithubClient) ActionsURL(owner, repo, workflow, branch string) string {
	page := fmt.Sprintf("%s/%s/%s/actions", c.webURL, owner, repo)
	if workflow != "" {
		page += "/workflows/" + url.PathEscape(workflow)
	}
	if branch != "" {
		page += "?query=" + url.QueryEscape("branch:"+branch)
	}
	return page
}

func (c *GithubClient) RepoURL(owner, repo string) string {
	return fmt.Sprintf("%s/%s/%s", c.webURL, owner, repo)
}

// SplitRepo accepts "repo", "owner/repo" or a clone URL and returns the owner
// and name, falling back to defaultOwner when the input has none
func SplitRepo(defaultOwner, repo string) (string, string) {
	repo = strings.TrimSpace(repo)
	if strings.Contains(repo, "://") || strings.HasPrefix(repo, "git@") {
		if parsed, err := giturls.Parse(repo); err == nil {
			repo = strings.TrimSuffix(strings.Trim(parsed.Path, "/"), ".git")
		}
	}

	if !strings.Contains(repo, "/") {
		return defaultOwner, repo
	}
	return scm.Split(repo)
}
