package customAzure

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/keboo/deckstatus/pkg/status"
	"github.com/pkg/errors"
)

const DefaultURL = "https://dev.azure.com"

// AzureClient talks to the Azure DevOps REST API of one organization and project
// with a personal access token
type AzureClient struct {
	httpClient   *http.Client
	baseURL      string
	organization string
	project      string
	authHeader   string
}

type PullRequest struct {
	ID         int
	Title      string
	IsDraft    bool
	RepoID     string
	RepoName   string
	AuthorName string
	AuthorID   string
}

type Reviewer struct {
	DisplayName string
	UniqueName  string
	Vote        int
}

type buildsResponse struct {
	Value []apiBuild `json:"value"`
}

type apiBuild struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
	Result string `json:"result"`
}

type pullRequestsResponse struct {
	Value []apiPullRequest `json:"value"`
}

type apiPullRequest struct {
	PullRequestID int    `json:"pullRequestId"`
	Title         string `json:"title"`
	IsDraft       bool   `json:"isDraft"`
	Repository    struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"repository"`
	CreatedBy struct {
		DisplayName string `json:"displayName"`
		UniqueName  string `json:"uniqueName"`
	} `json:"createdBy"`
}

type reviewersResponse struct {
	Value []apiReviewer `json:"value"`
}

type apiReviewer struct {
	DisplayName string `json:"displayName"`
	UniqueName  string `json:"uniqueName"`
	Vote        int    `json:"vote"`
}

type projectResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DefaultTeam struct {
		ID string `json:"id"`
	} `json:"defaultTeam"`
}

func NewAzureClient(baseURL, organization, project, token string, httpClient *http.Client) *AzureClient {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &AzureClient{
		httpClient:   httpClient,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		organization: organization,
		project:      project,
		authHeader:   "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+token)),
	}
}

// LatestBuildStatus returns the raw status of the newest build of a pipeline:
// the result for completed builds, the build status otherwise, and
// status.RawNone when the pipeline never ran
func (c *AzureClient) LatestBuildStatus(ctx context.Context, pipelineID string, branch string) (string, error) {
	reqURL := fmt.Sprintf("%s/_apis/build/builds?definitions=%s&$top=1&api-version=7.0",
		c.projectURL(), url.QueryEscape(pipelineID))
	if branch != "" {
		reqURL += "&branchName=refs/heads/" + url.QueryEscape(branch)
	}

	var decoded buildsResponse
	if err := c.getJSON(ctx, reqURL, &decoded); err != nil {
		return "", err
	}

	if len(decoded.Value) == 0 {
		return status.RawNone, nil
	}

	latest := decoded.Value[0]
	if latest.Status == "completed" {
		if latest.Result == "" {
			return status.RawUnknown, nil
		}
		return latest.Result, nil
	}
	if latest.Status == "" {
		return status.RawUnknown, nil
	}
	return latest.Status, nil
}

func (c *AzureClient) ActivePullRequests(ctx context.Context) ([]PullRequest, error) {
	reqURL := fmt.Sprintf("%s/_apis/git/pullrequests?searchCriteria.status=active&api-version=7.0", c.projectURL())

	var decoded pullRequestsResponse
	if err := c.getJSON(ctx, reqURL, &decoded); err != nil {
		return nil, err
	}

	pullRequests := make([]PullRequest, 0, len(decoded.Value))
	for _, item := range decoded.Value {
		pullRequests = append(pullRequests, PullRequest{
			ID:         item.PullRequestID,
			Title:      item.Title,
			IsDraft:    item.IsDraft,
			RepoID:     item.Repository.ID,
			RepoName:   item.Repository.Name,
			AuthorName: item.CreatedBy.DisplayName,
			AuthorID:   item.CreatedBy.UniqueName,
		})
	}

	return pullRequests, nil
}

func (c *AzureClient) Reviewers(ctx context.Context, repoID string, pullRequestID int) ([]Reviewer, error) {
	reqURL := fmt.Sprintf("%s/_apis/git/repositories/%s/pullRequests/%d/reviewers?api-version=7.0",
		c.organizationURL(), url.PathEscape(repoID), pullRequestID)

	var decoded reviewersResponse
	if err := c.getJSON(ctx, reqURL, &decoded); err != nil {
		return nil, err
	}

	reviewers := make([]Reviewer, 0, len(decoded.Value))
	for _, item := range decoded.Value {
		reviewers = append(reviewers, Reviewer{
			DisplayName: item.DisplayName,
			UniqueName:  item.UniqueName,
			Vote:        item.Vote,
		})
	}

	return reviewers, nil
}

// ProjectAvatar returns the image bytes of the project's default team avatar
func (c *AzureClient) ProjectAvatar(ctx context.Context) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/_apis/projects/%s?api-version=7.1", c.organizationURL(), url.PathEscape(c.project))

	var project projectResponse
	if err := c.getJSON(ctx, reqURL, &project); err != nil {
		return nil, err
	}
	if project.DefaultTeam.ID == "" {
		return nil, errors.Errorf("project %s has no default team", c.project)
	}

	avatarURL := fmt.Sprintf("%s/_apis/GraphProfile/MemberAvatars/%s", c.organizationURL(), url.PathEscape(project.DefaultTeam.ID))
	return c.get(ctx, avatarURL, "image/*")
}

// BuildsURL is the browser page of a pipeline, or of all pipelines when id is empty
func (c *AzureClient) BuildsURL(pipelineID string) string {
	if pipelineID == "" {
		return c.projectURL() + "/_build"
	}
	return fmt.Sprintf("%s/_build?definitionId=%s", c.projectURL(), url.QueryEscape(pipelineID))
}

// PullRequestsURL is the browser page of the active pull requests of a repository
func (c *AzureClient) PullRequestsURL(repoName string) string {
	return fmt.Sprintf("%s/_git/%s/pullrequests?_a=active", c.projectURL(), url.PathEscape(repoName))
}

func (c *AzureClient) organizationURL() string {
	return c.baseURL + "/" + url.PathEscape(c.organization)
}

func (c *AzureClient) projectURL() string {
	return c.organizationURL() + "/" + url.PathEscape(c.project)
}

func (c *AzureClient) getJSON(ctx context.Context, reqURL string, target interface{}) error {
	body, err := c.get(ctx, reqURL, "application/json")
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.Wrapf(err, "unable to decode response of %s", reqURL)
	}
	return nil
}

func (c *AzureClient) get(ctx context.Context, reqURL string, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	setHeaders(req, c.authHeader, accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "request failed for URL %s", reqURL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("non-success status code: %d for URL %s", resp.StatusCode, reqURL)
	}

	return body, nil
}

func setHeaders(req *http.Request, authValue string, accept string) {
	req.Header.Set("Accept", accept)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authValue)
}
