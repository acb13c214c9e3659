package customAzure

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_latestBuildStatus(t *testing.T) {
	var lastQuery string
	var lastAuth string
	builds := map[string]string{
		"1": `{"value":[{"id":10,"status":"completed","result":"failed"}]}`,
		"2": `{"value":[{"id":11,"status":"inProgress"}]}`,
		"3": `{"value":[]}`,
		"4": `{"value":[{"id":12,"status":"completed"}]}`,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/my-org/my-project/_apis/build/builds", r.URL.Path)
		lastQuery = r.URL.RawQuery
		lastAuth = r.Header.Get("Authorization")

		body, ok := builds[r.URL.Query().Get("definitions")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(body))
	}))
	defer server.Close()

	client := NewAzureClient(server.URL, "my-org", "my-project", "pat", nil)

	s, err := client.LatestBuildStatus(context.Background(), "1", "")
	assert.Nil(t, err)
	assert.Equal(t, "failed", s)
	assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte(":pat")), lastAuth)
	assert.Equal(t, "definitions=1&$top=1&api-version=7.0", lastQuery)

	s, err = client.LatestBuildStatus(context.Background(), "2", "release/1.0")
	assert.Nil(t, err)
	assert.Equal(t, "inProgress", s)
	assert.Contains(t, lastQuery, "branchName=refs/heads/release%2F1.0")

	s, err = client.LatestBuildStatus(context.Background(), "3", "")
	assert.Nil(t, err)
	assert.Equal(t, "none", s)

	s, err = client.LatestBuildStatus(context.Background(), "4", "")
	assert.Nil(t, err)
	assert.Equal(t, "unknown", s)

	_, err = client.LatestBuildStatus(context.Background(), "5", "")
	assert.NotNil(t, err)
}

func Test_activePullRequestsAndReviewers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/my-org/my-project/_apis/git/pullrequests":
			assert.Equal(t, "active", r.URL.Query().Get("searchCriteria.status"))
			w.Write([]byte(`{"value":[
				{"pullRequestId":7,"title":"Fix","isDraft":true,"repository":{"id":"r1","name":"api"},"createdBy":{"displayName":"Jane Doe","uniqueName":"jane@example.com"}},
				{"pullRequestId":8,"title":"Feature","repository":{"id":"r2","name":"web"},"createdBy":{"displayName":"Bob","uniqueName":"bob@example.com"}}
			]}`))
		case "/my-org/_apis/git/repositories/r2/pullRequests/8/reviewers":
			w.Write([]byte(`{"value":[{"displayName":"Jane Doe","uniqueName":"jane@example.com","vote":10}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewAzureClient(server.URL, "my-org", "my-project", "pat", nil)

	prs, err := client.ActivePullRequests(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, 2, len(prs))
	assert.True(t, prs[0].IsDraft)
	assert.Equal(t, "api", prs[0].RepoName)
	assert.Equal(t, "jane@example.com", prs[0].AuthorID)

	reviewers, err := client.Reviewers(context.Background(), "r2", 8)
	assert.Nil(t, err)
	assert.Equal(t, []Reviewer{{DisplayName: "Jane Doe", UniqueName: "jane@example.com", Vote: 10}}, reviewers)
}

func Test_projectAvatar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/my-org/_apis/projects/my project":
			w.Write([]byte(`{"id":"p1","name":"my project","defaultTeam":{"id":"team-1"}}`))
		case "/my-org/_apis/GraphProfile/MemberAvatars/team-1":
			w.Write([]byte("avatar-bytes"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewAzureClient(server.URL, "my-org", "my project", "pat", nil)
	avatar, err := client.ProjectAvatar(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, []byte("avatar-bytes"), avatar)

	client = NewAzureClient(server.URL, "other-org", "my project", "pat", nil)
	_, err = client.ProjectAvatar(context.Background())
	assert.NotNil(t, err)
}

func Test_browserURLs(t *testing.T) {
	client := NewAzureClient("", "my-org", "my-project", "pat", nil)
	assert.Equal(t, "https://dev.azure.com/my-org/my-project/_build?definitionId=42", client.BuildsURL("42"))
	assert.Equal(t, "https://dev.azure.com/my-org/my-project/_build", client.BuildsURL(""))
	assert.Equal(t, "https://dev.azure.com/my-org/my-project/_git/api/pullrequests?_a=active", client.PullRequestsURL("api"))
}
