package customGithub

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/keboo/api/actions/workflows/ci.yml/runs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))
		if r.URL.Query().Get("branch") == "main" {
			fmt.Fprint(w, `{"total_count":1,"workflow_runs":[{"id":1,"status":"completed","conclusion":"failure"}]}`)
			return
		}
		fmt.Fprint(w, `{"total_count":1,"workflow_runs":[{"id":2,"status":"in_progress"}]}`)
	})
	mux.HandleFunc("/repos/keboo/api/actions/workflows/1234/runs", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total_count":1,"workflow_runs":[{"id":3,"status":"completed","conclusion":"success"}]}`)
	})
	mux.HandleFunc("/repos/keboo/api/actions/runs", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total_count":0,"workflow_runs":[]}`)
	})
	mux.HandleFunc("/repos/keboo/web/actions/workflows/ci.yml/runs", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})
	return httptest.NewServer(mux)
}

func Test_latestRunStatus(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	client, err := NewGithubClient(context.Background(), server.URL, "", "token")
	assert.Nil(t, err)

	s, err := client.LatestRunStatus(context.Background(), "keboo", "api", "ci.yml", "main")
	assert.Nil(t, err)
	assert.Equal(t, "failure", s)

	s, err = client.LatestRunStatus(context.Background(), "keboo", "api", "ci.yml", "")
	assert.Nil(t, err)
	assert.Equal(t, "in_progress", s)

	s, err = client.LatestRunStatus(context.Background(), "keboo", "api", "1234", "")
	assert.Nil(t, err)
	assert.Equal(t, "success", s)

	s, err = client.LatestRunStatus(context.Background(), "keboo", "api", "", "")
	assert.Nil(t, err)
	assert.Equal(t, "none", s)

	_, err = client.LatestRunStatus(context.Background(), "keboo", "web", "ci.yml", "")
	assert.NotNil(t, err)
}

func Test_ownerAvatar(t *testing.T) {
	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/users/keboo", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"login":"keboo","avatar_url":"%s/avatars/keboo.png"}`, server.URL)
	})
	mux.HandleFunc("/avatars/keboo.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png"))
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	client, err := NewGithubClient(context.Background(), server.URL+"/", "", "")
	assert.Nil(t, err)

	avatar, err := client.OwnerAvatar(context.Background(), "keboo")
	assert.Nil(t, err)
	assert.Equal(t, []byte("png"), avatar)

	_, err = client.OwnerAvatar(context.Background(), "nobody")
	assert.NotNil(t, err)
}

func Test_browserURLs(t *testing.T) {
	client, err := NewGithubClient(context.Background(), "", "", "")
	assert.Nil(t, err)

	assert.Equal(t, "https://github.com/keboo/api/actions", client.ActionsURL("keboo", "api", "", ""))
	assert.Equal(t, "https://github.com/keboo/api/actions/workflows/ci.yml", client.ActionsURL("keboo", "api", "ci.yml", ""))
	assert.Equal(t, "https://github.com/keboo/api/actions/workflows/ci.yml?query=branch%3Amain", client.ActionsURL("keboo", "api", "ci.yml", "main"))
	assert.Equal(t, "https://github.com/keboo/api", client.RepoURL("keboo", "api"))
}

func Test_splitRepo(t *testing.T) {
	owner, name := SplitRepo("keboo", "api")
	assert.Equal(t, "keboo", owner)
	assert.Equal(t, "api", name)

	owner, name = SplitRepo("keboo", "other/web")
	assert.Equal(t, "other", owner)
	assert.Equal(t, "web", name)

	owner, name = SplitRepo("keboo", "https://github.com/other/web.git")
	assert.Equal(t, "other", owner)
	assert.Equal(t, "web", name)

	owner, name = SplitRepo("", "git@github.com:other/web.git")
	assert.Equal(t, "other", owner)
	assert.Equal(t, "web", name)
}
