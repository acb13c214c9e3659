// Copyright 2021 Laszlo Fogas
// Original structure Copyright 2018 Drone.IO Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/keboo/deckstatus/pkg/plugin"
)

const (
	pathButtons       = "%s/api/buttons"
	pathButtonRefresh = "%s/api/buttons/%s/refresh"
)

type client struct {
	client *http.Client
	addr   string
}

// New returns a client at the specified url.
func New(uri string) Client {
	return &client{http.DefaultClient, strings.TrimSuffix(uri, "/")}
}

// NewClient returns a client at the specified url.
func NewClient(uri string, cli *http.Client) Client {
	return &client{cli, strings.TrimSuffix(uri, "/")}
}

func (c *client) ButtonsGet() ([]plugin.ButtonState, error) {
	var out []plugin.ButtonState
	uri := fmt.Sprintf(pathButtons, c.addr)
	err := c.get(uri, &out)
	if out == nil {
		out = []plugin.ButtonState{}
	}
	return out, err
}

func (c *client) ButtonRefresh(context string) error {
	uri := fmt.Sprintf(pathButtonRefresh, c.addr, url.PathEscape(context))
	return c.do(uri, http.MethodPost, nil)
}

//
// http request helper functions
//

func (c *client) get(rawURL string, out interface{}) error {
	return c.do(rawURL, http.MethodGet, out)
}

func (c *client) do(rawURL, method string, out interface{}) error {
	body, err := c.open(rawURL, method)
	if err != nil {
		return err
	}
	defer body.Close()

	bodyBytes, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	return json.Unmarshal(bodyBytes, out)
}

func (c *client) open(rawURL, method string) (io.ReadCloser, error) {
	uri, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(method, uri.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode > http.StatusPartialContent {
		defer resp.Body.Close()
		out, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("client error %d: %s", resp.StatusCode, strings.TrimSpace(string(out)))
	}
	return resp.Body, nil
}
