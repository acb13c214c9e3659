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
	"github.com/keboo/deckstatus/pkg/plugin"
)

// Client is used to communicate with a running deckd debug endpoint.
type Client interface {
	// ButtonsGet returns the visible keys and their last refresh.
	ButtonsGet() ([]plugin.ButtonState, error)

	// ButtonRefresh asks for an immediate refresh of a key.
	ButtonRefresh(context string) error
}
