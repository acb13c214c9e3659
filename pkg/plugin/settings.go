package plugin

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gimlet-io/go-scm/scm"
	"github.com/keboo/deckstatus/pkg/scm/customGithub"
	"github.com/keboo/deckstatus/pkg/status"
	"github.com/sirupsen/logrus"
)

const (
	defaultRefreshMinutes = 5
	minRefreshMinutes     = 1
	maxRefreshMinutes     = 60
)

// Text is a settings value the property inspector may send as a string,
// a number or a bool
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*t = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case 't', 'f':
		*t = Text(data)
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			*t = ""
			return nil
		}
		if f == math.Trunc(f) && math.Abs(f) < 1e15 {
			*t = Text(strconv.FormatInt(int64(f), 10))
		} else {
			*t = Text(strconv.FormatFloat(f, 'f', -1, 64))
		}
	}
	return nil
}

func (t Text) String() string {
	return strings.TrimSpace(string(t))
}

func (t Text) Bool() bool {
	switch strings.ToLower(t.String()) {
	case "", "false", "0":
		return false
	}
	return true
}

// refreshInterval reads the leading integer of the value as minutes.
// Missing, unparsable or zero values mean 5 minutes, the rest is clamped to 1..60.
func refreshInterval(v Text) time.Duration {
	minutes := leadingInt(v.String())
	if minutes == 0 {
		minutes = defaultRefreshMinutes
	}
	if minutes < minRefreshMinutes {
		minutes = minRefreshMinutes
	}
	if minutes > maxRefreshMinutes {
		minutes = maxRefreshMinutes
	}
	return time.Duration(minutes) * time.Minute
}

func leadingInt(s string) int {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsFrom := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsFrom {
		return 0
	}
	if end-digitsFrom > 6 {
		if s[0] == '-' {
			return math.MinInt32
		}
		return math.MaxInt32
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// decodeSettings unmarshals raw settings onto the defaults already in v.
// Broken settings leave the defaults in place.
func decodeSettings(raw json.RawMessage, v interface{}) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return
	}
	if err := json.Unmarshal(raw, v); err != nil {
		logrus.Warnf("could not parse settings: %s", err)
	}
}

type PipelineStatusSettings struct {
	Organization    Text `json:"organization"`
	Project         Text `json:"project"`
	Token           Text `json:"token"`
	Pipeline1       Text `json:"pipeline1"`
	Branch1         Text `json:"branch1"`
	Pipeline2       Text `json:"pipeline2"`
	Branch2         Text `json:"branch2"`
	Pipeline3       Text `json:"pipeline3"`
	Branch3         Text `json:"branch3"`
	RefreshInterval Text `json:"refreshInterval"`
}

func parsePipelineStatusSettings(raw json.RawMessage) PipelineStatusSettings {
	s := PipelineStatusSettings{RefreshInterval: "5"}
	decodeSettings(raw, &s)
	return s
}

// targets skips empty pipeline slots
func (s PipelineStatusSettings) targets() []status.Target {
	slots := [][2]Text{
		{s.Pipeline1, s.Branch1},
		{s.Pipeline2, s.Branch2},
		{s.Pipeline3, s.Branch3},
	}

	var targets []status.Target
	for _, slot := range slots {
		if slot[0].String() == "" {
			continue
		}
		targets = append(targets, status.Target{
			Position: len(targets),
			ID:       slot[0].String(),
			Branch:   slot[1].String(),
		})
	}
	return targets
}

func (s PipelineStatusSettings) complete() bool {
	return s.Organization.String() != "" && s.Project.String() != "" && s.Token.String() != ""
}

type ActionStatusSettings struct {
	Owner           Text `json:"owner"`
	Token           Text `json:"token"`
	RefreshInterval Text `json:"refreshInterval"`
	Repo1           Text `json:"repo1"`
	Workflow1       Text `json:"workflow1"`
	Branch1         Text `json:"branch1"`
	Repo2           Text `json:"repo2"`
	Workflow2       Text `json:"workflow2"`
	Branch2         Text `json:"branch2"`
	Repo3           Text `json:"repo3"`
	Workflow3       Text `json:"workflow3"`
	Branch3         Text `json:"branch3"`

	// single workflow settings of older plugin versions
	Repo     Text `json:"repo"`
	Workflow Text `json:"workflow"`
	Branch   Text `json:"branch"`
}

func parseActionStatusSettings(raw json.RawMessage) ActionStatusSettings {
	s := ActionStatusSettings{RefreshInterval: "5"}
	decodeSettings(raw, &s)

	if s.Repo1 == "" {
		s.Repo1 = s.Repo
	}
	if s.Workflow1 == "" {
		s.Workflow1 = s.Workflow
	}
	if s.Branch1 == "" {
		s.Branch1 = s.Branch
	}
	return s
}

// targets skips slots without a repository. Target.Repo is "owner/name":
// a slot may name another owner than the shared one.
func (s ActionStatusSettings) targets() []status.Target {
	slots := [][3]Text{
		{s.Repo1, s.Workflow1, s.Branch1},
		{s.Repo2, s.Workflow2, s.Branch2},
		{s.Repo3, s.Workflow3, s.Branch3},
	}

	var targets []status.Target
	for _, slot := range slots {
		if slot[0].String() == "" {
			continue
		}
		owner, name := customGithub.SplitRepo(s.Owner.String(), slot[0].String())
		if owner == "" || name == "" {
			continue
		}
		targets = append(targets, status.Target{
			Position: len(targets),
			ID:       slot[1].String(),
			Repo:     scm.Join(owner, name),
			Branch:   slot[2].String(),
		})
	}
	return targets
}

type PRCountSettings struct {
	Organization    Text `json:"organization"`
	Project         Text `json:"project"`
	Token           Text `json:"token"`
	RefreshInterval Text `json:"refreshInterval"`
	ExcludeUsers    Text `json:"excludeUsers"`
	IncludeDrafts   Text `json:"includeDrafts"`
}

func parsePRCountSettings(raw json.RawMessage) PRCountSettings {
	s := PRCountSettings{RefreshInterval: "5", IncludeDrafts: "false"}
	decodeSettings(raw, &s)
	return s
}

func (s PRCountSettings) complete() bool {
	return s.Organization.String() != "" && s.Project.String() != "" && s.Token.String() != ""
}

// excludedUsers is the lowercased, trimmed comma list
func (s PRCountSettings) excludedUsers() []string {
	var users []string
	for _, u := range strings.Split(string(s.ExcludeUsers), ",") {
		u = strings.ToLower(strings.TrimSpace(u))
		if u != "" {
			users = append(users, u)
		}
	}
	return users
}

type OpenRepoSettings struct {
	Owner Text `json:"owner"`
	Repo  Text `json:"repo"`
}

func parseOpenRepoSettings(raw json.RawMessage) OpenRepoSettings {
	var s OpenRepoSettings
	decodeSettings(raw, &s)
	return s
}
