package status

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Fetcher returns the raw platform status of a single target
type Fetcher func(ctx context.Context, target Target) (string, error)

// Snapshot is the outcome of one refresh cycle of a key
type Snapshot struct {
	Kind     Kind         `json:"kind"`
	Targets  []Target     `json:"targets"`
	Raw      []string     `json:"raw"`
	Statuses []Normalized `json:"statuses"`
	Plan     RenderPlan   `json:"plan"`
}

func (s *Snapshot) PriorityTarget() Target {
	return SelectPriorityTarget(s.Targets, s.Statuses)
}

// Collect fetches every target concurrently and waits for all of them.
// A failing fetch turns into RawUnknown for its own slot only, so Collect
// always returns one status per target.
// With a zero timeout a fetch that never returns stalls the whole cycle.
func Collect(ctx context.Context, kind Kind, targets []Target, fetch Fetcher, timeout time.Duration) *Snapshot {
	raw := make([]string, len(targets))

	var g errgroup.Group
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			fetchCtx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				fetchCtx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			status, err := fetch(fetchCtx, target)
			if err != nil {
				logrus.Warnf("could not fetch %s status of %s: %s", kind, describe(target), err)
				status = RawUnknown
			}
			raw[i] = status
			return nil
		})
	}
	_ = g.Wait()

	statuses := NormalizeAll(raw, kind)
	return &Snapshot{
		Kind:     kind,
		Targets:  targets,
		Raw:      raw,
		Statuses: statuses,
		Plan:     BuildRenderPlan(statuses),
	}
}

func describe(t Target) string {
	name := t.ID
	if t.Repo != "" {
		name = t.Repo + "/" + t.ID
	}
	if t.Branch != "" {
		name = name + "@" + t.Branch
	}
	return name
}
