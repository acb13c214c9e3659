package plugin

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/keboo/deckstatus/pkg/status"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// button is one visible key on the device
type button struct {
	contextID  string
	actionUUID string
	action     Action
	settings   json.RawMessage

	ctx      context.Context
	cancel   context.CancelFunc
	stopPoll context.CancelFunc
	interval time.Duration

	// generation increases with every refresh, only the newest may render
	generation uint64
	last       *Result
	// lastGeneration is the generation last was produced by
	lastGeneration uint64

	// renderLock orders the key's renders without holding the registry lock
	renderLock sync.Mutex
}

// Registry keeps the state of every visible key and drives their refreshes
type Registry struct {
	host    Outbox
	actions map[string]Action
	clock   clockwork.Clock

	refreshes *prometheus.CounterVec
	perf      *prometheus.HistogramVec

	buttons  map[string]*button
	lock     sync.Mutex
	inFlight sync.WaitGroup
}

func NewRegistry(
	host Outbox,
	actions map[string]Action,
	clock clockwork.Clock,
	refreshes *prometheus.CounterVec,
	perf *prometheus.HistogramVec,
) *Registry {
	return &Registry{
		host:      host,
		actions:   actions,
		clock:     clock,
		refreshes: refreshes,
		perf:      perf,
		buttons:   make(map[string]*button),
	}
}

// Attach starts tracking a key that appeared, renders it and starts polling
func (r *Registry) Attach(ctx context.Context, contextID string, actionUUID string, settings json.RawMessage) {
	action, ok := r.actions[actionUUID]
	if !ok {
		logrus.Warnf("unknown action %s", actionUUID)
		return
	}

	r.Detach(contextID)

	buttonCtx, cancel := context.WithCancel(ctx)
	b := &button{
		contextID:  contextID,
		actionUUID: actionUUID,
		action:     action,
		settings:   settings,
		ctx:        buttonCtx,
		cancel:     cancel,
	}

	r.lock.Lock()
	r.buttons[contextID] = b
	r.startPolling(b)
	r.lock.Unlock()

	logrus.WithFields(logrus.Fields{"context": contextID, "action": actionUUID}).Debug("attached")
	r.Refresh(contextID)
}

// Detach stops polling and drops any refresh still running for the key
func (r *Registry) Detach(contextID string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	b, ok := r.buttons[contextID]
	if !ok {
		return
	}
	r.stopPolling(b)
	b.cancel()
	delete(r.buttons, contextID)

	logrus.WithFields(logrus.Fields{"context": contextID, "action": b.actionUUID}).Debug("detached")
}

// UpdateSettings replaces the key's settings, refreshes it and restarts polling
func (r *Registry) UpdateSettings(contextID string, settings json.RawMessage) {
	r.lock.Lock()
	b, ok := r.buttons[contextID]
	if !ok {
		r.lock.Unlock()
		logrus.Debugf("settings for unknown key %s", contextID)
		return
	}
	b.settings = settings
	r.stopPolling(b)
	r.startPolling(b)
	r.lock.Unlock()

	r.Refresh(contextID)
}

// Refresh starts a refresh of the key in the background
func (r *Registry) Refresh(contextID string) {
	r.lock.Lock()
	b, ok := r.buttons[contextID]
	if !ok {
		r.lock.Unlock()
		return
	}
	b.generation++
	generation := b.generation
	settings := b.settings
	r.inFlight.Add(1)
	r.lock.Unlock()

	go r.refresh(b, generation, settings)
}

// Activate opens the key's browser page
func (r *Registry) Activate(contextID string) {
	r.lock.Lock()
	b, ok := r.buttons[contextID]
	if !ok {
		r.lock.Unlock()
		return
	}
	action, settings, last := b.action, b.settings, b.last
	r.lock.Unlock()

	url := action.URL(settings, last)
	if url == "" {
		logrus.WithField("context", contextID).Debug("nothing to open")
		return
	}
	if err := r.host.OpenURL(url); err != nil {
		logrus.Errorf("could not open %s: %s", url, err)
	}
}

// Wait blocks until running refreshes finish
func (r *Registry) Wait() {
	r.inFlight.Wait()
}

func (r *Registry) refresh(b *button, generation uint64, settings json.RawMessage) {
	defer r.inFlight.Done()

	log := logrus.WithFields(logrus.Fields{
		"context": b.contextID,
		"action":  b.actionUUID,
		"refresh": uuid.New().String(),
	})
	log.Debug("refreshing")

	t0 := time.Now()
	result := b.action.Refresh(b.ctx, settings)
	if r.perf != nil {
		r.perf.WithLabelValues("refresh_" + b.actionUUID).Observe(time.Since(t0).Seconds())
	}
	if r.refreshes != nil {
		r.refreshes.WithLabelValues(b.actionUUID).Inc()
	}

	r.lock.Lock()
	if current, ok := r.buttons[b.contextID]; !ok || current != b {
		r.lock.Unlock()
		log.Debug("key is gone, dropping result")
		return
	}
	if b.generation != generation {
		r.lock.Unlock()
		log.Debugf("dropping stale result of generation %d, latest is %d", generation, b.generation)
		return
	}
	b.last = result
	b.lastGeneration = generation
	r.lock.Unlock()

	b.renderLock.Lock()
	defer b.renderLock.Unlock()
	if !r.isLatest(b, generation) {
		log.Debug("a newer result is being rendered")
		return
	}
	r.render(b.contextID, result)
	log.Tracef("rendered %q", result.Title)
}

func (r *Registry) isLatest(b *button, generation uint64) bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	current, ok := r.buttons[b.contextID]
	return ok && current == b && b.lastGeneration == generation
}

func (r *Registry) render(contextID string, result *Result) {
	if err := r.host.SetTitle(contextID, result.Title); err != nil {
		logrus.Errorf("could not set title: %s", err)
	}
	if result.Image == "" {
		return
	}
	if err := r.host.SetImage(contextID, result.Image); err != nil {
		logrus.Errorf("could not set image: %s", err)
	}
}

func (r *Registry) startPolling(b *button) {
	b.interval = b.action.Interval(b.settings)
	if b.interval <= 0 {
		b.stopPoll = nil
		return
	}

	pollCtx, stop := context.WithCancel(b.ctx)
	b.stopPoll = stop
	ticker := r.clock.NewTicker(b.interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.Chan():
				r.Refresh(b.contextID)
			}
		}
	}()
}

func (r *Registry) stopPolling(b *button) {
	if b.stopPoll != nil {
		b.stopPoll()
		b.stopPoll = nil
	}
}

// ButtonState is the externally visible state of a key
type ButtonState struct {
	Context        string              `json:"context"`
	Action         string              `json:"action"`
	Interval       string              `json:"interval,omitempty"`
	Title          string              `json:"title"`
	HasImage       bool                `json:"hasImage"`
	Statuses       []status.Normalized `json:"statuses,omitempty"`
	PriorityTarget *status.Target      `json:"priorityTarget,omitempty"`
}

// Buttons lists the keys sorted by context
func (r *Registry) Buttons() []ButtonState {
	r.lock.Lock()
	defer r.lock.Unlock()

	states := []ButtonState{}
	for _, b := range r.buttons {
		state := ButtonState{
			Context: b.contextID,
			Action:  b.actionUUID,
		}
		if b.interval > 0 {
			state.Interval = b.interval.String()
		}
		if b.last != nil {
			state.Title = b.last.Title
			state.HasImage = b.last.Image != ""
			if b.last.Snapshot != nil && len(b.last.Snapshot.Targets) > 0 {
				state.Statuses = b.last.Snapshot.Statuses
				target := b.last.Snapshot.PriorityTarget()
				state.PriorityTarget = &target
			}
		}
		states = append(states, state)
	}

	sort.Slice(states, func(i, j int) bool {
		return states[i].Context < states[j].Context
	})
	return states
}
