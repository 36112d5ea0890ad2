package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/p2sg/wiseinvestor/internal/types"
)

var (
	// ErrSuperseded is returned when a newer activation replaced the batch
	// before it completed. Its result is discarded.
	ErrSuperseded = errors.New("aggregation superseded by a newer request")

	// ErrNotActivated is returned by Retry before any tab was activated.
	ErrNotActivated = errors.New("no tab has been activated")
)

// Status is the loading state of a View.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Aggregate is the aggregation a View drives. Implemented by *Aggregator.
type Aggregate interface {
	Aggregate(ctx context.Context, tab types.Tab, orgID string, p types.Params) (types.ViewModel, error)
}

// State is a point-in-time copy of a View.
type State struct {
	Tab    types.Tab
	OrgID  string
	Params types.Params
	Status Status
	Model  types.ViewModel
	Err    error
}

// View holds the active tab's model. Only the most recently started batch
// may publish its result, so a slow response for a tab the user already left
// can never overwrite the current one.
type View struct {
	agg Aggregate

	mu         sync.Mutex
	generation uint64
	state      State
}

// NewView creates an idle view over agg.
func NewView(agg Aggregate) *View {
	return &View{agg: agg, state: State{Status: StatusIdle}}
}

// Activate switches to tab and loads it. While loading, the error state is
// cleared; the previous model is kept only if the tab is unchanged.
func (v *View) Activate(ctx context.Context, tab types.Tab, orgID string, p types.Params) (types.ViewModel, error) {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	if v.state.Tab != tab || v.state.OrgID != orgID {
		v.state.Model = nil
	}
	v.state.Tab = tab
	v.state.OrgID = orgID
	v.state.Params = p
	v.state.Status = StatusLoading
	v.state.Err = nil
	v.mu.Unlock()

	model, err := v.agg.Aggregate(ctx, tab, orgID, p)

	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.generation {
		return nil, ErrSuperseded
	}
	if err != nil {
		v.state.Status = StatusError
		v.state.Err = err
		v.state.Model = nil
		return nil, err
	}
	v.state.Status = StatusReady
	v.state.Model = model
	return model, nil
}

// Retry re-runs the last activation with the same tab and parameters.
func (v *View) Retry(ctx context.Context) (types.ViewModel, error) {
	v.mu.Lock()
	if v.state.Tab == "" {
		v.mu.Unlock()
		return nil, ErrNotActivated
	}
	tab, orgID, p := v.state.Tab, v.state.OrgID, v.state.Params
	v.mu.Unlock()

	return v.Activate(ctx, tab, orgID, p)
}

// Refresh reloads the active tab. It behaves like Retry.
func (v *View) Refresh(ctx context.Context) (types.ViewModel, error) {
	return v.Retry(ctx)
}

// State returns a copy of the current state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}
