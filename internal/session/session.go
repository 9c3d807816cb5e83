// Package session tracks the agents this client controls and works out the
// viewing orientation for each request.
package session

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/nknight/playclient/internal/api"
	"github.com/nknight/playclient/internal/board"
)

var (
	// ErrOrientationIndeterminate is returned when a snapshot lacks the
	// fields needed to pick an orientation.
	ErrOrientationIndeterminate = errors.New("orientation indeterminate")
	// ErrNoActiveAgent is returned when no agent has been activated.
	ErrNoActiveAgent = errors.New("no active agent")
	// ErrAgentIndex is returned for an out-of-range agent index.
	ErrAgentIndex = errors.New("agent index out of range")
)

// Agent is one seat this client holds in a game.
type Agent struct {
	Href   string
	ID     uuid.UUID
	Role   string
	GameID string
}

// ParseAgent extracts the agent id from a reference-handle such as
// "/agents/<uuid>".
func ParseAgent(href string) (Agent, error) {
	id, err := uuid.Parse(path.Base(strings.TrimSuffix(href, "/")))
	if err != nil {
		return Agent{}, fmt.Errorf("agent href %q: %w", href, err)
	}
	return Agent{Href: href, ID: id}, nil
}

// Context holds the agent list and the active selection. It is owned by the
// command loop; one mutex covers every read-decide-act sequence.
type Context struct {
	mu     sync.Mutex
	agents []Agent
	active int
}

// New creates a Context from persisted reference-handles. Handles that do
// not parse are skipped and returned so the caller can report them.
func New(hrefs []string) (*Context, []string) {
	c := &Context{active: -1}
	var skipped []string
	for _, h := range hrefs {
		a, err := ParseAgent(h)
		if err != nil {
			skipped = append(skipped, h)
			continue
		}
		c.agents = append(c.agents, a)
	}
	return c, skipped
}

// Add appends an agent and returns its index.
func (c *Context) Add(a Agent) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.agents = append(c.agents, a)
	return len(c.agents) - 1
}

// AddHref parses a reference-handle and appends it. The list is untouched
// when the handle is invalid.
func (c *Context) AddHref(href, role, gameID string) (Agent, int, error) {
	a, err := ParseAgent(href)
	if err != nil {
		return Agent{}, -1, err
	}
	a.Role = role
	a.GameID = gameID
	return a, c.Add(a), nil
}

// Hrefs returns the reference-handles in order, for persistence.
func (c *Context) Hrefs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.agents))
	for i, a := range c.agents {
		out[i] = a.Href
	}
	return out
}

// Activate selects the agent at index i.
func (c *Context) Activate(i int) (Agent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.agents) {
		return Agent{}, fmt.Errorf("%w: %d of %d", ErrAgentIndex, i, len(c.agents))
	}
	c.active = i
	return c.agents[i], nil
}

// Active returns the active agent.
func (c *Context) Active() (Agent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active < 0 || c.active >= len(c.agents) {
		return Agent{}, ErrNoActiveAgent
	}
	return c.agents[c.active], nil
}

// Orientation returns the viewing orientation of the agent with the given id
// for a snapshot. The viewer is Primary when "viewer is active" equals
// "active agent is Primary", Mirrored otherwise. It must be recomputed for
// every snapshot.
func Orientation(agentID uuid.UUID, snap *api.GameSnapshot) (board.Orientation, error) {
	if snap == nil {
		return 0, fmt.Errorf("%w: no snapshot", ErrOrientationIndeterminate)
	}
	if snap.ActiveAgentPurple == nil {
		return 0, fmt.Errorf("%w: game %q has no ActiveAgentPurple", ErrOrientationIndeterminate, snap.GameID)
	}
	if snap.ActiveAgent == "" {
		return 0, fmt.Errorf("%w: game %q has no ActiveAgent", ErrOrientationIndeterminate, snap.GameID)
	}
	active, err := uuid.Parse(snap.ActiveAgent)
	if err != nil {
		return 0, fmt.Errorf("%w: ActiveAgent %q: %v", ErrOrientationIndeterminate, snap.ActiveAgent, err)
	}
	viewerActive := active == agentID
	return board.OrientationFor(viewerActive == *snap.ActiveAgentPurple), nil
}
