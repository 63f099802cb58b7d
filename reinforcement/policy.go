package reinforcement

import (
	"math"
	"math/rand"

	"wildfire/forest"
)

// Hyperparameter defaults, overridable via config.
const (
	DEFAULT_ALPHA   = 0.1 // learning rate
	DEFAULT_GAMMA   = 0.9 // discount factor
	DEFAULT_EPSILON = 0.2 // exploration rate

	DEFAULT_EXTINGUISHING_RADIUS = 4
)

// Rewards. The cluster bonus re-queries the fires still in radius after each
// individual extinguish, so later extinguishes within the same action earn
// smaller bonuses as the cluster shrinks.
const (
	STEP_REWARD              = -0.1
	EXTINGUISH_REWARD        = 10.0
	CLUSTER_BONUS_REWARD     = 5.0
	FAILED_EXTINGUISH_REWARD = -2.0
)

// The detection window is a fixed 5x5 square centered on the agent, used only
// for state representation. It is deliberately smaller than, and independent
// of, the extinguishing radius.
const DETECTION_RANGE = 2

// Coarseness of the position component of the state key.
const positionBucket = 10

// Environment is the read/write handle an agent holds during its turn. The
// forest grid satisfies it; tests may substitute fakes.
type Environment interface {
	InBounds(x, y int) bool
	CellAt(x, y int) rune
	IsBurning(x, y int) bool
	Extinguish(x, y int) bool
}

// Agent is a firefighter holding a reference to the cohort's shared Q-table,
// never a private copy. Agents are recreated each episode; the table is
// threaded through resets by explicit hand-off.
type Agent struct {
	X, Y                int
	ExtinguishingRadius int
	Alpha               float64
	Gamma               float64
	Epsilon             float64

	// QTable is shared by reference across the cohort.
	QTable QTable

	// ExtinguishedCount is monotonically non-decreasing over the agent's life.
	ExtinguishedCount int
	// LastReward is the most recent scalar reward, diagnostic only.
	LastReward float64

	rng *rand.Rand
}

// NewAgent creates an agent at the requested coordinates sharing the given
// table. The rng is threaded explicitly for reproducible exploration.
func NewAgent(x, y int, table QTable, rng *rand.Rand) *Agent {
	return &Agent{
		X:                   x,
		Y:                   y,
		ExtinguishingRadius: DEFAULT_EXTINGUISHING_RADIUS,
		Alpha:               DEFAULT_ALPHA,
		Gamma:               DEFAULT_GAMMA,
		Epsilon:             DEFAULT_EPSILON,
		QTable:              table,
		rng:                 rng,
	}
}

// Observe builds the coarse state key from the agent's current vantage:
// position bucket plus the offsets of every burning cell in the detection
// window (origin excluded), in scan order.
func (a *Agent) Observe(env Environment) State {
	offsets := [][2]int{}
	for dx := -DETECTION_RANGE; dx <= DETECTION_RANGE; dx++ {
		for dy := -DETECTION_RANGE; dy <= DETECTION_RANGE; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := a.X+dx, a.Y+dy
			if env.InBounds(nx, ny) && env.IsBurning(nx, ny) {
				offsets = append(offsets, [2]int{dx, dy})
			}
		}
	}
	return State{
		CX:    a.X / positionBucket,
		CY:    a.Y / positionBucket,
		Fires: encodeFireOffsets(offsets),
	}
}

// ChooseAction is epsilon-greedy: with probability epsilon a uniform random
// action, otherwise the stable argmax over the shared table.
func (a *Agent) ChooseAction(state State) Action {
	if a.rng.Float64() < a.Epsilon {
		return Actions[a.rng.Intn(NUM_ACTIONS)]
	}
	return a.QTable.BestAction(state)
}

// firesInRadius returns every burning cell within the extinguishing radius
// (Euclidean, inclusive), in the sweep order of the bounding square.
func (a *Agent) firesInRadius(env Environment) (fires []forest.Point) {
	r := a.ExtinguishingRadius
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			if math.Sqrt(float64(dx*dx+dy*dy)) > float64(r) {
				continue
			}
			nx, ny := a.X+dx, a.Y+dy
			if env.InBounds(nx, ny) && env.IsBurning(nx, ny) {
				fires = append(fires, forest.Point{X: nx, Y: ny})
			}
		}
	}
	return
}

// Apply executes the action against the environment and returns the reward.
// Movement shifts one cell unless the destination is out of bounds or a tree,
// in which case the move is absorbed with no extra penalty beyond the flat
// per-step cost. EXTINGUISH puts out every fire in radius one at a time,
// earning +10 per cell plus a bonus of 5 per fire still in radius after that
// particular extinguish; an EXTINGUISH that puts out nothing has its reward
// overwritten to -2, replacing the baseline entirely.
func (a *Agent) Apply(action Action, env Environment) float64 {
	dx, dy := 0, 0
	reward := STEP_REWARD

	switch action {
	case UP:
		dy = -1
	case DOWN:
		dy = 1
	case LEFT:
		dx = -1
	case RIGHT:
		dx = 1
	case EXTINGUISH:
		extinguished := false
		for _, f := range a.firesInRadius(env) {
			if env.Extinguish(f.X, f.Y) {
				a.ExtinguishedCount++
				reward += EXTINGUISH_REWARD
				// Re-query after the event: the shrinking cluster compounds
				// the bonus downward across one action's sweep.
				reward += CLUSTER_BONUS_REWARD * float64(len(a.firesInRadius(env)))
				extinguished = true
			}
		}
		if !extinguished {
			reward = FAILED_EXTINGUISH_REWARD
		}
	case STAY:
	}

	newX, newY := a.X+dx, a.Y+dy
	if env.InBounds(newX, newY) && env.CellAt(newX, newY) != forest.TREE {
		a.X, a.Y = newX, newY
	}
	return reward
}

// Learn applies the one-step Q-learning update,
// Q[s][a] += alpha * (r + gamma * max_a' Q[s'][a'] - Q[s][a]),
// lazily initializing both rows, and records the reward for diagnostics.
func (a *Agent) Learn(state State, action Action, reward float64, nextState State) {
	row := a.QTable.Row(state)
	maxNext := a.QTable.MaxValue(nextState)

	oldQ := row[action]
	row[action] = oldQ + a.Alpha*(reward+a.Gamma*maxNext-oldQ)
	a.LastReward = reward
}

// Step runs one full decide-act-learn turn: observe, select, apply, observe
// the successor, update. Callers must let each agent's turn complete before
// the next agent begins, since an earlier extinguish changes what a later
// agent observes.
func (a *Agent) Step(env Environment) {
	state := a.Observe(env)
	action := a.ChooseAction(state)
	reward := a.Apply(action, env)
	nextState := a.Observe(env)
	a.Learn(state, action, reward, nextState)
}
