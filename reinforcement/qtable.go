package reinforcement

import (
	"fmt"
	"strings"
)

// Action is one of the six fixed moves an agent may choose each tick. The
// declaration order is the tie-break order for greedy selection: argmax over
// a fresh (all-zero) row yields UP.
type Action int

const (
	UP Action = iota
	DOWN
	LEFT
	RIGHT
	EXTINGUISH
	STAY

	NUM_ACTIONS = 6
)

// Actions lists every action, in selection tie-break order.
var Actions = [NUM_ACTIONS]Action{UP, DOWN, LEFT, RIGHT, EXTINGUISH, STAY}

func (a Action) String() string {
	switch a {
	case UP:
		return "UP"
	case DOWN:
		return "DOWN"
	case LEFT:
		return "LEFT"
	case RIGHT:
		return "RIGHT"
	case EXTINGUISH:
		return "EXTINGUISH"
	case STAY:
		return "STAY"
	}
	return "UNKNOWN"
}

// State is the coarse agent-centric observation used as the shared table key:
// the agent's position bucketed into 10x10 blocks, plus the relative offsets
// of every burning cell within the detection window, encoded in scan order so
// equal fire patterns produce equal keys. Two agents in the same coarse cell
// seeing the same pattern share exactly the same row.
type State struct {
	CX, CY int
	Fires  string
}

// encodeFireOffsets packs window offsets into the stable string form used by
// State.Fires. Offsets must already be in scan order.
func encodeFireOffsets(offsets [][2]int) string {
	var sb strings.Builder
	for _, o := range offsets {
		fmt.Fprintf(&sb, "%d,%d;", o[0], o[1])
	}
	return sb.String()
}

// QTable is the shared value function mapping state -> per-action expected
// discounted return. A cohort shares a single table by reference: any agent's
// update is immediately visible to the others. Agents act strictly
// sequentially within a tick, so no synchronization is layered on top; a
// parallel variant would have to serialize updates to preserve that ordering.
type QTable map[State]*[NUM_ACTIONS]float64

// NewQTable returns an empty table. Rows are inserted lazily on first visit.
func NewQTable() QTable {
	return QTable{}
}

// Row returns the action-value row for s, initializing every action to zero
// on the first visit to an unseen state.
func (q QTable) Row(s State) *[NUM_ACTIONS]float64 {
	row, ok := q[s]
	if !ok {
		row = new([NUM_ACTIONS]float64)
		q[s] = row
	}
	return row
}

// BestAction returns the highest-valued action for s, breaking ties by the
// actions' declaration order (stable argmax).
func (q QTable) BestAction(s State) Action {
	row := q.Row(s)
	best := Actions[0]
	bestVal := row[best]
	for _, a := range Actions[1:] {
		if row[a] > bestVal {
			best = a
			bestVal = row[a]
		}
	}
	return best
}

// MaxValue returns max_a Q[s][a], lazily initializing the row.
func (q QTable) MaxValue(s State) float64 {
	row := q.Row(s)
	max := row[0]
	for _, v := range row[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Size returns the number of distinct states visited, for diagnostics.
func (q QTable) Size() int {
	return len(q)
}
