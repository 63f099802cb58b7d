package simulation

// AgentSnapshot is a read-only view of one agent's position and counters.
type AgentSnapshot struct {
	X                 int     `json:"x"`
	Y                 int     `json:"y"`
	ExtinguishedCount int     `json:"extinguishedCount"`
	LastReward        float64 `json:"lastReward"`
}

// Snapshot is the read-only view handed to the external rendering/driver
// collaborator each tick: grid contents, fire and tree tallies, agent
// positions and counters, and diagnostics. It copies everything it exposes,
// so holders cannot mutate simulation state.
type Snapshot struct {
	Episode        int             `json:"episode"`
	Step           int             `json:"step"`
	Grid           []string        `json:"grid"`
	FiresActive    int             `json:"firesActive"`
	TreesRemaining int             `json:"treesRemaining"`
	Agents         []AgentSnapshot `json:"agents"`
	QTableSize     int             `json:"qTableSize"`
	Done           bool            `json:"done"`
}

// Snapshot captures the current simulation state.
func (s *Simulation) Snapshot() Snapshot {
	agents := make([]AgentSnapshot, 0, len(s.Agents))
	for _, a := range s.Agents {
		agents = append(agents, AgentSnapshot{
			X:                 a.X,
			Y:                 a.Y,
			ExtinguishedCount: a.ExtinguishedCount,
			LastReward:        a.LastReward,
		})
	}
	return Snapshot{
		Episode:        s.Episode,
		Step:           s.StepCount,
		Grid:           s.Grid.Rows(),
		FiresActive:    s.Grid.NumFires(),
		TreesRemaining: s.Grid.TreeCount(),
		Agents:         agents,
		QTableSize:     s.Table.Size(),
		Done:           s.Done(),
	}
}

// TotalExtinguished sums the cohort's extinguish counters.
func (snap Snapshot) TotalExtinguished() (total int) {
	for _, a := range snap.Agents {
		total += a.ExtinguishedCount
	}
	return
}
