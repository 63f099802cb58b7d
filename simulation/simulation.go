// Package simulation owns the episode controller: it orchestrates one
// simulation tick (agent turns, occupancy refresh, timer-gated fire spread)
// and the episode lifecycle, including the explicit Q-table hand-off across
// resets. Everything runs fully synchronously on the caller's goroutine; a
// tick always completes before control returns, so the shared table needs no
// locking — the fixed agent turn order is the concurrency contract.
package simulation

import (
	"math/rand"

	"wildfire/forest"
	"wildfire/reinforcement"
)

// Hyper bundles the learning hyperparameters applied to every agent in a
// cohort.
type Hyper struct {
	Alpha, Gamma, Epsilon float64
}

func DefaultHyper() Hyper {
	return Hyper{
		Alpha:   reinforcement.DEFAULT_ALPHA,
		Gamma:   reinforcement.DEFAULT_GAMMA,
		Epsilon: reinforcement.DEFAULT_EPSILON,
	}
}

// Simulation is one wildfire episode in progress: terrain, fire dynamics, and
// the agent cohort sharing a single Q-table.
type Simulation struct {
	Grid   *forest.Grid
	Fire   *forest.FireDynamics
	Agents []*reinforcement.Agent
	Table  reinforcement.QTable

	Episode   int
	StepCount int

	scenario ScenarioConfig
	hyper    Hyper
	rng      *rand.Rand
}

// New builds a fresh environment and cohort per the scenario. Pass a non-nil
// carry table to seed the cohort with previously learned values; nil starts
// learning from scratch.
func New(scenario ScenarioConfig, hyper Hyper, carry reinforcement.QTable, rng *rand.Rand) *Simulation {
	s := &Simulation{
		scenario: clampScenario(scenario),
		hyper:    hyper,
		rng:      rng,
		Episode:  1,
	}
	s.build(carry)
	return s
}

// Reset discards the burned forest and starts the next episode with a fresh
// terrain and cohort. The learned table is threaded through by explicit
// hand-off: pass s.Table to carry it forward, nil to discard it.
func (s *Simulation) Reset(carry reinforcement.QTable) {
	s.Episode++
	s.StepCount = 0
	s.build(carry)
}

func (s *Simulation) build(carry reinforcement.QTable) {
	sc := s.scenario
	s.Grid = forest.NewGrid(sc.GridSize, sc.GridSize)
	s.Grid.Generate(sc.TreeDensity, s.rng)
	s.Fire = forest.NewFireDynamics(s.Grid, sc.FireSpreadRadius, sc.SpreadDelay)
	s.Fire.SeedInitialFires(sc.InitialFireCount, s.rng)

	if carry == nil {
		carry = reinforcement.NewQTable()
	}
	s.Table = carry

	s.Agents = nil
	for _, p := range startPositions(sc.GridSize, sc.GridSize) {
		s.AddAgent(p.X, p.Y)
	}
}

// startPositions are the cohort's fixed strategic starting coordinates: the
// two upper corners and the middle of the lower edge, inset by a fifth of the
// grid.
func startPositions(width, height int) []forest.Point {
	margin := width / 5
	return []forest.Point{
		{X: margin, Y: margin},
		{X: width - margin, Y: margin},
		{X: width / 2, Y: height - margin},
	}
}

// AddAgent creates an agent sharing the cohort's table and places it at the
// requested coordinate, relocating to the nearest empty cell if occupied (see
// forest.Grid.PlaceAgent). When no empty cell exists within the search radius
// the agent silently never joins the cohort; callers must tolerate that.
func (s *Simulation) AddAgent(x, y int) *reinforcement.Agent {
	px, py, ok := s.Grid.PlaceAgent(x, y)
	if !ok {
		return nil
	}
	agent := reinforcement.NewAgent(px, py, s.Table, s.rng)
	agent.ExtinguishingRadius = s.scenario.ExtinguishingRadius
	agent.Alpha = s.hyper.Alpha
	agent.Gamma = s.hyper.Gamma
	agent.Epsilon = s.hyper.Epsilon
	s.Agents = append(s.Agents, agent)
	return agent
}

// Step advances the simulation by one tick, in this exact order:
//  1. lift every agent's occupancy marker (only cells currently showing one);
//  2. each agent runs its full decide-act-learn turn before the next begins,
//     so an earlier agent's extinguish changes what later agents observe;
//  3. re-mark occupancy at the (possibly new) positions, empty cells only;
//  4. advance the fire-spread timer, spreading once per configured delay.
//
// Episode termination is evaluated by the caller via Done, not here.
func (s *Simulation) Step() {
	for _, a := range s.Agents {
		s.Grid.ClearAgentMarker(a.X, a.Y)
	}

	for _, a := range s.Agents {
		a.Step(s.Grid)
	}

	for _, a := range s.Agents {
		s.Grid.MarkAgent(a.X, a.Y)
	}

	s.Fire.Advance()
	s.StepCount++
}

// Done reports whether the episode is over, i.e. the forest has burned down.
func (s *Simulation) Done() bool {
	return s.Grid.FireEngulfed()
}

func clampScenario(sc ScenarioConfig) ScenarioConfig {
	if sc.TreeDensity < 0 {
		sc.TreeDensity = 0
	}
	if sc.TreeDensity > 1 {
		sc.TreeDensity = 1
	}
	if sc.ExtinguishingRadius <= 0 {
		sc.ExtinguishingRadius = reinforcement.DEFAULT_EXTINGUISHING_RADIUS
	}
	// Spread radius and delay are clamped by forest.NewFireDynamics.
	return sc
}
