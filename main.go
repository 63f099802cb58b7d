/*
Wildfire is a cooperative multi-agent reinforcement learning simulation: a
cohort of firefighter agents roams a procedurally generated forest, detecting
and extinguishing a spreading wildfire while learning a single shared policy
(a tabular Q function) across episodes. The simulation itself is strictly
single-threaded and turn-based; the goroutines here only wire its snapshots to
the read-only surfaces (websocket/JSON server, xlsx + chart collector, console
stats). Rendering is left to an external client of the snapshot feed.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sync"
	"time"

	"wildfire/collector"
	"wildfire/server"
	"wildfire/simulation"

	"github.com/logrusorgru/aurora"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

const (
	// Snapshots are published to the feed every this many simulation steps;
	// copying the full grid every step would dominate the run.
	snapshotInterval = 10
	// Console stats cadence.
	statsPeriod = 2 * time.Second
)

var (
	host        *string
	port        *string
	configPath  *string
	reportDir   *string
	maxEpisodes *int
	addr        string
)

func init() {
	host = flag.String("host", "", "The host ip")
	port = flag.String("port", "8080", "The host port")
	configPath = flag.String("config", "./config.yaml", "Path to the training config")
	reportDir = flag.String("report", "report", "Directory for training reports")
	maxEpisodes = flag.Int("episodes", 0, "Stop after this many episodes (0 = run until deadline)")
	flag.Parse()
	addr = *host + ":" + *port
}

func runApp() (err error) {
	var cfg *simulation.TrainingConfig
	if cfg, err = simulation.FromYaml(*configPath); err != nil {
		return
	}

	appCtx, appCancel := context.WithCancel(context.TODO())
	defer appCancel()

	trainingCtx, trainingCancel, err := cfg.WithTrainingDeadline(appCtx)
	if err != nil {
		return
	}
	defer trainingCancel()

	scenario := cfg.Scenario
	if scenario.GridSize == 0 {
		scenario = simulation.DefaultScenario()
	}
	seed := scenario.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	hyper := simulation.DefaultHyper()
	hyper.Alpha = cfg.GetHyperParamOrDefault("alpha", hyper.Alpha)
	hyper.Gamma = cfg.GetHyperParamOrDefault("gamma", hyper.Gamma)
	hyper.Epsilon = cfg.GetHyperParamOrDefault("epsilon", hyper.Epsilon)

	sim := simulation.New(scenario, hyper, nil, rng)

	if err = os.MkdirAll(*reportDir, 0o755); err != nil {
		return
	}
	var col *collector.Collector
	if col, err = collector.NewCollector(*reportDir); err != nil {
		return
	}

	snapshots := make(chan simulation.Snapshot, 1)
	stats := make(chan collector.EpisodeStats, 8)

	srv := server.NewServer(appCtx, addr, sim.Snapshot(), snapshots)

	// The latest snapshot, shared with the console stats printer.
	var mu sync.Mutex
	latest := sim.Snapshot()
	setLatest := func(snap simulation.Snapshot) {
		mu.Lock()
		latest = snap
		mu.Unlock()
	}
	getLatest := func() simulation.Snapshot {
		mu.Lock()
		defer mu.Unlock()
		return latest
	}

	g, _ := errgroup.WithContext(appCtx)

	g.Go(func() error {
		return srv.Serve(appCtx)
	})

	g.Go(func() error {
		defer col.Close()
		for s := range stats {
			if err := col.Record(s); err != nil {
				return err
			}
		}
		return nil
	})

	g.Go(func() error {
		for range channerics.NewTicker(trainingCtx.Done(), statsPeriod) {
			printStats(getLatest())
		}
		return nil
	})

	g.Go(func() error {
		defer close(stats)
		// Stopping the training stops the app; the server has nothing new to say.
		defer appCancel()
		train(trainingCtx, sim, snapshots, stats, setLatest)
		return nil
	})

	err = g.Wait()
	return
}

// train runs the episode loop: step the simulation until the forest is
// engulfed, record the episode, then reset with the learned table handed
// forward so the cohort keeps improving across episodes.
func train(
	ctx context.Context,
	sim *simulation.Simulation,
	snapshots chan<- simulation.Snapshot,
	stats chan<- collector.EpisodeStats,
	setLatest func(simulation.Snapshot),
) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		sim.Step()

		if sim.StepCount%snapshotInterval == 0 {
			snap := sim.Snapshot()
			setLatest(snap)
			// Never block the simulation on a slow consumer.
			select {
			case snapshots <- snap:
			default:
			}
		}

		if !sim.Done() {
			continue
		}

		snap := sim.Snapshot()
		setLatest(snap)
		select {
		case stats <- collector.EpisodeStats{
			Episode:           snap.Episode,
			Steps:             snap.Step,
			TreesRemaining:    snap.TreesRemaining,
			FiresActive:       snap.FiresActive,
			TotalExtinguished: snap.TotalExtinguished(),
			QTableSize:        snap.QTableSize,
		}:
		case <-ctx.Done():
			return
		}

		log.Printf("episode %d ended after %d steps: %s extinguished, %s states learned",
			snap.Episode, snap.Step,
			aurora.Red(snap.TotalExtinguished()),
			aurora.Blue(snap.QTableSize))

		if *maxEpisodes > 0 && snap.Episode >= *maxEpisodes {
			return
		}
		sim.Reset(sim.Table)
	}
}

func printStats(snap simulation.Snapshot) {
	fmt.Printf("episode %d step %d: %s fires, %s trees, %s extinguished, q-table %s\n",
		snap.Episode, snap.Step,
		aurora.Red(snap.FiresActive),
		aurora.Green(snap.TreesRemaining),
		aurora.Yellow(snap.TotalExtinguished()),
		aurora.Blue(snap.QTableSize))
}

func main() {
	if err := runApp(); err != nil {
		fmt.Println(err)
	}
}
