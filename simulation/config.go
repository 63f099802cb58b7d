package simulation

import (
	"context"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// OuterConfig is the kind/def envelope every config file carries.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// TrainingConfig encodes scenario and training parameters outside of code:
// standard RL hyperparams (alpha, gamma, epsilon), the wildfire scenario
// shape, and an optional training deadline.
type TrainingConfig struct {
	// HyperParams is a key-val pair list of param names and their values.
	// The loader lowercases keys before the inner yaml decode, so the inner
	// structs rely on yaml's default lowercase field matching, not tags.
	HyperParams []HyperParameter `mapstructure:"hyperParams"`
	// Scenario describes the forest and fire dynamics to simulate.
	Scenario ScenarioConfig `mapstructure:"scenario"`
	// TrainingDeadline is a duration string describing when to stop training.
	TrainingDeadline map[string]string `mapstructure:"trainingDeadline"`
}

type HyperParameter struct {
	Key string  `yaml:"key"`
	Val float64 `yaml:"val"`
}

// ScenarioConfig holds the environment construction options. Out-of-range
// values are clamped at construction time, never rejected.
type ScenarioConfig struct {
	GridSize            int
	TreeDensity         float64
	FireSpreadRadius    int
	SpreadDelay         int
	InitialFireCount    int
	ExtinguishingRadius int
	// Seed fixes the run's randomness; zero means seed from the clock.
	Seed int64
}

// DefaultScenario is the reference wildfire setup: a 150x150 forest at 30%
// density, fire jumping up to 3 cells every 30 steps, 5 initial fronts.
func DefaultScenario() ScenarioConfig {
	return ScenarioConfig{
		GridSize:            150,
		TreeDensity:         0.3,
		FireSpreadRadius:    3,
		SpreadDelay:         30,
		InitialFireCount:    5,
		ExtinguishingRadius: 4,
	}
}

func (cfg *TrainingConfig) GetHyperParamOrDefault(param string, defaultVal float64) float64 {
	for _, kvp := range cfg.HyperParams {
		if kvp.Key == param {
			return kvp.Val
		}
	}
	return defaultVal
}

// WithTrainingDeadline returns a context extended by the training deadline,
// if one is specified.
func (cfg *TrainingConfig) WithTrainingDeadline(
	ctx context.Context,
) (context.Context, context.CancelFunc, error) {
	if val, ok := cfg.TrainingDeadline["duration"]; ok {
		duration, err := time.ParseDuration(val)
		if err != nil {
			return nil, nil, err
		}
		innerCtx, cancel := context.WithTimeout(ctx, duration)
		return innerCtx, cancel, nil
	}
	defaultCtx, cancel := context.WithCancel(ctx)
	return defaultCtx, cancel, nil
}

// FromYaml loads a TrainingConfig from the kind/def envelope at path. The def
// payload is re-marshaled and decoded as yaml; since viper lowercases every
// key on read, the inner decode matches yaml's default lowercased field
// names.
func FromYaml(path string) (*TrainingConfig, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	var err error
	if err = vp.ReadInConfig(); err != nil {
		return nil, err
	}

	outerConfig := &OuterConfig{}
	if err = vp.Unmarshal(outerConfig); err != nil {
		return nil, err
	}

	var def []byte
	if def, err = yaml.Marshal(outerConfig.Def); err != nil {
		return nil, err
	}

	innerConfig := &TrainingConfig{}
	if err = yaml.Unmarshal(def, innerConfig); err != nil {
		return nil, err
	}

	return innerConfig, nil
}
