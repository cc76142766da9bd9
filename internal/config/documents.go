package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/copyleftdev/hopbench/internal/errors"
)

// Document file names inside the configuration directory.
const (
	GeneralFile    = "general.yaml"
	ProblemsFile   = "problems.yaml"
	OptimizersFile = "optimizers.yaml"
)

// Documents are the three benchmark definition documents.
type Documents struct {
	General    General
	Problems   map[string]Problem
	Optimizers map[string]Optimizer
}

// General holds the settings shared by every job.
type General struct {
	RunsPerOptimizer int `yaml:"runs_per_optimizer"`
	CompBudgetBase   int `yaml:"comp_budget_base"`
	BitComputing     int `yaml:"bit_computing"`
}

// Bound is a configured bound: a number, or "nmax" for the problem
// dimension.
type Bound struct {
	Value float64
	NMax  bool
	Set   bool
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *Bound) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: bound must be a number or \"nmax\"", node.Line)
	}
	if strings.EqualFold(node.Value, "nmax") {
		*b = Bound{NMax: true, Set: true}
		return nil
	}
	var v float64
	if err := node.Decode(&v); err != nil {
		return fmt.Errorf("line %d: bound must be a number or \"nmax\": %w", node.Line, err)
	}
	*b = Bound{Value: v, Set: true}
	return nil
}

// Benchmark is one benchmark instance of a problem.
type Benchmark struct {
	Enabled         *bool   `yaml:"enabled"`
	Jobs            int     `yaml:"jobs"`
	Machines        int     `yaml:"machines"`
	TimeSeed        int64   `yaml:"time_seed"`
	ProcessingTimes [][]int `yaml:"processing_times"`
	LB              float64 `yaml:"lb"`
	UB              float64 `yaml:"ub"`
}

// IsEnabled reports whether the benchmark is enabled, true when unset.
func (b Benchmark) IsEnabled() bool { return enabled(b.Enabled) }

// Problem is one problem definition.
type Problem struct {
	// Class names the implementation, the problem id when empty.
	Class       string `yaml:"problem"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Enabled     *bool  `yaml:"enabled"`
	N           int    `yaml:"n"`
	LB          Bound  `yaml:"lb"`
	UB          Bound  `yaml:"ub"`

	InertiaCoeff float64 `yaml:"inertia_coeff"`
	LocalCoeff   float64 `yaml:"local_coeff"`
	GlobalCoeff  float64 `yaml:"global_coeff"`

	Benchmarks map[string]Benchmark `yaml:"benchmarks"`
}

// IsEnabled reports whether the problem is enabled, true when unset.
func (p Problem) IsEnabled() bool { return enabled(p.Enabled) }

// Optimizer is one optimizer definition.
type Optimizer struct {
	// Class names the implementation, the optimizer id when empty.
	Class       string `yaml:"optimizer"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Enabled     *bool  `yaml:"enabled"`

	LowLevelSelectionPool []string `yaml:"low_level_selection_pool"`
	LLHSampleRuns         int      `yaml:"llh_sample_runs"`
	LLHSampleBudgetCoeff  float64  `yaml:"llh_sample_budget_coeff"`
	LLHBudgetCoeff        float64  `yaml:"llh_budget_coeff"`

	InitialSample     bool `yaml:"initial_sample"`
	InitialSampleSize int  `yaml:"initial_sample_size"`

	InitialPopSize                int     `yaml:"initial_pop_size"`
	NumberParents                 int     `yaml:"number_parents"`
	NumberChildren                int     `yaml:"number_children"`
	ParentGeneSimilarityThreshold float64 `yaml:"parent_gene_similarity_threshold"`

	Reheat        bool    `yaml:"reheat"`
	InitialTemp   float64 `yaml:"initial_temp"`
	CoolingRate   float64 `yaml:"cooling_rate"`
	TempThreshold float64 `yaml:"temp_threshold"`

	LB Bound `yaml:"lb"`
	UB Bound `yaml:"ub"`

	GeneratorComb string `yaml:"generator_comb"`
	GeneratorCont string `yaml:"generator_cont"`
	Variator      string `yaml:"variator"`
	Crossover     string `yaml:"crossover"`

	Decay          bool    `yaml:"decay"`
	DecayCoeff     float64 `yaml:"decay_coeff"`
	MutationFactor float64 `yaml:"mutation_factor"`
	CrossoverRate  float64 `yaml:"crossover_rate"`
}

// IsEnabled reports whether the optimizer runs standalone, true when
// unset. Disabled optimizers stay available as low-level heuristics.
func (o Optimizer) IsEnabled() bool { return enabled(o.Enabled) }

func enabled(b *bool) bool { return b == nil || *b }

// LoadDocuments reads and validates the three documents from dir.
func LoadDocuments(dir string) (*Documents, error) {
	read := func(name string) ([]byte, error) {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", name).
				WithOperation("LoadDocuments").WithComponent("config").WithPath(path)
		}
		return data, nil
	}

	general, err := read(GeneralFile)
	if err != nil {
		return nil, err
	}
	problems, err := read(ProblemsFile)
	if err != nil {
		return nil, err
	}
	optimizers, err := read(OptimizersFile)
	if err != nil {
		return nil, err
	}
	return ParseDocuments(general, problems, optimizers)
}

// ParseDocuments parses and validates the three documents.
func ParseDocuments(general, problems, optimizers []byte) (*Documents, error) {
	docs := &Documents{}
	if err := yaml.Unmarshal(general, &docs.General); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", GeneralFile).WithComponent("config")
	}
	if err := yaml.Unmarshal(problems, &docs.Problems); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", ProblemsFile).WithComponent("config")
	}
	if err := yaml.Unmarshal(optimizers, &docs.Optimizers); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", OptimizersFile).WithComponent("config")
	}

	if err := validateDocuments(docs); err != nil {
		return nil, errors.Wrap(err, "invalid configuration").WithComponent("config")
	}
	return docs, nil
}

func validateDocuments(docs *Documents) error {
	g := docs.General
	if g.RunsPerOptimizer < 1 {
		return fmt.Errorf("%s: runs_per_optimizer must be >= 1 (got %d)", GeneralFile, g.RunsPerOptimizer)
	}
	if g.CompBudgetBase < 1 {
		return fmt.Errorf("%s: comp_budget_base must be >= 1 (got %d)", GeneralFile, g.CompBudgetBase)
	}
	if g.BitComputing < 0 {
		return fmt.Errorf("%s: bit_computing must be >= 0 (got %d)", GeneralFile, g.BitComputing)
	}

	for _, id := range SortedKeys(docs.Problems) {
		p := docs.Problems[id]
		if p.Type != "continuous" && p.Type != "combinatorial" {
			return fmt.Errorf("%s: problem %q: type must be continuous or combinatorial (got %q)", ProblemsFile, id, p.Type)
		}
		if p.N < 0 {
			return fmt.Errorf("%s: problem %q: n must be >= 0 (got %d)", ProblemsFile, id, p.N)
		}
		if p.LB.NMax {
			return fmt.Errorf("%s: problem %q: lb cannot be nmax", ProblemsFile, id)
		}
		if p.LB.Set && p.UB.Set && !p.UB.NMax && p.LB.Value > p.UB.Value {
			return fmt.Errorf("%s: problem %q: lb %v above ub %v", ProblemsFile, id, p.LB.Value, p.UB.Value)
		}
	}

	for _, id := range SortedKeys(docs.Optimizers) {
		o := docs.Optimizers[id]
		if o.InitialSampleSize < 0 || o.NumberParents < 0 || o.NumberChildren < 0 || o.LLHSampleRuns < 0 {
			return fmt.Errorf("%s: optimizer %q: sizes must be >= 0", OptimizersFile, id)
		}
		if o.CoolingRate < 0 || o.CoolingRate >= 1 {
			return fmt.Errorf("%s: optimizer %q: cooling_rate must be in [0, 1) (got %v)", OptimizersFile, id, o.CoolingRate)
		}
		if o.LB.NMax || o.UB.NMax {
			return fmt.Errorf("%s: optimizer %q: bounds cannot be nmax", OptimizersFile, id)
		}
	}
	return nil
}

// SortedKeys returns the keys of m in order.
func SortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
