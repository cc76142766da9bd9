package optimization

// ProblemType distinguishes the encoding a problem expects.
type ProblemType string

const (
	Continuous    ProblemType = "continuous"
	Combinatorial ProblemType = "combinatorial"
)

// Valid reports whether t is a known problem type.
func (t ProblemType) Valid() bool {
	return t == Continuous || t == Combinatorial
}

// Problem is a benchmark problem instantiated for one job.
type Problem interface {
	// ID returns the problem identifier from configuration.
	ID() string

	// Dimension returns n, fixed at construction.
	Dimension() int

	// Type returns the problem encoding.
	Type() ProblemType

	// Bounds returns the search space bounds with any "nmax" upper bound
	// already resolved.
	Bounds() Bounds

	// Evaluate returns the fitness of values and budget-1. It never checks
	// the budget; callers must not call it with budget <= 0.
	Evaluate(values []float64, budget int) (float64, int)

	// Generator looks up a named candidate generator.
	Generator(name string) (GeneratorFunc, bool)

	// PreProcessing is called at the start of every run.
	PreProcessing(job *JobSpec) error

	// PostProcessing is called once after all runs of a job completed.
	PostProcessing(job *JobSpec, w ReportWriter) error
}

// Discretizer is implemented by combinatorial problems that accept
// continuous random keys and can decode them into a permutation.
type Discretizer interface {
	Discretize(values []float64) []float64
}

// ReportWriter persists tabular rows. It is the only reporting surface a
// problem's post-processing can reach.
type ReportWriter interface {
	WriteReport(rows [][]string, destination string) error
}
