package problem

import (
	"errors"
	"fmt"
	"math"
)

// Instance is a permutation flow-shop instance: every job visits every
// machine in order and ProcTimes[job*Machines+machine] is the processing
// time of job on machine.
type Instance struct {
	Jobs      int
	Machines  int
	ProcTimes []int
}

// NewInstance validates and returns an instance.
func NewInstance(jobs, machines int, procTimes []int) (*Instance, error) {
	inst := &Instance{Jobs: jobs, Machines: machines, ProcTimes: procTimes}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

// InstanceFromMatrix builds an instance from a machines × jobs matrix, the
// layout benchmark files use.
func InstanceFromMatrix(times [][]int) (*Instance, error) {
	if len(times) == 0 || len(times[0]) == 0 {
		return nil, errors.New("processing times matrix is empty")
	}
	machines, jobs := len(times), len(times[0])
	pt := make([]int, jobs*machines)
	for m, row := range times {
		if len(row) != jobs {
			return nil, fmt.Errorf("processing times row %d has %d jobs, want %d", m, len(row), jobs)
		}
		for j, v := range row {
			pt[j*machines+m] = v
		}
	}
	return NewInstance(jobs, machines, pt)
}

// Validate checks dimensions and that no processing time is negative.
func (inst *Instance) Validate() error {
	if inst == nil {
		return errors.New("instance is nil")
	}
	if inst.Jobs <= 0 {
		return fmt.Errorf("jobs must be > 0 (got %d)", inst.Jobs)
	}
	if inst.Machines <= 0 {
		return fmt.Errorf("machines must be > 0 (got %d)", inst.Machines)
	}
	if len(inst.ProcTimes) != inst.Jobs*inst.Machines {
		return fmt.Errorf("procTimes length must be jobs*machines=%d (got %d)", inst.Jobs*inst.Machines, len(inst.ProcTimes))
	}
	for i, v := range inst.ProcTimes {
		if v < 0 {
			return fmt.Errorf("procTimes[%d] must be >= 0 (got %d)", i, v)
		}
	}
	return nil
}

// Time returns the processing time of job on machine.
func (inst *Instance) Time(job, machine int) int {
	return inst.ProcTimes[job*inst.Machines+machine]
}

// TaillardInstance generates the processing times of a Taillard benchmark
// instance from its time seed. Times are uniform in [1, 99] and drawn
// machine by machine.
func TaillardInstance(jobs, machines int, seed int64) (*Instance, error) {
	if seed <= 0 {
		return nil, fmt.Errorf("time seed must be > 0 (got %d)", seed)
	}
	g := taillardRNG{seed: seed}
	pt := make([]int, jobs*machines)
	for m := 0; m < machines; m++ {
		for j := 0; j < jobs; j++ {
			pt[j*machines+m] = g.unif(1, 99)
		}
	}
	return NewInstance(jobs, machines, pt)
}

// taillardRNG is the Lehmer generator of Taillard's benchmark paper.
type taillardRNG struct {
	seed int64
}

func (g *taillardRNG) unif(low, high int) int {
	const (
		m = 2147483647
		a = 16807
		b = 127773
		c = 2836
	)
	k := g.seed / b
	g.seed = a*(g.seed%b) - k*c
	if g.seed < 0 {
		g.seed += m
	}
	v := float64(g.seed) / m
	return low + int(math.Floor(v*float64(high-low+1)))
}

// Schedule is the timing of every operation under one permutation.
type Schedule struct {
	Order []int
	// Start and End are indexed [position][machine].
	Start    [][]int
	End      [][]int
	Makespan int
}

// Schedule computes the full timing of perm. perm must be a valid
// permutation of the instance's jobs.
func (inst *Instance) Schedule(perm []int) Schedule {
	s := Schedule{
		Order: append([]int(nil), perm...),
		Start: make([][]int, len(perm)),
		End:   make([][]int, len(perm)),
	}
	completion := make([]int, inst.Machines)
	for pos, job := range perm {
		s.Start[pos] = make([]int, inst.Machines)
		s.End[pos] = make([]int, inst.Machines)
		for m := 0; m < inst.Machines; m++ {
			start := completion[m]
			if m > 0 && s.End[pos][m-1] > start {
				start = s.End[pos][m-1]
			}
			completion[m] = start + inst.Time(job, m)
			s.Start[pos][m] = start
			s.End[pos][m] = completion[m]
		}
	}
	s.Makespan = completion[inst.Machines-1]
	return s
}

// ValidatePermutation checks that perm holds every job id in [0, n) once.
func ValidatePermutation(perm []int, n int) error {
	if len(perm) != n {
		return fmt.Errorf("permutation length must be %d (got %d)", n, len(perm))
	}
	seen := make([]bool, n)
	for i, v := range perm {
		if v < 0 || v >= n {
			return fmt.Errorf("perm[%d]=%d out of range [0,%d)", i, v, n)
		}
		if seen[v] {
			return fmt.Errorf("duplicate job id %d in permutation", v)
		}
		seen[v] = true
	}
	return nil
}
