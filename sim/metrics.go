// Derived aggregate metrics over the engine's public state.

package sim

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// AverageWaitingTime is the mean of start - arrival across finished
// processes. Processes that never entered the CPU ready path are skipped
// from both the numerator and the denominator.
func (e *Engine) AverageWaitingTime() float64 {
	var samples []float64
	for _, p := range e.finished {
		start, ok := p.StartTime()
		if !ok {
			continue
		}
		samples = append(samples, float64(start-p.Arrival))
	}
	if len(samples) == 0 {
		return 0
	}
	return stat.Mean(samples, nil)
}

// AverageTurnaroundTime is the mean of finish - arrival across finished
// processes, with the same skip policy as AverageWaitingTime.
func (e *Engine) AverageTurnaroundTime() float64 {
	var samples []float64
	for _, p := range e.finished {
		finish, ok := p.FinishTime()
		if !ok {
			continue
		}
		samples = append(samples, float64(finish-p.Arrival))
	}
	if len(samples) == 0 {
		return 0
	}
	return stat.Mean(samples, nil)
}

// AverageCPUUsage is the arithmetic mean of the per-core usage samples.
func (e *Engine) AverageCPUUsage() float64 {
	total := 0.0
	for i := range e.cores {
		total += e.cores[i].cpuUsage
	}
	return total / float64(len(e.cores))
}

// Recorder keeps the running maxima the engine itself does not track.
// The driver (or the observer server) calls Observe after every Step.
type Recorder struct {
	MaxWaitingTime    float64
	MaxTurnaroundTime float64
	MaxThroughput     float64
}

// Observe folds the engine's current aggregates into the running maxima.
func (r *Recorder) Observe(e *Engine) {
	if w := e.AverageWaitingTime(); w > r.MaxWaitingTime {
		r.MaxWaitingTime = w
	}
	if t := e.AverageTurnaroundTime(); t > r.MaxTurnaroundTime {
		r.MaxTurnaroundTime = t
	}
	if tp := e.Throughput(); tp > r.MaxThroughput {
		r.MaxThroughput = tp
	}
}

// Reset clears the maxima. Pairs with Engine.Restart.
func (r *Recorder) Reset() {
	*r = Recorder{}
}

// Report assembles the exportable snapshot of a finished run.
func (r *Recorder) Report(e *Engine) *Report {
	return &Report{
		Timer:             e.Timer(),
		SchedulePolicy:    e.Policy().Name(),
		AvgWaitingTime:    uint64(e.AverageWaitingTime()),
		MaxWaitingTime:    uint64(r.MaxWaitingTime),
		AvgTurnaroundTime: uint64(e.AverageTurnaroundTime()),
		MaxTurnaroundTime: uint64(r.MaxTurnaroundTime),
		AvgThroughput:     e.Throughput(),
		MaxThroughput:     r.MaxThroughput,
	}
}

// PrintSummary displays aggregated metrics at the end of a run.
func PrintSummary(e *Engine, r *Recorder) {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Timer                  : %d ticks\n", e.Timer())
	fmt.Printf("Schedule Policy        : %s\n", e.Policy().Name())
	fmt.Printf("Finished Processes     : %d\n", len(e.Finished()))
	fmt.Printf("Average Waiting Time   : %.2f ticks\n", e.AverageWaitingTime())
	fmt.Printf("Average Turnaround     : %.2f ticks\n", e.AverageTurnaroundTime())
	fmt.Printf("Throughput             : %.2f processes/tick\n", e.Throughput())
	fmt.Printf("Max Throughput         : %.2f processes/tick\n", r.MaxThroughput)
}
