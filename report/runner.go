package report

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/swissinfo-ch/skala/store"
	"github.com/swissinfo-ch/skala/worker"
)

type RunnerCfg struct {
	Filename       string
	BlockSize      int
	WorkerPoolSize int
	Jobs           map[string]*Job
}

// Runner reads the whole sample log once per Run and fans the stream
// out to every job. The caller loops Run at its own pace.
type Runner struct {
	filename       string
	blockSize      int
	workerPoolSize int

	mu              sync.RWMutex
	jobs            map[string]*Job
	results         map[string]*Result
	fileSize        int64
	sampleCount     uint32
	lastRunDuration time.Duration
	lastRunTime     time.Time
}

type Job struct {
	Report  Report
	samples chan *store.Sample // closed when the run is over
}

type jobDone struct {
	name   string
	result *Result
}

// NewRunner creates a new report runner.
func NewRunner(cfg *RunnerCfg) *Runner {
	return &Runner{
		filename:       cfg.Filename,
		blockSize:      cfg.BlockSize,
		workerPoolSize: cfg.WorkerPoolSize,
		jobs:           cfg.Jobs,
		results:        make(map[string]*Result),
	}
}

// SetJobs swaps the job set for subsequent runs. Results of removed
// jobs are dropped.
func (r *Runner) SetJobs(jobs map[string]*Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = jobs
	for name := range r.results {
		if _, keep := jobs[name]; !keep {
			delete(r.results, name)
		}
	}
}

// Names returns the job names.
func (r *Runner) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	return names
}

// Result returns the latest result of a job.
func (r *Runner) Result(name string) (*Result, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, exists := r.results[name]
	return result, exists
}

// SampleCount returns the number of samples read in the last run.
func (r *Runner) SampleCount() uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sampleCount
}

// LastRunDuration returns the duration of the last run.
func (r *Runner) LastRunDuration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastRunDuration
}

// LastRunTime returns the time of the last run.
func (r *Runner) LastRunTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastRunTime
}

// FileSize returns the size of the sample log at the last run.
func (r *Runner) FileSize() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fileSize
}

// Run executes one report cycle over the whole sample log.
func (r *Runner) Run() {
	tStart := time.Now()

	r.mu.RLock()
	jobs := make(map[string]*Job, len(r.jobs))
	for name, job := range r.jobs {
		jobs[name] = job
	}
	r.mu.RUnlock()

	done := make(chan *jobDone)
	for name, job := range jobs {
		job.samples = make(chan *store.Sample, 1)
		go generateJobReport(job, name, done)
	}

	samples := make(chan *store.Sample, r.blockSize)
	go r.readSamples(samples)
	r.fanOut(samples, jobs, done)

	r.mu.Lock()
	r.lastRunDuration = time.Since(tStart)
	r.lastRunTime = time.Now()
	r.mu.Unlock()
}

// generateJobReport generates a report for a job.
func generateJobReport(job *Job, name string, done chan<- *jobDone) {
	result, err := job.Report.Generate(job.samples)
	if err != nil {
		slog.Error("failed to generate report", "job", name, "err", err)
		done <- &jobDone{name: name}
		return
	}
	done <- &jobDone{name: name, result: result}
}

// readSamples streams the log into the samples channel and records the
// run's sample count and file size.
func (r *Runner) readSamples(samples chan<- *store.Sample) {
	count, err := store.ReadAll(r.filename, samples)
	if err != nil {
		slog.Error("failed to read samples", "err", err)
	}
	var size int64
	if info, statErr := os.Stat(r.filename); statErr == nil {
		size = info.Size()
	}
	r.mu.Lock()
	r.sampleCount = count
	r.fileSize = size
	r.mu.Unlock()
}

// fanOut copies the sample stream to every job through the worker pool,
// then collects the results.
func (r *Runner) fanOut(samples <-chan *store.Sample, jobs map[string]*Job, done <-chan *jobDone) {
	pool := worker.NewPool(r.workerPoolSize)
	for s := range samples {
		s := s
		pool.Dispatch(func() {
			for _, job := range jobs {
				job.samples <- s
			}
		})
	}
	pool.StopAndWait()
	for _, job := range jobs {
		close(job.samples)
	}
	for i := 0; i < len(jobs); i++ {
		j := <-done
		if j.result == nil {
			continue
		}
		r.mu.Lock()
		r.results[j.name] = j.result
		r.mu.Unlock()
	}
}
