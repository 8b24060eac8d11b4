package jobs

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	cron "github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

// Job runs to completion each time it is triggered.
type Job interface {
	ID() string
	Run()
}

// CronJob runs on its own cron schedule.
type CronJob interface {
	Schedule() string
	Job
}

// Runner triggers jobs inside one cron scheduler. A job still running
// when its next trigger fires is skipped, never run twice concurrently.
type Runner struct {
	cron     *cron.Cron
	jobs     []Job
	cronJobs []CronJob
	running  mapset.Set[string]
	mu       sync.Mutex
}

func NewRunner(jobs []Job, cronJobs []CronJob) *Runner {
	return &Runner{
		cron:     cron.New(),
		jobs:     jobs,
		cronJobs: cronJobs,
		running:  mapset.NewSet[string](),
	}
}

// Run registers every job with the cron and starts it. Plain jobs are
// triggered once a second.
func (r *Runner) Run() {
	for _, job := range r.cronJobs {
		err := r.cron.AddFunc(job.Schedule(), r.guarded(job))
		if err != nil {
			logrus.Errorf("failed to add task %s to cron: %v", job.ID(), err)
			panic(err)
		}
	}

	for _, job := range r.jobs {
		err := r.cron.AddFunc("@every 1s", r.guarded(job))
		if err != nil {
			logrus.Errorf("failed to add task %s to cron: %v", job.ID(), err)
			panic(err)
		}
	}

	r.cron.Start()
}

// guarded wraps a job so overlapping triggers skip instead of stacking.
func (r *Runner) guarded(job Job) func() {
	return func() {
		r.mu.Lock()
		if r.running.Contains(job.ID()) {
			r.mu.Unlock()
			logrus.Warnf("task %s is already running", job.ID())
			return
		}
		r.running.Add(job.ID())
		r.mu.Unlock()

		defer func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.running.Remove(job.ID())
		}()

		job.Run()
	}
}

func (r *Runner) Stop() {
	logrus.Infof("stopping all tasks")
	r.cron.Stop()
}
