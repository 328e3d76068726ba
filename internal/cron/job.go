package cron

import (
	"context"
	"errors"
	"fmt"
)

// Job is one task the worker runs on every cycle.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type funcJob struct {
	name string
	run  func(context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.run(ctx) }

// JobFunc adapts a plain function into a Job.
func JobFunc(name string, run func(context.Context) error) Job {
	return funcJob{name: name, run: run}
}

// checkJobs rejects nil jobs and duplicate names; names label metrics and
// logs, so they must be unique.
func checkJobs(jobs []Job) error {
	if len(jobs) == 0 {
		return errors.New("at least one job is required")
	}
	seen := make(map[string]bool, len(jobs))
	for i, job := range jobs {
		if job == nil {
			return fmt.Errorf("job %d is nil", i)
		}
		name := job.Name()
		if name == "" {
			return fmt.Errorf("job %d has no name", i)
		}
		if seen[name] {
			return fmt.Errorf("job %q registered twice", name)
		}
		seen[name] = true
	}
	return nil
}
