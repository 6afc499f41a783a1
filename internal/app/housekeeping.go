package app

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.trai.ch/zerr"
)

const (
	// SaveInterval is how often watch mode persists the cache.
	SaveInterval = 30 * time.Second
	// RelieveInterval is how often watch mode checks the heap between cycles.
	RelieveInterval = 10 * time.Second
)

// Housekeeping job names.
const (
	jobCacheSave    = "cache-save"
	jobCacheRelieve = "cache-relieve"
)

// startHousekeeping schedules the periodic cache persistence and heap
// cleanup that a long-running watch needs. Jobs never overlap themselves.
func startHousekeeping(s *session, opts ...gocron.SchedulerOption) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create housekeeping scheduler")
	}

	jobs := []struct {
		name     string
		interval time.Duration
		task     func()
	}{
		{jobCacheSave, SaveInterval, s.saveCache},
		{jobCacheRelieve, RelieveInterval, s.relieve},
	}
	for _, j := range jobs {
		_, err := sched.NewJob(
			gocron.DurationJob(j.interval),
			gocron.NewTask(j.task),
			gocron.WithName(j.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = sched.Shutdown()
			return nil, zerr.With(zerr.Wrap(err, "failed to schedule housekeeping job"), "job", j.name)
		}
	}

	sched.Start()
	return sched, nil
}
