package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/halessi/dcf/internal/modules/snapshots"
)

// RetentionJob prunes stored valuation runs past the retention window.
type RetentionJob struct {
	runs   *snapshots.Repository
	maxAge time.Duration
	log    zerolog.Logger
}

// NewRetentionJob creates a new run retention job
func NewRetentionJob(runs *snapshots.Repository, maxAge time.Duration, log zerolog.Logger) *RetentionJob {
	return &RetentionJob{
		runs:   runs,
		maxAge: maxAge,
		log:    log.With().Str("job", "run_retention").Logger(),
	}
}

// Name returns the job name
func (j *RetentionJob) Name() string {
	return "run_retention"
}

// Run deletes runs older than the retention window
func (j *RetentionJob) Run() error {
	cutoff := time.Now().Add(-j.maxAge)

	deleted, err := j.runs.DeleteOlderThan(cutoff)
	if err != nil {
		return err
	}

	if deleted > 0 {
		j.log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("Pruned stored runs")
	}
	return nil
}
