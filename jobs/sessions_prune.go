package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/gatehouse-iam/gatehouse/internal/auth"
	"github.com/gatehouse-iam/gatehouse/internal/observability"
)

// SessionsPruneJob walks every per-user session index and removes token
// ids whose session records have expired. Session records expire on their
// own via TTL; only the index entries need sweeping.
type SessionsPruneJob struct {
	registry *auth.SessionRegistry
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewSessionsPruneJob constructs the job.
func NewSessionsPruneJob(registry *auth.SessionRegistry, logger *slog.Logger, metrics *observability.Metrics) *SessionsPruneJob {
	return &SessionsPruneJob{registry: registry, logger: logger, metrics: metrics}
}

// Handle processes TaskSessionsPrune tasks.
func (j *SessionsPruneJob) Handle(ctx context.Context, t *asynq.Task) error {
	err := j.prune(ctx)
	if j.metrics != nil {
		j.metrics.RecordJob(TaskSessionsPrune, err)
	}
	return err
}

func (j *SessionsPruneJob) prune(ctx context.Context) error {
	userIDs, err := j.registry.UserIDs(ctx)
	if err != nil {
		return fmt.Errorf("jobs: list session indexes: %w", err)
	}

	var pruned int
	for _, userID := range userIDs {
		n, err := j.registry.PruneUserIndex(ctx, userID)
		if err != nil {
			return fmt.Errorf("jobs: prune sessions of user %d: %w", userID, err)
		}
		pruned += n
	}

	j.logger.Info("session indexes pruned",
		slog.Int("users", len(userIDs)),
		slog.Int("removed", pruned))
	return nil
}
