package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatehouse-iam/gatehouse/internal/observability"
)

// edgeChecks pairs each edge table with the queries that count dangling
// endpoints. Foreign keys make orphans impossible in normal operation; the
// sweep exists to surface drift after manual surgery or a botched restore.
var edgeChecks = map[string][]string{
	"user_groups": {
		`SELECT COUNT(*) FROM user_groups ug LEFT JOIN users u ON u.id = ug.user_id WHERE u.id IS NULL`,
		`SELECT COUNT(*) FROM user_groups ug LEFT JOIN groups g ON g.id = ug.group_id WHERE g.id IS NULL`,
	},
	"group_roles": {
		`SELECT COUNT(*) FROM group_roles gr LEFT JOIN groups g ON g.id = gr.group_id WHERE g.id IS NULL`,
		`SELECT COUNT(*) FROM group_roles gr LEFT JOIN roles r ON r.id = gr.role_id WHERE r.id IS NULL`,
	},
	"role_permissions": {
		`SELECT COUNT(*) FROM role_permissions rp LEFT JOIN roles r ON r.id = rp.role_id WHERE r.id IS NULL`,
		`SELECT COUNT(*) FROM role_permissions rp LEFT JOIN permissions p ON p.id = rp.permission_id WHERE p.id IS NULL`,
	},
	"permissions": {
		`SELECT COUNT(*) FROM permissions p LEFT JOIN modules m ON m.id = p.module_id WHERE m.id IS NULL`,
	},
}

// GraphIntegrityJob scans the edge tables for rows referencing missing
// vertices and reports what it finds. It never repairs; deletion policy
// stays with an operator.
type GraphIntegrityJob struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewGraphIntegrityJob constructs the job.
func NewGraphIntegrityJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *observability.Metrics) *GraphIntegrityJob {
	return &GraphIntegrityJob{pool: pool, logger: logger, metrics: metrics}
}

// Handle processes TaskGraphIntegrity tasks.
func (j *GraphIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload GraphIntegrityPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	tables := payload.Tables
	if len(tables) == 0 {
		for table := range edgeChecks {
			tables = append(tables, table)
		}
	}

	err := j.sweep(ctx, tables)
	if j.metrics != nil {
		j.metrics.RecordJob(TaskGraphIntegrity, err)
	}
	return err
}

func (j *GraphIntegrityJob) sweep(ctx context.Context, tables []string) error {
	for _, table := range tables {
		queries, ok := edgeChecks[table]
		if !ok {
			j.logger.Warn("integrity sweep skipping unknown table", slog.String("table", table))
			continue
		}
		var dangling int64
		for _, query := range queries {
			var count int64
			if err := j.pool.QueryRow(ctx, query).Scan(&count); err != nil {
				return fmt.Errorf("jobs: integrity sweep %s: %w", table, err)
			}
			dangling += count
		}
		if dangling > 0 {
			j.logger.Error("dangling edges detected",
				slog.String("table", table),
				slog.Int64("count", dangling))
			continue
		}
		j.logger.Info("integrity sweep clean", slog.String("table", table))
	}
	return nil
}
