// Package jobs hosts the background maintenance tasks that keep the
// membership graph and the session registry tidy.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskGraphIntegrity sweeps the membership graph for dangling edges.
	TaskGraphIntegrity = "graph:integrity"
	// TaskSessionsPrune drops expired token ids from per-user session
	// indexes.
	TaskSessionsPrune = "sessions:prune"
)

// GraphIntegrityPayload scopes an integrity sweep. An empty payload sweeps
// every edge table.
type GraphIntegrityPayload struct {
	Tables []string `json:"tables,omitempty"`
}

// NewGraphIntegrityTask constructs an Asynq task.
func NewGraphIntegrityTask(payload GraphIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGraphIntegrity, data), nil
}

// NewSessionsPruneTask constructs an Asynq task.
func NewSessionsPruneTask() *asynq.Task {
	return asynq.NewTask(TaskSessionsPrune, nil)
}
