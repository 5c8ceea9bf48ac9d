package ssh

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/tiller/pkg/domain"
)

// Runner implements ports.TaskRunner over SSH.
//
// A task's Command descriptor is executed verbatim on each target. The
// remote command receives the task args as a JSON object on stdin and must
// emit a JSON object on stdout; that object becomes the target's result
// payload. Empty output is an empty payload, which the probe phase reads as
// "no agent installed".
type Runner struct {
	config Config
	logger *slog.Logger
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithLogger sets a structured logger for per-target diagnostics.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates an SSH task runner with shared dial settings.
func NewRunner(cfg Config, opts ...RunnerOption) *Runner {
	r := &Runner{
		config: cfg.withDefaults(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SupportsRemote is what this runner exists for.
func (r *Runner) SupportsRemote() bool {
	return true
}

// Run executes the task command on every target, in input order.
// Per-target connection or command failures become failed Results; the
// batch call itself only errors on unusable input.
func (r *Runner) Run(ctx context.Context, task *domain.Task, targets []*domain.Target, args map[string]any) (*domain.ResultSet, error) {
	if task.Command == "" {
		return nil, fmt.Errorf("task %q has no command descriptor", task.Name)
	}

	var stdin []byte
	if len(args) > 0 {
		data, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("failed to encode args for task %q: %w", task.Name, err)
		}
		stdin = data
	}

	results := make([]domain.Result, len(targets))
	for i, t := range targets {
		results[i] = r.runOne(ctx, task, t, stdin)
	}
	return domain.NewResultSet(results), nil
}

func (r *Runner) runOne(ctx context.Context, task *domain.Task, target *domain.Target, stdin []byte) domain.Result {
	client, err := r.config.dial(ctx, target)
	if err != nil {
		r.logger.Warn("dial failed", "target", target.Name, "task", task.Name, "error", err)
		return domain.Fail(target.Name, domain.KindTask, err)
	}
	defer client.Close()

	out, err := execute(ctx, client, task.Command, stdin)
	if err != nil {
		r.logger.Warn("command failed", "target", target.Name, "task", task.Name, "error", err)
		return domain.Fail(target.Name, domain.KindTask, err)
	}

	value, err := parsePayload(out)
	if err != nil {
		return domain.Fail(target.Name, domain.KindTask,
			fmt.Errorf("task %q returned malformed output: %w", task.Name, err))
	}
	return domain.OK(target.Name, value)
}

// parsePayload decodes the remote command's stdout into a result payload.
func parsePayload(out string) (map[string]any, error) {
	out = strings.TrimSpace(out)
	if out == "" {
		return map[string]any{}, nil
	}
	var value map[string]any
	if err := json.Unmarshal([]byte(out), &value); err != nil {
		return nil, err
	}
	return value, nil
}
