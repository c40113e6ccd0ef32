// Package workflow implements workflow construction, execution and
// management on top of the models package.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pinkflow/pinkflow/pkg/eventbus"
	"github.com/pinkflow/pinkflow/pkg/events"
	"github.com/pinkflow/pinkflow/pkg/metrics"
	"github.com/pinkflow/pinkflow/pkg/models"
	"github.com/pinkflow/pinkflow/pkg/otelhelper"
)

// DefaultMaxIterations bounds executions that never configure a policy. The
// ceiling is a safety net against condition cycles, not a feature: hitting
// it is always an error.
const DefaultMaxIterations = 1000

// Options configures a single execution.
type Options struct {
	// ExecutionID identifies this run in events and traces. Generated when
	// empty.
	ExecutionID string

	// MaxIterations bounds the number of node visits. DefaultMaxIterations
	// when zero or negative.
	MaxIterations int

	// Environment overrides the workflow's own environment tag in the
	// execution context. The graph structure is unaffected.
	Environment models.Environment
}

// Executor runs workflows with the strictly sequential single-path walk.
// Tracer, metrics and publisher are optional; the zero-value wiring runs
// plain. An Executor is stateless across runs and safe for concurrent use
// as long as each call gets its own context map.
type Executor struct {
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *metrics.Metrics
	publisher eventbus.EventPublisher
}

func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{logger: logger}
}

// WithTracer attaches an OpenTelemetry tracer for per-execution spans.
func (e *Executor) WithTracer(tracer trace.Tracer) *Executor {
	e.tracer = tracer

	return e
}

// WithMetrics attaches Prometheus collectors.
func (e *Executor) WithMetrics(m *metrics.Metrics) *Executor {
	e.metrics = m

	return e
}

// WithPublisher attaches an event publisher for execution lifecycle events.
func (e *Executor) WithPublisher(publisher eventbus.EventPublisher) *Executor {
	e.publisher = publisher

	return e
}

// Run executes a workflow with default wiring. Convenience for library
// callers that do not need observability hooks.
func Run(ctx context.Context, wf *models.Workflow, initial models.ExecutionContext, maxIterations int) (models.ExecutionContext, error) {
	return NewExecutor(slog.Default()).Execute(ctx, wf, initial, Options{MaxIterations: maxIterations})
}

// Execute walks the workflow from its start node, at each step following the
// first outgoing edge whose condition holds (highest priority first,
// insertion order on ties), until an end node is reached or the iteration
// ceiling is hit. The context is checked every iteration, so a deadline or
// cancellation aborts the walk between nodes.
//
// Node action errors are not retried; they propagate wrapped in a
// NodeActionError carrying the partial execution path.
func (e *Executor) Execute(ctx context.Context, wf *models.Workflow, initial models.ExecutionContext, opts Options) (models.ExecutionContext, error) {
	if wf.StartNode == "" {
		return nil, fmt.Errorf("workflow %s: %w", wf.ID, models.ErrNoStartNode)
	}

	maxIterations := opts.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	environment := wf.Environment
	if opts.Environment != "" {
		environment = opts.Environment
	}

	executionID := opts.ExecutionID
	if executionID == "" {
		executionID = NewExecutionID()
	}

	logger := e.logger.With(
		"workflow_id", wf.ID,
		"execution_id", executionID,
		"environment", environment,
	)

	var span trace.Span
	if e.tracer != nil {
		ctx, span = otelhelper.StartSpan(ctx, e.tracer, "workflow.execute",
			attribute.String(otelhelper.WorkflowIDKey, wf.ID),
			attribute.String(otelhelper.ExecutionIDKey, executionID),
			attribute.String(otelhelper.EnvironmentKey, string(environment)),
		)
		defer span.End()
	}

	ec := models.NewExecutionContext()
	if initial != nil {
		ec = initial.Clone()
	}

	ec.Set(models.KeyWorkflowID, wf.ID)
	ec.Set(models.KeyEnvironment, string(environment))
	ec.Set(models.KeyExecutionPath, []string{wf.StartNode})
	ec.Set(models.KeyIterations, 0)

	started := time.Now()
	e.publishStarted(ctx, wf, environment, executionID)

	logger.Info("Starting workflow execution", "max_iterations", maxIterations)

	final, err := e.walk(ctx, wf, ec, maxIterations, logger)

	duration := time.Since(started)
	if err != nil {
		logger.Error("Workflow execution failed", "error", err, "duration", duration)

		if span != nil {
			otelhelper.SetError(span, err,
				attribute.String(otelhelper.WorkflowIDKey, wf.ID),
				attribute.String(otelhelper.ExecutionIDKey, executionID),
			)
		}

		e.observe(ctx, wf, environment, executionID, duration, final, err)

		return nil, err
	}

	logger.Info("Workflow execution completed",
		"duration", duration,
		"iterations", final.Iterations(),
	)
	e.observe(ctx, wf, environment, executionID, duration, final, nil)

	return final, nil
}

func (e *Executor) walk(ctx context.Context, wf *models.Workflow, ec models.ExecutionContext, maxIterations int, logger *slog.Logger) (models.ExecutionContext, error) {
	current := wf.StartNode
	iterations := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("workflow %s interrupted at node %s: %w", wf.ID, current, err)
		}

		node, ok := wf.Node(current)
		if !ok {
			return nil, fmt.Errorf("%w: %s referenced during execution", models.ErrUnknownNode, current)
		}

		next, err := e.executeNode(ctx, wf, node, ec.Clone())
		if err != nil {
			return nil, &models.NodeActionError{
				WorkflowID: wf.ID,
				NodeID:     current,
				Path:       ec.ExecutionPath(),
				Err:        err,
			}
		}
		ec = next

		e.metrics.ObserveNodeVisit(wf.ID, string(node.Type))
		logger.Debug("Node executed", "node_id", current, "node_type", node.Type)

		if node.IsTerminal() {
			ec.Set(models.KeyCompleted, true)

			return ec, nil
		}

		candidates := wf.NextNodes(current, ec)
		if len(candidates) == 0 {
			return nil, &models.DeadEndError{
				WorkflowID: wf.ID,
				NodeID:     current,
				Path:       ec.ExecutionPath(),
			}
		}

		current = candidates[0]
		ec.Set(models.KeyExecutionPath, append(ec.ExecutionPath(), current))
		iterations++
		ec.Set(models.KeyIterations, iterations)

		if iterations > maxIterations {
			return nil, &models.IterationLimitError{
				WorkflowID: wf.ID,
				Limit:      maxIterations,
				Path:       ec.ExecutionPath(),
			}
		}
	}
}

// executeNode runs one node action inside its own span when tracing is on.
func (e *Executor) executeNode(ctx context.Context, wf *models.Workflow, node *models.Node, ec models.ExecutionContext) (models.ExecutionContext, error) {
	if e.tracer == nil {
		return node.Execute(ctx, ec)
	}

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.node",
		attribute.String(otelhelper.WorkflowIDKey, wf.ID),
		attribute.String(otelhelper.NodeIDKey, node.ID),
		attribute.String(otelhelper.NodeTypeKey, string(node.Type)),
	)
	defer span.End()

	next, err := node.Execute(ctx, ec)
	if err != nil {
		otelhelper.SetError(span, err, attribute.String(otelhelper.NodeIDKey, node.ID))
	}

	return next, err
}

func (e *Executor) publishStarted(ctx context.Context, wf *models.Workflow, environment models.Environment, executionID string) {
	if e.publisher == nil {
		return
	}

	event := events.ExecutionStarted{BaseEvent: events.BaseEvent{
		ID:          uuid.New().String(),
		Type:        events.ExecutionStartedEvent,
		Timestamp:   time.Now(),
		WorkflowID:  wf.ID,
		ExecutionID: executionID,
		Environment: environment,
	}}

	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.Warn("Failed to publish execution started event", "error", err)
	}
}

func (e *Executor) observe(ctx context.Context, wf *models.Workflow, environment models.Environment, executionID string, duration time.Duration, final models.ExecutionContext, execErr error) {
	status := string(models.ExecutionStatusSuccess)
	iterations := 0

	if final != nil {
		iterations = final.Iterations()
	}

	if execErr != nil {
		status = string(models.ExecutionStatusFailed)
	}

	e.metrics.ObserveExecution(wf.ID, string(environment), status, duration, iterations)

	if e.publisher == nil {
		return
	}

	base := events.BaseEvent{
		ID:          uuid.New().String(),
		Timestamp:   time.Now(),
		WorkflowID:  wf.ID,
		ExecutionID: executionID,
		Environment: environment,
	}

	var event events.Event
	if execErr != nil {
		base.Type = events.ExecutionFailedEvent
		event = events.ExecutionFailed{
			BaseEvent: base,
			Duration:  duration,
			Error:     execErr.Error(),
			Path:      partialPath(execErr),
		}
	} else {
		base.Type = events.ExecutionCompletedEvent
		event = events.ExecutionCompleted{
			BaseEvent:  base,
			Duration:   duration,
			Iterations: iterations,
			Path:       final.ExecutionPath(),
		}
	}

	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.Warn("Failed to publish execution event", "error", err)
	}
}

// partialPath extracts the execution path attached to engine errors.
func partialPath(err error) []string {
	switch e := err.(type) {
	case *models.DeadEndError:
		return e.Path
	case *models.IterationLimitError:
		return e.Path
	case *models.NodeActionError:
		return e.Path
	default:
		return nil
	}
}

// NewExecutionID generates a short unique execution identifier.
func NewExecutionID() string {
	return "exec-" + uuid.New().String()[:8]
}
