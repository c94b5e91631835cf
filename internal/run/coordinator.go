package run

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"dossierflow/internal/step"
)

// Options configures a Coordinator.
type Options struct {
	InputDir   string
	OutputPath string

	// OnLetter receives a drafted letter verbatim when the writer stage
	// produces one. Optional.
	OnLetter func(letter string)
}

// Coordinator executes pipeline stages against the backend, tracking
// per-stage completion and log state. It owns the step store; the store
// is mutated only here and by stream consumption.
type Coordinator struct {
	backend Backend
	steps   *step.Store
	broker  *Broker
	opts    Options

	mu       sync.Mutex
	inflight map[step.Stage]bool
}

func NewCoordinator(backend Backend, steps *step.Store, broker *Broker, opts Options) *Coordinator {
	return &Coordinator{
		backend:  backend,
		steps:    steps,
		broker:   broker,
		opts:     opts,
		inflight: make(map[step.Stage]bool),
	}
}

// Steps exposes the step state store to the presentation layer.
func (c *Coordinator) Steps() *step.Store { return c.steps }

// Broker exposes the event broker for watch endpoints.
func (c *Coordinator) Broker() *Broker { return c.broker }

// CanRun re-derives the gating predicate from a fresh snapshot.
func (c *Coordinator) CanRun(stage step.Stage) bool {
	return step.CanRun(stage, c.steps.Snapshot())
}

func (c *Coordinator) acquire(stage step.Stage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[stage] {
		return ErrStageBusy
	}
	c.inflight[stage] = true
	return nil
}

func (c *Coordinator) release(stage step.Stage) {
	c.mu.Lock()
	delete(c.inflight, stage)
	c.mu.Unlock()
}

// RunStage executes one stage to its terminal outcome. Forced re-runs
// invalidate every downstream stage first. A second invocation for a
// stage already in flight returns ErrStageBusy.
func (c *Coordinator) RunStage(ctx context.Context, stage step.Stage, force bool) error {
	if err := c.acquire(stage); err != nil {
		return err
	}
	defer c.release(stage)
	return c.runStageLocked(ctx, stage, force, nil)
}

// Begin starts a stage asynchronously and registers its progress stream
// with the broker so watchers can attach before events flow. The run ID
// is returned immediately.
func (c *Coordinator) Begin(stage step.Stage, force bool) (string, error) {
	if err := c.acquire(stage); err != nil {
		return "", err
	}
	runID := fmt.Sprintf("%s-%d", stage, time.Now().UnixNano())
	ch := c.broker.Allocate(runID, 100)
	go func() {
		defer c.release(stage)
		defer func() {
			close(ch)
			c.broker.ScheduleCleanup(runID)
		}()
		if err := c.runStageLocked(context.Background(), stage, force, ch); err != nil {
			log.Printf("run %s: %v", runID, err)
		}
	}()
	return runID, nil
}

// publish forwards an event to watchers without ever blocking the run.
func publish(ch chan<- Event, ev Event) {
	if ch == nil {
		return
	}
	select {
	case ch <- ev:
	default:
	}
}

func (c *Coordinator) runStageLocked(ctx context.Context, stage step.Stage, force bool, watch chan<- Event) error {
	if force {
		c.steps.InvalidateDownstream(stage)
	}
	c.steps.Reset(stage)
	c.steps.SetVisible(stage)

	c.append(watch, stage, fmt.Sprintf("Started: %s", stage.Label()))

	var err error
	if stage == step.StageIngest {
		err = c.runIngest(ctx, force, watch)
	} else {
		err = c.runRequestResponse(ctx, stage, force, watch)
	}

	// Local done flags are a cache of the external source of truth;
	// resync after every terminal outcome.
	c.RefreshStatuses(ctx)
	return err
}

// runIngest consumes the streaming boundary call for the ingest stage.
// The stream is released on every terminal path, and the pending
// operation resolves exactly once.
func (c *Coordinator) runIngest(ctx context.Context, force bool, watch chan<- Event) error {
	events, release, err := c.backend.StreamIngest(ctx, c.opts.InputDir, c.opts.OutputPath, force)
	if err != nil {
		c.append(watch, step.StageIngest, "Failed to open extraction stream.")
		publish(watch, Event{Type: EventTypeError, Message: err.Error()})
		return err
	}
	defer release()

	for {
		select {
		case <-ctx.Done():
			c.append(watch, step.StageIngest, "Text extraction cancelled.")
			publish(watch, Event{Type: EventTypeError, Message: ctx.Err().Error()})
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				// Stream ended without a terminal event: transport failure.
				c.append(watch, step.StageIngest, "Text extraction failed.")
				publish(watch, Event{Type: EventTypeError, Message: "stream closed"})
				return errors.New("ingest stream closed before terminal event")
			}
			switch ev.Type {
			case EventTypeProgress:
				c.append(watch, step.StageIngest, ev.Message)
			case EventTypeDone:
				c.append(watch, step.StageIngest, "Completed: "+step.StageIngest.Label())
				publish(watch, Event{Type: EventTypeDone})
				return nil
			case EventTypeError:
				c.append(watch, step.StageIngest, "Text extraction failed.")
				publish(watch, Event{Type: EventTypeError, Message: ev.Message})
				return fmt.Errorf("ingest stream: %s", ev.Message)
			}
		}
	}
}

func (c *Coordinator) runRequestResponse(ctx context.Context, stage step.Stage, force bool, watch chan<- Event) error {
	result, err := c.backend.RunStep(ctx, StepRequest{
		InputDir:      c.opts.InputDir,
		OutputPath:    c.opts.OutputPath,
		Stage:         stage,
		Force:         force,
		WriterContext: c.writerContext(ctx, stage),
	})
	if err != nil {
		var missing *MissingPrerequisiteError
		if errors.As(err, &missing) {
			c.append(watch, stage, fmt.Sprintf("Missing prerequisite: %s (run it first)", missing.Missing.Label()))
			publish(watch, Event{Type: EventTypeError, Message: err.Error()})
			return err
		}
		c.append(watch, stage, fmt.Sprintf("Failed: %s", stage.Label()))
		publish(watch, Event{Type: EventTypeError, Message: err.Error()})
		return err
	}

	switch result.Status {
	case StepStatusCached:
		c.append(watch, stage, fmt.Sprintf("Cached: %s", stage.Label()))
	default:
		c.append(watch, stage, fmt.Sprintf("Completed: %s", stage.Label()))
	}
	c.steps.SetDone(stage, true)

	if result.Letter != "" && c.opts.OnLetter != nil {
		c.opts.OnLetter(result.Letter)
	}
	publish(watch, Event{Type: EventTypeDone})
	return nil
}

// writerContext fetches the saved writer context for the writer stage.
// Other stages carry none. A fetch failure degrades to empty context.
func (c *Coordinator) writerContext(ctx context.Context, stage step.Stage) string {
	if stage != step.StageWriter {
		return ""
	}
	text, err := c.backend.WriterContext(ctx, c.opts.OutputPath)
	if err != nil {
		log.Printf("writer context fetch: %v", err)
		return ""
	}
	return text
}

// RunAll executes every stage in registry order, sequentially, forcing
// re-runs. Each stage's terminal outcome is observed before the next
// request is issued. A mid-sequence failure does not abort the rest;
// downstream stages report their own missing prerequisites.
func (c *Coordinator) RunAll(ctx context.Context) error {
	var firstErr error
	for _, stage := range step.Order {
		if err := c.RunStage(ctx, stage, true); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			log.Printf("run all: stage %s: %v", stage, err)
		}
	}
	return firstErr
}

// RefreshStatuses resynchronizes local done flags from the external
// list-completed-steps query. Idempotent.
func (c *Coordinator) RefreshStatuses(ctx context.Context) {
	statuses, err := c.backend.ListStepStatus(ctx, c.opts.OutputPath)
	if err != nil {
		log.Printf("step status refresh: %v", err)
		return
	}
	c.steps.SyncDone(statuses)
}

func (c *Coordinator) append(watch chan<- Event, stage step.Stage, line string) {
	c.steps.Append(stage, line)
	publish(watch, Event{Type: EventTypeProgress, Message: line})
}
