package run

import (
	"context"
	"errors"
	"fmt"

	"dossierflow/internal/scan"
	"dossierflow/internal/step"
)

// ErrStageBusy is returned when a stage run is requested while a previous
// run of the same stage is still in flight.
var ErrStageBusy = errors.New("stage run already in flight")

// MissingPrerequisiteError reports the earliest not-done predecessor of a
// requested stage.
type MissingPrerequisiteError struct {
	Missing step.Stage
}

func (e *MissingPrerequisiteError) Error() string {
	return fmt.Sprintf("missing prerequisite stage %s", e.Missing)
}

// StepStatus is the outcome kind of a request/response stage run.
type StepStatus string

const (
	StepStatusDone   StepStatus = "done"
	StepStatusCached StepStatus = "cached"
)

// StepRequest carries one request/response stage invocation.
type StepRequest struct {
	InputDir      string
	OutputPath    string
	Stage         step.Stage
	Force         bool
	WriterContext string
}

// StepResult is the typed payload of a successful stage run.
type StepResult struct {
	Status     StepStatus
	Stage      step.Stage
	Summary    string
	RiskReport string
	Letter     string
}

// Backend is the boundary the coordinator drives. The workflow logic
// behind it (extraction, classification, writing) is owned by the
// collaborator; the coordinator only sequences calls and tracks state.
type Backend interface {
	ListFiles(ctx context.Context, inputDir string) ([]scan.File, error)
	ListStepStatus(ctx context.Context, outputPath string) ([]step.Status, error)
	Summary(ctx context.Context, outputPath string) (string, error)
	RiskReport(ctx context.Context, outputPath string) (string, error)
	WriterContext(ctx context.Context, outputPath string) (string, error)

	// StreamIngest opens the push-based progress stream for the ingest
	// stage. The returned release func must be safe to call more than
	// once; the channel is closed after its terminal event.
	StreamIngest(ctx context.Context, inputDir, outputPath string, force bool) (<-chan Event, func(), error)

	RunStep(ctx context.Context, req StepRequest) (StepResult, error)
}
