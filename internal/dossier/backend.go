// Package dossier executes the document pipeline for one visa dossier:
// text extraction, domain classification, applicant summary, risk
// scoring and the explanation letter. It is the boundary collaborator
// behind the run coordinator.
package dossier

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"dossierflow/internal/artifactstore"
	"dossierflow/internal/dossier/statestore"
	"dossierflow/internal/llm"
	"dossierflow/internal/run"
	"dossierflow/internal/safeio"
	"dossierflow/internal/scan"
	"dossierflow/internal/step"
)

// CacheDir is where a dossier's derived files live, next to its output.
func CacheDir(outputPath string) string {
	return filepath.Join(filepath.Dir(outputPath), "cache")
}

// Backend implements run.Backend on top of the state store and the
// model client.
type Backend struct {
	client    llm.Client
	store     *statestore.Store
	artifacts artifactstore.Store
}

func NewBackend(client llm.Client, store *statestore.Store, artifacts artifactstore.Store) *Backend {
	if artifacts == nil {
		artifacts = artifactstore.NewMemoryStore()
	}
	return &Backend{client: client, store: store, artifacts: artifacts}
}

func (b *Backend) ListFiles(_ context.Context, inputDir string) ([]scan.File, error) {
	return scan.List(inputDir)
}

// getState returns a usable state even for unseen dossiers.
func (b *Backend) getState(outputPath string) statestore.State {
	state, ok := b.store.Get(outputPath)
	if !ok {
		state = statestore.State{Dossier: outputPath}
	}
	if state.Grouped == nil {
		state.Grouped = map[string][]string{}
	}
	if state.StepsDone == nil {
		state.StepsDone = map[string]bool{}
	}
	return state
}

func (b *Backend) ListStepStatus(_ context.Context, outputPath string) ([]step.Status, error) {
	state := b.getState(outputPath)
	out := make([]step.Status, 0, len(step.Order))
	for _, st := range step.Order {
		out = append(out, step.Status{Name: st.String(), Done: state.StepsDone[st.String()]})
	}
	return out, nil
}

func (b *Backend) Summary(_ context.Context, outputPath string) (string, error) {
	state := b.getState(outputPath)
	if state.SummaryProfile != "" {
		return state.SummaryProfile, nil
	}
	// Derived cache survives a lost state file.
	raw, err := os.ReadFile(filepath.Join(CacheDir(outputPath), "summary_profile.txt"))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read summary cache: %w", err)
	}
	return string(raw), nil
}

func (b *Backend) RiskReport(_ context.Context, outputPath string) (string, error) {
	state := b.getState(outputPath)
	return state.RiskReport, nil
}

func (b *Backend) WriterContext(_ context.Context, outputPath string) (string, error) {
	state := b.getState(outputPath)
	return state.WriterContext, nil
}

// SaveWriterContext stores the extra drafting instructions the writer
// stage folds into its prompt.
func (b *Backend) SaveWriterContext(outputPath, text string) {
	b.store.Update(outputPath, func(st *statestore.State) {
		st.WriterContext = strings.TrimSpace(text)
	})
}

// StreamIngest extracts every input document, pushing one progress
// event per file, and marks the ingest step done on completion. The
// release func detaches the consumer; the stream stops at the next
// event boundary.
func (b *Backend) StreamIngest(ctx context.Context, inputDir, outputPath string, force bool) (<-chan run.Event, func(), error) {
	files, err := scan.List(inputDir)
	if err != nil {
		return nil, func() {}, fmt.Errorf("scan input dir: %w", err)
	}
	fsys, err := safeio.NewSafeFS(inputDir)
	if err != nil {
		return nil, func() {}, fmt.Errorf("open input dir: %w", err)
	}
	if force {
		b.resetDownstream(outputPath, step.StageIngest)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	ch := make(chan run.Event, len(files)+2)

	go func() {
		defer close(ch)
		records := make([]statestore.FileRecord, 0, len(files))
		total := int32(len(files))
		for i, f := range files {
			select {
			case <-streamCtx.Done():
				return
			default:
			}
			ch <- run.Event{
				Type:     run.EventTypeProgress,
				Message:  "Extracting: " + f.Name,
				Progress: progressPercent(int32(i), total),
			}
			text, err := b.extractText(streamCtx, fsys, f.RelPath)
			if err != nil {
				log.Printf("[dossier] extract %s: %v", f.Name, err)
				ch <- run.Event{Type: run.EventTypeError, Message: fmt.Sprintf("extraction failed for %s: %v", f.Name, err)}
				return
			}
			records = append(records, statestore.FileRecord{
				Path:   f.Path,
				Name:   f.Name,
				Domain: f.Domain,
				Text:   text,
			})
		}
		b.store.Update(outputPath, func(st *statestore.State) {
			st.InputDir = inputDir
			st.Files = records
			st.StepsDone[step.StageIngest.String()] = true
		})
		ch <- run.Event{Type: run.EventTypeDone, Progress: 100}
	}()

	return ch, cancel, nil
}

// ErrFileNotFound is returned when a file reference matches nothing
// under the input directory.
var ErrFileNotFound = errors.New("input file not found")

// AddFileRequest names one extra document to fold into a dossier.
type AddFileRequest struct {
	InputDir      string
	OutputPath    string
	FileRef       string
	WriterContext string
}

// AddFileResult carries the redrafted texts after an incremental add.
type AddFileResult struct {
	AddedFile string
	Summary   string
	Letter    string
}

// AddFile ingests one additional input document into an existing
// dossier and redrafts the summary profile and the letter with the new
// text folded in. The file reference may be a relative path or a bare
// name anywhere under the input directory. An already-ingested file is
// replaced in place, not duplicated. The risk report keeps its previous
// content until its stage is re-run.
func (b *Backend) AddFile(ctx context.Context, req AddFileRequest) (AddFileResult, error) {
	var res AddFileResult
	resolved := scan.Resolve(req.InputDir, req.FileRef)
	if resolved == "" {
		return res, ErrFileNotFound
	}
	fsys, err := safeio.NewSafeFS(req.InputDir)
	if err != nil {
		return res, fmt.Errorf("open input dir: %w", err)
	}
	rel, err := filepath.Rel(filepath.Clean(req.InputDir), resolved)
	if err != nil {
		return res, fmt.Errorf("relativize %s: %w", resolved, err)
	}
	text, err := b.extractText(ctx, fsys, filepath.ToSlash(rel))
	if err != nil {
		return res, err
	}

	state := b.getState(req.OutputPath)
	state.InputDir = firstNonEmpty(req.InputDir, state.InputDir)
	state.Dossier = req.OutputPath
	if strings.TrimSpace(req.WriterContext) != "" {
		state.WriterContext = strings.TrimSpace(req.WriterContext)
	}
	name := filepath.Base(resolved)
	state.Files = upsertFileRecord(state.Files, statestore.FileRecord{
		Path:   resolved,
		Name:   name,
		Domain: scan.DetectDomain(name),
		Text:   text,
	})
	state.StepsDone[step.StageIngest.String()] = true

	state, err = b.runSummary(ctx, state)
	if err != nil {
		return res, err
	}
	state.StepsDone[step.StageSummary.String()] = true
	state, err = b.runWriter(ctx, state)
	if err != nil {
		return res, err
	}
	state.StepsDone[step.StageWriter.String()] = true
	b.store.Put(state)
	b.saveDerived(ctx, req.OutputPath, step.StageSummary, state)
	b.saveDerived(ctx, req.OutputPath, step.StageWriter, state)

	res.AddedFile = filepath.ToSlash(rel)
	res.Summary = state.SummaryProfile
	res.Letter = state.Letter
	return res, nil
}

func upsertFileRecord(files []statestore.FileRecord, rec statestore.FileRecord) []statestore.FileRecord {
	for i, f := range files {
		if filepath.Clean(f.Path) == filepath.Clean(rec.Path) {
			files[i] = rec
			return files
		}
	}
	return append(files, rec)
}

func progressPercent(done, total int32) int32 {
	if total == 0 {
		return 100
	}
	return done * 100 / total
}

// RunStep executes one request/response stage with gating, cache-hit
// and forced-rerun semantics.
func (b *Backend) RunStep(ctx context.Context, req run.StepRequest) (run.StepResult, error) {
	res := run.StepResult{Stage: req.Stage}
	state := b.getState(req.OutputPath)

	if missing := missingPrerequisite(state, req.Stage); missing != nil {
		return res, &run.MissingPrerequisiteError{Missing: *missing}
	}
	if state.StepsDone[req.Stage.String()] && !req.Force {
		res.Status = run.StepStatusCached
		res.Summary = state.SummaryProfile
		res.RiskReport = state.RiskReport
		res.Letter = state.Letter
		return res, nil
	}
	if req.Force {
		b.resetDownstream(req.OutputPath, req.Stage)
		state = b.getState(req.OutputPath)
	}
	if strings.TrimSpace(req.WriterContext) != "" {
		state.WriterContext = strings.TrimSpace(req.WriterContext)
	}
	state.InputDir = firstNonEmpty(req.InputDir, state.InputDir)
	state.Dossier = req.OutputPath

	state, err := b.runStage(ctx, req.Stage, state)
	if err != nil {
		return res, err
	}
	state.StepsDone[req.Stage.String()] = true
	b.store.Put(state)
	b.saveDerived(ctx, req.OutputPath, req.Stage, state)

	res.Status = run.StepStatusDone
	res.Summary = state.SummaryProfile
	res.RiskReport = state.RiskReport
	res.Letter = state.Letter
	return res, nil
}

func missingPrerequisite(state statestore.State, stage step.Stage) *step.Stage {
	for _, prev := range step.Before(stage) {
		if !state.StepsDone[prev.String()] {
			p := prev
			return &p
		}
	}
	return nil
}

// resetDownstream clears completion markers and derived text for every
// stage after the forced one; their cached results are presumed stale.
func (b *Backend) resetDownstream(outputPath string, stage step.Stage) {
	downstream := step.After(stage)
	if len(downstream) == 0 {
		return
	}
	b.store.Update(outputPath, func(st *statestore.State) {
		for _, later := range downstream {
			delete(st.StepsDone, later.String())
			switch later {
			case step.StageExtract:
				st.Grouped = map[string][]string{}
			case step.StageSummary:
				st.SummaryProfile = ""
			case step.StageRisk:
				st.RiskReport = ""
			case step.StageWriter:
				st.Letter = ""
			}
		}
	})
	os.Remove(filepath.Join(CacheDir(outputPath), "summary_profile.txt"))
	os.Remove(filepath.Join(CacheDir(outputPath), "risk_report.txt"))
}

// saveDerived mirrors stage output into plain files so other tools (and
// a fresh process) can pick them up without the state store.
func (b *Backend) saveDerived(ctx context.Context, outputPath string, stage step.Stage, state statestore.State) {
	cacheDir := CacheDir(outputPath)
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		log.Printf("[dossier] create cache dir: %v", err)
		return
	}
	switch stage {
	case step.StageSummary:
		writeDerived(filepath.Join(cacheDir, "summary_profile.txt"), state.SummaryProfile)
	case step.StageRisk:
		writeDerived(filepath.Join(cacheDir, "risk_report.txt"), state.RiskReport)
	case step.StageWriter:
		if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
			log.Printf("[dossier] create output dir: %v", err)
			return
		}
		writeDerived(outputPath, state.Letter)
		if err := b.artifacts.Put(ctx, outputPath, filepath.Base(outputPath), []byte(state.Letter)); err != nil {
			log.Printf("[dossier] archive letter: %v", err)
		}
	}
}

func writeDerived(path, content string) {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		log.Printf("[dossier] write %s: %v", path, err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
