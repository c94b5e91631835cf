package dossier

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"dossierflow/internal/dossier/statestore"
	"dossierflow/internal/safeio"
	"dossierflow/internal/scan"
	"dossierflow/internal/step"
)

const (
	textExtractionPrompt = `You are a document transcription assistant for visa dossiers.
Transcribe the document content below into clean plain text. Keep all
names, dates, amounts and reference numbers exactly as written. Do not
summarize, do not add commentary.`

	summaryPrompt = `You are a visa consultant. Build a concise applicant
summary profile from the dossier documents below. Cover: applicant
identity, employment and income, financial standing, travel history,
ties to the home country, and the purpose of the planned trip. Write
plain prose sections, no markdown tables.`

	riskPrompt = `You are a visa risk analyst. Given the applicant summary
profile below, list the refusal risk points a consular officer would
flag, one per line, each with a short mitigation note. Order them from
most to least serious.`

	writerPrompt = `You are drafting a visa explanation letter on behalf of
the applicant. Use the applicant summary, the risk points and the extra
instructions below. Address the consular officer formally, acknowledge
and counter each risk point, and close with the planned travel dates
and a commitment to return. Output the full letter as clean HTML with
<p> paragraphs only.`
)

var textLikeExt = map[string]bool{
	".txt": true, ".md": true, ".csv": true, ".json": true, ".html": true, ".htm": true,
}

// extractText returns the plain text of one input document, read through
// the root-locked input filesystem. Text-like files are read as-is;
// everything else goes through the model for transcription.
func (b *Backend) extractText(ctx context.Context, fsys *safeio.SafeFS, relPath string) (string, error) {
	raw, err := fsys.SafeReadFile(filepath.FromSlash(relPath))
	if err != nil {
		return "", fmt.Errorf("read input file: %w", err)
	}
	if textLikeExt[strings.ToLower(filepath.Ext(relPath))] {
		return string(raw), nil
	}
	text, err := b.client.GenerateText(ctx, textExtractionPrompt, string(raw))
	if err != nil {
		return "", fmt.Errorf("transcribe %s: %w", filepath.Base(relPath), err)
	}
	return text, nil
}

func (b *Backend) runStage(ctx context.Context, stage step.Stage, state statestore.State) (statestore.State, error) {
	switch stage {
	case step.StageIngest:
		return b.runIngest(ctx, state)
	case step.StageExtract:
		return b.runExtract(state)
	case step.StageSummary:
		return b.runSummary(ctx, state)
	case step.StageRisk:
		return b.runRisk(ctx, state)
	case step.StageWriter:
		return b.runWriter(ctx, state)
	}
	return state, fmt.Errorf("unknown stage %q", stage)
}

// runIngest is the synchronous fallback for the ingest stage; the SSE
// path goes through StreamIngest instead.
func (b *Backend) runIngest(ctx context.Context, state statestore.State) (statestore.State, error) {
	files, err := scan.List(state.InputDir)
	if err != nil {
		return state, fmt.Errorf("scan input dir: %w", err)
	}
	fsys, err := safeio.NewSafeFS(state.InputDir)
	if err != nil {
		return state, fmt.Errorf("open input dir: %w", err)
	}
	records := make([]statestore.FileRecord, 0, len(files))
	for _, f := range files {
		text, err := b.extractText(ctx, fsys, f.RelPath)
		if err != nil {
			return state, err
		}
		records = append(records, statestore.FileRecord{Path: f.Path, Name: f.Name, Domain: f.Domain, Text: text})
	}
	state.Files = records
	return state, nil
}

// runExtract groups the ingested files by document domain.
func (b *Backend) runExtract(state statestore.State) (statestore.State, error) {
	if len(state.Files) == 0 {
		return state, fmt.Errorf("no ingested files to classify")
	}
	grouped := map[string][]string{}
	for _, f := range state.Files {
		domain := f.Domain
		if domain == "" {
			domain = scan.DetectDomain(f.Name)
		}
		grouped[domain] = append(grouped[domain], f.Name)
	}
	for _, names := range grouped {
		sort.Strings(names)
	}
	state.Grouped = grouped
	return state, nil
}

func (b *Backend) runSummary(ctx context.Context, state statestore.State) (statestore.State, error) {
	if len(state.Files) == 0 {
		return state, fmt.Errorf("no ingested files to summarize")
	}
	var sb strings.Builder
	for _, f := range state.Files {
		fmt.Fprintf(&sb, "--- [%s] %s ---\n%s\n\n", f.Domain, f.Name, f.Text)
	}
	summary, err := b.client.GenerateText(ctx, summaryPrompt, sb.String())
	if err != nil {
		return state, fmt.Errorf("build summary profile: %w", err)
	}
	state.SummaryProfile = strings.TrimSpace(summary)
	return state, nil
}

func (b *Backend) runRisk(ctx context.Context, state statestore.State) (statestore.State, error) {
	if strings.TrimSpace(state.SummaryProfile) == "" {
		return state, fmt.Errorf("no summary profile to score")
	}
	report, err := b.client.GenerateText(ctx, riskPrompt, state.SummaryProfile)
	if err != nil {
		return state, fmt.Errorf("score risk points: %w", err)
	}
	state.RiskReport = strings.TrimSpace(report)
	return state, nil
}

func (b *Backend) runWriter(ctx context.Context, state statestore.State) (statestore.State, error) {
	if strings.TrimSpace(state.SummaryProfile) == "" {
		return state, fmt.Errorf("no summary profile for the letter")
	}
	var sb strings.Builder
	sb.WriteString("[APPLICANT SUMMARY]\n")
	sb.WriteString(state.SummaryProfile)
	if strings.TrimSpace(state.RiskReport) != "" {
		sb.WriteString("\n\n[RISK POINTS]\n")
		sb.WriteString(state.RiskReport)
	}
	if strings.TrimSpace(state.WriterContext) != "" {
		sb.WriteString("\n\n[EXTRA INSTRUCTIONS]\n")
		sb.WriteString(state.WriterContext)
	}
	letter, err := b.client.GenerateText(ctx, writerPrompt, sb.String())
	if err != nil {
		return state, fmt.Errorf("draft letter: %w", err)
	}
	state.Letter = strings.TrimSpace(letter)
	return state, nil
}
