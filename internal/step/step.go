package step

import (
	"fmt"
	"strings"
)

// Stage is one step of the fixed dossier pipeline.
type Stage int

const (
	StageIngest Stage = iota
	StageExtract
	StageSummary
	StageRisk
	StageWriter
)

// Order lists every stage in execution order.
var Order = []Stage{StageIngest, StageExtract, StageSummary, StageRisk, StageWriter}

func (s Stage) String() string {
	switch s {
	case StageIngest:
		return "ingest"
	case StageExtract:
		return "extract"
	case StageSummary:
		return "summary"
	case StageRisk:
		return "risk"
	case StageWriter:
		return "writer"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Label returns the user-facing name of a stage.
func (s Stage) Label() string {
	switch s {
	case StageIngest:
		return "Extract text"
	case StageExtract:
		return "Classify documents"
	case StageSummary:
		return "Build summary"
	case StageRisk:
		return "Score risk points"
	case StageWriter:
		return "Draft letter"
	}
	return s.String()
}

// Parse maps a wire string to a Stage.
func Parse(name string) (Stage, error) {
	switch strings.TrimSpace(strings.ToLower(name)) {
	case "ingest":
		return StageIngest, nil
	case "extract":
		return StageExtract, nil
	case "summary":
		return StageSummary, nil
	case "risk":
		return StageRisk, nil
	case "writer":
		return StageWriter, nil
	}
	return 0, fmt.Errorf("unknown stage %q", name)
}

// Before returns every stage strictly earlier in the order.
func Before(s Stage) []Stage {
	out := make([]Stage, 0, len(Order))
	for _, st := range Order {
		if st == s {
			break
		}
		out = append(out, st)
	}
	return out
}

// After returns every stage strictly later in the order.
func After(s Stage) []Stage {
	out := make([]Stage, 0, len(Order))
	seen := false
	for _, st := range Order {
		if seen {
			out = append(out, st)
		}
		if st == s {
			seen = true
		}
	}
	return out
}

// Status is the external completion record for one stage.
type Status struct {
	Name string `json:"name"`
	Done bool   `json:"done"`
}

// CanRun reports whether a stage may be initiated given the current
// snapshot: either the stage is already done (re-run), or every earlier
// stage is done. The first stage is always runnable.
func CanRun(s Stage, snapshot map[Stage]bool) bool {
	if snapshot[s] {
		return true
	}
	for _, prev := range Before(s) {
		if !snapshot[prev] {
			return false
		}
	}
	return true
}
