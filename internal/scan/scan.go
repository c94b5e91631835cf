package scan

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// File is one input-directory entry with its detected dossier domain.
type File struct {
	Name    string `json:"name"`
	RelPath string `json:"rel_path"`
	Path    string `json:"path"`
	Domain  string `json:"domain"`
}

// Dossier domains keyed by the filename prefix that marks them.
var prefixToDomain = map[string]string{
	"HO SO CA NHAN":       "personal",
	"LICH SU DU LICH":     "travel_history",
	"CONG VIEC":           "employment",
	"TAI CHINH":           "financial",
	"MUC DICH CHUYEN DI":  "purpose",
	"THONG TIN CHUYEN DI": "trip_info",
}

// DomainUnknown is assigned to files whose name matches no known prefix.
const DomainUnknown = "unknown"

// DetectDomain classifies a filename by its uppercase prefix.
func DetectDomain(filename string) string {
	name := strings.ToUpper(filename)
	for prefix, domain := range prefixToDomain {
		if strings.HasPrefix(name, prefix) {
			return domain
		}
	}
	return DomainUnknown
}

// IsTripInfoFile reports whether a filename belongs to the booking flow's
// trip-information documents.
func IsTripInfoFile(filename string) bool {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	normalized := strings.Join(strings.FieldsFunc(strings.ToUpper(stem), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}), " ")
	for _, prefix := range []string{"THONG TIN CHUYEN DI", "HO SO CA NHAN", "MUC DICH CHUYEN DI"} {
		if strings.HasPrefix(normalized, prefix) {
			return true
		}
	}
	return false
}

// List walks inputDir and returns every regular file with its detected
// domain, sorted by relative path for deterministic output.
func List(inputDir string) ([]File, error) {
	root := filepath.Clean(inputDir)
	var out []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, File{
			Name:    d.Name(),
			RelPath: filepath.ToSlash(rel),
			Path:    path,
			Domain:  DetectDomain(d.Name()),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out, nil
}

// Resolve maps a file reference (relative path or bare name) inside
// inputDir to its full path. Returns "" when nothing matches. References
// escaping the input root are rejected.
func Resolve(inputDir, fileRef string) string {
	ref := strings.TrimSpace(fileRef)
	if ref == "" {
		return ""
	}

	root := filepath.Clean(inputDir)
	candidate := filepath.Clean(filepath.Join(root, filepath.FromSlash(ref)))
	if rel, err := filepath.Rel(root, candidate); err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}

	files, err := List(inputDir)
	if err != nil {
		return ""
	}
	for _, f := range files {
		if filepath.Clean(f.Path) == candidate {
			return f.Path
		}
	}
	// Bare-name lookup anywhere under the root.
	for _, f := range files {
		if f.Name == ref {
			return f.Path
		}
	}
	return ""
}
