// Package structurewalk builds the containment skeleton of the code graph —
// Project, Folder/Package, File nodes and the CONTAINS_FOLDER/
// CONTAINS_PACKAGE/CONTAINS_FILE edges between them — before any
// language-specific definition extraction runs (SPEC_FULL.md §4.3).
//
// Grounded in the teacher's passStructure/classifyDirectories/
// buildDirNodesEdges/buildFileNodesEdges, generalised to write through the
// sink.Sink interface instead of raw store calls.
package structurewalk

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codegraph-dev/codegraph/internal/discover"
	"github.com/codegraph-dev/codegraph/internal/fqn"
	"github.com/codegraph-dev/codegraph/internal/lang"
	"github.com/codegraph-dev/codegraph/internal/sink"
)

// Walk emits the Project/Folder/Package/File skeleton for a discovered file
// set. repoPath is the absolute filesystem root the files were discovered
// under, used to test each directory for a language's package-indicator
// file (__init__.py, Cargo.toml, CMakeLists.txt, ...).
func Walk(files []discover.FileInfo, projectName, repoPath string, sk sink.Sink) {
	sk.EnsureNode(sink.Node{
		Label:         "Project",
		Name:          projectName,
		QualifiedName: projectName,
	})

	dirs := collectDirs(files)
	isPackage := classifyDirectories(dirs, repoPath)

	for _, dir := range dirs {
		label := "Folder"
		relType := "CONTAINS_FOLDER"
		if isPackage[dir] {
			label = "Package"
			relType = "CONTAINS_PACKAGE"
		}
		dirQN := qnForDir(projectName, dir)
		sk.EnsureNode(sink.Node{
			Label:         label,
			Name:          dirName(dir),
			QualifiedName: dirQN,
			FilePath:      dir,
		})
		sk.EnsureRelationship(sink.Relationship{
			FromQN: parentQN(projectName, dir),
			Type:   relType,
			ToQN:   dirQN,
		})
	}

	for _, f := range files {
		fileQN := fqn.Compute(projectName, f.RelPath, "") + ".__file__"
		sk.EnsureNode(sink.Node{
			Label:         "File",
			Name:          filepath.Base(f.RelPath),
			QualifiedName: fileQN,
			FilePath:      f.RelPath,
			Properties: map[string]any{
				"extension": filepath.Ext(f.RelPath),
				"language":  string(f.Language),
				"is_test":   isTestFile(f.RelPath, f.Language),
			},
		})
		sk.EnsureRelationship(sink.Relationship{
			FromQN: qnForDir(projectName, filepath.ToSlash(filepath.Dir(f.RelPath))),
			Type:   "CONTAINS_FILE",
			ToQN:   fileQN,
		})
	}
}

// collectDirs returns every directory (relative, slash-separated, no
// leading "./") that contains at least one discovered file, plus every
// ancestor of those directories, sorted so parents are classified before
// children need them.
func collectDirs(files []discover.FileInfo) []string {
	set := map[string]bool{}
	for _, f := range files {
		dir := filepath.ToSlash(filepath.Dir(f.RelPath))
		for dir != "." && dir != "/" && dir != "" {
			set[dir] = true
			dir = filepath.ToSlash(filepath.Dir(dir))
		}
	}
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Count(out[i], "/") < strings.Count(out[j], "/")
	})
	return out
}

// classifyDirectories decides, for every directory, whether it is a
// language Package (its absolute path contains one of a registered
// language's PackageIndicators files) or a plain Folder.
func classifyDirectories(dirs []string, repoPath string) map[string]bool {
	result := make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		abs := filepath.Join(repoPath, filepath.FromSlash(dir))
		result[dir] = hasPackageIndicator(abs)
	}
	return result
}

func hasPackageIndicator(absDir string) bool {
	for _, l := range lang.AllLanguages() {
		spec := lang.ForLanguage(l)
		if spec == nil {
			continue
		}
		for _, indicator := range spec.PackageIndicators {
			if strings.ContainsAny(indicator, "*?[") {
				matches, _ := filepath.Glob(filepath.Join(absDir, indicator))
				if len(matches) > 0 {
					return true
				}
				continue
			}
			if _, err := os.Stat(filepath.Join(absDir, indicator)); err == nil {
				return true
			}
		}
	}
	return false
}

func dirName(dir string) string {
	return filepath.Base(dir)
}

func qnForDir(projectName, dir string) string {
	if dir == "." || dir == "" {
		return projectName
	}
	return fqn.FolderQN(projectName, dir)
}

func parentQN(projectName, dir string) string {
	parent := filepath.ToSlash(filepath.Dir(dir))
	return qnForDir(projectName, parent)
}

// isTestFile reports whether a file path looks like a test file by the
// naming convention its language typically uses.
func isTestFile(relPath string, language lang.Language) bool {
	base := strings.ToLower(filepath.Base(relPath))
	switch language {
	case lang.Go:
		return strings.HasSuffix(base, "_test.go")
	case lang.Python:
		return strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test.py")
	case lang.JavaScript, lang.TypeScript, lang.TSX:
		return strings.Contains(base, ".test.") || strings.Contains(base, ".spec.")
	case lang.Java:
		return strings.HasSuffix(base, "test.java") || strings.HasSuffix(base, "tests.java")
	case lang.Rust:
		return strings.Contains(relPath, "/tests/") || strings.HasSuffix(base, "_test.rs")
	case lang.CPP, lang.C:
		return strings.Contains(base, "test")
	default:
		return strings.Contains(base, "test")
	}
}
