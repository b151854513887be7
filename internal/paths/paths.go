// Package paths resolves the project directory, the per-step link table
// files inside it, and the user configuration directory.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

// Directory and file names inside a project directory.
const (
	DataPassDirName = "datapass"
	LogDirName      = "log"
	OutputDirName   = "output"
	ArchiveFileName = "archive.db"
	ConfigFileName  = "linkmapper.yaml"

	EuclideanAdjacencyFileName = "eucAdj.csv"
	CostAdjacencyFileName      = "cwdAdj.csv"
	CandidatePairsFileName     = "candidatePairs.csv"
	ClusterTableFileName       = "linktable_clusters.csv"
	CoreClustersFileName       = "coreClusters.csv"
	FinalTableFileName         = "linkTable_final.csv"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir  = "LINKMAPPER_CONFIG_DIR"
	EnvProjectDir = "LINKMAPPER_PROJECT_DIR"
)

// FirstStep and LastStep bound the pipeline step numbers.
const (
	FirstStep = 1
	LastStep  = 5
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/linkmapper (fallback ~/.config/linkmapper)
// macOS:   ~/Library/Application Support/linkmapper
// Windows: %APPDATA%/linkmapper
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "linkmapper"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "linkmapper"), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "linkmapper"), nil
	}
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > LINKMAPPER_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveProjectDir returns the project directory following the precedence
// chain: flag > configValue > LINKMAPPER_PROJECT_DIR env > current directory.
func ResolveProjectDir(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvProjectDir); env != "" {
		return filepath.Abs(env)
	}
	return os.Getwd()
}

// Layout names the files of one project directory.
type Layout struct {
	ProjectDir string
}

// NewLayout returns the layout rooted at projectDir.
func NewLayout(projectDir string) (Layout, error) {
	if projectDir == "" {
		return Layout{}, types.ErrProjectDirEmpty
	}
	return Layout{ProjectDir: projectDir}, nil
}

func (l Layout) DataPassDir() string { return filepath.Join(l.ProjectDir, DataPassDirName) }
func (l Layout) LogDir() string      { return filepath.Join(l.ProjectDir, LogDirName) }
func (l Layout) OutputDir() string   { return filepath.Join(l.ProjectDir, OutputDirName) }
func (l Layout) ArchivePath() string { return filepath.Join(l.ProjectDir, ArchiveFileName) }
func (l Layout) ConfigPath() string  { return filepath.Join(l.ProjectDir, ConfigFileName) }

func (l Layout) EuclideanAdjacencyFile() string {
	return filepath.Join(l.DataPassDir(), EuclideanAdjacencyFileName)
}

func (l Layout) CostAdjacencyFile() string {
	return filepath.Join(l.DataPassDir(), CostAdjacencyFileName)
}

func (l Layout) CandidatePairsFile() string {
	return filepath.Join(l.DataPassDir(), CandidatePairsFileName)
}

func (l Layout) ClusterTableFile() string {
	return filepath.Join(l.DataPassDir(), ClusterTableFileName)
}

func (l Layout) CoreClustersFile() string {
	return filepath.Join(l.OutputDir(), CoreClustersFileName)
}

func (l Layout) FinalTableFile() string {
	return filepath.Join(l.OutputDir(), FinalTableFileName)
}

func stepTableName(step int) string {
	return fmt.Sprintf("linkTable_s%d.csv", step)
}

// ThisStepLinkTable returns the link table written by step.
func (l Layout) ThisStepLinkTable(step int) string {
	return filepath.Join(l.DataPassDir(), stepTableName(step))
}

// LogLinkTable returns the log copy of the link table written by step.
func (l Layout) LogLinkTable(step int) string {
	return filepath.Join(l.LogDir(), stepTableName(step))
}

// PrevStepLinkTable returns the link table step reads. Step 5 reads the
// step 3 table when step 4 did not run. A missing table is a configuration
// error.
func (l Layout) PrevStepLinkTable(step int) (string, error) {
	prev := step - 1
	if step == 5 {
		path := l.ThisStepLinkTable(4)
		if exists(path) {
			return path, nil
		}
		prev = 3
	}
	path := l.ThisStepLinkTable(prev)
	if !exists(path) {
		return "", fmt.Errorf("no link table from the step before step %d (looked for %s): %w", step, path, types.ErrMissingInput)
	}
	return path, nil
}

// Ensure creates the project subdirectories.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.DataPassDir(), l.LogDir(), l.OutputDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// CleanUpLinkTables removes the link tables of step first and every later
// step, and the final output table, so a rerun never reads stale results.
// Log copies are kept.
func (l Layout) CleanUpLinkTables(first int) error {
	files := []string{l.FinalTableFile()}
	for step := first; step <= LastStep; step++ {
		files = append(files, l.ThisStepLinkTable(step))
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", f, err)
		}
	}
	return nil
}

// CheckSteps validates a step selection: steps may start and stop anywhere
// but only step 4 may be skipped in between.
func CheckSteps(steps []int) error {
	sorted := slices.Clone(steps)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	if len(sorted) == 0 {
		return fmt.Errorf("no steps selected: %w", types.ErrInvalidStep)
	}
	for _, s := range sorted {
		if s < FirstStep || s > LastStep {
			return fmt.Errorf("step %d: %w", s, types.ErrInvalidStep)
		}
	}
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if cur == prev+1 || (prev == 3 && cur == 5) {
			continue
		}
		return fmt.Errorf("steps %d to %d: %w", prev, cur, types.ErrSkippedStep)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
