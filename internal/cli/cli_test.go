package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/linkmapper/internal/linktable"
	"github.com/mesh-intelligence/linkmapper/internal/paths"
	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

type cmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

func runCLI(t *testing.T, args ...string) cmdResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return cmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: code}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// newProject writes a three-core project whose shortcut 1-3 is longer than
// the Euclidean limit.
func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "cores.csv", "1,10\n2,20\n3,30\n")
	writeFile(t, dir, "right.csv", "#Edge,core_id,core_id_1\n0,1,2\n")
	writeFile(t, dir, "up.csv", "#Edge,core_id,core_id_1\n0,3,2\n1,1,3\n")
	writeFile(t, dir, "distances.txt", "# near table\n1 2 10\n2 3 20\n3 1 50\n2 1 10\n")
	writeFile(t, dir, "cwd.csv", "1,2,100\n2,3,200\n")
	writeFile(t, dir, "lcp.csv", "1,2,50\n")
	writeFile(t, dir, paths.ConfigFileName, `core_file: cores.csv
distance_file: distances.txt
cost_distance_file: cwd.csv
path_length_file: lcp.csv
euclidean_shift_files: [right.csv, up.csv]
use_cost_weighted_adjacency: false
use_max_euclidean_distance: true
max_euclidean_distance: 40
log_mode: prod
retry_max_tries: 1
`)
	return dir
}

func TestVersion(t *testing.T) {
	res := runCLI(t, "version")
	assert.Equal(t, exitSuccess, res.ExitCode)
	assert.Contains(t, res.Stdout, "linkmapper v"+Version)
	assert.Contains(t, res.Stdout, modulePath)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	res := runCLI(t, "init", "--project-dir", dir)
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
	assert.Contains(t, res.Stdout, "Wrote")
	assert.FileExists(t, filepath.Join(dir, paths.ConfigFileName))
	assert.FileExists(t, filepath.Join(dir, paths.ArchiveFileName))
	assert.DirExists(t, filepath.Join(dir, paths.DataPassDirName))
	assert.DirExists(t, filepath.Join(dir, paths.LogDirName))
	assert.DirExists(t, filepath.Join(dir, paths.OutputDirName))

	res = runCLI(t, "init", "--project-dir", dir)
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
	assert.NotContains(t, res.Stdout, "Wrote")

	// The written file reads back as the defaults.
	cfg, err := loadConfig(newViper(), &rootFlags{projectDir: dir})
	require.NoError(t, err)
	want := types.DefaultConfig()
	assert.Equal(t, dir, cfg.ProjectDir)
	assert.Equal(t, want.Steps, cfg.Steps)
	assert.Equal(t, want.CoreIDField, cfg.CoreIDField)
	assert.Equal(t, want.NearestNeighborUnit, cfg.NearestNeighborUnit)
	assert.Equal(t, want.RetryInitialInterval, cfg.RetryInitialInterval)
	assert.Equal(t, want.KeepConstellations, cfg.KeepConstellations)
	assert.Empty(t, cfg.EuclideanShiftFiles)
}

func TestLoadConfig(t *testing.T) {
	t.Run("file, environment and flags", func(t *testing.T) {
		dir := newProject(t)
		t.Setenv("LINKMAPPER_MAX_EUCLIDEAN_DISTANCE", "250")

		cfg, err := loadConfig(newViper(), &rootFlags{projectDir: dir, logMode: types.LogModeDev})
		require.NoError(t, err)
		assert.Equal(t, dir, cfg.ProjectDir)
		assert.Equal(t, "cores.csv", cfg.CoreFile)
		assert.Equal(t, []string{"right.csv", "up.csv"}, cfg.EuclideanShiftFiles)
		assert.False(t, cfg.UseCostWeightedAdjacency)
		assert.True(t, cfg.UseMaxEuclideanDistance)
		assert.Equal(t, 250.0, cfg.MaxEuclideanDistance)
		assert.Equal(t, types.LogModeDev, cfg.LogMode)
		assert.Equal(t, uint(1), cfg.RetryMaxTries)
		assert.Equal(t, []int{1, 2, 3, 4, 5}, cfg.Steps)
	})

	t.Run("project dir from environment", func(t *testing.T) {
		dir := newProject(t)
		t.Setenv(paths.EnvProjectDir, dir)

		cfg, err := loadConfig(newViper(), &rootFlags{})
		require.NoError(t, err)
		assert.Equal(t, dir, cfg.ProjectDir)
		assert.Equal(t, "cores.csv", cfg.CoreFile)
	})

	t.Run("missing default file", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := loadConfig(newViper(), &rootFlags{projectDir: dir})
		require.NoError(t, err)
		assert.Equal(t, types.DefaultConfig().Steps, cfg.Steps)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		dir := t.TempDir()
		_, err := loadConfig(newViper(), &rootFlags{
			projectDir: dir,
			configFile: filepath.Join(dir, "nope.yaml"),
		})
		assert.ErrorIs(t, err, types.ErrMissingInput)
	})

	t.Run("malformed file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, paths.ConfigFileName, "steps: [1, 2\n")
		_, err := loadConfig(newViper(), &rootFlags{projectDir: dir})
		assert.ErrorIs(t, err, types.ErrConfig)
	})
}

func TestRunCommand(t *testing.T) {
	dir := newProject(t)

	res := runCLI(t, "run", "--project-dir", dir)
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
	assert.Contains(t, res.Stdout, "There are 3 links in the table.")
	assert.Contains(t, res.Stdout, "Run ")

	layout := paths.Layout{ProjectDir: dir}
	adj, err := linktable.ReadAdjacencyFile(layout.EuclideanAdjacencyFile())
	require.NoError(t, err)
	assert.Len(t, adj, 3)

	final, err := linktable.ReadFile(layout.FinalTableFile())
	require.NoError(t, err)
	require.Equal(t, 3, final.Len())
	assert.Equal(t, types.LinkTooLongEuclidean, final.At(1).Type)
	assert.Equal(t, 2.0, final.At(0).CwdToPath)

	res = runCLI(t, "history", "--project-dir", dir, "--json")
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
	var runs []runJSON
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &runs))
	require.Len(t, runs, 1)
	var steps []int
	for _, s := range runs[0].Steps {
		steps = append(steps, s.Step)
	}
	assert.Equal(t, []int{2, 3, 4, 5}, steps)

	res = runCLI(t, "history", "--project-dir", dir)
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
	assert.Contains(t, res.Stdout, runs[0].ID)

	// Rerunning from step 3 reuses the step 2 table.
	res = runCLI(t, "run", "--project-dir", dir, "--steps", "3,4,5")
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
}

func TestRunCommand_ConnectFragments(t *testing.T) {
	dir := newProject(t)

	res := runCLI(t, "run", "--project-dir", dir, "--connect-fragments")
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)

	layout := paths.Layout{ProjectDir: dir}
	assert.FileExists(t, layout.ClusterTableFile())
	assert.FileExists(t, layout.CoreClustersFile())
	assert.NoFileExists(t, layout.FinalTableFile())
}

func TestExitCodes(t *testing.T) {
	dir := newProject(t)
	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "unknown flag", args: []string{"version", "--bogus"}, want: exitUserError},
		{name: "missing argument", args: []string{"report"}, want: exitUserError},
		{name: "missing table", args: []string{"report", filepath.Join(dir, "none.csv")}, want: exitUserError},
		{name: "skipped step", args: []string{"run", "--project-dir", dir, "--steps", "2,4"}, want: exitUserError},
		{name: "no previous table", args: []string{"run", "--project-dir", dir, "--steps", "4,5"}, want: exitUserError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.args...)
			assert.Equal(t, tt.want, res.ExitCode, res.Stderr)
			assert.Contains(t, res.Stderr, "Error:")
		})
	}
}

func writeTable(t *testing.T, dir string) string {
	t.Helper()
	tbl := linktable.New(
		types.LinkRecord{LinkID: 1, Core1: 1, Core2: 2, Cluster1: -1, Cluster2: -1, Type: types.LinkCorridor, EucDist: 10, CwdDist: -1, EucAdj: -1, CwdAdj: -1},
		types.LinkRecord{LinkID: 2, Core1: 2, Core2: 3, Cluster1: -1, Cluster2: -1, Type: types.LinkTooLongCost, EucDist: 20, CwdDist: 900, EucAdj: -1, CwdAdj: -1},
		types.LinkRecord{LinkID: 3, Core1: 4, Core2: 5, Cluster1: -1, Cluster2: -1, Type: types.LinkComponent, EucDist: 30, CwdDist: 60, EucAdj: -1, CwdAdj: -1},
	)
	path := filepath.Join(dir, "table.csv")
	require.NoError(t, linktable.WriteFile(path, tbl))
	return path
}

func TestReport(t *testing.T) {
	path := writeTable(t, t.TempDir())

	res := runCLI(t, "report", path)
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
	assert.Contains(t, res.Stdout, "There are 3 links in the table.")
	assert.Contains(t, res.Stdout, "1 potential corridor links and 1 component links")
	assert.Contains(t, res.Stdout, types.LinkTooLongCost.String())

	res = runCLI(t, "report", "--json", path)
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
	var rep reportJSON
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &rep))
	assert.Equal(t, 3, rep.Total)
	assert.Equal(t, 2, rep.Active)
	assert.Equal(t, 1, rep.Dropped)
	assert.Equal(t, 1, rep.ByType["5"])
	assert.Equal(t, []typeJSON{
		{Code: 2, Description: "Connects_cores", Active: true, Count: 1},
		{Code: 5, Description: "Too_long_least_cost_dist", Active: false, Count: 1},
		{Code: 10, Description: "Connects_constellations", Active: true, Count: 1},
	}, rep.Types)
}

func TestComponents(t *testing.T) {
	path := writeTable(t, t.TempDir())

	res := runCLI(t, "components", path)
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
	assert.Equal(t, "core,component,cluster,targets\n1,0,-1,2\n2,0,-1,1\n3,1,-1,\n4,2,-1,\n5,2,-1,\n", res.Stdout)

	res = runCLI(t, "components", "--json", path)
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
	var rows []coreJSON
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &rows))
	require.Len(t, rows, 5)
	assert.Equal(t, coreJSON{Core: 1, Component: 0, Cluster: -1, Targets: []int{2}}, rows[0])
	assert.Equal(t, coreJSON{Core: 4, Component: 2, Cluster: -1, Targets: []int{}}, rows[3])
}

func TestLookup(t *testing.T) {
	path := writeTable(t, t.TempDir())
	header := linktable.NarrowHeader + "\n"

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"by link id", []string{"2"}, header + "2,2,3,-1,-1,5,20,900,-1,-1\n"},
		{"by pair", []string{"5", "4"}, header + "3,4,5,-1,-1,10,30,60,-1,-1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, append([]string{"lookup", path}, tt.args...)...)
			require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
			assert.Equal(t, tt.want, res.Stdout)
		})
	}

	res := runCLI(t, "lookup", "--json", path, "1")
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
	var recs []types.LinkRecord
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, types.LinkCorridor, recs[0].Type)

	assert.Equal(t, exitUserError, runCLI(t, "lookup", path, "9").ExitCode)
	assert.Equal(t, exitUserError, runCLI(t, "lookup", path, "1", "4").ExitCode)
	assert.Equal(t, exitUserError, runCLI(t, "lookup", path, "x").ExitCode)
	assert.Equal(t, exitUserError, runCLI(t, "lookup", path).ExitCode)
}

func TestAdjacency(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "#Edge,core_id,core_id_1\n0,2,1\n1,3,3\n")
	b := writeFile(t, dir, "b.csv", "#Edge,core_id,core_id_1\n0,1,2\n1,4,3\n")

	res := runCLI(t, "adjacency", a, b)
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
	assert.Equal(t, "#Edge,core_id,core_id_1\n0,1,2\n1,3,4\n", res.Stdout)

	out := filepath.Join(dir, "out.csv")
	res = runCLI(t, "adjacency", a, b, "-o", out, "--field", "patch")
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
	pairs, err := linktable.ReadAdjacencyFile(out)
	require.NoError(t, err)
	assert.Equal(t, []types.CorePair{{A: 1, B: 2}, {A: 3, B: 4}}, pairs)
}
