// Package sqlite implements the run archive: every pipeline step's link
// table is stored, append-only, in a SQLite database next to the project.
package sqlite

// Schema DDL. Statements are idempotent so an existing archive is reused.
const (
	createRuns = `CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    project_dir TEXT NOT NULL,
    config TEXT NOT NULL
);`

	createStepTables = `CREATE TABLE IF NOT EXISTS step_tables (
    run_id TEXT NOT NULL,
    step INTEGER NOT NULL,
    columns INTEGER NOT NULL,
    total_links INTEGER NOT NULL,
    active_links INTEGER NOT NULL,
    saved_at TEXT NOT NULL,
    PRIMARY KEY (run_id, step),
    FOREIGN KEY (run_id) REFERENCES runs(run_id)
);`

	createStepLinks = `CREATE TABLE IF NOT EXISTS step_links (
    run_id TEXT NOT NULL,
    step INTEGER NOT NULL,
    row_index INTEGER NOT NULL,
    link_id INTEGER NOT NULL,
    core1 INTEGER NOT NULL,
    core2 INTEGER NOT NULL,
    cluster1 INTEGER NOT NULL,
    cluster2 INTEGER NOT NULL,
    link_type INTEGER NOT NULL,
    euc_dist REAL NOT NULL,
    cwd_dist REAL NOT NULL,
    euc_adj INTEGER NOT NULL,
    cwd_adj INTEGER NOT NULL,
    lcp_length REAL NOT NULL,
    cwd_to_euc REAL NOT NULL,
    cwd_to_path REAL NOT NULL,
    PRIMARY KEY (run_id, step, row_index),
    FOREIGN KEY (run_id, step) REFERENCES step_tables(run_id, step)
);`

	createStepLinksPairIndex = `CREATE INDEX IF NOT EXISTS idx_step_links_pair ON step_links(core1, core2);`
)

// schemaStatements lists the DDL in dependency order.
var schemaStatements = []string{
	createRuns,
	createStepTables,
	createStepLinks,
	createStepLinksPairIndex,
}

// stepLinkColumns is the column order used to insert and scan link rows.
var stepLinkColumns = []string{
	"run_id", "step", "row_index",
	"link_id", "core1", "core2", "cluster1", "cluster2", "link_type",
	"euc_dist", "cwd_dist", "euc_adj", "cwd_adj",
	"lcp_length", "cwd_to_euc", "cwd_to_path",
}
