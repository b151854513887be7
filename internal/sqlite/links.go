package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

// insertLinks writes the rows of one step table inside tx using a single
// prepared statement.
func insertLinks(tx *sql.Tx, runID string, step int, links []types.LinkRecord) error {
	placeholders := make([]string, len(stepLinkColumns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insertSQL := fmt.Sprintf(
		"INSERT INTO step_links (%s) VALUES (%s)",
		strings.Join(stepLinkColumns, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("preparing link insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range links {
		_, err := stmt.Exec(
			runID, step, i,
			r.LinkID, r.Core1, r.Core2, r.Cluster1, r.Cluster2, int(r.Type),
			r.EucDist, r.CwdDist, int(r.EucAdj), int(r.CwdAdj),
			r.LcpLength, r.CwdToEuc, r.CwdToPath,
		)
		if err != nil {
			return fmt.Errorf("inserting link %d: %w", r.LinkID, err)
		}
	}
	return nil
}

// selectLinks reads the rows of one step table in their original order.
func selectLinks(db *sql.DB, runID string, step int) ([]types.LinkRecord, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM step_links WHERE run_id = ? AND step = ? ORDER BY row_index",
		strings.Join(stepLinkColumns[3:], ", "),
	)
	rows, err := db.Query(query, runID, step)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []types.LinkRecord
	for rows.Next() {
		var r types.LinkRecord
		var lt, eucAdj, cwdAdj int
		err := rows.Scan(
			&r.LinkID, &r.Core1, &r.Core2, &r.Cluster1, &r.Cluster2, &lt,
			&r.EucDist, &r.CwdDist, &eucAdj, &cwdAdj,
			&r.LcpLength, &r.CwdToEuc, &r.CwdToPath,
		)
		if err != nil {
			return nil, err
		}
		r.Type = types.LinkType(lt)
		r.EucAdj = types.Adjacency(eucAdj)
		r.CwdAdj = types.Adjacency(cwdAdj)
		links = append(links, r)
	}
	return links, rows.Err()
}
