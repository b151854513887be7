// Package linktable holds the in-memory link table: a dense, row-ordered set
// of link records between core areas, the row/column compaction helpers used
// to drop records, the delimited text codec shared by every pipeline step,
// and the readers and writers for collaborator-provided pair, adjacency, and
// core list files.
//
// A Table is either narrow (10 columns, before least-cost path metrics are
// known) or wide (13 columns). Link ids are dense 1..N only after
// ReindexLinkIDs; every structural change must be followed by a reindex
// before the table is written or handed to a consumer that reads link ids.
package linktable
