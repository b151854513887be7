// Package network populates and refines the link table: it deduplicates
// pairwise distances, reconciles adjacency lists, labels connected
// components, classifies links against distance thresholds, merges
// fragments into clusters, and prunes the network to nearest neighbours.
//
// Every function works on whole tables and is a pure function of its
// inputs, so a failed step can be rerun from the previous step's table with
// the same result.
package network
