// Package types defines the link record, link type codes, core pair and
// distance value types, step configuration, and standard error types shared
// by the link-table engine and its collaborators.
package types
