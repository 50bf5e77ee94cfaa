// Package table implements a generic asynchronous table controller: filters,
// pagination, and a load lifecycle over a caller-supplied row loader.
//
// # Load lifecycle
//
// A controller moves through Idle, Loading, Loaded, and Error. Loading keeps
// the previous rows visible so a reload does not blank the table; a failed
// load likewise keeps the last good rows and reports through the notifier.
// Overlapping loads resolve last-issued-wins: every load takes a sequence
// number at issue time, and a completion whose number is no longer current is
// discarded in full, rows and errors both.
//
// # Architecture boundaries
//
// The controller never talks to the backend itself; the loader closure does.
// apiclient.Client.Loader adapts a REST list endpoint to the expected
// signature.
//
// # What this package must NOT do
//
//   - Issue a load on filter mutation; SetFilter only stages state.
//   - Apply rows or errors from a superseded load.
//   - Touch session or credential state.
package table
