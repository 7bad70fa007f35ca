// Package shelf is the public entry point for opening a project store.
// It hides which backend serves the records: callers get a
// types.RecordStore and never branch on the backend again.
package shelf

// Version is the release of the shelf module.
const Version = "0.3.0"
