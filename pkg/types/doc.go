// Package types defines the RecordStore interface, the Project entity,
// configuration, and standard errors for the shelf project catalogue.
//
// Both storage backends (the flat JSON file and the SQLite database) satisfy
// RecordStore; callers pick one at startup and never branch on it again.
package types
