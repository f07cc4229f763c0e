// Package cli implements the command-line interface for spielplan.
//
// The cli package provides the Cobra-based root command that loads the
// configuration, runs the pipeline over all league exports and writes the merged
// schedule as text, JSON or semicolon CSV. It can also export the run to SQLite
// and report what changed since the previous run.
package cli
