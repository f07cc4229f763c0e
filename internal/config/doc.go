// Package config loads the schedule generation settings.
//
// Settings come from an embedded default file describing the club's league tables,
// optionally merged with a user supplied YAML, TOML or JSON file and SPIELPLAN_ prefixed
// environment variables. The source list replaces the per-league copies of the generation
// script: every entry names an export, the team code it belongs to, and the rule used to
// tell the club's sub-teams apart.
package config
