// Package logging configures structured slog output for tokengaps.
//
// By default logs go to stderr only, so analysis output on stdout stays
// clean for piping. A log file with size-based rotation can be added.
package logging
