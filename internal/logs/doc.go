// Package logs reads the recitebot log file for the CLI: the last N lines,
// follow mode that polls for appended lines, and filters that match a
// component or a request's correlation ID in either log format.
package logs
