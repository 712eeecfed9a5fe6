// Package preflight provides readiness checks for the directories, the
// text-processing backend and the external services recitebot depends on.
//
// The server runtime runs the local checks at startup and logs failures
// without refusing to start. The CLI "check" command runs every check,
// including network probes, and exits non-zero when any of them fails.
package preflight
