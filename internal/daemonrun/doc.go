// Package daemonrun wires configuration, storage and the text-processing
// gateway into a running API server and keeps it up until a signal arrives.
package daemonrun
