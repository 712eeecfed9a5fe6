// Package logging builds the slog loggers used by the recitebot binaries.
//
// Console and JSON handlers share level and output plumbing; NewFromConfig
// adds recitebot.log under the configured log directory. Request handlers tag
// lines with a correlation ID through WithRequestID and WithContext, and
// warnings go through WarnWithContext so each one names its cause, impact and
// a next step.
package logging
