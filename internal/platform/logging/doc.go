// Package logging owns the process-wide zap logger. Entries are JSON lines on
// stdout using Cloud Logging field names (severity, timestamp, message).
// Request middleware binds a per-request child logger to the context, carrying
// the request id and, when a project id is configured, Cloud Trace fields.
package logging
