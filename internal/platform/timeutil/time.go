package timeutil

// RFC3339Micros is RFC 3339 UTC with fixed microsecond precision.
// Use this format for log timestamps.
const RFC3339Micros = "2006-01-02T15:04:05.000000Z"
