// Package logging provides structured logging for the m2web CLI.
//
// It wraps log/slog with level parsing, format selection (JSON or text) and
// default service/version fields. The client library itself never logs;
// logging happens at the CLI boundary and in the internal services.
package logging
