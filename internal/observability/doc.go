// Package observability provides structured logging for the command
// gateway.
//
// Logging is zap-based and configured from the environment: JSON output
// for production, human-readable console output for development. Request
// IDs are propagated through the context by the middleware package.
package observability
