// Package logger provides structured logging with configurable log levels.
// It wraps the standard log/slog package, writes to standard error so that
// standard output stays reserved for report records, and can mirror records
// into a size-rotated log file.
package logger
