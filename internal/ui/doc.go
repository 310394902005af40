// Package ui renders command lifecycle events as concise console messages.
//
// Structured telemetry continues to flow through the executor's own logger;
// the console logger only exists for the human-readable log format.
package ui
