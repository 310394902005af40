// Package hooks runs the best-effort post-update service reloads.
package hooks
