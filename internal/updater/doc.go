// Package updater implements the sync command: it walks the plugin and theme
// roots, resolves the newest release of every wordpress.org working copy,
// switches copies that differ (falling back to trunk when a tag switch fails),
// and reloads the web services once if anything was switched.
//
// Every per-directory failure is reported and skipped; only a missing
// privilege, an unreadable root, a missing svn executable, or cancellation
// stops the batch.
package updater
