// Package version compares release identifiers the way wordpress.org tags are written in practice.
package version
