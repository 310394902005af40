// Package filesystem provides the operating-system implementation of shared.FileSystem.
package filesystem
