// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines the abstractions used throughout
// wpsvn to run svn and service-control commands in a testable manner.
package execshell
