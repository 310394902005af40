// Package utils holds the configuration loader and logger factory shared by the wpsvn commands.
package utils
