// Package discovery enumerates candidate working copies beneath the plugin and theme roots.
package discovery
