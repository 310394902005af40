// Package resolve determines the newest published release of a theme or plugin.
//
// ListingResolver reads a theme's HTML directory listing, ReadmeResolver reads
// the Stable tag of a plugin's trunk readme, and TagListResolver picks the
// greatest numeric tag from svn list. Registry selects one per origin kind.
package resolve
