// Package origin classifies Subversion origin URLs of WordPress themes and plugins.
//
// Themes are laid out as <host>/<slug>/<version>; plugins follow the standard
// trunk and tags layout as <host>/<slug>/tags/<version> or <host>/<slug>/trunk.
package origin
