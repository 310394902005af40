// Package inspect reads Subversion metadata of candidate directories.
//
// Reader confirms a candidate is a working copy, queries svn info, classifies
// the origin URL, and refreshes plugin trunk checkouts in place.
package inspect
