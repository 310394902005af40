// Package subversion provides a typed client over the svn command-line tool.
//
// The Client issues info, list, switch, update, and shallow checkout
// operations through execshell and decodes the --xml output of info and list
// into Info and ListEntry values.
package subversion
