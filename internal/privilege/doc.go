// Package privilege guards commands that must run as the superuser.
package privilege
