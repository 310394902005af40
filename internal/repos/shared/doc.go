// Package shared holds the collaborator interfaces and small value types used across working copy services.
package shared
