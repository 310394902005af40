package privilege

import (
	"errors"
	"fmt"
	"os"
)

const (
	superuserIDConstant           = 0
	notPrivilegedMessageConstant  = "wpsvn must be run as root"
	notPrivilegedTemplateConstant = "%w (effective uid %d)"
)

// ErrNotPrivileged indicates the process lacks superuser privileges.
var ErrNotPrivileged = errors.New(notPrivilegedMessageConstant)

// EffectiveUserIDProvider returns the effective user id of the process.
type EffectiveUserIDProvider func() int

// Checker verifies the process runs with superuser privileges.
type Checker struct {
	effectiveUserID EffectiveUserIDProvider
}

// NewChecker constructs a Checker; a nil provider falls back to os.Geteuid.
func NewChecker(provider EffectiveUserIDProvider) Checker {
	if provider == nil {
		provider = os.Geteuid
	}
	return Checker{effectiveUserID: provider}
}

// Check returns ErrNotPrivileged unless the effective user id is 0.
func (checker Checker) Check() error {
	provider := checker.effectiveUserID
	if provider == nil {
		provider = os.Geteuid
	}
	userID := provider()
	if userID != superuserIDConstant {
		return fmt.Errorf(notPrivilegedTemplateConstant, ErrNotPrivileged, userID)
	}
	return nil
}
