package shared

// MutationPolicy specifies whether executors may change working copies.
type MutationPolicy int

const (
	// MutationApply permits svn update and switch invocations.
	MutationApply MutationPolicy = iota
	// MutationPlanOnly reports intended changes without performing them.
	MutationPlanOnly
)

// MutationPolicyFromDryRun converts the dry-run flag into a policy.
func MutationPolicyFromDryRun(dryRun bool) MutationPolicy {
	if dryRun {
		return MutationPlanOnly
	}
	return MutationApply
}

// AllowsMutation reports whether svn mutations may run.
func (policy MutationPolicy) AllowsMutation() bool {
	return policy == MutationApply
}

// String returns a label suitable for logs and reports.
func (policy MutationPolicy) String() string {
	if policy == MutationPlanOnly {
		return "plan"
	}
	return "apply"
}
