package model

// Severity ranks how urgently a warning should be surfaced.
type Severity string

const (
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// WarningCode identifies the rule that produced a warning.
type WarningCode string

const (
	WarnBehindParent    WarningCode = "BEHIND_PARENT"
	WarnDirty           WarningCode = "DIRTY"
	WarnChecksFailing   WarningCode = "CI_FAIL"
	WarnNamingViolation WarningCode = "BRANCH_NAMING_VIOLATION"
	WarnTreeDivergence  WarningCode = "TREE_DIVERGENCE"
)

// Warning is one advisory finding about the tree. The engine never
// blocks or auto-corrects; resolution is always a caller-side action.
type Warning struct {
	Severity Severity          `json:"severity"`
	Code     WarningCode       `json:"code"`
	Message  string            `json:"message"`
	Meta     map[string]string `json:"meta,omitempty"`
}

// NamingRule is a set of branch-name patterns. A non-default branch that
// matches none of the patterns triggers a naming-violation warning. Used
// only for warnings, never for structural inference.
type NamingRule struct {
	Patterns []string `json:"patterns"`
}
