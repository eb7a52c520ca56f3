package policy

// RejectionKind separates permission failures from bad input.
type RejectionKind int

const (
	// KindAuthorization means the viewer may not perform the action.
	KindAuthorization RejectionKind = iota + 1
	// KindValidation means the input is well-formed but semantically invalid.
	KindValidation
)

func (k RejectionKind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Rejection codes. Each maps to exactly one user-facing reason.
const (
	CodeEditNotAllowed         = "EDIT_NOT_ALLOWED"
	CodeStatusEmpty            = "STATUS_EMPTY"
	CodeStatusUnknown          = "STATUS_UNKNOWN"
	CodeAssigneeCannotClose    = "ASSIGNEE_CANNOT_CLOSE"
	CodeRequesterCannotResolve = "REQUESTER_CANNOT_RESOLVE"
	CodeOnlyRequesterReopens   = "ONLY_REQUESTER_REOPENS"
	CodeTransitionNotAllowed   = "TRANSITION_NOT_ALLOWED"
	CodeDueDateLocked          = "DUE_DATE_LOCKED"
	CodeDueDateBeforeCreated   = "DUE_DATE_BEFORE_CREATED"
	CodeDueDateInvalid         = "DUE_DATE_INVALID"
)

// Rejection is the reason an action was refused. It implements error so
// callers can pass it along, but the policy returns it as a value and never
// panics on a disallowed action.
type Rejection struct {
	Kind   RejectionKind
	Code   string
	Reason string
}

func (r *Rejection) Error() string {
	return r.Reason
}

func authorization(code, reason string) *Rejection {
	return &Rejection{Kind: KindAuthorization, Code: code, Reason: reason}
}

func validation(code, reason string) *Rejection {
	return &Rejection{Kind: KindValidation, Code: code, Reason: reason}
}
