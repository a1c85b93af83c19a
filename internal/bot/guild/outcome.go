package guild

// Reason classifies why a mutation did not fully succeed.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonMemberNotFound
	ReasonRoleNotFound
	ReasonMissingRole
	ReasonPlatformError
)

// Outcome is the soft result of a role or nickname mutation. Recoverable
// conditions are reported through it instead of an error so that callers can
// continue the remaining steps of a multi-step transition.
type Outcome struct {
	OK      bool
	Reason  Reason
	Message string
}

func success(message string) Outcome {
	return Outcome{OK: true, Message: message}
}

func failure(reason Reason, message string) Outcome {
	return Outcome{Reason: reason, Message: message}
}
