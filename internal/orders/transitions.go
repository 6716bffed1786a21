package orders

import "fmt"

// TransitionPolicy decides whether an order may move from one status to another.
type TransitionPolicy func(from, to Status) error

// Permissive allows any status to move to any other status.
func Permissive(_, _ Status) error {
	return nil
}

var forwardSteps = map[Status]Status{
	StatusPending:    StatusProcessing,
	StatusProcessing: StatusReady,
	StatusReady:      StatusCompleted,
}

// Forward allows one step along pending, processing, ready, completed, and
// cancellation from any non-terminal status. Re-applying the current status is a no-op.
func Forward(from, to Status) error {
	if from == to {
		return nil
	}
	if to == StatusCancelled && !from.Terminal() {
		return nil
	}
	if next, ok := forwardSteps[from]; ok && next == to {
		return nil
	}
	return fmt.Errorf("%s -> %s: %w", from, to, ErrInvalidTransition)
}

// PolicyFor maps the strict flag from configuration to a policy.
func PolicyFor(strict bool) TransitionPolicy {
	if strict {
		return Forward
	}
	return Permissive
}
