package order

import "fmt"

// Status is the fulfilment lifecycle stage.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"

	// legacyPendingVerification is the historical spelling of Pending.
	legacyPendingVerification = "Pending Verification"
)

// ParseStatus accepts the lifecycle tokens and folds the legacy
// "Pending Verification" alias into Pending.
func ParseStatus(raw string) (Status, error) {
	switch raw {
	case legacyPendingVerification:
		return StatusPending, nil
	case string(StatusPending), string(StatusProcessing), string(StatusShipped),
		string(StatusDelivered), string(StatusCancelled):
		return Status(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Verification tracks manual payment proof separately from the lifecycle.
type Verification string

const (
	VerificationNone     Verification = "None"
	VerificationPending  Verification = "Verification Pending"
	VerificationVerified Verification = "Verified"
)

func ParseVerification(raw string) (Verification, error) {
	switch v := Verification(raw); v {
	case VerificationNone, VerificationPending, VerificationVerified:
		return v, nil
	case "":
		return VerificationNone, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVerification, raw)
}

// Action is an operator command on the lifecycle.
type Action string

const (
	ActionAccept  Action = "accept"
	ActionReject  Action = "reject"
	ActionShip    Action = "ship"
	ActionCancel  Action = "cancel"
	ActionDeliver Action = "deliver"
)

type transition struct {
	from Status
	to   Status
}

var actions = map[Action]transition{
	ActionAccept:  {StatusPending, StatusProcessing},
	ActionReject:  {StatusPending, StatusCancelled},
	ActionShip:    {StatusProcessing, StatusShipped},
	ActionCancel:  {StatusProcessing, StatusCancelled},
	ActionDeliver: {StatusShipped, StatusDelivered},
}

var allowedTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Target returns the status an action leads to from the given status.
func (a Action) Target(from Status) (Status, error) {
	t, ok := actions[a]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}
	if t.from != from {
		return "", &TransitionError{From: from, To: t.to}
	}
	return t.to, nil
}

// AvailableActions lists the operator actions valid from s, in lifecycle order.
func AvailableActions(s Status) []Action {
	var out []Action
	for _, a := range []Action{ActionAccept, ActionReject, ActionShip, ActionCancel, ActionDeliver} {
		if actions[a].from == s {
			out = append(out, a)
		}
	}
	return out
}
