package orders

import (
	"errors"
	"fmt"

	"github.com/example/fftopup/internal/models"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

// validNext holds the row-level actions an operator may take on an order.
var validNext = map[Status]map[Status]bool{
	StatusPending:    {StatusCompleted: true, StatusRejected: true},
	StatusProcessing: {StatusCompleted: true},
	StatusCompleted:  {},
	StatusRejected:   {},
}

var (
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrIllegalTransition = errors.New("status transition not allowed")
	ErrInvalidMode       = errors.New("invalid update mode")
	ErrUnknownKind       = errors.New("unknown order kind")
)

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Terminal reports whether no action leads out of s.
func (s Status) Terminal() bool {
	return len(validNext[s]) == 0
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := validNext[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// Mode selects how an admin status change is checked.
type Mode string

const (
	// ModeAction is a row-level action and must follow the transition table.
	ModeAction Mode = "action"
	// ModeOverride is the free-form status select of the order detail view.
	// Any status is accepted; moves outside the table are logged and flagged.
	ModeOverride Mode = "override"
)

// ParseMode defaults to ModeAction when s is empty.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAction:
		return ModeAction, nil
	case ModeOverride:
		return ModeOverride, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Kind names which table an order lives in.
type Kind string

const (
	KindDiamond Kind = models.KindDiamond
	KindOffer   Kind = models.KindOffer
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindDiamond, KindOffer:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}
