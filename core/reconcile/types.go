package reconcile

import (
	"errors"

	"golang.org/x/net/html"
)

// ErrNoParent is returned when a planned replacement targets a detached element.
var ErrNoParent = errors.New("element has no parent")

// ActionType represents the type of mutation an element needs.
type ActionType string

const (
	// ActionSkip leaves an element that is already in its target state.
	ActionSkip ActionType = "skip"
	// ActionShow restores the display of a placeholder.
	ActionShow ActionType = "show"
	// ActionHide hides a placeholder.
	ActionHide ActionType = "hide"
	// ActionReplace swaps a frame or executable for a rebuilt copy.
	ActionReplace ActionType = "replace"
	// ActionMutate rewrites attributes of an element in place.
	ActionMutate ActionType = "mutate"
)

// Action represents a planned mutation of one tagged element.
type Action struct {
	// Type specifies the mutation to perform.
	Type ActionType `json:"type"`

	// Service is the service the element is tagged with.
	Service string `json:"service"`

	// Tag is the element's tag name.
	Tag string `json:"tag"`

	// Kind is the reconciliation policy of the element.
	Kind Kind `json:"kind"`

	// Consent is the target state the action moves the element to.
	Consent bool `json:"consent"`

	// Reason explains skips.
	Reason string `json:"reason,omitempty"`

	node *html.Node
}

// Summary counts what Apply did.
type Summary struct {
	Replaced int `json:"replaced"`
	Mutated  int `json:"mutated"`
	Toggled  int `json:"toggled"`
	Skipped  int `json:"skipped"`
}

// Add accumulates another summary.
func (s *Summary) Add(o Summary) {
	s.Replaced += o.Replaced
	s.Mutated += o.Mutated
	s.Toggled += o.Toggled
	s.Skipped += o.Skipped
}
