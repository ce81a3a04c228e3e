package statemachine

import (
	"errors"
	"qrmenu-api/models"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor string // "owner" or "guest"
}

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	// Owner accepts or rejects a fresh order; the guest can still back out
	{From: models.StatusPending, To: models.StatusAccepted, Actor: "owner"},
	{From: models.StatusPending, To: models.StatusCancelled, Actor: "owner"},
	{From: models.StatusPending, To: models.StatusCancelled, Actor: "guest"},
	// Kitchen flow, owner-driven
	{From: models.StatusAccepted, To: models.StatusPreparing, Actor: "owner"},
	{From: models.StatusAccepted, To: models.StatusCancelled, Actor: "owner"},
	{From: models.StatusPreparing, To: models.StatusReady, Actor: "owner"},
	{From: models.StatusReady, To: models.StatusCompleted, Actor: "owner"},
}

type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor string
}

// Build a lookup map for O(1) validation
var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.OrderStatus, actor string) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return errors.New(
		"invalid transition: " + string(from) + " -> " + string(to) +
			" is not allowed for actor '" + actor + "'. " +
			"Valid transitions from " + string(from) + " are: " + describeValidFrom(from),
	)
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
