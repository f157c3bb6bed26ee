package ticket

import "strings"

type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "InProgress"
	StatusResolved   Status = "Resolved"
	StatusClosed     Status = "Closed"
)

// Statuses lists every lifecycle state.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

// InitialStatus is the state of every newly created ticket.
const InitialStatus = StatusOpen

// transitions is the adjacency list of the lifecycle graph. Staying in the
// current state is not an edge.
var transitions = map[Status]map[Status]struct{}{
	StatusOpen:       {StatusInProgress: {}, StatusClosed: {}},
	StatusInProgress: {StatusOpen: {}, StatusResolved: {}, StatusClosed: {}},
	StatusResolved:   {StatusInProgress: {}, StatusClosed: {}},
	StatusClosed:     {StatusOpen: {}},
}

// CanTransition reports whether a ticket in state from may move to state to.
func CanTransition(from, to Status) bool {
	_, ok := transitions[from][to]
	return ok
}

// ParseStatus matches a status name case-insensitively.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, true
		}
	}
	return "", false
}

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

var priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

const DefaultPriority = PriorityMedium

// ParsePriority matches a priority name case-insensitively.
func ParsePriority(s string) (Priority, bool) {
	for _, p := range priorities {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, true
		}
	}
	return "", false
}
