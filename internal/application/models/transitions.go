package models

import (
	id "lettings/pkg/domain"
	dErrors "lettings/pkg/domain-errors"
)

// Action names a forward edge trigger. Reset is not an action: it walks
// statusHistory backwards instead of the table.
type Action string

const (
	ActionAccept           Action = "accept"
	ActionReject           Action = "reject"
	ActionBackgroundPass   Action = "background_pass"
	ActionBackgroundFail   Action = "background_fail"
	ActionSendToLandlord   Action = "send_to_landlord"
	ActionSendToAgentFinal Action = "send_to_agent_final"
	ActionReset            Action = "reset"
)

// Edge is one row of the transition table.
type Edge struct {
	From   Status
	Action Action
	To     Status
	Role   id.Role
}

type edgeKey struct {
	from   Status
	action Action
}

var edges = []Edge{
	{StatusSubmitted, ActionAccept, StatusAgentAccepted, id.RoleAgent},
	{StatusSubmitted, ActionReject, StatusAgentRejected, id.RoleAgent},
	{StatusAgentAccepted, ActionBackgroundPass, StatusBackgroundPassed, id.RoleAgent},
	{StatusAgentAccepted, ActionBackgroundFail, StatusBackgroundFailed, id.RoleAgent},
	{StatusAgentAccepted, ActionSendToLandlord, StatusSentToLandlord, id.RoleAgent},
	{StatusBackgroundPassed, ActionSendToLandlord, StatusSentToLandlord, id.RoleAgent},
	{StatusSentToLandlord, ActionAccept, StatusLandlordApproved, id.RoleLandlord},
	{StatusSentToLandlord, ActionReject, StatusLandlordRejected, id.RoleLandlord},
	{StatusLandlordApproved, ActionSendToAgentFinal, StatusSentToAgentFinal, id.RoleLandlord},
	{StatusFinalApproved, ActionSendToAgentFinal, StatusSentToAgentFinal, id.RoleLandlord},
}

var table = func() map[edgeKey]Edge {
	m := make(map[edgeKey]Edge, len(edges))
	for _, e := range edges {
		m[edgeKey{e.From, e.Action}] = e
	}
	return m
}()

// Edges returns a copy of the transition table.
func Edges() []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// Lookup finds the edge for action out of from.
func Lookup(from Status, action Action) (Edge, bool) {
	e, ok := table[edgeKey{from, action}]
	return e, ok
}

// Resolve finds the edge and checks the actor's role against it.
func Resolve(from Status, action Action, role id.Role) (Edge, error) {
	e, ok := Lookup(from, action)
	if !ok {
		return Edge{}, dErrors.New(dErrors.CodeInvalidTransition,
			"cannot "+string(action)+" an application in status "+string(from))
	}
	if e.Role != role {
		return Edge{}, dErrors.New(dErrors.CodeUnauthorized,
			"only the "+string(e.Role)+" may "+string(action)+" an application in status "+string(from))
	}
	return e, nil
}

// producer returns the edge that moved an application from prev to current.
func producer(prev, current Status) (Edge, bool) {
	for _, e := range edges {
		if e.From == prev && e.To == current {
			return e, true
		}
	}
	return Edge{}, false
}
