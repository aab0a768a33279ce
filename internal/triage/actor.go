// Package triage resolves reports: an ordered auto-decision table and the
// manual admin path, both guarded by a conditional status write.
package triage

// Actor identifies who resolved a report. The zero value is the system;
// an admin actor carries the admin's user id. This replaces the bare
// "system" string the rest of the platform used to pass around.
type Actor struct {
	adminID string
}

// System is the automated processor actor.
func System() Actor {
	return Actor{}
}

// Admin returns an actor for a human moderator.
func Admin(id string) Actor {
	return Actor{adminID: id}
}

// IsSystem reports whether the actor is the automated processor.
func (a Actor) IsSystem() bool {
	return a.adminID == ""
}

// String renders the value persisted in Report.ProcessedBy.
func (a Actor) String() string {
	if a.adminID == "" {
		return "system"
	}
	return a.adminID
}
