package events

import (
	"github.com/vsinha/fleetdash/pkg/domain/entities"
)

const (
	RecordsImportedEvent      = "records.imported"
	AssignmentAutoEvent       = "assignment.auto"
	AssignmentOverriddenEvent = "assignment.overridden"
	AssignmentReleasedEvent   = "assignment.released"
	StateResetEvent           = "state.reset"
)

// SessionStream is the stream for events that concern the whole session.
const SessionStream = "session"

type RecordsImported struct {
	Source   string              `json:"source"`
	Kind     entities.RecordKind `json:"kind"`
	Read     int                 `json:"read"`
	Kept     int                 `json:"kept"`
	Dropped  int                 `json:"dropped"`
	Released int                 `json:"released"`
}

type AssignmentMade struct {
	ResNumber string            `json:"res_number"`
	UnitID    string            `json:"unit"`
	Metadata  entities.Metadata `json:"metadata"`
}

type AssignmentReleased struct {
	ResNumber string `json:"res_number"`
	UnitID    string `json:"unit"`
	Reason    string `json:"reason"`
}

type StateReset struct {
	Reservations int `json:"reservations"`
	Available    int `json:"available"`
	DueIn        int `json:"due_in"`
	Assignments  int `json:"assignments"`
}

func NewRecordsImportedEvent(data RecordsImported) Event {
	return NewEvent(RecordsImportedEvent, string(data.Kind), data)
}

func NewAssignmentAutoEvent(resNumber, unitID string, md entities.Metadata) Event {
	return NewEvent(AssignmentAutoEvent, resNumber, AssignmentMade{
		ResNumber: resNumber,
		UnitID:    unitID,
		Metadata:  md,
	})
}

func NewAssignmentOverriddenEvent(resNumber, unitID string, md entities.Metadata) Event {
	return NewEvent(AssignmentOverriddenEvent, resNumber, AssignmentMade{
		ResNumber: resNumber,
		UnitID:    unitID,
		Metadata:  md,
	})
}

func NewAssignmentReleasedEvent(resNumber, unitID, reason string) Event {
	return NewEvent(AssignmentReleasedEvent, resNumber, AssignmentReleased{
		ResNumber: resNumber,
		UnitID:    unitID,
		Reason:    reason,
	})
}

func NewStateResetEvent(data StateReset) Event {
	return NewEvent(StateResetEvent, SessionStream, data)
}
