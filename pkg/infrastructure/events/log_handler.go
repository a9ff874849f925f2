package events

import (
	"github.com/rs/zerolog"
)

// LogHandler writes every event to a logger: session-wide events at info,
// per-reservation events at debug.
type LogHandler struct {
	logger *zerolog.Logger
}

var _ EventHandler = (*LogHandler)(nil)

func NewLogHandler(logger *zerolog.Logger) *LogHandler {
	return &LogHandler{logger: logger}
}

func (h *LogHandler) CanHandle(string) bool { return true }

func (h *LogHandler) Handle(event Event) error {
	var e *zerolog.Event
	switch event.Type() {
	case RecordsImportedEvent, StateResetEvent:
		e = h.logger.Info()
	default:
		e = h.logger.Debug()
	}
	e = e.Str("event_id", event.ID()).Str("stream", event.StreamID())

	switch d := event.Data().(type) {
	case RecordsImported:
		e = e.Str("kind", string(d.Kind)).Str("source", d.Source).
			Int("kept", d.Kept).Int("dropped", d.Dropped).Int("released", d.Released)
	case AssignmentMade:
		e = e.Str("res_number", d.ResNumber).Str("unit", d.UnitID).
			Str("source", string(d.Metadata.Source)).Bool("upgrade", d.Metadata.Upgrade)
	case AssignmentReleased:
		e = e.Str("res_number", d.ResNumber).Str("unit", d.UnitID).Str("reason", d.Reason)
	case StateReset:
		e = e.Int("reservations", d.Reservations).Int("assignments", d.Assignments)
	}
	e.Msg(event.Type())
	return nil
}
