// internal/reconciler/event.go
package reconciler

import (
	"fmt"
	"strings"

	apperrors "call-intake-workers/internal/common/errors"
	"call-intake-workers/internal/models"
)

// Kind is the resolved shape of an inbound call event.
type Kind int

const (
	KindStarted Kind = iota + 1
	KindEnded
	KindAnalyzed
	KindLegacy
)

func (k Kind) String() string {
	switch k {
	case KindStarted:
		return models.EventTypeCallStarted
	case KindEnded:
		return models.EventTypeCallEnded
	case KindAnalyzed:
		return models.EventTypeCallAnalyzed
	case KindLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// Event is a payload resolved exactly once into its variant. LegacyStatus is set
// only for KindLegacy.
type Event struct {
	Kind         Kind
	LegacyStatus models.CallStatus
	Payload      *models.CallEvent
}

// Resolve classifies a payload. An explicit event_type always wins over call_status;
// call_status alone selects the legacy single-shot path.
func Resolve(p *models.CallEvent) (Event, error) {
	if p == nil {
		return Event{}, apperrors.NewValidationError("event payload is required")
	}
	if strings.TrimSpace(p.CallID) == "" {
		return Event{}, apperrors.NewValidationError("call_id is required")
	}
	if strings.TrimSpace(p.ToNumber) == "" {
		return Event{}, apperrors.NewValidationError("to_number is required")
	}

	switch strings.TrimSpace(p.EventType) {
	case models.EventTypeCallStarted:
		return Event{Kind: KindStarted, Payload: p}, nil
	case models.EventTypeCallEnded:
		return Event{Kind: KindEnded, Payload: p}, nil
	case models.EventTypeCallAnalyzed:
		return Event{Kind: KindAnalyzed, Payload: p}, nil
	case "":
	default:
		return Event{}, apperrors.NewUnknownEventError(fmt.Sprintf("event_type: %s", p.EventType))
	}

	status := models.CallStatus(strings.TrimSpace(p.CallStatus))
	if status == "" {
		return Event{}, apperrors.NewUnknownEventError("neither event_type nor call_status present")
	}
	if !status.Valid() {
		return Event{}, apperrors.NewValidationError(fmt.Sprintf("call_status: %s", p.CallStatus))
	}
	return Event{Kind: KindLegacy, LegacyStatus: status, Payload: p}, nil
}
