// Package audit captures the workflow trail: every supervision and
// lifecycle state change is emitted as a structured event. Events are
// written through the transactional outbox so they commit atomically
// with the state change they describe; the outbox worker ships them to
// Kafka.
package audit

import (
	"time"

	id "thesisflow/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	// ActorID is the user whose action produced the event.
	ActorID id.UserID
	// Subject identifies the entity acted on (thesis, request, offer,
	// application id as string).
	Subject string
	Action  Action
	// Decision carries accept/reject outcomes for respond events.
	Decision string
	Reason   string
	// RequestID is the correlation ID from the request context.
	RequestID string
}

// Action names a workflow state change.
type Action string

const (
	// Thesis lifecycle events.
	EventThesisCreated   Action = "thesis_created"
	EventThesisUpdated   Action = "thesis_updated"
	EventThesisSubmitted Action = "thesis_submitted"
	EventThesisDefended  Action = "thesis_defended"
	EventThesisDeleted   Action = "thesis_deleted"

	// Supervision request events.
	EventRequestCreated  Action = "supervision_request_created"
	EventRequestAccepted Action = "supervision_request_accepted"
	EventRequestRejected Action = "supervision_request_rejected"

	// Supervisor assignment events.
	EventSupervisorAssigned   Action = "supervisor_assigned"
	EventCoSupervisorAssigned Action = "co_supervisor_assigned"

	// Offer and application events.
	EventOfferCreated        Action = "offer_created"
	EventOfferClosed         Action = "offer_closed"
	EventOfferArchived       Action = "offer_archived"
	EventApplicationCreated  Action = "offer_application_created"
	EventApplicationAccepted Action = "offer_application_accepted"
	EventApplicationRejected Action = "offer_application_rejected"
)
