package domain

// EventKind identifies a change notification.
type EventKind string

const (
	EventConnected      EventKind = "connected"
	EventServiceCreated EventKind = "serviceCreated"
)

func (k EventKind) String() string { return string(k) }

// Event is pushed to observers. Service is an immutable copy of the record
// taken when the event was published.
type Event struct {
	Kind    EventKind      `json:"event"`
	Service *ServiceRecord `json:"service,omitempty"`
}

// NewServiceCreated builds a creation event around a private copy of rec.
func NewServiceCreated(rec ServiceRecord) Event {
	return Event{Kind: EventServiceCreated, Service: &rec}
}
