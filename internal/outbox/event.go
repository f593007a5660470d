package outbox

// Event is a domain event staged in the outbox table within the same
// transaction as the write it describes. The Kafka topic equals EventType.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// Event types emitted by the reservation engine.
const (
	EventBookingCreated = "booking.created.v1"
	EventServiceChanged = "service.changed.v1"
	EventClientCreated  = "client.created.v1"
)
