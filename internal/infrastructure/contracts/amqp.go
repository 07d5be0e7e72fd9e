package contracts

// AmqpMessage is the message structure for AMQP.
type AmqpMessage struct {
	AuthorID string `json:"authorId"`
	Data     []byte `json:"data"`
}

// Routing keys - consistent event naming
const (
	EventActionLogged = "action.logged"
)
