package ws

// Channel event names. Inbound events come from clients; receive_action
// and error are server-to-client.
const (
	EventJoin       = "join"
	EventLeave      = "leave"
	EventSendAction = "send_action"

	EventReceiveAction = "receive_action"
	EventError         = "error"
)

// Error codes carried on EventError frames.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeStoreFailure    = "STORE_FAILURE"
	CodeRateLimited     = "RATE_LIMITED"
)
