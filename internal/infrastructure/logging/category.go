package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	IO              Category = "IO"
	Internal        Category = "Internal"
	Mongo           Category = "Mongo"
	RabbitMQ        Category = "RabbitMQ"
	WebSocket       Category = "WebSocket"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
	Prometheus      Category = "Prometheus"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"

	// WebSocket
	Connection SubCategory = "Connection"
	Membership SubCategory = "Membership"
	Broadcast  SubCategory = "Broadcast"

	// RabbitMQ / Mongo
	Publish SubCategory = "Publish"
	Consume SubCategory = "Consume"
	Append  SubCategory = "Append"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	ConnectionID ExtraKey = "ConnectionID"
	TableID      ExtraKey = "TableID"
	RoomKeyName  ExtraKey = "RoomKey"
	ActionType   ExtraKey = "ActionType"
	Sequence     ExtraKey = "Sequence"
	ErrorMessage ExtraKey = "ErrorMessage"
)
