package kafka

// Topic definitions for Kafka event streaming
const (
	// TopicOrderUpdates carries every order normalized by an exchange adapter
	TopicOrderUpdates = "exchange.orders"
)
