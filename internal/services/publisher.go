package services

// EventPublisher publishes domain events to a message broker. A nil publisher
// disables publishing; services must tolerate that.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}
