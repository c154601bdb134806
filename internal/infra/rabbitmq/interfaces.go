package rabbitmq

import "context"

const (
	PatternOrderCreated       = "order.created"
	PatternOrderStatusUpdated = "order.status_updated"
)

type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

var (
	_ PublisherInterface = (*Publisher)(nil)
	_ PublisherInterface = NoopPublisher{}
)
