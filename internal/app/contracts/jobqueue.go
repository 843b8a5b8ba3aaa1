package contracts

import "context"

// JobDelivery is one dequeued job id plus the transport tag needed to settle
// it. Settlement goes back through the queue so the worker never touches the
// underlying channel.
type JobDelivery struct {
	JobID       string
	DeliveryTag uint64
}

// JobQueue is the durable FIFO channel between admission and the worker pool.
type JobQueue interface {
	Enqueue(ctx context.Context, jobID string) error
	// Consume returns a channel of deliveries in FIFO order. The channel is
	// closed when ctx is cancelled or the transport drops.
	Consume(ctx context.Context) (<-chan JobDelivery, error)
	Ack(deliveryTag uint64) error
	Reject(deliveryTag uint64, requeue bool) error
	Length(ctx context.Context) (int, error)
}
