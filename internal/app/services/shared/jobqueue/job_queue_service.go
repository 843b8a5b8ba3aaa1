package jobqueue

import (
	"careplan-service/internal/app/contracts"
	"careplan-service/internal/pkg/constvars"
	"careplan-service/internal/pkg/exceptions"
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	StandardQueueName   = "care_plan_generation_queue"
	DeadLetterQueueName = "care_plan_generation_dlq"
)

// jobMessage is the payload stored in RabbitMQ. The job row itself lives in
// Mongo; the queue carries only the id.
type jobMessage struct {
	MessageID string `json:"message_id"`
	JobID     string `json:"job_id"`
}

// Service is the durable FIFO channel between admission and the worker pool.
// Publishes are persistent and confirmed; deliveries are manually acked.
type Service struct {
	ch       *amqp.Channel
	log      *zap.Logger
	prefetch int
	confirms chan amqp.Confirmation
	mu       sync.Mutex
}

// NewService declares the durable queues, enables confirms and sets QoS.
func NewService(conn *amqp.Connection, log *zap.Logger, prefetch int) (*Service, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(
		StandardQueueName, // name
		true,              // durable
		false,             // autoDelete
		false,             // exclusive
		false,             // noWait
		nil,               // args
	)
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(
		DeadLetterQueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}

	if prefetch <= 0 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		return nil, err
	}

	svc := &Service{
		ch:       ch,
		log:      log,
		prefetch: prefetch,
		confirms: ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
	}

	return svc, nil
}

var _ contracts.JobQueue = (*Service)(nil)

// Enqueue publishes a job id to the queue tail with persistence and waits for
// the broker confirm. A failure here leaves the pending job row orphaned; the
// sweep re-enqueues it.
func (s *Service) Enqueue(ctx context.Context, jobID string) error {
	body, err := json.Marshal(jobMessage{MessageID: uuid.NewString(), JobID: jobID})
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}

	if err := s.ch.PublishWithContext(ctx, "", StandardQueueName, false, false, msg); err != nil {
		return exceptions.ErrRabbitMQPublishMessage(err, StandardQueueName)
	}

	select {
	case confirmed := <-s.confirms:
		if !confirmed.Ack {
			return exceptions.ErrRabbitMQPublishMessage(fmt.Errorf("message not confirmed"), StandardQueueName)
		}
	case <-ctx.Done():
		return exceptions.ErrRabbitMQPublishMessage(ctx.Err(), StandardQueueName)
	}

	s.log.Info("jobqueue.Enqueue published",
		zap.String(constvars.LoggingJobIDKey, jobID),
		zap.String(constvars.LoggingQueueNameKey, StandardQueueName))
	return nil
}

// Consume starts delivering job ids in FIFO order. Poison payloads are moved
// to the DLQ instead of looping back.
func (s *Service) Consume(ctx context.Context) (<-chan contracts.JobDelivery, error) {
	deliveries, err := s.ch.Consume(
		StandardQueueName, // queue
		"",                // consumer tag
		false,             // autoAck
		false,             // exclusive
		false,             // noLocal
		false,             // noWait
		nil,               // args
	)
	if err != nil {
		return nil, exceptions.ErrRabbitMQConsume(err, StandardQueueName)
	}

	out := make(chan contracts.JobDelivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				var payload jobMessage
				if err := json.Unmarshal(d.Body, &payload); err != nil || payload.JobID == "" {
					s.log.Warn("jobqueue.Consume poison message moved to DLQ",
						zap.String(constvars.LoggingQueueNameKey, StandardQueueName))
					_ = d.Ack(false)
					_ = s.publishRaw(ctx, DeadLetterQueueName, d.Body)
					continue
				}
				select {
				case out <- contracts.JobDelivery{JobID: payload.JobID, DeliveryTag: d.DeliveryTag}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (s *Service) Ack(deliveryTag uint64) error {
	return s.ch.Ack(deliveryTag, false)
}

func (s *Service) Reject(deliveryTag uint64, requeue bool) error {
	return s.ch.Reject(deliveryTag, requeue)
}

// Length reports the number of ready messages in the queue.
func (s *Service) Length(ctx context.Context) (int, error) {
	state, err := s.ch.QueueDeclarePassive(StandardQueueName, true, false, false, false, nil)
	if err != nil {
		return 0, exceptions.ErrRabbitMQInspectQueue(err, StandardQueueName)
	}
	return state.Messages, nil
}

func (s *Service) publishRaw(ctx context.Context, queue string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := amqp.Publishing{ContentType: constvars.MIMEApplicationJSON, Body: body, DeliveryMode: amqp.Persistent}
	if err := s.ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		return exceptions.ErrRabbitMQPublishMessage(err, queue)
	}
	select {
	case confirmed := <-s.confirms:
		if !confirmed.Ack {
			return exceptions.ErrRabbitMQPublishMessage(fmt.Errorf("message not confirmed"), queue)
		}
	case <-ctx.Done():
		return exceptions.ErrRabbitMQPublishMessage(ctx.Err(), queue)
	}
	return nil
}
