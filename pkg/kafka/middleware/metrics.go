package kafka_middleware

import (
	"context"
	"time"

	"roombook/pkg/kafka"
)

const (
	DirectionPublish = "publish"
	DirectionConsume = "consume"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Observer is satisfied by *metrics.Metrics.
type Observer interface {
	ObserveKafka(direction, topic, outcome string, elapsed time.Duration)
}

func MetricsProducerMiddleware(observer Observer) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		observer.ObserveKafka(DirectionPublish, msg.Topic, outcome(err), time.Since(start))
		return err
	}
}

func MetricsConsumerMiddleware(observer Observer) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		observer.ObserveKafka(DirectionConsume, msg.Topic, outcome(err), time.Since(start))
		return err
	}
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
