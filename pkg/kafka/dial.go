// Package kafka holds the connection helpers shared by the producer and
// consumer wrappers.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	DefaultConnAttempts = 10
	DefaultConnTimeout  = time.Second
)

var ErrNoBrokers = errors.New("no kafka brokers configured")

// WaitForBrokers pings the first broker until it answers or attempts run out.
func WaitForBrokers(ctx context.Context, who string, brokers []string, attempts int, timeout time.Duration) error {
	if len(brokers) == 0 {
		return fmt.Errorf("%s - WaitForBrokers: %w", who, ErrNoBrokers)
	}

	var err error
	for attempts > 0 {
		err = ping(ctx, brokers[0])
		if err == nil {
			return nil
		}

		log.Printf("%s is trying to connect, attempts left: %d", who, attempts)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s - WaitForBrokers: %w", who, ctx.Err())
		case <-time.After(timeout):
		}

		attempts--
	}

	return fmt.Errorf("%s - WaitForBrokers - connAttempts == 0: %w", who, err)
}

func ping(ctx context.Context, broker string) error {
	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		return fmt.Errorf("kafka.DialContext: %w", err)
	}
	defer conn.Close()

	_, err = conn.Brokers()
	if err != nil {
		return fmt.Errorf("conn.Brokers: %w", err)
	}

	return nil
}
