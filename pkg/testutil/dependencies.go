// Package testutil holds helpers for tests that talk to real brokers. Each
// helper skips the calling test when the dependency cannot be reached.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// Environment variables that point tests at live dependencies
const (
	RedisAddrEnv = "MATCHINGO_TEST_REDIS_ADDR"
	KafkaAddrEnv = "MATCHINGO_TEST_KAFKA_ADDR"
)

const probeTimeout = 2 * time.Second

// RedisAddr returns the Redis address tests should use
func RedisAddr() string {
	if addr := os.Getenv(RedisAddrEnv); addr != "" {
		return addr
	}
	return "localhost:6379"
}

// KafkaAddr returns the Kafka broker address tests should use
func KafkaAddr() string {
	if addr := os.Getenv(KafkaAddrEnv); addr != "" {
		return addr
	}
	return "localhost:9092"
}

// SkipIfRedisUnavailable skips the test if Redis is unavailable on the specified address
func SkipIfRedisUnavailable(t testing.TB, redisAddr string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Skipping test: Redis not available at %s - %v", redisAddr, err)
	}
}

// SkipIfKafkaUnavailable skips the test if no Kafka broker answers a
// metadata request on the specified address
func SkipIfKafkaUnavailable(t testing.TB, kafkaAddr string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", kafkaAddr)
	if err != nil {
		t.Skipf("Skipping test: Kafka not available at %s - %v", kafkaAddr, err)
		return
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(probeTimeout))
	if _, err := conn.Brokers(); err != nil {
		t.Skipf("Skipping test: Kafka at %s is not responding correctly - %v", kafkaAddr, err)
	}
}

// SkipIfDependenciesUnavailable skips the test if either Redis or Kafka is unavailable
func SkipIfDependenciesUnavailable(t testing.TB, redisAddr, kafkaAddr string) {
	t.Helper()
	SkipIfRedisUnavailable(t, redisAddr)
	SkipIfKafkaUnavailable(t, kafkaAddr)
}
