//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaadapter "github.com/agriscope/et-insight-service/internal/adapter/kafka"
	"github.com/agriscope/et-insight-service/internal/config"
	"github.com/agriscope/et-insight-service/internal/domain"
	"github.com/agriscope/et-insight-service/internal/observability"
)

const testReportTopic = "test-et-insight-reports"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka in a container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("et-insight-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve broker address")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestPublisher_RoundTrip verifies that a published report arrives on the
// topic with the expected key, headers, and payload shape.
func TestPublisher_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testReportTopic)

	cfg := &config.Config{
		KafkaBrokers:     []string{broker},
		KafkaReportTopic: testReportTopic,
	}
	publisher := kafkaadapter.NewPublisher(cfg, discardLogger(), observability.NewMetricsForTesting())
	t.Cleanup(func() { _ = publisher.Close() })

	etPayload := json.RawMessage(`[{"time":"2023-04-01","et":45.2},{"time":"2023-05-01","et":61.8}]`)
	ndviPayload := json.RawMessage(`[{"time":"2023-04-01","ndvi":0.48},{"time":"2023-05-01","ndvi":0.63}]`)
	report := domain.BuildReport(etPayload, ndviPayload, "31.000000, -98.500000", discardLogger())

	require.NoError(t, publisher.PublishReport(ctx, report))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: []string{broker},
		Topic:   testReportTopic,
		GroupID: fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from report topic")

	assert.Equal(t, []byte("31.000000, -98.500000"), msg.Key)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "OpenET", headers["source"])
	generatedAt, err := time.Parse(time.RFC3339, headers["generated_at"])
	require.NoError(t, err, "generated_at header must be RFC3339")
	assert.WithinDuration(t, report.GeneratedAt, generatedAt, time.Second)

	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(msg.Value, &payload), "unmarshal report message")
	assert.Contains(t, payload, "ET")
	assert.Contains(t, payload, "NDVI")
	assert.Contains(t, payload, "et_analysis")
	assert.Contains(t, payload, "vegetation_summary")

	var analysis struct {
		TotalETMm   int    `json:"total_et_mm"`
		PeakETMonth string `json:"peak_et_month"`
	}
	require.NoError(t, json.Unmarshal(payload["et_analysis"], &analysis))
	assert.Equal(t, 107, analysis.TotalETMm)
	assert.Equal(t, "2023-05-01", analysis.PeakETMonth)
}
