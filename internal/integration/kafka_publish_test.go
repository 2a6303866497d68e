//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/crime-weather-report/internal/adapter/chart"
	"github.com/couchcryptid/crime-weather-report/internal/adapter/file"
	"github.com/couchcryptid/crime-weather-report/internal/adapter/interactive"
	"github.com/couchcryptid/crime-weather-report/internal/adapter/kafka"
	"github.com/couchcryptid/crime-weather-report/internal/adapter/site"
	"github.com/couchcryptid/crime-weather-report/internal/adapter/workbook"
	"github.com/couchcryptid/crime-weather-report/internal/cleaning"
	"github.com/couchcryptid/crime-weather-report/internal/config"
	"github.com/couchcryptid/crime-weather-report/internal/domain"
	"github.com/couchcryptid/crime-weather-report/internal/observability"
	"github.com/couchcryptid/crime-weather-report/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testSinkTopic = "test-crime-weather-monthly"

const crimeCSV = `category,persistent_id,date,lat,long,street_id,street_name,context,id,location_type,location_subtype,outcome_status
violent-crime,,2024-01,52.6311,-1.1321,1,On or near Mill Lane,,1001,Force,,Under investigation
shoplifting,abc123,2024-01,52.6350,-1.1390,2,On or near High Street,,1002,Force,,
burglary,def456,2024-02,52.6301,-1.1302,3,On or near Park Road,,1003,Force,,Unable to prosecute suspect
violent-crime,,2024-03,52.6312,-1.1322,1,On or near Mill Lane,,1004,BTP,,Under investigation
burglary,,2024-03,52.6313,-1.1323,1,On or near Mill Lane,,1005,Force,,Unable to prosecute suspect
`

const weatherCSV = `Date,TemperatureCAvg,TemperatureCMax,TemperatureCMin,Precmm,WindkmhInt,lowClOct,PreselevHp,SnowDepcm
2024-01-01,5.2,7.1,3.0,1.2,14,5,,
2024-01-02,4.8,6.0,2.9,,12,,,
2024-02-01,6.5,8.8,4.1,0.0,20,7,1012.3,
2024-03-01,8.0,11.2,5.3,2.2,18,6,1009.8,
`

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := ctr.Terminate(context.Background()); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}))
}

// TestReportPublishesMonthlyRecords runs the whole report against files on
// disk and a real broker, then reads the monthly table back off the topic.
func TestReportPublishesMonthlyRecords(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	dir := t.TempDir()
	cfg := &config.Config{
		CrimeDataPath:   filepath.Join(dir, "crime.csv"),
		WeatherDataPath: filepath.Join(dir, "weather.csv"),
		OutputDir:       filepath.Join(dir, "report"),
		KafkaBrokers:    []string{broker},
		KafkaSinkTopic:  testSinkTopic,
	}
	require.NoError(t, os.WriteFile(cfg.CrimeDataPath, []byte(crimeCSV), 0o600))
	require.NoError(t, os.WriteFile(cfg.WeatherDataPath, []byte(weatherCSV), 0o600))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	policy, err := cleaning.DefaultPolicy()
	require.NoError(t, err)

	publisher := kafka.NewPublisher(cfg, logger)
	defer publisher.Close()

	renderers := []pipeline.Renderer{
		chart.NewRenderer(cfg.OutputDir, logger),
		interactive.NewRenderer(cfg.OutputDir, logger),
		workbook.NewWriter(cfg.OutputDir, logger),
		site.NewWriter(cfg.OutputDir, logger),
	}
	p := pipeline.New(file.NewLoader(cfg, logger), renderers, publisher,
		pipeline.Options{Policy: policy, Title: "Integration", SmoothingWindow: 3, ClusterCell: 0.01},
		logger, observability.NewMetricsForTesting())

	r, err := p.Run(ctx)
	require.NoError(t, err)
	require.Len(t, r.Monthly, 3)

	for _, name := range []string{site.IndexFile, site.MonthlyFile, workbook.File, filepath.Join(chart.Dir, "pairs.png"), filepath.Join(interactive.Dir, interactive.MapFile)} {
		assert.FileExists(t, filepath.Join(cfg.OutputDir, name))
	}

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		StartOffset: kafkago.FirstOffset,
		MaxWait:     time.Second,
	})
	defer consumer.Close()

	for i, want := range r.Monthly {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read message %d", i)

		assert.Equal(t, want.Month, string(msg.Key))
		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, want.Month, headers["month"])
		assert.Equal(t, r.RunID, headers["run_id"])
		assert.Equal(t, r.GeneratedAt.UTC().Format(time.RFC3339), headers["generated_at"])

		var got domain.MergedMonthlyRecord
		require.NoError(t, json.Unmarshal(msg.Value, &got))
		assert.Equal(t, want, got)
	}
}
