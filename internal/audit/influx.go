package audit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rengatools/geometry/internal/config"
)

// Measurement is the InfluxDB measurement native calls are written to.
const Measurement = "native_calls"

// InfluxBackend writes one point per call. It keeps no history, so it does
// not implement Reader.
type InfluxBackend struct {
	cfg    config.InfluxConfig
	client influxdb2.Client
	writer influxdb2_api.WriteAPIBlocking
}

func NewInflux(cfg config.InfluxConfig) *InfluxBackend {
	return &InfluxBackend{cfg: cfg}
}

// Init connects and checks the server is reachable.
func (b *InfluxBackend) Init() error {
	b.client = influxdb2.NewClientWithOptions(
		b.cfg.URL,
		b.cfg.Token,
		influxdb2.DefaultOptions().SetHTTPRequestTimeout(5),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	running, err := b.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("pinging influxdb at %s: %w", b.cfg.URL, err)
	}
	if !running {
		return errors.New("influxdb is not ready")
	}

	b.writer = b.client.WriteAPIBlocking(b.cfg.Org, b.cfg.Bucket)
	return nil
}

func (b *InfluxBackend) RecordCall(c *Call) error {
	if b.writer == nil {
		return errors.New("influx backend not initialized")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return b.writer.WritePoint(ctx, callPoint(c))
}

func (b *InfluxBackend) Close() error {
	if b.client != nil {
		b.client.Close()
	}
	return nil
}

func callPoint(c *Call) *influxdb2_write.Point {
	return influxdb2.NewPoint(
		Measurement,
		map[string]string{
			"function": c.Function,
			"success":  strconv.FormatBool(c.Success),
		},
		map[string]any{
			"point_count": c.PointCount,
			"duration_us": c.DurationUS,
		},
		c.CreatedAt,
	)
}
