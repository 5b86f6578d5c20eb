package healthpush

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lenish/personal-hub/internal/domain/item"
)

const (
	source   = "health-webhook"
	category = "health"
)

// Metric is one externally pushed health reading, the wire shape delivered
// by apps like Health Auto Export.
type Metric struct {
	Type   string `json:"type"`
	Value  any    `json:"value"`
	Unit   string `json:"unit"`
	Date   string `json:"date"`
	Source string `json:"source"`
}

// ItemWriter persists normalized items.
type ItemWriter interface {
	Upsert(ctx context.Context, items []*item.Item) (int, error)
}

// Collector receives health metrics pushed over the webhook endpoint. It
// never fetches on its own: Collect is a no-op and data arrives through
// ProcessMetrics.
type Collector struct {
	items  ItemWriter
	logger *slog.Logger
}

// New creates the webhook collector.
func New(items ItemWriter, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{items: items, logger: logger}
}

func (c *Collector) Source() string   { return source }
func (c *Collector) Category() string { return category }

// Collect is a no-op: data is pushed to this collector via the webhook
// endpoint rather than pulled.
func (c *Collector) Collect(ctx context.Context) (int, error) {
	c.logger.Info("push-only collector, data arrives via webhook", "source", source)
	return 0, nil
}

// ProcessMetrics normalizes pushed metrics and writes them through the
// upsert engine. Metrics with unparseable dates are skipped with a warning;
// the rest of the batch still lands. Redelivering a metric for the same
// minute maps to the same key, so delivery is idempotent.
func (c *Collector) ProcessMetrics(ctx context.Context, metrics []Metric) (int, error) {
	items := make([]*item.Item, 0, len(metrics))

	for _, metric := range metrics {
		createdAt, err := parseMetricDate(metric.Date)
		if err != nil {
			c.logger.Warn("skipping metric with invalid date", "source", source, "date", metric.Date)
			continue
		}

		metricType := metric.Type
		if metricType == "" {
			metricType = "Unknown"
		}
		device := metric.Source
		if device == "" {
			device = "Unknown"
		}
		typeTag := strings.ToLower(metricType)

		items = append(items, &item.Item{
			Source:   source,
			SourceID: fmt.Sprintf("%s-%s", typeTag, createdAt.Format("20060102-1504")),
			Category: category,
			ItemType: typeTag,
			Title:    fmt.Sprintf("%s: %v %s", metricType, metric.Value, metric.Unit),
			Metadata: item.Document{
				"value":  metric.Value,
				"unit":   metric.Unit,
				"type":   metricType,
				"device": device,
				"raw": map[string]any{
					"type":   metric.Type,
					"value":  metric.Value,
					"unit":   metric.Unit,
					"date":   metric.Date,
					"source": metric.Source,
				},
			},
			Tags:      []string{"health", "webhook", typeTag},
			CreatedAt: createdAt,
		})
	}

	count, err := c.items.Upsert(ctx, items)
	if err != nil {
		return 0, fmt.Errorf("persisting metrics: %w", err)
	}

	c.logger.Info("processed pushed metrics", "source", source, "received", len(metrics), "stored", count)
	return count, nil
}

// parseMetricDate accepts a full timestamp or a bare date. Date-only values
// normalize to midnight UTC; timestamps without a zone are treated as UTC.
func parseMetricDate(value string) (time.Time, error) {
	if strings.Contains(value, "T") {
		if ts, err := time.Parse(time.RFC3339, value); err == nil {
			return ts.UTC(), nil
		}
		return time.Parse("2006-01-02T15:04:05", value)
	}
	return time.Parse("2006-01-02", value)
}
