package projects

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	errorCounter  metric.Int64Counter
	reportCounter metric.Int64Counter
	reportBytes   metric.Int64Histogram
)

// InitMetrics registers the projects OTel instruments. Call it once at
// startup, after observability.InitMetrics.
func InitMetrics() error {
	meter := otel.Meter("projects")

	var err error

	errorCounter, err = meter.Int64Counter("projects.errors.total",
		metric.WithDescription("Total number of failed history and project requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	reportCounter, err = meter.Int64Counter("projects.reports.total",
		metric.WithDescription("Total number of PDF reports rendered"),
		metric.WithUnit("{report}"),
	)
	if err != nil {
		return fmt.Errorf("creating report counter: %w", err)
	}

	reportBytes, err = meter.Int64Histogram("projects.report.size",
		metric.WithDescription("Size of rendered PDF reports"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return fmt.Errorf("creating report size histogram: %w", err)
	}

	return nil
}
