package xrotate

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	instrumentationName = "github.com/omeyang/xroll/pkg/observability/xrotate"

	metricRotationTotal  = "xroll.rotation.total"
	metricBackupFailures = "xroll.backup.failures"
	metricWriteBytes     = "xroll.write.bytes"
	metricWriteTruncated = "xroll.write.truncated"

	attrReason = "reason"
)

// instruments RollingFile 使用的 OTel 指标
type instruments struct {
	rotations      metric.Int64Counter
	backupFailures metric.Int64Counter
	writeBytes     metric.Int64Counter
	writeTruncated metric.Int64Counter
}

func newInstruments(mp metric.MeterProvider) (*instruments, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	rotations, err := meter.Int64Counter(
		metricRotationTotal,
		metric.WithDescription("log file reopen count by trigger"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xrotate: create counter %s failed: %w", metricRotationTotal, err)
	}

	backupFailures, err := meter.Int64Counter(
		metricBackupFailures,
		metric.WithDescription("failed backup chain moves"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xrotate: create counter %s failed: %w", metricBackupFailures, err)
	}

	writeBytes, err := meter.Int64Counter(
		metricWriteBytes,
		metric.WithDescription("bytes accepted by the active log file"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("xrotate: create counter %s failed: %w", metricWriteBytes, err)
	}

	writeTruncated, err := meter.Int64Counter(
		metricWriteTruncated,
		metric.WithDescription("writes that persisted fewer bytes than requested"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xrotate: create counter %s failed: %w", metricWriteTruncated, err)
	}

	return &instruments{
		rotations:      rotations,
		backupFailures: backupFailures,
		writeBytes:     writeBytes,
		writeTruncated: writeTruncated,
	}, nil
}

func (i *instruments) rotated(reason Reason) {
	i.rotations.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(attrReason, reason.String())))
}

func (i *instruments) backupFailed() {
	i.backupFailures.Add(context.Background(), 1)
}

func (i *instruments) wrote(n int) {
	if n > 0 {
		i.writeBytes.Add(context.Background(), int64(n))
	}
}

func (i *instruments) truncated() {
	i.writeTruncated.Add(context.Background(), 1)
}
