package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// Config 追踪配置
type Config struct {
	Enabled      bool    `yaml:"enabled"`       // 是否开启追踪上报
	Endpoint     string  `yaml:"endpoint"`      // OTLP gRPC endpoint, 如 localhost:4317
	ServiceName  string  `yaml:"service_name"`  // 上报的服务名
	SampleRatio  float64 `yaml:"sample_ratio"`  // 采样率 [0,1]
	ExportWaitMS int     `yaml:"export_wait_ms"` // 关闭时等待导出的毫秒数
}

// InitProvider 初始化全局TracerProvider，返回关闭函数
// 未开启时返回空关闭函数，otel默认的noop provider继续生效
func InitProvider(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("创建OTLP导出器失败: %w", err)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "resume-screener"
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("创建resource失败: %w", err)
	}

	ratio := cfg.SampleRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	shutdown := func(ctx context.Context) error {
		wait := time.Duration(cfg.ExportWaitMS) * time.Millisecond
		if wait <= 0 {
			wait = 5 * time.Second
		}
		ctx, cancel := context.WithTimeout(ctx, wait)
		defer cancel()
		return tp.Shutdown(ctx)
	}
	return shutdown, nil
}
