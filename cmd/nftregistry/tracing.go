/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/suparena/nftregistry"
)

const serviceName = "nftregistry"

// tracing owns the provider that exports spans to w.
type tracing struct {
	provider *sdktrace.TracerProvider
}

// newTracing installs a provider printing every span to w. Spans are exported
// synchronously since a CLI invocation is short lived.
func newTracing(w io.Writer) (*tracing, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("create stdout exporter: %w", err)
	}

	// NewSchemaless avoids schema version conflicts with resource.Default().
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSyncer(exporter),
	)
	otel.SetTracerProvider(provider)
	return &tracing{provider: provider}, nil
}

func (t *tracing) Tracer() trace.Tracer {
	return t.provider.Tracer(nftregistry.TracerName)
}

// Shutdown flushes pending spans.
func (t *tracing) Shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}
