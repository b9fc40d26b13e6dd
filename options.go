/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package nftregistry

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/suparena/nftregistry/notify"
)

// TracerName is the instrumentation scope of the registry spans.
const TracerName = "github.com/suparena/nftregistry"

// Span names are spanPrefix followed by the operation, e.g. "registry.mint".
const spanPrefix = "registry."

// Span attribute keys.
const (
	attrAdmin        = "registry.admin"
	attrCreator      = "registry.creator"
	attrOwner        = "registry.owner"
	attrFrom         = "registry.from"
	attrTo           = "registry.to"
	attrBuyer        = "registry.buyer"
	attrAssetID      = "registry.asset_id"
	attrPercentage   = "registry.royalty_pct"
	attrAmount       = "registry.amount"
	attrPaymentAsset = "registry.payment_asset"

	eventPublishFailed = "registry.publish_failed"
)

// Option configures a Registry.
type Option func(*Registry)

// WithPublisher receives the notifications of every committed call.
func WithPublisher(p notify.Publisher) Option {
	return func(r *Registry) {
		r.publisher = p
	}
}

// WithLogger sets the registry's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTracer replaces the tracer taken from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Registry) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

func defaultTracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
