// Package otelwsgraphql provides opentelemetry instrumentation for wsgraphql
package otelwsgraphql

import (
	"context"
	"regexp"

	"github.com/eientei/wsgraphqlbc"
	"github.com/eientei/wsgraphqlbc/apollows"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName    = "github.com/eientei/wsgraphqlbc/compat/otelwsgraphql"
	instrumentationVersion = "1.0.0"
)

const (
	operationQuery        = "query"
	operationMutation     = "mutation"
	operationSubscription = "subscription"
)

// Attribute keys describing the websocket connection an operation belongs to
const (
	TransportKey    = attribute.Key("graphql.transport")
	ConnectionIDKey = attribute.Key("graphql.connection.id")
)

// OperationOption provides customizations for operation interceptor
type OperationOption func(c *operationConfig)

// SpanNameResolver determines span name from payload operation
type SpanNameResolver func(ctx context.Context, payload *apollows.PayloadOperation) string

// SpanAttributesResolver determines span attributes from payload operation
type SpanAttributesResolver func(ctx context.Context, payload *apollows.PayloadOperation) []attribute.KeyValue

type operationConfig struct {
	nameResolver       SpanNameResolver
	attributesResolver SpanAttributesResolver
	tracerProvider     trace.TracerProvider
	startSpanOptions   []trace.SpanStartOption
}

// NewOperationInterceptor returns new otel-span reporting wsgraphql operation interceptor
func NewOperationInterceptor(options ...OperationOption) wsgraphql.InterceptorOperation {
	c := operationConfig{
		nameResolver:       DefaultSpanNameResolver,
		attributesResolver: DefaultSpanAttributesResolver,
		startSpanOptions:   []trace.SpanStartOption{trace.WithSpanKind(trace.SpanKindServer)},
	}

	for _, o := range options {
		o(&c)
	}

	return func(ctx context.Context, payload *apollows.PayloadOperation, handler wsgraphql.HandlerOperation) error {
		provider := c.tracerProvider

		if provider == nil {
			if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
				provider = span.TracerProvider()
			} else {
				provider = otel.GetTracerProvider()
			}
		}

		tracer := provider.Tracer(instrumentationName, trace.WithInstrumentationVersion(instrumentationVersion))

		opts := append(
			[]trace.SpanStartOption{trace.WithAttributes(c.attributesResolver(ctx, payload)...)},
			c.startSpanOptions...,
		)

		ctx, span := tracer.Start(ctx, c.nameResolver(ctx, payload), opts...)

		defer span.End()

		err := handler(ctx, payload)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	}
}

// WithTracerProvider sets predefined tracer provider instance
func WithTracerProvider(tracerProvider trace.TracerProvider) OperationOption {
	return func(c *operationConfig) {
		c.tracerProvider = tracerProvider
	}
}

// WithStartSpanOptions provides extra starting span options
func WithStartSpanOptions(spanOptions ...trace.SpanStartOption) OperationOption {
	return func(c *operationConfig) {
		c.startSpanOptions = append(c.startSpanOptions, spanOptions...)
	}
}

// WithSpanNameResolver provides custom name resolver
func WithSpanNameResolver(resolver SpanNameResolver) OperationOption {
	return func(c *operationConfig) {
		c.nameResolver = resolver
	}
}

// WithSpanAttributesResolver provides custom attribute resolver
func WithSpanAttributesResolver(resolver SpanAttributesResolver) OperationOption {
	return func(c *operationConfig) {
		c.attributesResolver = resolver
	}
}

var queryRegex = regexp.MustCompile(`^\s*(query|mutation|subscription)\s*(\w*)`)

func operationKind(payload *apollows.PayloadOperation) (kind, name string) {
	kind, name = operationQuery, payload.OperationName

	parts := queryRegex.FindStringSubmatch(payload.Query)
	if len(parts) == 3 {
		kind = parts[1]

		if name == "" {
			name = parts[2]
		}
	}

	return kind, name
}

// DefaultSpanNameResolver names spans as gql.<kind>[.<name>]
func DefaultSpanNameResolver(_ context.Context, payload *apollows.PayloadOperation) string {
	kind, name := operationKind(payload)

	if name == "" {
		return "gql." + kind
	}

	return "gql." + kind + "." + name
}

// DefaultSpanAttributesResolver reports graphql semantic convention attributes along with transport protocol and
// connection ID
func DefaultSpanAttributesResolver(
	ctx context.Context,
	payload *apollows.PayloadOperation,
) (attrs []attribute.KeyValue) {
	kind, name := operationKind(payload)

	switch kind {
	case operationSubscription:
		attrs = append(attrs, semconv.GraphqlOperationTypeSubscription)
	case operationMutation:
		attrs = append(attrs, semconv.GraphqlOperationTypeMutation)
	default:
		attrs = append(attrs, semconv.GraphqlOperationTypeQuery)
	}

	if name != "" {
		attrs = append(attrs, semconv.GraphqlOperationName(name))
	}

	attrs = append(attrs, semconv.GraphqlDocument(payload.Query))

	if protocol := wsgraphql.ContextProtocol(ctx); protocol != "" {
		attrs = append(attrs, TransportKey.String(string(protocol)))
	}

	if id := wsgraphql.ContextConnectionID(ctx); id != "" {
		attrs = append(attrs, ConnectionIDKey.String(id))
	}

	return attrs
}
