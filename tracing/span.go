package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of the connector spans
const TracerName = "pfemem"

// TraceAttrOption defines option to set span attribute
type TraceAttrOption func(span trace.Span)

// StartTraceSpan starts a span
func StartTraceSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.GetTracerProvider().
		Tracer(TracerName).Start(ctx, spanName, opts...)
}

// EndTraceSpan ends span, optionally sets attributes
func EndTraceSpan(span trace.Span, opts ...TraceAttrOption) {
	for _, optFn := range opts {
		optFn(span)
	}
	span.End()
}

// TraceAttrInt sets an int attribute
func TraceAttrInt(k string, v int) TraceAttrOption {
	return func(span trace.Span) { span.SetAttributes(attribute.Int(k, v)) }
}

// TraceAttrStr sets a string attribute
func TraceAttrStr(k, v string) TraceAttrOption {
	return func(span trace.Span) { span.SetAttributes(attribute.String(k, v)) }
}

// TraceAttrStrs sets an string slice attribute
func TraceAttrStrs(k string, v []string) TraceAttrOption {
	return func(span trace.Span) { span.SetAttributes(attribute.StringSlice(k, v)) }
}

// TraceAttrDevice sets a device attribute
func TraceAttrDevice(v string) TraceAttrOption {
	return TraceAttrStr("device", v)
}

// TraceAttrState sets the worst check state attribute
func TraceAttrState(v string) TraceAttrOption {
	return TraceAttrStr("state", v)
}

// TraceAttrError sets an error attribute and the span status
func TraceAttrError(v error) TraceAttrOption {
	return func(span trace.Span) {
		if v == nil {
			span.SetAttributes(attribute.Bool("err", false))
			return
		}
		span.SetAttributes(attribute.Bool("err", true), attribute.String("error", v.Error()))
		span.SetStatus(codes.Error, v.Error())
	}
}

// TraceAttrPayloadLen sets a payloadLen attribute
func TraceAttrPayloadLen(v []byte) TraceAttrOption {
	return func(span trace.Span) { span.SetAttributes(attribute.Int("payloadLen", len(v))) }
}
