package docxmerge

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer uses the global OTel tracer provider. Configure the provider with
// otel.SetTracerProvider before rendering to export spans.
var tracer = otel.Tracer("docxmerge")

func startRenderSpan(ctx context.Context, templatePath, renderID string, fields int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "docxmerge.render",
		trace.WithAttributes(
			attribute.String("template.path", templatePath),
			attribute.String("render.id", renderID),
			attribute.Int("data.fields", fields),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func startExpandSpan(ctx context.Context, placeholder string, value Value) (context.Context, trace.Span) {
	return tracer.Start(ctx, "docxmerge.expand",
		trace.WithAttributes(
			attribute.String("placeholder.name", placeholder),
			attribute.Bool("placeholder.array", value.IsSequence()),
			attribute.Int("placeholder.items", value.Len()),
		),
	)
}

// endSpan completes span, recording err when non-nil.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if stage := StageOf(err); stage != "" {
			span.SetAttributes(attribute.String("render.stage", string(stage)))
		}
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
