package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	errs "github.com/matzehuels/tether/pkg/errors"
	"github.com/matzehuels/tether/pkg/observability"
	"github.com/matzehuels/tether/pkg/render"
	"github.com/matzehuels/tether/pkg/render/dot"
)

// Output formats for [Runner.Render].
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// Formats lists the supported render formats.
var Formats = []string{FormatDOT, FormatSVG, FormatPNG, FormatPDF}

// ValidateFormat checks that format is a supported render format.
func ValidateFormat(format string) error {
	return errs.ValidateFormat(format, Formats...)
}

// RenderOptions configures [Runner.Render].
type RenderOptions struct {
	// HideInvisible drops hidden constraints from the diagram.
	HideInvisible bool

	// Scale is the PNG scale factor. Zero renders at 2x.
	Scale float64
}

// Render draws the solved scene of res in the given format.
func (r *Runner) Render(ctx context.Context, res *Result, format string, opts RenderOptions) ([]byte, error) {
	format = strings.ToLower(format)
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "pipeline.Render",
		trace.WithAttributes(attribute.String("format", format)))
	defer span.End()

	hooks := observability.Solver()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()

	data, err := renderFormat(res, format, opts)
	hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	span.SetAttributes(attribute.Int("bytes", len(data)))
	r.Logger.Debug("rendered", "format", format, "bytes", len(data), "duration", time.Since(start))
	return data, nil
}

func renderFormat(res *Result, format string, opts RenderOptions) ([]byte, error) {
	src := dot.ToDOT(res.Graph, dot.Options{
		Positions:       res.Scene.Positions(),
		Pinned:          res.Scene.Pinned(),
		OverConstrained: res.Solve.OverConstrained,
		HideInvisible:   opts.HideInvisible,
	})
	if format == FormatDOT {
		return []byte(src), nil
	}

	svg, err := dot.RenderSVG(src)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatPNG:
		scale := opts.Scale
		if scale == 0 {
			scale = 2.0
		}
		return render.ToPNG(svg, scale)
	case FormatPDF:
		return render.ToPDF(svg)
	default:
		return svg, nil
	}
}
