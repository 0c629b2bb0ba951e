package routes

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"imagediff/internal/codec"
	diffimage "imagediff/internal/diff/image"
	"imagediff/internal/imagediff"
	"imagediff/internal/myhttp"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type DiffResponse struct {
	Equal      bool     `json:"equal"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	DiffAmount float64  `json:"diffAmount"`
	Regions    []Region `json:"regions,omitempty"`
	DiffData   string   `json:"diffData"`
}

// Diff compares the multipart fields baseline and target. comparisons counts
// finished comparisons by outcome.
func Diff(comparisons metric.Int64Counter) http.HandlerFunc {
	tracer := otel.Tracer("imagediff/routes")

	return func(w http.ResponseWriter, r *http.Request) {
		logger := myhttp.Logger(r.Context())

		if err := r.ParseMultipartForm(maxMemory); err != nil {
			badRequest(w, err)
			return
		}

		baseline, err := formPicture(r, "baseline")
		if err != nil {
			badRequest(w, err)
			return
		}
		target, err := formPicture(r, "target")
		if err != nil {
			badRequest(w, err)
			return
		}
		tolerance, err := formFloat(r, "tolerance")
		if err != nil {
			badRequest(w, err)
			return
		}
		budget, err := formInt(r, "violationBudget")
		if err != nil {
			badRequest(w, err)
			return
		}
		align, err := diffimage.ParseAlign(r.FormValue("align"))
		if err != nil {
			badRequest(w, err)
			return
		}
		format := r.FormValue("format")
		if !codec.Supported(format) {
			badRequest(w, fmt.Errorf("unsupported format: %s", format))
			return
		}

		ctx, span := tracer.Start(r.Context(), "compare")
		defer span.End()

		// Engines own a scratch surface and are not shared between requests.
		engine := imagediff.New(imagediff.WithLogger(logger))

		equal, err := engine.Equal(baseline, target, diffimage.EqualOptions{
			Tolerance:       tolerance,
			ViolationBudget: budget,
		})
		if err != nil {
			badRequest(w, err)
			return
		}
		result, err := engine.Calculate(baseline, target, diffimage.DiffOptions{Align: align})
		if err != nil {
			badRequest(w, err)
			return
		}
		span.SetAttributes(
			attribute.Bool("equal", equal),
			attribute.Float64("diff_amount", result.DiffAmount),
		)
		comparisons.Add(ctx, 1, metric.WithAttributes(attribute.Bool("equal", equal)))

		var buffer bytes.Buffer
		if err := codec.Encode(&buffer, result.Buffer.NRGBA(), format); err != nil {
			logger.Error("failed to encode diff", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		response := DiffResponse{
			Equal:      equal,
			Width:      result.Buffer.Width,
			Height:     result.Buffer.Height,
			DiffAmount: result.DiffAmount,
			DiffData:   base64.StdEncoding.EncodeToString(buffer.Bytes()),
		}
		for _, region := range diffimage.Regions(result.Buffer, diffimage.RegionOptions{
			Tolerance:     tolerance,
			MinSize:       2,
			MergeDistance: 10,
		}) {
			response.Regions = append(response.Regions, Region{
				X:      region.Min.X,
				Y:      region.Min.Y,
				Width:  region.Dx(),
				Height: region.Dy(),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logger.Error("failed to encode response", "error", err)
		}
	}
}
