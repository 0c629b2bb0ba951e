package routes

import (
	"bytes"
	"fmt"
	"imagediff/internal/codec"
	"imagediff/internal/filter"
	"imagediff/internal/imagediff"
	"imagediff/internal/myhttp"
	"net/http"
)

// Contrast returns the multipart field image with its contrast adjusted by
// the contrast field, in the requested format.
func Contrast() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := myhttp.Logger(r.Context())

		if err := r.ParseMultipartForm(maxMemory); err != nil {
			badRequest(w, err)
			return
		}

		picture, err := formPicture(r, "image")
		if err != nil {
			badRequest(w, err)
			return
		}
		contrast, err := formFloat(r, "contrast")
		if err != nil {
			badRequest(w, err)
			return
		}
		format := r.FormValue("format")
		if !codec.Supported(format) {
			badRequest(w, fmt.Errorf("unsupported format: %s", format))
			return
		}

		buf, err := imagediff.New(imagediff.WithLogger(logger)).ToCanonical(picture)
		if err != nil {
			badRequest(w, err)
			return
		}

		var buffer bytes.Buffer
		if err := codec.Encode(&buffer, filter.Contrast(buf, contrast).NRGBA(), format); err != nil {
			logger.Error("failed to encode image", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", codec.ContentType(format))
		if _, err := w.Write(buffer.Bytes()); err != nil {
			logger.Debug("failed to write response", "error", err)
		}
	}
}
