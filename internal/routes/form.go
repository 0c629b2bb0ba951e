package routes

import (
	"image"
	"imagediff/internal/codec"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/xerrors"
)

const maxMemory = 32 << 20

func formPicture(r *http.Request, field string) (image.Image, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, xerrors.Errorf("missing %s: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, xerrors.Errorf("failed to read %s: %w", field, err)
	}

	img, _, err := codec.Decode(data)
	if err != nil {
		return nil, xerrors.Errorf("%s: %w", field, err)
	}
	return img, nil
}

func formFloat(r *http.Request, field string) (float64, error) {
	v := r.FormValue(field)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, xerrors.Errorf("invalid %s: %w", field, err)
	}
	return f, nil
}

func formInt(r *http.Request, field string) (int, error) {
	v := r.FormValue(field)
	if v == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, xerrors.Errorf("invalid %s: %w", field, err)
	}
	return i, nil
}

func badRequest(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}
