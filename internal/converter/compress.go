package converter

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/rijalprasetyo/converter-file/internal/domain"
)

const (
	minQuality = 1
	maxQuality = 95
)

// encodeFunc codifica a una calidad dada y retorna los bytes
type encodeFunc func(quality int) ([]byte, error)

// searchQuality busca por bisección la mayor calidad en [minQuality, maxQuality]
// cuyo tamaño codificado no supera budget. Asume tamaño no decreciente en la
// calidad. Retorna -1 si ninguna calidad entra en el presupuesto.
func searchQuality(budget int, encode encodeFunc) (int, []byte, error) {
	low, high := minQuality, maxQuality
	best := -1
	var bestData []byte

	for low <= high {
		mid := (low + high) / 2

		data, err := encode(mid)
		if err != nil {
			return -1, nil, err
		}

		if len(data) <= budget {
			best, bestData = mid, data
			low = mid + 1
		} else {
			high = mid - 1
		}
	}

	return best, bestData, nil
}

// jpegEncoder retorna un encodeFunc para una imagen ya normalizada
func jpegEncoder(img image.Image) encodeFunc {
	return func(quality int) ([]byte, error) {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("%w: jpeg quality %d: %w", ErrEncode, quality, err)
		}
		return buf.Bytes(), nil
	}
}

// compressJPEG comprime al mayor nivel de calidad que entra en el presupuesto.
// Si ni la calidad mínima entra, escribe igual el archivo a calidad mínima.
func (e *Engine) compressJPEG(req domain.ConversionRequest) (outcome, error) {
	if req.TargetSizeKB <= 0 {
		return outcome{}, fmt.Errorf("%w: target size must be positive, got %d KB", ErrEncode, req.TargetSizeKB)
	}

	img, err := decodeImage(req.InputPath, req.Source)
	if err != nil {
		return outcome{}, err
	}

	// Una sola vez, fuera del loop de búsqueda
	rgb, err := flattenToRGB(img)
	if err != nil {
		return outcome{}, err
	}

	encode := jpegEncoder(rgb)
	budget := req.TargetBytes()

	quality, data, err := searchQuality(budget, encode)
	if err != nil {
		return outcome{}, err
	}

	kind := domain.KindNone
	if quality == -1 {
		e.logger.Info("target size unreachable, writing minimum quality",
			"input", req.InputPath,
			"target_kb", req.TargetSizeKB)

		quality = minQuality
		kind = domain.KindBudgetUnreachable
		if data, err = encode(quality); err != nil {
			return outcome{}, err
		}
	}

	n, err := writeBytesAtomic(req.OutputPath, data)
	if err != nil {
		return outcome{}, err
	}

	return outcome{kind: kind, quality: quality, bytes: n}, nil
}
