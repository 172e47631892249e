package converter

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/gen2brain/heic"
	"github.com/gen2brain/webp"
	"github.com/tc-hib/winres"
	"golang.org/x/image/draw"
	xwebp "golang.org/x/image/webp"

	"github.com/rijalprasetyo/converter-file/internal/domain"
)

// ImageJPEGQuality es la calidad fija al convertir a JPG
const ImageJPEGQuality = 95

// IconSizes son los tamaños embebidos en un ICO
var IconSizes = []int{16, 32, 48, 64, 128, 256}

// decodeImage decodifica según el formato declarado, sin detectar contenido
func decodeImage(path string, format domain.Format) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open source: %w", ErrSourceRead, err)
	}
	defer f.Close()

	var img image.Image
	switch format {
	case domain.FormatJPG:
		img, err = jpeg.Decode(f)
	case domain.FormatPNG:
		img, err = png.Decode(f)
	case domain.FormatWEBP:
		img, err = xwebp.Decode(f)
	case domain.FormatHEIC:
		img, err = heic.Decode(f)
	default:
		return nil, fmt.Errorf("%w: no decoder for %s", ErrSourceRead, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrSourceRead, format, err)
	}

	return img, nil
}

// flattenToRGB quita alfa y paleta antes de codificar a JPEG. Los modelos
// que JPEG ya soporta se retornan sin copiar.
func flattenToRGB(img image.Image) (image.Image, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty image %v", ErrUnsupportedColorMode, b)
	}

	switch img.(type) {
	case *image.YCbCr, *image.Gray, *image.Gray16, *image.CMYK:
		return img, nil
	case *image.Alpha, *image.Alpha16:
		// solo canal alfa, no hay color que conservar
		return nil, fmt.Errorf("%w: %T has no color channels", ErrUnsupportedColorMode, img)
	}

	// Se copian los valores sin premultiplicar y se descarta el alfa,
	// igual que una conversión RGBA -> RGB.
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}

	return &image.RGBA{Pix: dst.Pix, Stride: dst.Stride, Rect: dst.Rect}, nil
}

// convertImage re-codifica directamente al formato destino
func (e *Engine) convertImage(req domain.ConversionRequest) (outcome, error) {
	img, err := decodeImage(req.InputPath, req.Source)
	if err != nil {
		return outcome{}, err
	}

	var write func(w io.Writer) error

	switch req.Target {
	case domain.FormatJPG:
		rgb, err := flattenToRGB(img)
		if err != nil {
			return outcome{}, err
		}
		write = func(w io.Writer) error {
			return jpeg.Encode(w, rgb, &jpeg.Options{Quality: ImageJPEGQuality})
		}

	case domain.FormatICO:
		icon, err := winres.NewIconFromResizedImage(img, IconSizes)
		if err != nil {
			return outcome{}, fmt.Errorf("%w: build icon: %w", ErrEncode, err)
		}
		write = icon.SaveICO

	case domain.FormatPNG:
		write = func(w io.Writer) error {
			return png.Encode(w, img)
		}

	case domain.FormatWEBP:
		write = func(w io.Writer) error {
			return webp.Encode(w, img, webp.Options{Quality: e.webpQuality})
		}

	default:
		return outcome{}, fmt.Errorf("%w: no image encoder for %s", ErrEncode, req.Target)
	}

	n, err := writeFileAtomic(req.OutputPath, write)
	if err != nil {
		return outcome{}, err
	}

	return outcome{kind: domain.KindNone, bytes: n}, nil
}
