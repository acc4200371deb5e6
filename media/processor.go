package media

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/sirupsen/logrus"
)

const (
	ThumbnailJpegQuality   = 80
	ThumbnailFileExtension = ".jpg"
)

// Processor handles image transformations and probing. It relies on a Store
// implementation for saving derived assets.
type Processor struct {
	store Store

	// fallback used when dimension probing fails on an otherwise accepted file
	DefaultWidth  int
	DefaultHeight int
}

func NewProcessor(store Store, defaultWidth, defaultHeight int) *Processor {
	return &Processor{store: store, DefaultWidth: defaultWidth, DefaultHeight: defaultHeight}
}

// ProbeDimensions reads the image header and returns width and height. When
// decoding fails the configured defaults are returned instead of an error:
// a file that passed the type allow-list is accepted even if its header is
// unparseable.
func (p *Processor) ProbeDimensions(r io.Reader) (int, int) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		logrus.WithError(err).Debug("processor: dimension probe failed, using defaults")
		return p.DefaultWidth, p.DefaultHeight
	}
	return cfg.Width, cfg.Height
}

// FormatResolution renders dimensions as the stored "WIDTHxHEIGHT" string.
func FormatResolution(width, height int) string {
	return fmt.Sprintf("%dx%d", width, height)
}

// GenerateThumbnail downsizes the image to fit within maxSize on its longest
// side, re-encodes as JPEG, and saves it under the thumbnail namespace.
// Returns the storage key of the saved thumbnail.
func (p *Processor) GenerateThumbnail(originalImg image.Image, maxSize int) (string, error) {
	bounds := originalImg.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return "", fmt.Errorf("invalid original image dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}

	thumb := imaging.Fit(originalImg, maxSize, maxSize, imaging.Lanczos)

	reader, writer := io.Pipe()
	go func() {
		defer writer.Close()
		err := imaging.Encode(writer, thumb, imaging.JPEG, imaging.JPEGQuality(ThumbnailJpegQuality))
		if err != nil {
			writer.CloseWithError(fmt.Errorf("thumbnail encoding failed: %w", err))
		}
	}()

	thumbUUID, err := uuid.NewRandom()
	if err != nil {
		reader.Close()
		return "", fmt.Errorf("failed to generate UUID for thumbnail: %w", err)
	}
	targetFilename := thumbUUID.String() + ThumbnailFileExtension

	savedKey, err := p.store.Save(AssetTypeThumbnail, targetFilename, reader)
	if err != nil {
		return "", fmt.Errorf("failed to save thumbnail via store: %w", err)
	}
	return savedKey, nil
}

// ExifInfo carries the optional camera metadata captured at upload time.
type ExifInfo struct {
	CameraMake  *string
	CameraModel *string
	TakenAt     *int64
}

// ExtractEXIF pulls camera make/model and the original capture time from the
// file, if present. Every field is optional; a file without EXIF yields a
// zero ExifInfo and no error.
func ExtractEXIF(r io.Reader) ExifInfo {
	var info ExifInfo

	exifData, err := exif.Decode(r)
	if err != nil || exifData == nil {
		return info
	}

	info.CameraMake = getExifString(exifData, exif.Make)
	info.CameraModel = getExifString(exifData, exif.Model)

	if t, err := exifData.DateTime(); err == nil {
		unix := t.Unix()
		info.TakenAt = &unix
	}

	return info
}

// helper to safely get a string tag, trimming null terminators
func getExifString(exifData *exif.Exif, tagName exif.FieldName) *string {
	tag, err := exifData.Get(tagName)
	if err != nil || tag == nil {
		return nil
	}
	val := strings.Trim(strings.TrimRight(tag.String(), "\x00"), "\"")
	if val == "" {
		return nil
	}
	return &val
}
