package extraction

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/otiai10/gosseract/v2"

	"github.com/studykit/studybot-backend/models"
	"github.com/studykit/studybot-backend/utils"
)

// rasterDpi is the resolution pdftoppm renders pages at for the scanned-pdf
// OCR fallback. 200dpi keeps Tesseract accurate without multi-second renders.
const rasterDpi = "200"

// OcrClient is the subset of gosseract.Client the extractor needs. Tests
// substitute a fake to avoid a hard dependency on an installed Tesseract.
type OcrClient interface {
	SetImageFromBytes(data []byte) error
	SetLanguage(languages ...string) error
	Text() (string, error)
	Close() error
}

type TextExtractor struct {
	languages  []string
	ocrFactory func() OcrClient
}

type Option func(*TextExtractor)

func WithLanguages(languages ...string) Option {
	return func(e *TextExtractor) {
		e.languages = languages
	}
}

func WithOcrFactory(factory func() OcrClient) Option {
	return func(e *TextExtractor) {
		e.ocrFactory = factory
	}
}

func NewTextExtractor(opts ...Option) *TextExtractor {
	extractor := &TextExtractor{
		ocrFactory: func() OcrClient { return gosseract.NewClient() },
	}
	for _, opt := range opts {
		opt(extractor)
	}
	return extractor
}

// FromImage runs Tesseract over raw image bytes and returns the trimmed text.
func (e *TextExtractor) FromImage(ctx context.Context, imageData []byte) (string, error) {
	client := e.ocrFactory()
	defer client.Close()

	if len(e.languages) > 0 {
		if err := client.SetLanguage(e.languages...); err != nil {
			return "", errors.Wrap(err, "failed to set ocr languages")
		}
	}
	if err := client.SetImageFromBytes(imageData); err != nil {
		return "", errors.Wrap(err, "failed to load image for ocr")
	}

	text, err := client.Text()
	if err != nil {
		return "", errors.Wrap(err, "ocr failed")
	}
	return strings.TrimSpace(text), nil
}

// FromPdf extracts the embedded text layer with pdftotext. PDFs without a
// text layer (scans) are rasterized page by page with pdftoppm and OCRed.
func (e *TextExtractor) FromPdf(ctx context.Context, pdfData []byte) (string, error) {
	tmpDir, err := os.MkdirTemp("", "studybot-pdf-*")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temp dir for pdf extraction")
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(pdfPath, pdfData, 0o600); err != nil {
		return "", errors.Wrap(err, "failed to write pdf to temp file")
	}

	text, err := e.pdfTextLayer(ctx, pdfPath)
	if err != nil {
		return "", err
	}
	if text != "" {
		return text, nil
	}

	return e.ocrPdfPages(ctx, tmpDir, pdfPath)
}

func (e *TextExtractor) pdfTextLayer(ctx context.Context, pdfPath string) (string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return "", errors.Wrap(err, "pdftotext is not installed or not on PATH")
	}

	// "-" sends the text to stdout
	out, err := exec.CommandContext(ctx, "pdftotext", "-layout", pdfPath, "-").Output()
	if err != nil {
		return "", errors.Wrap(err, "pdftotext failed")
	}
	return strings.TrimSpace(string(out)), nil
}

func (e *TextExtractor) ocrPdfPages(ctx context.Context, tmpDir, pdfPath string) (string, error) {
	logger := utils.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "pdf has no text layer, falling back to ocr")

	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return "", errors.Wrap(err, "pdftoppm is not installed or not on PATH")
	}

	prefix := filepath.Join(tmpDir, "page")
	if err := exec.CommandContext(ctx, "pdftoppm", "-png", "-r", rasterDpi, pdfPath, prefix).Run(); err != nil {
		return "", errors.Wrap(err, "pdftoppm failed")
	}

	pages, err := filepath.Glob(prefix + "*.png")
	if err != nil {
		return "", errors.Wrap(err, "failed to list rendered pdf pages")
	}
	// pdftoppm zero-pads page numbers, lexical order is page order
	sort.Strings(pages)

	pageTexts := make([]string, 0, len(pages))
	for _, page := range pages {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		pageData, err := os.ReadFile(page)
		if err != nil {
			return "", errors.Wrapf(err, "failed to read rendered page %s", page)
		}
		pageText, err := e.FromImage(ctx, pageData)
		if err != nil {
			return "", errors.Wrapf(err, "ocr failed on page %s", page)
		}
		if pageText != "" {
			pageTexts = append(pageTexts, pageText)
		}
	}

	return strings.Join(pageTexts, "\n\n"), nil
}

// FromPlainText decodes arbitrary document bytes as UTF-8, dropping invalid
// sequences, the same lenient treatment the bot has always given non-pdf
// documents.
func (e *TextExtractor) FromPlainText(data []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(data), ""))
}

// Extract dispatches on the material kind.
func (e *TextExtractor) Extract(ctx context.Context, kind models.MaterialKind, data []byte) (string, error) {
	switch kind {
	case models.MaterialKindImage:
		return e.FromImage(ctx, data)
	case models.MaterialKindPdf:
		return e.FromPdf(ctx, data)
	case models.MaterialKindDocument, models.MaterialKindText:
		return e.FromPlainText(data), nil
	default:
		return "", errors.Wrapf(models.BadParameterError, "unknown material kind '%s'", kind)
	}
}
