package ocr

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedRunner dispatches on the binary name, standing in for the real
// pdftotext/pdftoppm/tesseract installs.
type scriptedRunner struct {
	run func(name string, args []string) ([]byte, []byte, error)
}

func (r scriptedRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	return r.run(name, args)
}

func testExtractor(t *testing.T, run func(name string, args []string) ([]byte, []byte, error)) *Extractor {
	t.Helper()
	e := NewExtractor(Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.runner = scriptedRunner{run: run}
	return e
}

const digitalPDFText = `Western CPE
Certificate of Completion
for successfully completing: Federal Tax Update 2025
CPE Credits: 8.0 hours
Completion Date: 01/15/2025`

func TestExtractPDFWithTextLayer(t *testing.T) {
	e := testExtractor(t, func(name string, _ []string) ([]byte, []byte, error) {
		require.Equal(t, "pdftotext", name)
		return []byte(digitalPDFText + "\f"), nil, nil
	})

	res, err := e.Extract(context.Background(), "cert.pdf")
	require.NoError(t, err)
	require.Equal(t, "pdf-text", res.Method)
	require.Equal(t, 2, res.Pages)
	require.Contains(t, res.Text, "Federal Tax Update 2025")
	require.Greater(t, res.Confidence, float32(0.5))
}

func TestExtractScannedPDFFallsBackToOCR(t *testing.T) {
	e := testExtractor(t, func(name string, args []string) ([]byte, []byte, error) {
		switch name {
		case "pdftotext":
			// scanned document: the embedded text layer is empty
			return []byte("  \n"), nil, nil
		case "pdftoppm":
			prefix := args[len(args)-1]
			for _, page := range []string{"-1.png", "-2.png"} {
				require.NoError(t, os.WriteFile(prefix+page, []byte("png"), 0o644))
			}
			return nil, nil, nil
		case "tesseract":
			return []byte("scanned page text"), nil, nil
		}
		return nil, nil, errors.New("unexpected binary: " + name)
	})

	res, err := e.Extract(context.Background(), "scan.pdf")
	require.NoError(t, err)
	require.Equal(t, "pdf-ocr", res.Method)
	require.Equal(t, 2, res.Pages)
	require.Equal(t, 2, strings.Count(res.Text, "scanned page text"))
}

func TestExtractImage(t *testing.T) {
	e := testExtractor(t, func(name string, args []string) ([]byte, []byte, error) {
		require.Equal(t, "tesseract", name)
		require.Equal(t, "stdout", args[1])
		return []byte("image text"), nil, nil
	})

	res, err := e.Extract(context.Background(), "photo.jpg")
	require.NoError(t, err)
	require.Equal(t, "image-ocr", res.Method)
	require.Equal(t, 1, res.Pages)
	require.Equal(t, "image text", res.Text)
}

func TestExtractUnsupportedExtension(t *testing.T) {
	e := testExtractor(t, func(string, []string) ([]byte, []byte, error) {
		t.Fatal("no binary should run")
		return nil, nil, nil
	})

	_, err := e.Extract(context.Background(), "notes.docx")
	require.Error(t, err)
}

func TestExtractOCRFailureSurfacesStderr(t *testing.T) {
	e := testExtractor(t, func(name string, _ []string) ([]byte, []byte, error) {
		return nil, []byte("tesseract crashed"), errors.New("exit status 1")
	})

	res, err := e.Extract(context.Background(), "photo.jpg")
	require.Error(t, err)
	require.Equal(t, "image-ocr", res.Method)
	require.NotEmpty(t, res.Warnings)
}

func TestNormalize(t *testing.T) {
	in := "Line one   \n\n\n\n|______|\nLine two\r\nLine three"
	got := Normalize(in)
	require.Equal(t, "Line one\n\nLine two\nLine three", got)
}

func TestHeuristicConfidence(t *testing.T) {
	full := digitalPDFText + strings.Repeat(" filler", 20)
	require.InDelta(t, 0.9, heuristicConfidence(full), 0.001)

	require.InDelta(t, 0.2, heuristicConfidence("zzzz"), 0.001)
}
