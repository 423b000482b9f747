package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH (install poppler-utils)")

// ExtractPDFText extracts plain text from a PDF file by shelling out to
// pdftotext. Layout fidelity does not matter here; the text is cut into
// fixed-size chunks immediately afterwards.
func ExtractPDFText(ctx context.Context, path string) (string, error) {
	bin, err := exec.LookPath("pdftotext")
	if err != nil {
		return "", ErrPDFToolNotFound
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, path, "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed for %s: %w: %s", path, err, stderr.String())
	}
	return stdout.String(), nil
}
