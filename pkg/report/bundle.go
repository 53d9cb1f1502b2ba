package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

// BundleScreenshots collects the given PNG files into one PDF at out, one
// image per page. Missing files are skipped. It returns the written path,
// or "" when there was nothing to bundle.
func BundleScreenshots(out string, images []string) (string, error) {
	var existing []string
	for _, img := range images {
		if info, err := os.Stat(img); err == nil && info.Size() > 0 {
			existing = append(existing, img)
		}
	}
	if len(existing) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(filepath.Dir(out), 0750); err != nil {
		return "", &ArtifactCaptureError{Artifact: "screenshot bundle", Path: out, Err: err}
	}
	// ImportImagesFile appends when out exists.
	if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
		return "", &ArtifactCaptureError{Artifact: "screenshot bundle", Path: out, Err: err}
	}

	if err := api.ImportImagesFile(existing, out, pdfcpu.DefaultImportConfig(), nil); err != nil {
		return "", &ArtifactCaptureError{
			Artifact: "screenshot bundle",
			Path:     out,
			Err:      fmt.Errorf("pdf import of %d images: %w", len(existing), err),
		}
	}
	return out, nil
}
