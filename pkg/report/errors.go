package report

import "fmt"

// ArtifactCaptureError reports that a failure artifact (screenshot, DOM
// excerpt, PDF bundle) could not be produced. It is logged, never returned
// as the outcome of a test.
type ArtifactCaptureError struct {
	Artifact string
	Path     string
	Err      error
}

func (e *ArtifactCaptureError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to capture %s: %v", e.Artifact, e.Err)
	}
	return fmt.Sprintf("failed to capture %s at %s: %v", e.Artifact, e.Path, e.Err)
}

func (e *ArtifactCaptureError) Unwrap() error {
	return e.Err
}
