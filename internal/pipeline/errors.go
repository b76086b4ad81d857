package pipeline

import "errors"

var (
	// ErrNilScene is returned when Recognize is called without a scene.
	ErrNilScene = errors.New("nil scene")

	// ErrNotDirectory is returned when a batch input is not a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrRunAborted is returned when a fail-fast batch stops on a bad file.
	ErrRunAborted = errors.New("run aborted")
)
