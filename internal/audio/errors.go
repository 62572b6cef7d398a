package audio

import "errors"

// Recording errors. Recorder.Record logs and swallows all of them; Session.Run
// returns them wrapped so callers can match with errors.Is.
var (
	// ErrNoRecorderAvailable is returned when no candidate program could be launched.
	ErrNoRecorderAvailable = errors.New("no recorder program available")

	// ErrProcessSpawn is returned when the selected recorder failed to launch.
	ErrProcessSpawn = errors.New("failed to start recorder")

	// ErrCaptureProcess is returned when the recorder exited with an error or the
	// audio stream failed mid-capture.
	ErrCaptureProcess = errors.New("capture failed")

	// ErrEmptyOutput is returned when the captured file is at or below the minimum size.
	ErrEmptyOutput = errors.New("recording output is empty")

	// ErrCancelled is returned when the session is interrupted before capture started.
	ErrCancelled = errors.New("recording cancelled")
)
