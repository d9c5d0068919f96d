package chat

import "fmt"

// Stage names a step of the reply pipeline.
type Stage string

const (
	StageAudioInput    Stage = "audio_input"
	StageTranscription Stage = "transcription"
	StageContext       Stage = "context"
	StageCompletion    Stage = "completion"
	StageSynthesis     Stage = "synthesis"
	StageAudioWrite    Stage = "audio_write"
)

// StageError records which pipeline step failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
