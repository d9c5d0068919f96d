package chat

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"docchat-backend/internal/audio"
	"docchat-backend/internal/llm"
)

const (
	systemPreamble  = "You are a helpful assistant."
	contextSentence = " The user has uploaded a document with the following content: "
	defaultAudioExt = ".webm"
)

// ContextSource supplies the document context window.
type ContextSource interface {
	LatestContext(ctx context.Context) (string, error)
}

// AudioSink persists synthesized speech.
type AudioSink interface {
	Save(ctx context.Context, r io.Reader) (audio.Artifact, error)
}

// Service runs the single-turn reply pipeline: context, completion,
// speech synthesis and audio write.
type Service struct {
	Context  ContextSource
	Provider llm.Provider
	Audio    AudioSink
	// TempDir holds audio-chat uploads while they are transcribed. Empty means os.TempDir().
	TempDir string
}

// Reply is the assistant answer and the URL of its spoken version.
type Reply struct {
	Message  string
	AudioURL string
}

// AudioReply is a Reply to a transcribed voice message.
type AudioReply struct {
	Reply
	Transcription string
}

// BuildSystemMessage returns the fixed preamble, followed by the document
// context when there is any.
func BuildSystemMessage(docContext string) string {
	if docContext == "" {
		return systemPreamble
	}
	return systemPreamble + contextSentence + docContext
}

// Reply answers a text message.
func (s *Service) Reply(ctx context.Context, message string) (Reply, error) {
	docContext, err := s.Context.LatestContext(ctx)
	if err != nil {
		return Reply{}, stageErr(StageContext, err)
	}

	answer, err := s.Provider.Complete(ctx, BuildSystemMessage(docContext), message)
	if err != nil {
		return Reply{}, stageErr(StageCompletion, err)
	}

	speech, err := s.Provider.Synthesize(ctx, answer)
	if err != nil {
		return Reply{}, stageErr(StageSynthesis, err)
	}
	defer speech.Close()

	art, err := s.Audio.Save(ctx, speech)
	if err != nil {
		return Reply{}, stageErr(StageAudioWrite, err)
	}

	return Reply{Message: answer, AudioURL: art.URL}, nil
}

// ReplyToAudio spools the voice message to a temporary file, transcribes it
// and answers the transcript. The temporary file is removed on every path.
func (s *Service) ReplyToAudio(ctx context.Context, fileName string, r io.Reader) (AudioReply, error) {
	tmp, err := os.CreateTemp(s.TempDir, "audio-chat-*"+audioExt(fileName))
	if err != nil {
		return AudioReply{}, stageErr(StageAudioInput, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return AudioReply{}, stageErr(StageAudioInput, fmt.Errorf("spool audio: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return AudioReply{}, stageErr(StageAudioInput, fmt.Errorf("spool audio: %w", err))
	}

	transcript, err := s.Provider.Transcribe(ctx, tmpPath)
	if err != nil {
		return AudioReply{}, stageErr(StageTranscription, err)
	}

	reply, err := s.Reply(ctx, transcript)
	if err != nil {
		return AudioReply{}, err
	}
	return AudioReply{Reply: reply, Transcription: transcript}, nil
}

// audioExt keeps the upload's extension so the provider can detect the
// container format; browser recordings usually arrive without one.
func audioExt(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" || len(ext) > 6 || strings.ContainsAny(ext, `/\`) {
		return defaultAudioExt
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return defaultAudioExt
		}
	}
	return ext
}
