// Package audio splits dual-channel call recordings into per-speaker mono
// files using ffmpeg.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// The recorder mixes agent audio to the front-left channel and the caller
// to the front-right channel. That contract is fixed at recording time and
// not configurable here.
const (
	agentChannel = "FL"
	humanChannel = "FR"

	// Sample rate expected by the transcription providers.
	outputSampleRate = 16000
)

// SplitError reports a non-zero ffmpeg exit, carrying its stderr output
// for diagnostics. Fatal for the pipeline run: no partial transcript is
// produced from a recording that could not be split.
type SplitError struct {
	Stderr string
	Err    error
}

func (e *SplitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("channel split: %v", e.Err)
	}
	return fmt.Sprintf("channel split: %v: %s", e.Err, e.Stderr)
}

func (e *SplitError) Unwrap() error { return e.Err }

// Splitter invokes ffmpeg to demux stereo recordings.
type Splitter struct {
	binPath string
	logger  zerolog.Logger
}

// NewSplitter creates a Splitter. binPath defaults to "ffmpeg" on PATH.
func NewSplitter(binPath string, logger zerolog.Logger) *Splitter {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	return &Splitter{binPath: binPath, logger: logger}
}

// Split writes two 16kHz mono WAV files into dir: agent carries the left
// channel, human the right. The context bounds both ffmpeg invocations.
func (s *Splitter) Split(ctx context.Context, input, dir string) (agent, human string, err error) {
	agent = filepath.Join(dir, "agent.wav")
	human = filepath.Join(dir, "caller.wav")

	if err := s.extract(ctx, input, agent, agentChannel); err != nil {
		return "", "", err
	}
	if err := s.extract(ctx, input, human, humanChannel); err != nil {
		return "", "", err
	}

	s.logger.Debug().
		Str("input", input).
		Str("agent", agent).
		Str("human", human).
		Msg("split recording into mono channels")
	return agent, human, nil
}

func (s *Splitter) extract(ctx context.Context, input, output, channel string) error {
	args := buildArgs(input, output, channel)

	cmd := exec.CommandContext(ctx, s.binPath, args...) // #nosec G204
	var stderr bytes.Buffer
	cmd.Stdout = nil
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &SplitError{Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return nil
}

func buildArgs(input, output, channel string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-i", input,
		"-af", "pan=mono|c0=" + channel,
		"-ar", strconv.Itoa(outputSampleRate),
		"-ac", "1",
		output,
	}
}
