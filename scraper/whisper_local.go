package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"ytscope/metadata"
	"ytscope/youtube"
)

// cloudEnvVars mark serverless environments where running a local Whisper
// model is not viable.
var cloudEnvVars = []string{"VERCEL", "AWS_LAMBDA_FUNCTION_NAME", "GOOGLE_CLOUD_PROJECT"}

// Availability errors for local transcription.
var (
	ErrCloudEnvironment    = errors.New("AI transcription is not available in cloud environments; run the service locally to use Whisper")
	ErrWhisperNotInstalled = errors.New("whisper CLI not found; install openai-whisper to enable local transcription")
)

// LocalWhisperScraper transcribes audio with a locally installed Whisper
// model via the whisper CLI. It is the zero-API-cost counterpart of
// WhisperAPIScraper, usable only on hosts that can run the model.
type LocalWhisperScraper struct {
	ytdlpPath string
	model     string
	timeout   time.Duration

	// lookPath is swappable for tests.
	lookPath func(string) (string, error)
}

// NewLocalWhisperScraper builds the transcriber. model is a Whisper model
// size (tiny, base, small, medium, large).
func NewLocalWhisperScraper(ytdlpPath, model string, timeout time.Duration) *LocalWhisperScraper {
	if ytdlpPath == "" {
		ytdlpPath = "yt-dlp"
	}
	if model == "" {
		model = "base"
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &LocalWhisperScraper{
		ytdlpPath: ytdlpPath,
		model:     model,
		timeout:   timeout,
		lookPath:  exec.LookPath,
	}
}

// Method returns the strategy's method tag.
func (s *LocalWhisperScraper) Method() string { return MethodLocalWhisper }

// Available reports whether local transcription can run here. It returns
// nil when usable, otherwise the reason.
func (s *LocalWhisperScraper) Available() error {
	for _, name := range cloudEnvVars {
		if os.Getenv(name) != "" {
			return ErrCloudEnvironment
		}
	}
	if _, err := s.lookPath("whisper"); err != nil {
		return ErrWhisperNotInstalled
	}
	return nil
}

// Scrape downloads the audio track and transcribes it with the local
// model.
func (s *LocalWhisperScraper) Scrape(ctx context.Context, url string, _ Options) *metadata.ScrapeResult {
	return attempt(ctx, MethodLocalWhisper, func(ctx context.Context) (*metadata.VideoMetadata, int, error) {
		if err := s.Available(); err != nil {
			return nil, 0, err
		}
		videoID, ok := youtube.ExtractVideoID(url)
		if !ok {
			return nil, 0, ErrNoVideoID
		}

		audioPath, err := downloadAudio(ctx, s.ytdlpPath, s.timeout, url)
		if err != nil {
			return nil, 0, err
		}
		defer os.Remove(audioPath)

		result, err := s.transcribe(ctx, audioPath)
		if err != nil {
			return nil, 0, err
		}

		segments := make([]metadata.TranscriptSegment, 0, len(result.Segments))
		for _, seg := range result.Segments {
			text := strings.TrimSpace(seg.Text)
			if text == "" {
				continue
			}
			segments = append(segments, metadata.TranscriptSegment{
				Text:     text,
				Start:    seg.Start,
				Duration: seg.End - seg.Start,
			})
		}

		md := metadata.New(videoID, MethodLocalWhisper)
		md.Transcript = segments
		if result.Language != "" {
			md.AvailableLanguages = []string{result.Language}
		}
		md.WebpageURL = youtube.WatchURL(videoID)
		md.RawData = map[string]any{
			"transcript_language":  result.Language,
			"is_ai_transcribed":    true,
			"whisper_model":        s.model,
			"word_count":           transcriptWordCount(segments),
			"segment_count":        len(segments),
			"full_transcript_text": TranscriptText(segments, false),
		}
		return md, metadata.CountTranscriptFields(md), nil
	})
}

// whisperOutput matches the JSON file the whisper CLI writes.
type whisperOutput struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (s *LocalWhisperScraper) transcribe(ctx context.Context, audioPath string) (*whisperOutput, error) {
	outDir, err := os.MkdirTemp("", "ytscope-whisper-")
	if err != nil {
		return nil, fmt.Errorf("creating whisper output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "whisper", audioPath,
		"--model", s.model,
		"--output_format", "json",
		"--output_dir", outDir,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("whisper timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("whisper failed: %s", firstLine(string(out)))
	}

	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	raw, err := os.ReadFile(filepath.Join(outDir, stem+".json"))
	if err != nil {
		return nil, fmt.Errorf("reading whisper output: %w", err)
	}
	var result whisperOutput
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("parsing whisper output: %w", err)
	}
	return &result, nil
}
