package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"ytscope/metadata"
	"ytscope/youtube"
)

// maxWhisperFileSize is the Whisper API upload ceiling.
const maxWhisperFileSize = 25 * 1024 * 1024

// ErrOpenAIKeyMissing is returned at construction when no Whisper API
// credential is configured. Its text is surfaced verbatim in failure
// envelopes.
var ErrOpenAIKeyMissing = errors.New("OPENAI_API_KEY not configured. Add it to your environment variables.")

// WhisperAPIScraper transcribes a video's audio through OpenAI's hosted
// Whisper API. It downloads a low-bitrate audio rendition with yt-dlp,
// uploads it, and maps the verbose response into transcript segments. It
// works on any video with an audio track, captioned or not, at the cost
// of a download, an upload, and API spend.
type WhisperAPIScraper struct {
	client    *openai.Client
	ytdlpPath string
	timeout   time.Duration
}

// NewWhisperAPIScraper builds the transcriber, validating the credential
// eagerly.
func NewWhisperAPIScraper(apiKey, ytdlpPath string, timeout time.Duration) (*WhisperAPIScraper, error) {
	if apiKey == "" {
		return nil, ErrOpenAIKeyMissing
	}
	if ytdlpPath == "" {
		ytdlpPath = "yt-dlp"
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &WhisperAPIScraper{
		client:    openai.NewClient(apiKey),
		ytdlpPath: ytdlpPath,
		timeout:   timeout,
	}, nil
}

// Method returns the strategy's method tag.
func (s *WhisperAPIScraper) Method() string { return MethodWhisperAPI }

// Scrape downloads the audio track and transcribes it. The temp file is
// removed on every path, success or failure.
func (s *WhisperAPIScraper) Scrape(ctx context.Context, url string, _ Options) *metadata.ScrapeResult {
	return attempt(ctx, MethodWhisperAPI, func(ctx context.Context) (*metadata.VideoMetadata, int, error) {
		videoID, ok := youtube.ExtractVideoID(url)
		if !ok {
			return nil, 0, ErrNoVideoID
		}

		audioPath, err := downloadAudio(ctx, s.ytdlpPath, s.timeout, url)
		if err != nil {
			return nil, 0, err
		}
		defer os.Remove(audioPath)

		fi, err := os.Stat(audioPath)
		if err != nil {
			return nil, 0, fmt.Errorf("stat audio file: %w", err)
		}
		if fi.Size() > maxWhisperFileSize {
			return nil, 0, fmt.Errorf("audio file too large (%.1fMB), max 25MB for Whisper API",
				float64(fi.Size())/(1024*1024))
		}

		resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
			Model:    openai.Whisper1,
			FilePath: audioPath,
			Format:   openai.AudioResponseFormatVerboseJSON,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("whisper api: %w", err)
		}

		segments := make([]metadata.TranscriptSegment, 0, len(resp.Segments))
		for _, seg := range resp.Segments {
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
		if len(segments) == 0 && resp.Text != "" {
			segments = append(segments, metadata.TranscriptSegment{
				Text:     strings.TrimSpace(resp.Text),
				Start:    0,
				Duration: resp.Duration,
			})
		}

		md := metadata.New(videoID, MethodWhisperAPI)
		md.Transcript = segments
		if resp.Language != "" {
			md.AvailableLanguages = []string{resp.Language}
		}
		md.WebpageURL = youtube.WatchURL(videoID)
		md.RawData = map[string]any{
			"transcript_language":  resp.Language,
			"is_ai_transcribed":    true,
			"word_count":           transcriptWordCount(segments),
			"segment_count":        len(segments),
			"full_transcript_text": TranscriptText(segments, false),
		}
		return md, metadata.CountTranscriptFields(md), nil
	})
}

// downloadAudio fetches a 64kbps mp3 rendition of the video into the
// system temp dir and returns its path. The caller owns the file.
func downloadAudio(ctx context.Context, ytdlpPath string, timeout time.Duration, url string) (string, error) {
	base := filepath.Join(os.TempDir(), "ytscope-audio-"+uuid.NewString())

	args := []string{
		"-f", "bestaudio/best",
		"-x", "--audio-format", "mp3",
		"--audio-quality", "64K",
		"--no-warnings", "--no-playlist",
		"-o", base + ".%(ext)s",
		url,
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, ytdlpPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", ErrYtdlpNotInstalled
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("audio download timed out: %w", ctx.Err())
		}
		return "", classifyYtdlpError(stderr.String(), err)
	}

	path := base + ".mp3"
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	// Post-processing can be skipped when the source is already mp3-like;
	// pick up whatever extension landed.
	matches, _ := filepath.Glob(base + ".*")
	if len(matches) == 0 {
		return "", errors.New("audio download produced no file")
	}
	return matches[0], nil
}
