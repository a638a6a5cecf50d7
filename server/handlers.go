package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ytscope/metadata"
	"ytscope/pool"
	"ytscope/scraper"
)

// scrapeRequest is the body accepted by every POST scrape route. Transcript
// extraction defaults to on; comment extraction defaults to off since it
// roughly doubles yt-dlp's work.
type scrapeRequest struct {
	URL               string `json:"url" binding:"required"`
	IncludeComments   bool   `json:"include_comments"`
	IncludeTranscript *bool  `json:"include_transcript"`
}

func (r *scrapeRequest) options() scraper.Options {
	opts := scraper.Options{
		IncludeComments:  r.IncludeComments,
		IncludeSubtitles: true,
	}
	if r.IncludeTranscript != nil {
		opts.IncludeSubtitles = *r.IncludeTranscript
	}
	return opts
}

func bindScrapeRequest(c *gin.Context) (*scrapeRequest, bool) {
	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return nil, false
	}
	return &req, true
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "ytscope",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"methods": gin.H{
			scraper.MethodYtdlp:           true,
			scraper.MethodAPI:             s.cfg.YouTubeAPIKey != "",
			scraper.MethodYtdlpTranscript: true,
			scraper.MethodTranscriptAPI:   true,
			scraper.MethodWhisperAPI:      s.cfg.OpenAIAPIKey != "",
			scraper.MethodLocalWhisper:    s.localWhisper.Available() == nil,
		},
	})
}

func (s *Server) handleScrapeYtdlp(c *gin.Context) {
	req, ok := bindScrapeRequest(c)
	if !ok {
		return
	}
	result := s.pool.Run(c.Request.Context(), func(ctx context.Context) *metadata.ScrapeResult {
		return s.ytdlp.Scrape(ctx, req.URL, req.options())
	})
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleScrapeAPI(c *gin.Context) {
	req, ok := bindScrapeRequest(c)
	if !ok {
		return
	}
	result := s.pool.Run(c.Request.Context(), func(ctx context.Context) *metadata.ScrapeResult {
		return s.api.Scrape(ctx, req.URL, req.options())
	})
	c.JSON(http.StatusOK, result)
}

// handleScrapeTranscript serves the combined transcript route: yt-dlp's
// subtitle listing first, the player endpoint as fallback.
func (s *Server) handleScrapeTranscript(c *gin.Context) {
	req, ok := bindScrapeRequest(c)
	if !ok {
		return
	}
	result := s.pool.Run(c.Request.Context(), func(ctx context.Context) *metadata.ScrapeResult {
		return scraper.CombinedTranscript(ctx, s.ytdlpTranscript, s.player, req.URL, req.options())
	})
	c.JSON(http.StatusOK, result)
}

// handleScrapeTranscriptAI serves audio transcription. The hosted Whisper
// API is preferred; when it is not configured and a local model is
// usable, the local transcriber takes over.
func (s *Server) handleScrapeTranscriptAI(c *gin.Context) {
	req, ok := bindScrapeRequest(c)
	if !ok {
		return
	}
	transcriber := s.whisper
	if s.cfg.OpenAIAPIKey == "" && s.localWhisper.Available() == nil {
		transcriber = s.localWhisper
	}
	result := s.pool.Run(c.Request.Context(), func(ctx context.Context) *metadata.ScrapeResult {
		return transcriber.Scrape(ctx, req.URL, req.options())
	})
	c.JSON(http.StatusOK, result)
}

// handleCompare fans the URL out to the general extractor, the official
// API, and the transcript pipeline, then aggregates. The response always
// carries all three envelopes; per-method failure is data, not an error.
func (s *Server) handleCompare(c *gin.Context) {
	req, ok := bindScrapeRequest(c)
	if !ok {
		return
	}
	opts := req.options()

	results := s.pool.RunAll(c.Request.Context(), []pool.Job{
		func(ctx context.Context) *metadata.ScrapeResult {
			return s.ytdlp.Scrape(ctx, req.URL, opts)
		},
		func(ctx context.Context) *metadata.ScrapeResult {
			return s.api.Scrape(ctx, req.URL, opts)
		},
		func(ctx context.Context) *metadata.ScrapeResult {
			return scraper.CombinedTranscript(ctx, s.ytdlpTranscript, s.player, req.URL, opts)
		},
	})

	c.JSON(http.StatusOK, scraper.BuildComparison(req.URL, results))
}

// handleTranscriptText returns the transcript as plain text, for callers
// that want prose instead of timed segments.
func (s *Server) handleTranscriptText(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "url query parameter is required"})
		return
	}
	includeTimestamps := c.DefaultQuery("include_timestamps", "false") == "true"

	result := s.pool.Run(c.Request.Context(), func(ctx context.Context) *metadata.ScrapeResult {
		return scraper.CombinedTranscript(ctx, s.ytdlpTranscript, s.player, url, scraper.Options{})
	})
	if !result.Success {
		c.JSON(http.StatusNotFound, gin.H{"detail": result.Error})
		return
	}

	data := result.Data
	resp := gin.H{
		"success":       true,
		"video_id":      data.VideoID,
		"method":        result.Method,
		"text":          scraper.TranscriptText(data.Transcript, includeTimestamps),
		"segment_count": len(data.Transcript),
	}
	if data.RawData != nil {
		resp["language"] = data.RawData["transcript_language"]
		resp["is_auto_generated"] = data.RawData["is_auto_generated"]
		resp["word_count"] = data.RawData["word_count"]
	}
	c.JSON(http.StatusOK, resp)
}
