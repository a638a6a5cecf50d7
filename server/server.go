// Package server exposes the extraction strategies over HTTP. One route
// per strategy plus a comparison route that fans out across methods.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ytscope/config"
	ythttp "ytscope/http"
	"ytscope/pool"
	"ytscope/scraper"
)

// Server wires the extraction strategies, the worker pool, and the HTTP
// routes together.
type Server struct {
	cfg    *config.Config
	log    *zap.Logger
	pool   *pool.Pool
	engine *gin.Engine

	httpClient *ythttp.Client

	ytdlp           *scraper.YtdlpScraper
	api             scraper.Scraper
	ytdlpTranscript *scraper.YtdlpTranscriptScraper
	player          *scraper.PlayerTranscriptScraper
	whisper         scraper.Scraper
	localWhisper    *scraper.LocalWhisperScraper
}

// New builds the server and all its strategies. Strategies that cannot be
// constructed (missing credentials) are replaced with stand-ins that fail
// every request with the construction error, so their routes stay up and
// report the problem instead of 404ing.
func New(cfg *config.Config, log *zap.Logger) *Server {
	httpCfg := ythttp.DefaultConfig()
	httpCfg.Retry = cfg.RetryConfig()
	httpClient := ythttp.New(httpCfg)

	s := &Server{
		cfg:        cfg,
		log:        log,
		pool:       pool.New(cfg.Workers),
		httpClient: httpClient,

		ytdlp:           scraper.NewYtdlpScraper(cfg.YtdlpPath, cfg.YtdlpTimeout, httpClient),
		ytdlpTranscript: scraper.NewYtdlpTranscriptScraper(cfg.YtdlpPath, cfg.YtdlpTimeout, httpClient),
		player:          scraper.NewPlayerTranscriptScraper(httpClient),
		localWhisper:    scraper.NewLocalWhisperScraper(cfg.YtdlpPath, cfg.WhisperModel, cfg.YtdlpTimeout),
	}

	api, err := scraper.NewAPIScraper(context.Background(), cfg.YouTubeAPIKey)
	if err != nil {
		log.Warn("youtube api scraper unavailable", zap.Error(err))
		s.api = scraper.Unavailable(scraper.MethodAPI, err.Error())
	} else {
		s.api = api
	}

	whisper, err := scraper.NewWhisperAPIScraper(cfg.OpenAIAPIKey, cfg.YtdlpPath, cfg.YtdlpTimeout)
	if err != nil {
		log.Warn("whisper api scraper unavailable", zap.Error(err))
		s.whisper = scraper.Unavailable(scraper.MethodWhisperAPI, err.Error())
	} else {
		s.whisper = whisper
	}

	s.engine = s.buildEngine()
	return s
}

func (s *Server) buildEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestID())
	engine.Use(requestLogger(s.log))
	engine.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	apiGroup := engine.Group("/api")
	apiGroup.GET("/health", s.handleHealth)
	apiGroup.POST("/scrape/ytdlp", s.handleScrapeYtdlp)
	apiGroup.POST("/scrape/youtube-api", s.handleScrapeAPI)
	apiGroup.POST("/scrape/transcript", s.handleScrapeTranscript)
	apiGroup.POST("/scrape/transcript-ai", s.handleScrapeTranscriptAI)
	apiGroup.POST("/scrape/compare", s.handleCompare)
	apiGroup.GET("/transcript/text", s.handleTranscriptText)
	return engine
}

// Handler exposes the routing tree, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until the context is canceled, then drains in-flight
// requests and workers before returning.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info("listening", zap.String("addr", s.cfg.ListenAddr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.pool.Close()
	s.httpClient.Close()
	s.log.Info("shut down")
	return err
}
