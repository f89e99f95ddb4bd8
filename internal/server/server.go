package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/example/go-polyglot-tts/internal/audio"
	"github.com/example/go-polyglot-tts/internal/config"
	"github.com/example/go-polyglot-tts/internal/language"
	"github.com/example/go-polyglot-tts/internal/pipeline"
	"github.com/example/go-polyglot-tts/internal/resources"
	"github.com/example/go-polyglot-tts/internal/text"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// Encoder runs the text stages for one request.
type Encoder interface {
	Prepare(ctx context.Context, text string, override language.Tag) (pipeline.Utterance, error)
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxTextBytes   int
	maxAudioBytes  int64
	workers        int
	requestTimeout time.Duration
	defaultLang    language.Tag
	output         pipeline.OutputOptions
	logger         *slog.Logger
}

func defaultOptions() options {
	return options{
		maxTextBytes:   4096,
		maxAudioBytes:  32 << 20,
		workers:        2,
		requestTimeout: 60 * time.Second,
		defaultLang:    language.English,
		output:         pipeline.OutputOptions{Quality: audio.DefaultQuality, Engine: audio.EngineSinc},
		logger:         slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxTextBytes sets the maximum allowed text length in bytes for POST /v1/encode.
func WithMaxTextBytes(n int) Option {
	return func(o *options) { o.maxTextBytes = n }
}

// WithMaxAudioBytes caps the WAV body accepted by POST /v1/resample.
func WithMaxAudioBytes(n int64) Option {
	return func(o *options) { o.maxAudioBytes = n }
}

// WithWorkers sets the maximum number of concurrent requests doing work.
// Zero disables throttling.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithRequestTimeout sets the per-request deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithDefaultLanguage sets the fallback reported by GET /languages.
func WithDefaultLanguage(tag language.Tag) Option {
	return func(o *options) { o.defaultLang = tag }
}

// WithOutput sets the resample target used when a request names none.
func WithOutput(out pipeline.OutputOptions) Option {
	return func(o *options) { o.output = out }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

// handler holds the dependencies needed to serve HTTP requests.
type handler struct {
	enc   Encoder
	opts  options
	sem   chan struct{} // semaphore for worker pool
	log   *slog.Logger
	stats *tracker
}

// NewHandler returns an http.Handler that serves /health, /languages,
// /stats, POST /v1/encode and POST /v1/resample.
func NewHandler(enc Encoder, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		enc:   enc,
		opts:  opts,
		log:   opts.logger,
		stats: newTracker(time.Now(), defaultRecentQueries),
	}
	if opts.workers > 0 {
		h.sem = make(chan struct{}, opts.workers)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/languages", h.handleLanguages)
	mux.HandleFunc("/stats", h.handleStats)
	mux.HandleFunc("/v1/encode", h.handleEncode)
	mux.HandleFunc("/v1/resample", h.handleResample)
	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

type languagesResponse struct {
	Languages []language.Tag `json:"languages"`
	Default   language.Tag   `json:"default"`
}

func (h *handler) handleLanguages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, languagesResponse{
		Languages: language.Supported(),
		Default:   h.opts.defaultLang,
	})
}

func (h *handler) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.stats.snapshot())
}

type encodeRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	// MaxChars > 0 splits the text at sentence boundaries first.
	MaxChars int `json:"max_chars"`
}

type encodeResponse struct {
	Utterances []pipeline.Utterance `json:"utterances"`
}

func (h *handler) handleEncode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "request body is required")
		return
	}

	var req encodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text field is required")
		return
	}

	if len(req.Text) > h.opts.maxTextBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("text exceeds maximum size of %d bytes", h.opts.maxTextBytes))
		return
	}

	override, err := language.Parse(req.Language)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	release, ok := h.acquire(w, r)
	if !ok {
		return
	}
	defer release()

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.requestTimeout)
	defer cancel()

	start := time.Now()
	var resp encodeResponse
	for _, chunk := range text.ChunkBySentence(req.Text, req.MaxChars) {
		u, err := h.enc.Prepare(ctx, chunk, override)
		if err != nil {
			h.fail(w, r, "encode", req.Text, start, err)
			return
		}
		resp.Utterances = append(resp.Utterances, u)
	}
	elapsed := time.Since(start)
	h.stats.record(req.Text, start, elapsed)

	tokens := 0
	for _, u := range resp.Utterances {
		tokens += len(u.TokenIDs)
	}
	h.log.InfoContext(r.Context(), "encode complete",
		slog.String("language", req.Language),
		slog.Int("text_len", len(req.Text)),
		slog.Int("chunks", len(resp.Utterances)),
		slog.Int("tokens", tokens),
		slog.Int64("duration_ms", elapsed.Milliseconds()),
	)
	writeJSON(w, http.StatusOK, resp)
}

// handleResample converts a WAV body. Query parameters rate, channels,
// quality and engine override the configured output.
func (h *handler) handleResample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	out, err := h.outputFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.opts.maxAudioBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("audio exceeds maximum size of %d bytes", h.opts.maxAudioBytes))
			return
		}
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	buf, err := audio.DecodeWAV(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	release, ok := h.acquire(w, r)
	if !ok {
		return
	}
	defer release()

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.requestTimeout)
	defer cancel()

	start := time.Now()
	res, err := pipeline.Resample(ctx, buf, out)
	if err != nil {
		if pipeline.KindOf(err) == pipeline.KindInvalidResampleSpec {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.fail(w, r, "resample", "", start, err)
		return
	}
	wav, err := audio.EncodeWAVPCM16(res)
	if err != nil {
		h.fail(w, r, "resample", "", start, err)
		return
	}

	h.log.InfoContext(r.Context(), "resample complete",
		slog.Int("source_rate", buf.SampleRate),
		slog.Int("rate", res.SampleRate),
		slog.Int("channels", res.Channels),
		slog.Int("frames", res.Frames()),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(wav)
}

// Bounds on the per-request output overrides.
const (
	minQueryRate     = 1000
	maxQueryRate     = 384000
	maxQueryChannels = 8
)

func (h *handler) outputFromQuery(r *http.Request) (pipeline.OutputOptions, error) {
	out := h.opts.output
	q := r.URL.Query()
	if v := q.Get("rate"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < minQueryRate || n > maxQueryRate {
			return out, fmt.Errorf("invalid rate %q (want %d..%d)", v, minQueryRate, maxQueryRate)
		}
		out.TargetRate = n
	}
	if v := q.Get("channels"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxQueryChannels {
			return out, fmt.Errorf("invalid channels %q (want 1..%d)", v, maxQueryChannels)
		}
		out.Channels = n
	}
	if v := q.Get("quality"); v != "" {
		quality, err := config.NormalizeQuality(v)
		if err != nil {
			return out, err
		}
		out.Quality = quality
	}
	if v := q.Get("engine"); v != "" {
		engine, err := config.NormalizeEngine(v)
		if err != nil {
			return out, err
		}
		out.Engine = engine
	}
	// The response is always PCM16; keep float math until the encoder.
	out.Format = audio.FormatKeep
	return out, nil
}

// acquire takes a worker slot, honouring cancellation while waiting.
func (h *handler) acquire(w http.ResponseWriter, r *http.Request) (func(), bool) {
	if h.sem == nil {
		return func() {}, true
	}
	select {
	case h.sem <- struct{}{}:
		return func() { <-h.sem }, true
	case <-r.Context().Done():
		writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
		return nil, false
	}
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, op, input string, start time.Time, err error) {
	durationMS := time.Since(start).Milliseconds()
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		h.log.WarnContext(r.Context(), op+" timed out",
			slog.Int("text_len", len(input)),
			slog.Int64("duration_ms", durationMS),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusGatewayTimeout, op+" timed out")
		return
	}
	h.log.ErrorContext(r.Context(), op+" failed",
		slog.Int("text_len", len(input)),
		slog.Int64("duration_ms", durationMS),
		slog.String("kind", string(pipeline.KindOf(err))),
		slog.String("error", err.Error()),
	)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server — wires handler into net/http.Server with graceful shutdown
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	pipe            *pipeline.Pipeline
	shutdownTimeout time.Duration
	log             *slog.Logger
}

// New returns a server for cfg. A nil p is built from cfg on Start.
func New(cfg config.Config, p *pipeline.Pipeline) *Server {
	shutdown := 30 * time.Second
	if cfg.Server.ShutdownTimeout > 0 {
		shutdown = time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	}
	return &Server{
		cfg:             cfg,
		pipe:            p,
		shutdownTimeout: shutdown,
		log:             slog.Default(),
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

func (s *Server) Start(ctx context.Context) error {
	p, err := s.pipeline()
	if err != nil {
		return err
	}
	opts := p.Options()

	h := NewHandler(p,
		WithWorkers(s.cfg.Server.Workers),
		WithMaxTextBytes(s.cfg.Server.MaxTextBytes),
		WithRequestTimeout(time.Duration(s.cfg.Server.RequestTimeout)*time.Second),
		WithDefaultLanguage(opts.DefaultLanguage),
		WithOutput(opts.Output),
		WithLogger(s.log),
	)

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	s.log.Info("server listening",
		slog.String("addr", s.cfg.Server.ListenAddr),
		slog.String("resources", p.Resources().Source),
	)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

func (s *Server) pipeline() (*pipeline.Pipeline, error) {
	if s.pipe != nil {
		return s.pipe, nil
	}
	opts, err := s.cfg.PipelineOptions()
	if err != nil {
		return nil, err
	}
	res, err := resources.Load(s.cfg.Paths.Resources)
	if err != nil {
		return nil, &pipeline.Error{Kind: pipeline.KindResourceLoadFailure, Err: err}
	}
	return pipeline.New(res, opts, pipeline.WithLogger(s.log))
}

// Health is a server's /health and /languages answer.
type Health struct {
	Status    string         `json:"status"`
	Version   string         `json:"version"`
	Languages []language.Tag `json:"languages"`
	Default   language.Tag   `json:"default"`
}

// CheckHealth queries /health and /languages on the server at addr, a
// host:port or a base URL. It fails unless the server reports status "ok".
func CheckHealth(ctx context.Context, addr string) (Health, error) {
	base := strings.TrimSuffix(addr, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}

	var h Health
	if err := getJSON(ctx, base+"/health", &h); err != nil {
		return Health{}, err
	}
	if h.Status != "ok" {
		return h, fmt.Errorf("server reports status %q", h.Status)
	}

	var langs languagesResponse
	if err := getJSON(ctx, base+"/languages", &langs); err != nil {
		return h, err
	}
	h.Languages, h.Default = langs.Languages, langs.Default
	return h, nil
}

func getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %s", req.URL.Path, resp.Status)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(v); err != nil {
		return fmt.Errorf("GET %s: decode: %w", req.URL.Path, err)
	}
	return nil
}
