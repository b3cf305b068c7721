package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/speechgateway/internal/api/handlers"
	"github.com/nikhilbhutani/speechgateway/internal/api/middleware"
	"github.com/nikhilbhutani/speechgateway/internal/audit"
	"github.com/nikhilbhutani/speechgateway/internal/config"
	"github.com/nikhilbhutani/speechgateway/internal/queue"
	"github.com/nikhilbhutani/speechgateway/internal/telemetry"
	"github.com/nikhilbhutani/speechgateway/internal/tts"
)

type Router struct {
	mux     *chi.Mux
	redis   *redis.Client
	cfg     *config.Config
	metrics *telemetry.Metrics
	queue   *queue.Client
}

// NewRouter wires the gateway. rdb may be nil; it is only used for readiness.
func NewRouter(cfg *config.Config, rdb *redis.Client, metrics *telemetry.Metrics) *Router {
	if metrics == nil {
		metrics = telemetry.NewMetrics()
	}
	return &Router{
		mux:     chi.NewRouter(),
		redis:   rdb,
		cfg:     cfg,
		metrics: metrics,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(middleware.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Processing-Time", "X-Request-Id"},
		MaxAge:         300,
	}))

	health := handlers.NewHealthHandler(rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())

	speech := handlers.NewSpeechHandler(rt.synthesizer())
	for _, path := range []string{"/tts", "/text-to-speech"} {
		r.Get(path, speech.Speak)
		r.Post(path, speech.Speak)
	}
	r.Get("/tts/audio", speech.SpeakAudio)
	r.Post("/tts/audio", speech.SpeakAudio)

	return r
}

// Close releases the queue connection opened for asynchronous debug records.
func (rt *Router) Close() error {
	if rt.queue != nil {
		return rt.queue.Close()
	}
	return nil
}

func (rt *Router) synthesizer() tts.Synthesizer {
	client := tts.NewUpstreamClient(rt.cfg.Upstream.URL,
		tts.WithHTTPClient(telemetry.HTTPClient(rt.cfg.Upstream.Timeout)),
		tts.WithUserAgent(tts.RandomUserAgent(rt.cfg.Upstream.UserAgents)),
	)

	svc := tts.NewService(
		tts.NewTextValidator(rt.cfg.Speech.MaxChars, rt.cfg.Speech.Sanitize),
		client,
		tts.WithDefaults(rt.cfg.Speech.DefaultModel, rt.cfg.Speech.DefaultSpeed),
		tts.WithAudit(audit.NewService(rt.recordSink())),
		tts.WithSkipObserver(rt.metrics.ObserveSkip),
	)
	return telemetry.NewSynthesizer(svc, rt.metrics, rt.cfg.Speech.DefaultModel)
}

func (rt *Router) recordSink() audit.Sink {
	switch {
	case !rt.cfg.Debug.Enabled:
		return audit.NopSink{}
	case rt.cfg.Debug.Async:
		rt.queue = queue.NewClient(rt.cfg.Redis)
		return audit.NewQueueSink(rt.queue)
	default:
		return audit.NewFileSink(rt.cfg.Debug.Dir)
	}
}
