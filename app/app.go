package app

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"golang.org/x/time/rate"

	"github.com/swissinfo-ch/skala/config"
	"github.com/swissinfo-ch/skala/platform"
	"github.com/swissinfo-ch/skala/report"
	"github.com/swissinfo-ch/skala/store"
	"github.com/swissinfo-ch/skala/unit"
)

type App struct {
	listen      string
	commit      string
	store       *store.Store
	runner      *report.Runner
	domains     *unit.Set
	platform    *platform.Info
	rateLimit   config.RateLimitConfig
	compression config.CompressionConfig
	clients     map[string]*client // method:addr
	clientMu    sync.Mutex
	viewNames   []string
	viewMu      sync.RWMutex
	ctx         context.Context
}

type AppCfg struct {
	Listen      string
	Commit      string
	Store       *store.Store
	Runner      *report.Runner
	Domains     *unit.Set
	Platform    *platform.Info
	RateLimit   config.RateLimitConfig
	Compression config.CompressionConfig
	ViewNames   []string
	Ctx         context.Context
}

func NewApp(cfg *AppCfg) *App {
	a := &App{
		listen:      cfg.Listen,
		commit:      cfg.Commit,
		store:       cfg.Store,
		runner:      cfg.Runner,
		domains:     cfg.Domains,
		platform:    cfg.Platform,
		rateLimit:   cfg.RateLimit,
		compression: cfg.Compression,
		clients:     make(map[string]*client),
		viewNames:   cfg.ViewNames,
		ctx:         cfg.Ctx,
	}
	go a.cleanupClients()
	return a
}

// Start serves until the root context is cancelled.
func (a *App) Start() {
	srv := &http.Server{
		Addr:    a.listen,
		Handler: a.Handler(),
	}
	go func() {
		<-a.ctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()
	slog.Info("app listening", "addr", a.listen)
	err := srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(err)
	}
}

// Handler returns the composed handler, also used by tests.
func (a *App) Handler() http.Handler {
	var h http.Handler = http.HandlerFunc(a.handleRequest)
	h = a.corsMiddleware(h)
	h = a.rateLimitMiddleware(h)
	if a.compression.Enabled {
		wrapper, err := gzhttp.NewWrapper(gzhttp.MinSize(a.compression.MinSize))
		if err == nil {
			h = wrapper(h)
		}
	}
	return h
}

// SetViews replaces the view names listed on the index page.
func (a *App) SetViews(names []string) {
	a.viewMu.Lock()
	a.viewNames = names
	a.viewMu.Unlock()
}

func (a *App) views() []string {
	a.viewMu.RLock()
	defer a.viewMu.RUnlock()
	return a.viewNames
}

func (a *App) handleRequest(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		switch r.URL.Path {
		case "/":
			a.handleRoot(w, r)
		case "/scale":
			a.handleGetScale(w, r)
		case "/v":
			a.handleGetView(w, r)
		case "/status":
			a.handleGetStatus(w, r)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	case "POST":
		switch r.URL.Path {
		case "/m":
			a.handlePost(w, r)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func (a *App) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := a.getRateLimiter(r)
		if !limiter.Allow() {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *App) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "LBL,DOM,VAL,TS")
		next.ServeHTTP(w, r)
	})
}

func (a *App) getRateLimiter(r *http.Request) *rate.Limiter {
	addr := r.Header.Get("Fly-Client-IP")
	if addr == "" {
		addr = r.RemoteAddr // fallback when local
	}
	a.clientMu.Lock()
	defer a.clientMu.Unlock()
	key := r.Method + addr
	v, exists := a.clients[key]
	if !exists {
		var limiter *rate.Limiter
		if r.Method == "POST" { // fast rate for ingest
			limiter = rate.NewLimiter(rate.Every(a.rateLimit.Post.Every.Duration), a.rateLimit.Post.Burst)
		} else { // lower rate for reads
			limiter = rate.NewLimiter(rate.Every(a.rateLimit.Get.Every.Duration), a.rateLimit.Get.Burst)
		}
		a.clients[key] = &client{limiter, time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (a *App) cleanupClients() {
	for {
		select {
		case <-a.ctx.Done():
			return
		case <-time.After(10 * time.Second):
		}
		a.clientMu.Lock()
		for key, client := range a.clients {
			if time.Since(client.lastSeen) > 10*time.Second {
				delete(a.clients, key)
			}
		}
		a.clientMu.Unlock()
	}
}
