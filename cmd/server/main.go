package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"landfall.gg/internal/persistence/indexdb"
	persistlog "landfall.gg/internal/persistence/log"
	"landfall.gg/internal/sim/grid"
	"landfall.gg/internal/sim/tuning"
	"landfall.gg/internal/sim/world"
	"landfall.gg/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		matchID    = flag.String("match", "match_1", "match id")
		seed       = flag.Int64("seed", 1337, "world seed")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		mapPath    = flag.String("map", "", "path to a map yaml (default: flat world from -width/-height)")
		width      = flag.Int("width", 400, "flat world width (ignored with -map)")
		height     = flag.Int("height", 200, "flat world height (ignored with -map)")
		wrapX      = flag.Bool("wrap_x", true, "flat world horizontal wrap (ignored with -map)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite match index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Default()
	}

	var g *grid.Grid
	if strings.TrimSpace(*mapPath) != "" {
		g, err = grid.LoadMapFile(*mapPath)
		if err != nil {
			logger.Fatalf("load map: %v", err)
		}
	} else {
		g = grid.AllLand(*width, *height, *wrapX, false)
	}

	w, err := world.New(world.WorldConfig{ID: *matchID, Seed: *seed, Map: g}, tune)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	w.SetLogger(logger)

	matchDir := filepath.Join(*dataDir, "matches", *matchID)
	_ = os.MkdirAll(matchDir, 0o755)

	cmdLog := persistlog.NewCommandLogger(matchDir)
	defer cmdLog.Close()

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(matchDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		if err := idx.RecordMatch(*matchID, *seed, g.Width(), g.Height(), tune); err != nil {
			logger.Printf("index: record match: %v", err)
		}
		w.SetStats(idx)
	}
	w.SetCommandLogger(multiCommandLogger{a: cmdLog, b: idx})

	ctx, cancel := signalContext()
	defer cancel()

	worldDone := make(chan struct{})
	go func() {
		defer close(worldDone)
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		fmt.Fprintf(rw, "# HELP landfall_match_tick Current match tick.\n")
		fmt.Fprintf(rw, "# TYPE landfall_match_tick gauge\n")
		fmt.Fprintf(rw, "landfall_match_tick{match=%q} %d\n", *matchID, w.CurrentTick())

		fmt.Fprintf(rw, "# HELP landfall_queue_depth Channel backlog depth.\n")
		fmt.Fprintf(rw, "# TYPE landfall_queue_depth gauge\n")
		fmt.Fprintf(rw, "landfall_queue_depth{match=%q,queue=%q} %d\n", *matchID, "inbox", len(w.Inbox()))
		fmt.Fprintf(rw, "landfall_queue_depth{match=%q,queue=%q} %d\n", *matchID, "join", len(w.Join()))
		fmt.Fprintf(rw, "landfall_queue_depth{match=%q,queue=%q} %d\n", *matchID, "leave", len(w.Leave()))
	})
	mux.HandleFunc("/v1/ws", ws.NewServer(w, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s (match=%s seed=%d map=%dx%d)", *addr, *matchID, *seed, g.Width(), g.Height())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}

	// The deferred log and index closes must not race the tick loop.
	cancel()
	<-worldDone
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

type multiCommandLogger struct {
	a world.CommandLogger
	b world.CommandLogger
}

func (m multiCommandLogger) WriteTick(entry world.CommandLogEntry) error {
	if m.a != nil {
		_ = m.a.WriteTick(entry)
	}
	if m.b != nil {
		_ = m.b.WriteTick(entry)
	}
	return nil
}
