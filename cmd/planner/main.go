package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/saviobatista/route-planner/internal/config"
	"github.com/saviobatista/route-planner/internal/course"
	"github.com/saviobatista/route-planner/internal/db"
	"github.com/saviobatista/route-planner/internal/flights"
	"github.com/saviobatista/route-planner/internal/log"
	"github.com/saviobatista/route-planner/internal/nats"
	"github.com/saviobatista/route-planner/internal/navlog"
	"github.com/saviobatista/route-planner/internal/parser"
	"github.com/saviobatista/route-planner/internal/redis"
	"github.com/saviobatista/route-planner/internal/route"
	"github.com/saviobatista/route-planner/internal/search"
	"github.com/saviobatista/route-planner/internal/stats"
)

// clients holds the optional backing services. Any of them may be nil when
// the service could not be reached at startup; the planner still runs, with
// the features that need it disabled.
type clients struct {
	db     *db.Client
	redis  *redis.Client
	nats   *nats.Client
	search *search.Searcher
}

func (c *clients) Close() {
	c.nats.Close()
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing dbClient: %v\n", err)
		}
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing redisClient: %v\n", err)
		}
	}
}

// createClients connects to every configured service, logging and skipping
// the ones that are unavailable.
func createClients(ctx context.Context, cfg *config.Config, lg *log.Logger) *clients {
	c := &clients{}

	if dbClient, err := db.New(cfg.DBConnStr); err != nil {
		lg.Warn("database unavailable, flights will not be saved", "error", err)
	} else if err := dbClient.Ping(ctx); err != nil {
		lg.Warn("database unavailable, flights will not be saved", "error", err)
		_ = dbClient.Close()
	} else {
		c.db = dbClient
	}

	if redisClient, err := redis.New(cfg.RedisAddr); err != nil {
		lg.Warn("redis unavailable, caching disabled", "error", err)
	} else {
		c.redis = redisClient
	}

	if natsClient, err := nats.New(cfg.NatsURL, lg); err != nil {
		lg.Warn("nats unavailable, edits will not be published", "error", err)
	} else {
		c.nats = natsClient
	}

	if cfg.GoogleMapsAPIKey != "" {
		searcher, err := search.New(cfg.GoogleMapsAPIKey, lg)
		if err != nil {
			lg.Warn("airport search disabled", "error", err)
		} else {
			c.search = searcher
		}
	}
	return c
}

func navLogService(cfg *config.Config, rc *redis.Client, lg *log.Logger) route.NavLogService {
	client := navlog.NewClient(cfg.NavLogURL, cfg.APIKey)
	if rc == nil {
		return client
	}
	return navlog.NewCached(client, rc, lg)
}

func courseService(cfg *config.Config, rc *redis.Client, lg *log.Logger) *course.Service {
	var shared course.SharedCache
	if rc != nil {
		shared = rc
	}
	limit := course.NewRateLimit(cfg.CourseRateLimit, time.Minute)
	return course.NewService(course.NewClient(cfg.CourseURL, cfg.APIKey), limit, shared, lg)
}

func flightRepository(c *clients, lg *log.Logger) *flights.Repository {
	if c.db == nil {
		return nil
	}
	var cache flights.Cache
	if c.redis != nil {
		cache = c.redis
	}
	return flights.New(c.db, cache, lg)
}

// setupPlanner wires a session onto loop and returns the planner driving it.
// Background workers are added to wg and stop when ctx is cancelled.
func setupPlanner(ctx context.Context, cfg *config.Config, c *clients, loop *route.Loop, out io.Writer, lg *log.Logger, wg *sync.WaitGroup) *Planner {
	st := stats.New(lg)
	if c.db != nil {
		st.SetStore(c.db)
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.StartPersistence(ctx, 5*time.Minute)
		}()
	}
	go st.StartReporting(ctx, time.Minute)

	opts := route.Options{
		NavLog:    navLogService(cfg, c.redis, lg),
		Scheduler: route.NewLoopScheduler(loop),
		Debounce:  cfg.DragDebounce,
		Recorder:  st,
		Logger:    lg,
	}
	svc := Services{Courses: courseService(cfg, c.redis, lg)}
	if repo := flightRepository(c, lg); repo != nil {
		opts.Flights = repo
		svc.Flights = repo
	}
	if c.search != nil {
		svc.Search = c.search
	}

	session := route.NewSession(opts)
	if c.nats != nil {
		fwd := newEditForwarder(c.nats, 256, lg)
		session.Subscribe(fwd.Enqueue)
		wg.Add(1)
		go func() {
			defer wg.Done()
			fwd.Run(ctx)
		}()
	}
	return NewPlanner(loop, session, svc, out, lg)
}

// runInput executes one command per input line until EOF or cancellation.
// Command errors are reported and do not stop the planner.
func runInput(ctx context.Context, p *Planner, in io.Reader, errOut io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := scanner.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		cmd, err := parser.ParseCommand(line, time.Now().UTC())
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			continue
		}
		if err := p.Execute(ctx, cmd); err != nil {
			if errors.Is(err, errLoopStopped) {
				return nil
			}
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	lg := log.New(cfg.LogLevel, cfg.LogDir)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := createClients(ctx, cfg, lg)
	defer c.Close()

	loop := route.NewLoop(64)
	go loop.Run(ctx)

	var wg sync.WaitGroup
	planner := setupPlanner(ctx, cfg, c, loop, os.Stdout, lg, &wg)
	lg.Info("planner ready", "debounce", cfg.DragDebounce.String())

	if err := runInput(ctx, planner, os.Stdin, os.Stderr); err != nil {
		lg.Error("failed to read input", "error", err)
	}
	lg.Info("shutting down")
	// Flush queued edit events and final statistics before the clients close.
	stop()
	wg.Wait()
}
