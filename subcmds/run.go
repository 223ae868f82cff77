// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bvkgo/kv/kvhttp"
	"github.com/bvkgo/kvbadger"
	"github.com/daanonymous12/real-time-stock-sim/cli"
	"github.com/daanonymous12/real-time-stock-sim/ctxutil"
	"github.com/daanonymous12/real-time-stock-sim/daemonize"
	"github.com/daanonymous12/real-time-stock-sim/httputil"
	"github.com/daanonymous12/real-time-stock-sim/server"
	"github.com/daanonymous12/real-time-stock-sim/stream"
	"github.com/daanonymous12/real-time-stock-sim/subcmds/cmdutil"
	"github.com/dgraph-io/badger/v4"
	"github.com/nightlyone/lockfile"
	"github.com/visvasity/sglog"
)

type Run struct {
	cmdutil.ServerFlags

	background bool

	restart         bool
	shutdownTimeout time.Duration

	noPprof  bool
	noResume bool

	dataDir string

	source        string
	kafkaBrokers  string
	kafkaTopic    string
	kafkaGroup    string
	websocketURL  string
	batchInterval time.Duration
	numWorkers    int
}

func (c *Run) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("run", flag.ContinueOnError)
	c.ServerFlags.SetFlags(fset)
	fset.BoolVar(&c.background, "background", false, "runs the daemon in background")
	fset.BoolVar(&c.restart, "restart", false, "when true, kills any old instance")
	fset.DurationVar(&c.shutdownTimeout, "shutdown-timeout", 30*time.Second, "max timeout for shutdown when restarting")
	fset.BoolVar(&c.noPprof, "no-pprof", false, "when true net/http/pprof handler is not registered")
	fset.BoolVar(&c.noResume, "no-resume", false, "when true a paused simulation isn't resumed automatically")
	fset.StringVar(&c.dataDir, "data-dir", "", "path to the data directory")
	fset.StringVar(&c.source, "source", "kafka", `quote source type ("kafka" or "websocket")`)
	fset.StringVar(&c.kafkaBrokers, "kafka-brokers", "localhost:9092", "comma-separated kafka broker addresses")
	fset.StringVar(&c.kafkaTopic, "kafka-topic", "quotes", "kafka topic with quote messages")
	fset.StringVar(&c.kafkaGroup, "kafka-group", "stocksim", "kafka consumer group id")
	fset.StringVar(&c.websocketURL, "websocket-url", "", "websocket endpoint with quote messages")
	fset.DurationVar(&c.batchInterval, "batch-interval", 8*time.Second, "time window for collecting one quote batch")
	fset.IntVar(&c.numWorkers, "num-workers", 0, "number of account evaluation workers (default=num cpus)")
	return fset, cli.CmdFunc(c.run)
}

func (c *Run) Synopsis() string {
	return "Runs stocksim in foreground or background"
}

func (c *Run) CommandHelp() string {
	return `

Command "run" starts the stocksim daemon. The daemon loads all trading
accounts from the database, consumes quote messages from the configured
source and updates the accounts with buy/sell decisions in periodic
cycles.

Quote messages are JSON arrays of the form [time, ticker, volume, price],
for example:

    [1681990876, "AAPL", 100, "165.21"]

Accounts can be added while the daemon is running with the "account add"
subcommand followed by "reload".

`
}

func (c *Run) newSource() (stream.Source, error) {
	switch c.source {
	case "kafka":
		return stream.NewKafkaSource(&stream.KafkaOptions{
			Brokers: strings.Split(c.kafkaBrokers, ","),
			Topic:   c.kafkaTopic,
			GroupID: c.kafkaGroup,
		}), nil
	case "websocket":
		if len(c.websocketURL) == 0 {
			return nil, fmt.Errorf("websocket source needs the websocket-url flag")
		}
		return stream.NewWebsocketSource(c.websocketURL), nil
	}
	return nil, fmt.Errorf("unsupported quote source type %q", c.source)
}

func (c *Run) run(ctx context.Context, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(c.dataDir) == 0 {
		c.dataDir = filepath.Join(os.Getenv("HOME"), ".stocksim")
	}
	if _, err := os.Stat(c.dataDir); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("could not stat data directory %q: %w", c.dataDir, err)
		}
		if err := os.MkdirAll(c.dataDir, 0700); err != nil {
			return fmt.Errorf("could not create data directory %q: %w", c.dataDir, err)
		}
	}
	dataDir, err := filepath.Abs(c.dataDir)
	if err != nil {
		return fmt.Errorf("could not determine data-dir %q absolute path: %w", c.dataDir, err)
	}

	if ip := net.ParseIP(c.IP); ip == nil {
		return fmt.Errorf("invalid ip address")
	}
	if c.Port <= 0 {
		return fmt.Errorf("invalid port number")
	}
	addr := &net.TCPAddr{
		IP:   net.ParseIP(c.IP),
		Port: c.Port,
	}

	// Health checker for the background process initialization. The
	// responding http server must really be our child and not an older
	// instance, so the child publishes its parent pid.
	check := func(ctx context.Context) error {
		client := http.Client{Timeout: time.Second}
		resp, err := client.Get(fmt.Sprintf("http://%s/ppid", addr.String()))
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("http status: %d", resp.StatusCode)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		ppid, err := strconv.Atoi(string(data))
		if err != nil {
			return err
		}
		if ppid != os.Getpid() {
			return fmt.Errorf("is another instance already running? ppid mismatch: want %d got %d", os.Getpid(), ppid)
		}
		return nil
	}

	if c.background {
		if err := daemonize.Daemonize(ctx, check); err != nil {
			return err
		}
	}

	log.SetFlags(log.Flags() | log.Lmicroseconds)
	log.Printf("using data directory %s", dataDir)

	logDir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("could not create log directory %q: %w", logDir, err)
	}
	backend := sglog.NewBackend(&sglog.Options{
		LogDirs: []string{logDir},
	})
	defer backend.Close()
	slog.SetDefault(slog.New(backend.Handler()))

	lockPath := filepath.Join(dataDir, "stocksim.lock")
	flock, err := lockfile.New(lockPath)
	if err != nil {
		return fmt.Errorf("could not create lock file %q: %w", lockPath, err)
	}
	if err := flock.TryLock(); err != nil {
		if !c.restart {
			return fmt.Errorf("could not get lock on file %q: %w", lockPath, err)
		}
		owner, err := flock.GetOwner()
		if err != nil {
			return fmt.Errorf("could not get current owner of the lock file: %w", err)
		}
		if err := owner.Signal(os.Interrupt); err == nil {
			log.Printf("waiting for the previous instance to shutdown")
			if err := ctxutil.RetryTimeout(ctx, time.Second, c.shutdownTimeout, flock.TryLock); err != nil {
				if err := owner.Signal(os.Kill); err != nil {
					return fmt.Errorf("could not kill current owner of the lock file: %w", err)
				}
				ctxutil.Sleep(ctx, time.Millisecond)
			}
		}
		if err := flock.TryLock(); err != nil {
			return fmt.Errorf("could not get lock on file %q after killing previous instance: %w", lockPath, err)
		}
	}
	defer flock.Unlock()

	// Start HTTP server.
	s, err := httputil.New(nil /* opts */)
	if err != nil {
		return err
	}
	defer s.Close()

	tcpServer, err := s.StartTCP(ctx, addr)
	if err != nil {
		return fmt.Errorf("could not start http server on %s: %w", addr, err)
	}
	defer s.Stop(tcpServer)

	if !c.noPprof {
		s.AddHandler("/debug/pprof/heap", pprof.Handler("heap"))
		s.AddHandler("/debug/pprof/goroutine", pprof.Handler("goroutine"))
		s.AddHandler("/debug/pprof/allocs", pprof.Handler("allocs"))
		s.AddHandler("/debug/pprof/block", pprof.Handler("block"))
		s.AddHandler("/debug/pprof/mutex", pprof.Handler("mutex"))
	}

	// Open the database.
	bopts := badger.DefaultOptions(dataDir)
	bdb, err := badger.Open(bopts)
	if err != nil {
		return fmt.Errorf("could not open the database: %w", err)
	}
	defer bdb.Close()
	db := kvbadger.New(bdb, isGoodKey)

	s.AddHandler("/db/", http.StripPrefix("/db", kvhttp.Handler(db)))

	source, err := c.newSource()
	if err != nil {
		return err
	}

	sopts := &server.Options{
		BatchInterval: c.batchInterval,
		NumWorkers:    c.numWorkers,
		NoResume:      c.noResume,
	}
	engine, err := server.New(db, source, sopts)
	if err != nil {
		return err
	}
	defer engine.Close()

	// Add the engine api handlers.
	engineAPIs := engine.HandlerMap()
	for k, v := range engineAPIs {
		s.AddHandler(k, v)
	}
	defer func() {
		for k := range engineAPIs {
			s.RemoveHandler(k)
		}
	}()

	if err := engine.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := engine.Stop(context.Background()); err != nil {
			log.Printf("could not stop the simulation cleanly (ignored): %v", err)
		}
	}()

	// Wait for the signals

	log.Printf("started stocksim server at %s", addr)
	s.AddHandler("/ppid", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, strconv.Itoa(os.Getppid()))
	}))

	<-ctx.Done()
	log.Printf("stocksim server is shutting down")
	return nil
}

func isGoodKey(k string) bool {
	return path.IsAbs(k) && k == path.Clean(k)
}
