package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/diamondburned/postlist/frontend/frontserver"
	"github.com/diamondburned/postlist/server"
	"github.com/diamondburned/postlist/server/dataset"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/net/http2"
	"golang.org/x/sync/errgroup"

	toml "github.com/pelletier/go-toml"
)

var (
	configGlob = "./config*.toml"
	logLevel   = ""
	noFrontend = false
)

func stderrlnf(f string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, f+"\n", v...)
}

type Config struct {
	ListenAddress  string `toml:"listenAddress"`
	SocketPath     string `toml:"socketPath"`
	SocketPerm     string `toml:"socketPerm"`
	LogLevel       string `toml:"logLevel"`
	BackendAddress string `toml:"backendAddress"`

	frontserver.FrontConfig
	server.Config
}

func NewConfig() Config {
	return Config{
		ListenAddress: ":8080",
		LogLevel:      "info",
		FrontConfig:   frontserver.NewConfig(),
		Config:        server.NewConfig(),
	}
}

func (c *Config) Validate() error {
	if c.ListenAddress == "" && c.SocketPath == "" {
		return errors.New("missing `listenAddress' or `socketPath' value")
	}

	if c.SocketPath != "" && c.BackendAddress == "" && !noFrontend {
		return errors.New("`backendAddress' is required when listening on a socket")
	}

	return nil
}

// BackendHost returns the base URL the frontend reaches the API through.
func (c *Config) BackendHost() string {
	if c.BackendAddress != "" {
		return c.BackendAddress
	}

	host, port, err := net.SplitHostPort(c.ListenAddress)
	if err != nil {
		return "http://" + c.ListenAddress
	}

	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}

	return "http://" + net.JoinHostPort(host, port)
}

func init() {
	pflag.StringVarP(
		&configGlob, "config", "c", configGlob,
		"Path to config file with glob support for fallback",
	)

	pflag.StringVarP(
		&logLevel, "log-level", "l", logLevel,
		"Log level, overrides the config's logLevel",
	)

	pflag.BoolVarP(
		&noFrontend, "no-frontend", "n", noFrontend,
		"Disable the default frontend at root",
	)

	pflag.Usage = func() {
		stderrlnf("Usage: %s [subcommand] [flags...]", filepath.Base(os.Args[0]))
		stderrlnf("Subcommands:")
		stderrlnf("  serve          Run the HTTP server (default)")
		stderrlnf("  dump-dataset   Print the dataset as JSON")
		stderrlnf("Flags:")
		pflag.PrintDefaults()
	}
}

func main() {
	pflag.Parse()

	cfg, err := loadConfig(configGlob)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	l, err := newLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create logger")
	}
	log.Logger = l

	switch pflag.Arg(0) {
	case "dump-dataset":
		if err := dumpDataset(os.Stdout, cfg.DatasetPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to dump dataset")
		}

	case "serve", "":
		if err := serve(cfg); err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}

	default:
		pflag.Usage()
		os.Exit(2)
	}
}

// loadConfig reads every TOML file matched by glob over the defaults. No
// match is fine.
func loadConfig(glob string) (Config, error) {
	var cfg = NewConfig()

	d, err := filepath.Glob(glob)
	if err != nil {
		return cfg, errors.Wrap(err, "Failed to glob")
	}

	for _, path := range d {
		f, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "Failed to read globbed config file")
		}

		if err := toml.Unmarshal(f, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "Failed to unmarshal %s", path)
		}
	}

	return cfg, cfg.Validate()
}

func dumpDataset(w io.Writer, path string) error {
	set, err := dataset.Load(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")

	return enc.Encode(set)
}

func serve(cfg Config) error {
	a, err := server.New(cfg.Config)
	if err != nil {
		return errors.Wrap(err, "Failed to create instance")
	}
	defer a.Close()

	c := middleware.NewCompressor(5)
	c.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})

	mux := chi.NewMux()
	mux.Use(accessLog(log.Logger))
	mux.Use(c.Handler)
	mux.Mount("/api", a)

	if !noFrontend {
		f, err := frontserver.New(cfg.BackendHost(), cfg.FrontConfig)
		if err != nil {
			return errors.Wrap(err, "Failed to create frontend")
		}
		mux.Mount("/", f)
	}

	l, err := listen(cfg)
	if err != nil {
		return err
	}

	var server = http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Explicitly set up HTTP/2.
	err = http2.ConfigureServer(&server, &http2.Server{
		MaxHandlers:          4096,
		MaxConcurrentStreams: 1024,
	})
	if err != nil {
		return errors.Wrap(err, "Failed to configure HTTP/2 server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Stringer("addr", l.Addr()).Msg("Starting HTTP/2 listener")

		if err := server.Serve(l); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "Failed to serve")
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		// Give the server a 10 seconds timeout for shutting down.
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		log.Info().Msg("Shutting down")

		if err := server.Shutdown(sctx); err != nil {
			return errors.Wrap(err, "Failed to gracefully close the server")
		}
		return nil
	})

	return g.Wait()
}

func listen(cfg Config) (net.Listener, error) {
	if cfg.SocketPath == "" {
		l, err := net.Listen("tcp", cfg.ListenAddress)
		if err != nil {
			return nil, errors.Wrap(err, "Failed to listen")
		}
		return l, nil
	}

	// Clean up the socket left over by an unclean exit.
	if err := os.Remove(cfg.SocketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "Failed to clean up old socket")
	}

	l, err := net.Listen("unix", cfg.SocketPath)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to listen to Unix socket")
	}

	if cfg.SocketPerm != "" {
		o, err := strconv.ParseUint(cfg.SocketPerm, 8, 32)
		if err != nil {
			l.Close()
			return nil, errors.Wrap(err, "Failed to parse socket perm in octet")
		}
		if err := os.Chmod(cfg.SocketPath, os.FileMode(o)); err != nil {
			l.Close()
			return nil, errors.Wrap(err, "Failed to chmod socket")
		}
	}

	return l, nil
}
