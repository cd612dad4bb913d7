package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dshulyak/stuffer"
	"github.com/dshulyak/stuffer/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type app struct {
	logLevel    string
	logFormat   string
	metricsFile string

	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "stuffer",
		Short: "Move bytes between files, stdin and stdout through stuffer buffers",
		Long: `stuffer maps files read-only and streams them to stdout, or drains stdin
into a growable buffer, using the descriptor reader and writer of the stuffer package.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.flush()
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "text", "log format: text, json")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "write prometheus metrics in text format to this file on exit")

	root.AddCommand(newCatCmd(a))
	root.AddCommand(newSlurpCmd(a))
	return root
}

func (a *app) init(w io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", a.logLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(a.logFormat) {
	case "json":
		a.logger = slog.New(slog.NewJSONHandler(w, opts))
	case "text":
		a.logger = slog.New(slog.NewTextHandler(w, opts))
	default:
		return fmt.Errorf("invalid --log-format %q", a.logFormat)
	}
	if a.metricsFile != "" {
		a.registry = prometheus.NewRegistry()
		a.metrics = metrics.New(a.registry)
	}
	return nil
}

func (a *app) options() []stuffer.Option {
	opts := []stuffer.Option{stuffer.WithLogger(a.logger)}
	if a.metrics != nil {
		opts = append(opts, stuffer.WithMetrics(a.metrics))
	}
	return opts
}

func (a *app) flush() error {
	if a.registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.metricsFile, a.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", a.metricsFile, err)
	}
	return nil
}

// fdOf returns the descriptor behind a cobra stream. Only *os.File streams are supported,
// the buffers talk to descriptors directly.
func fdOf(stream any) (int, error) {
	f, ok := stream.(*os.File)
	if !ok {
		return -1, fmt.Errorf("stream %T is not backed by a file descriptor", stream)
	}
	return int(f.Fd()), nil
}

type sender interface {
	SendToFd(fd int, n uint32) (uint32, error)
	Len() int
}

// drain loops over short writes until every unread byte reached fd.
func drain(fd int, s sender) (int64, error) {
	var total int64
	for s.Len() > 0 {
		n, err := s.SendToFd(fd, uint32(s.Len()))
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
		total += int64(n)
	}
	return total, nil
}
