package main

import (
	"fmt"
	"math"

	"github.com/dshulyak/stuffer"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newSlurpCmd(a *app) *cobra.Command {
	var (
		limit string
		chunk string
		echo  bool
	)
	cmd := &cobra.Command{
		Use:   "slurp",
		Short: "Read stdin into memory until end of stream and report its size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			maxBytes, err := parseSize("--limit", limit)
			if err != nil {
				return err
			}
			step, err := parseSize("--chunk", chunk)
			if err != nil {
				return err
			}
			if step == 0 {
				return fmt.Errorf("--chunk must be positive")
			}
			in, err := fdOf(cmd.InOrStdin())
			if err != nil {
				return err
			}
			buf, err := a.slurp(in, maxBytes, step)
			if err != nil {
				return err
			}
			defer buf.Close()

			if echo {
				out, err := fdOf(cmd.OutOrStdout())
				if err != nil {
					return err
				}
				if _, err := drain(out, buf); err != nil {
					return fmt.Errorf("echo: %w", err)
				}
				return nil
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", humanize.IBytes(uint64(buf.WriteCursor())))
			return err
		},
	}
	cmd.Flags().StringVar(&limit, "limit", "1GiB", "stop after reading this many bytes")
	cmd.Flags().StringVar(&chunk, "chunk", "64KiB", "bytes requested by a single read")
	cmd.Flags().BoolVar(&echo, "echo", false, "write collected bytes to stdout instead of their size")
	return cmd
}

func parseSize(flag, value string) (uint32, error) {
	n, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", flag, value, err)
	}
	if n > math.MaxUint32 {
		return 0, fmt.Errorf("%s %s exceeds %s", flag, value, humanize.IBytes(math.MaxUint32))
	}
	return uint32(n), nil
}

// slurp reads from fd until end of stream or until limit bytes were collected.
func (a *app) slurp(fd int, limit, chunk uint32) (*stuffer.Stuffer, error) {
	buf := stuffer.NewGrowable(min(chunk, limit), a.options()...)
	for buf.WriteCursor() < limit {
		n, err := buf.RecvFromFd(fd, min(chunk, limit-buf.WriteCursor()))
		if err != nil {
			buf.Close()
			return nil, fmt.Errorf("read: %w", err)
		}
		if n == 0 {
			break
		}
	}
	a.logger.Debug("stdin collected", "bytes", buf.WriteCursor(), "capacity", buf.Cap())
	return buf, nil
}
