package main

import (
	"fmt"

	"github.com/dshulyak/stuffer"
	"github.com/spf13/cobra"
)

func newCatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cat FILE...",
		Short: "Map files read-only and write them to stdout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fd, err := fdOf(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			for _, path := range args {
				if err := a.cat(fd, path); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (a *app) cat(fd int, path string) (err error) {
	ro, err := stuffer.AllocROFromFile(path, a.options()...)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	defer func() {
		if cerr := ro.Close(); err == nil {
			err = cerr
		}
	}()
	n, err := drain(fd, ro)
	if err != nil {
		return fmt.Errorf("send %s: %w", path, err)
	}
	a.logger.Debug("file sent", "path", path, "bytes", n)
	return nil
}
