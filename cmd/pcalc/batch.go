package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	buildinfo "github.com/pborges/pcalc"
	"github.com/pborges/pcalc/internal/formulafile"
	"github.com/pborges/pcalc/internal/pcalc"
	"github.com/pborges/pcalc/internal/report"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const outputLockTimeout = 5 * time.Second

type batchOptions struct {
	*options
	output string
	format string
	append bool
	jobs   int
}

func newBatchCmd(o *options) *cobra.Command {
	b := &batchOptions{options: o}
	cmd := &cobra.Command{
		Use:   "batch FILE...",
		Short: "Evaluate formula files, one session per file",
		Long: `Evaluate each file as its own session. Files ending in .yaml or
.yml hold a mapping of formula id to formula; any other file holds one
formula per line, with ids L<line>.

Files are evaluated concurrently. With --output the results of all files are
written to one file under an advisory lock (FILE.lock), so several pcalc
processes may share it.`,
		Args: cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			switch b.format {
			case "text", "yaml":
				return nil
			}
			return errors.Errorf("unknown format %q, want text or yaml", b.format)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return b.run(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}
	cmd.Flags().StringVarP(&b.output, "output", "o", "", "write results to this file instead of stdout")
	cmd.Flags().StringVarP(&b.format, "format", "f", "text", "output format: text or yaml")
	cmd.Flags().BoolVar(&b.append, "append", false, "append to --output instead of replacing it")
	cmd.Flags().IntVarP(&b.jobs, "jobs", "j", 4, "files evaluated at once")
	return cmd
}

func (b *batchOptions) run(ctx context.Context, stdout io.Writer, files []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	results, err := b.evaluate(ctx, files)
	if err != nil {
		return err
	}
	for i, res := range results {
		if n := res.Failed(); n > 0 {
			log.WithFields(log.Fields{"file": files[i], "session": res.Session}).
				Warnf("%d of %d formulas failed", n, len(res.Items))
		}
	}
	if b.output == "" {
		return b.write(stdout, files, results)
	}
	return b.writeLocked(files, results)
}

// evaluate runs every file in its own session. Results keep file order.
func (b *batchOptions) evaluate(ctx context.Context, files []string) ([]*pcalc.Results, error) {
	results := make([]*pcalc.Results, len(files))
	g, ctx := errgroup.WithContext(ctx)
	if b.jobs > 0 {
		g.SetLimit(b.jobs)
	}
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fs, err := formulafile.Load(path)
			if err != nil {
				return err
			}
			logger := log.WithField("file", path)
			res, err := b.newSession(logger).Run(fs)
			if err != nil {
				return errors.Wrap(err, path)
			}
			logger.WithField("formulas", len(fs)).Debug("file evaluated")
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (b *batchOptions) write(w io.Writer, files []string, results []*pcalc.Results) error {
	for i, res := range results {
		if b.format == "yaml" {
			if _, err := fmt.Fprintf(w, "---\n# %s\n", files[i]); err != nil {
				return errors.WithStack(err)
			}
			if err := formulafile.WriteResults(w, res); err != nil {
				return errors.Wrap(err, files[i])
			}
			continue
		}
		text := report.MakeReport(report.Config{Header: []string{
			buildinfo.Banner(),
			fmt.Sprintf("File            %s", files[i]),
		}}, res)
		if _, err := io.WriteString(w, text); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func (b *batchOptions) writeLocked(files []string, results []*pcalc.Results) error {
	lock, err := lockOutput(b.output)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.WithError(err).Warn("releasing output lock")
		}
	}()

	mode := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if b.append {
		mode = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(b.output, mode, 0o644)
	if err != nil {
		return errors.Wrap(err, "opening output")
	}
	if err := b.write(f, files, results); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "closing output")
}

// lockOutput takes an exclusive lock on path + ".lock".
func lockOutput(path string) (*flock.Flock, error) {
	lockPath := path + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating lock directory")
	}

	lock := flock.New(lockPath)
	ctx, cancel := context.WithTimeout(context.Background(), outputLockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return nil, errors.Wrap(err, "acquiring output lock")
	}
	if !locked {
		return nil, errors.Errorf("timeout waiting for lock on %s", path)
	}
	return lock, nil
}
