package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"upmconv/internal/fileutil"
	"upmconv/internal/logging"
	"upmconv/internal/unitypkg"
	"upmconv/internal/upm"
)

// ErrEntriesFailed reports that the destination archive was written but one
// or more source entries could not be converted into it.
var ErrEntriesFailed = errors.New("one or more entries could not be converted")

// Options configures a conversion run.
type Options struct {
	SourcePath   string
	ManifestPath string
	DestPath     string

	// Overwrite allows replacing an existing destination archive.
	Overwrite bool
	// SpoolCeiling bounds in-memory buffering per deferred payload.
	SpoolCeiling int64
	// ZipCompression is the deflate level for destination members.
	ZipCompression int

	Logger *slog.Logger
}

// Summary describes a completed run.
type Summary struct {
	RunID    string
	Package  string
	Written  int
	Failed   int
	Duration time.Duration
}

// Run converts one Unity package into a UPM archive. A non-nil Summary is
// returned alongside ErrEntriesFailed so callers can report partial
// results; any other error means no destination was produced.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	runID := uuid.NewString()
	logger := logging.WithComponent(opts.Logger, "convert").With(slog.String(logging.FieldRunID, runID))
	started := time.Now()

	manifestData, err := os.ReadFile(opts.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	manifest, err := upm.ParseManifest(manifestData, opts.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	if !opts.Overwrite {
		if _, err := os.Stat(opts.DestPath); err == nil {
			return nil, fmt.Errorf("destination %s already exists (enable overwrite to replace it)", opts.DestPath)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("check destination: %w", err)
		}
	}

	lockPath := opts.DestPath + ".lock"
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock destination: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("destination %s is being written by another conversion", opts.DestPath)
	}
	defer func() {
		lock.Unlock()
		os.Remove(lockPath)
	}()

	source, err := os.Open(opts.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}
	defer source.Close()

	pkg, err := unitypkg.Open(source, unitypkg.Options{
		Logger:       logger,
		SpoolCeiling: opts.SpoolCeiling,
	})
	if err != nil {
		return nil, fmt.Errorf("read package: %w", err)
	}
	defer pkg.Close()

	staging, err := fileutil.NewAtomic(opts.DestPath)
	if err != nil {
		return nil, err
	}
	defer staging.Abort()

	builder := upm.NewBuilder(staging, manifest.Prefix(), opts.ZipCompression)
	if err := builder.Append("package.json", bytes.NewReader(manifestData)); err != nil {
		return nil, err
	}

	logger.Info("converting package",
		slog.String("source", opts.SourcePath),
		slog.String("prefix", manifest.Prefix()))

	summary := &Summary{RunID: runID, Package: manifest.Prefix()}
	entries := pkg.Entries()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry, err := entries.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Error("skipping entry that could not be reassembled", slog.Any("error", err))
			summary.Failed++
			continue
		}

		appendErr := builder.Append(entry.Path, entry.Content)
		entry.Close()
		if appendErr != nil {
			return nil, appendErr
		}
		summary.Written++
		logger.Debug("wrote entry",
			slog.String(logging.FieldEntryPath, entry.Path),
			slog.Int64("size", entry.Size))
	}

	if err := builder.Finish(); err != nil {
		return nil, err
	}
	if err := staging.Commit(); err != nil {
		return nil, err
	}

	summary.Duration = time.Since(started)
	logger.Info("conversion finished",
		slog.Int("written", summary.Written),
		slog.Int("failed", summary.Failed),
		slog.Duration("duration", summary.Duration))

	if summary.Failed > 0 {
		return summary, fmt.Errorf("%w (%d failed, %d written)", ErrEntriesFailed, summary.Failed, summary.Written)
	}
	return summary, nil
}
