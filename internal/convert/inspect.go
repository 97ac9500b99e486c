package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"upmconv/internal/logging"
	"upmconv/internal/unitypkg"
)

// Asset is one resolved entry reported by Inspect.
type Asset struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// InspectOptions configures a dry-run pass over a package.
type InspectOptions struct {
	SourcePath   string
	SpoolCeiling int64
	Logger       *slog.Logger
}

// Inspect runs the reassembly pass without writing anything and reports the
// entries a conversion would produce. Per-entry failures are logged; when
// any occur the listing is returned together with ErrEntriesFailed.
func Inspect(ctx context.Context, opts InspectOptions) ([]Asset, error) {
	logger := logging.WithComponent(opts.Logger, "inspect")

	source, err := os.Open(opts.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}
	defer source.Close()

	pkg, err := unitypkg.Open(source, unitypkg.Options{
		Logger:       opts.Logger,
		SpoolCeiling: opts.SpoolCeiling,
	})
	if err != nil {
		return nil, fmt.Errorf("read package: %w", err)
	}
	defer pkg.Close()

	var assets []Asset
	failed := 0
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
			failed++
			continue
		}
		assets = append(assets, Asset{Path: entry.Path, Size: entry.Size})
		entry.Close()
	}

	if failed > 0 {
		return assets, fmt.Errorf("%w (%d failed)", ErrEntriesFailed, failed)
	}
	return assets, nil
}
