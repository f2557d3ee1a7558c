package builder

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

type copyJob struct {
	from string
	to   string
}

// copyFiles runs the copy jobs concurrently. Every destination is replaced
// atomically.
func copyFiles(ctx context.Context, jobs []copyJob) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return copyFile(job.from, job.to)
		})
	}
	return g.Wait()
}

func copyFile(from, to string) (err error) {
	defer func() {
		if err != nil {
			err = zerr.With(zerr.With(zerr.Wrap(err, domain.ErrCopyFailed.Error()), "from", from), "to", to)
		}
	}()

	in, err := os.Open(from) //nolint:gosec // paths come from the suite definition
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	dir := filepath.Dir(to)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".bake-copy-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), to)
}
