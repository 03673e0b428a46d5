package shell

import (
	"os"
	"os/exec"
	"path/filepath"

	"go.trai.ch/jig/internal/core/domain"
	"go.trai.ch/zerr"
)

// jigsawBinary is the executable name looked up on PATH.
const jigsawBinary = "jigsaw"

// Locate returns the Jigsaw executable for the project in dir.
// The Composer-installed binary wins over one found on PATH.
func Locate(dir string) (string, error) {
	vendored := filepath.Join(dir, filepath.FromSlash(domain.VendorBinPath))
	if info, err := os.Stat(vendored); err == nil && !info.IsDir() {
		return vendored, nil
	}

	if onPath, err := exec.LookPath(jigsawBinary); err == nil {
		return onPath, nil
	}

	return "", zerr.With(zerr.Wrap(domain.ErrJigsawNotFound, "failed to resolve build command"), "dir", dir)
}

// ResolveCommand returns the build command for cfg in the given environment.
// A configured command line is used verbatim. Otherwise Jigsaw is located and invoked as
// "jigsaw build -q <env>".
func ResolveCommand(cfg *domain.Config, env string) (*domain.BuildCommand, error) {
	if len(cfg.Command) > 0 {
		return &domain.BuildCommand{
			Args: append([]string(nil), cfg.Command...),
			Dir:  cfg.Root,
		}, nil
	}

	bin, err := Locate(cfg.Root)
	if err != nil {
		return nil, err
	}
	return domain.NewJigsawCommand(bin, env, cfg.Root), nil
}
