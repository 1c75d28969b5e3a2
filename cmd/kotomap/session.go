package main

import (
	"os"
	"path/filepath"

	"github.com/hack-pad/hackpadfs"
	osfs "github.com/hack-pad/hackpadfs/os"

	"github.com/kittclouds/kotomap/pkg/loader"
	"github.com/kittclouds/kotomap/pkg/session"
)

// assetFS opens the configured asset directory as a hackpadfs subtree.
func assetFS(cfg Config) (hackpadfs.FS, error) {
	abs, err := filepath.Abs(cfg.Assets)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return nil, &os.PathError{Op: "open", Path: abs, Err: os.ErrNotExist}
	}

	root := osfs.NewFS()
	fsPath, err := root.FromOSPath(abs)
	if err != nil {
		return nil, err
	}
	return root.Sub(fsPath)
}

// mustNewSession builds a session over the asset directory, exiting on
// configuration problems. Assets themselves load lazily inside the
// session, so a bad asset file surfaces at run/select time instead.
func mustNewSession(cfg Config) *session.Session {
	fs, err := assetFS(cfg)
	if err != nil {
		exitWithError(ExitConfigError, "opening asset directory %s: %v", cfg.Assets, err)
	}
	return session.New(session.Config{
		Source: loader.FSSource{FS: fs},
		Dim:    cfg.Dim,
		TopK:   cfg.TopK,
	})
}
