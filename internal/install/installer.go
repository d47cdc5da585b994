// Package install downloads mod archives and merges their contents into the
// host install.
package install

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/magegihk/modinstaller/internal/catalog"
	"github.com/magegihk/modinstaller/internal/config"
	moderrors "github.com/magegihk/modinstaller/internal/errors"
	"github.com/magegihk/modinstaller/internal/logging"
	"github.com/magegihk/modinstaller/internal/types"
)

// Target identifies one archive to install.
type Target struct {
	Name string
	Link string
	// API marks the platform API payload, whose flat-layout libraries go to
	// the API directory instead of the mods directory.
	API bool
}

// Outcome describes where an install put things.
type Outcome struct {
	Name         string       `json:"name" yaml:"name"`
	Layout       types.Layout `json:"layout" yaml:"layout"`
	ManagedFiles []string     `json:"managed_files" yaml:"managed_files"`
	Resources    []string     `json:"resources,omitempty" yaml:"resources,omitempty"`
	MergedDirs   []string     `json:"merged_dirs,omitempty" yaml:"merged_dirs,omitempty"`
	BackedUp     []string     `json:"backed_up,omitempty" yaml:"backed_up,omitempty"`
}

// Installer places archive contents into the host install.
type Installer struct {
	Paths      config.Paths
	Downloader Downloader
	Extractor  Extractor
	// ResourceExts are root-level extensions that a direct-layout archive
	// ships to the install root rather than the mods directory.
	ResourceExts []string
	Logger       *log.Logger
}

// New creates an installer for the given paths with the default extractor.
func New(paths config.Paths, dl Downloader, resourceExts []string, logger *log.Logger) *Installer {
	return &Installer{
		Paths:        paths,
		Downloader:   dl,
		Extractor:    ArchiveExtractor{},
		ResourceExts: resourceExts,
		Logger:       logger,
	}
}

// TargetFor returns the install target for a catalog name.
func TargetFor(cat *catalog.Catalog, name string) (Target, error) {
	if cat.IsAPI(name) {
		if !cat.HasAPI() {
			return Target{}, moderrors.UnknownMod(name)
		}
		return Target{Name: catalog.APIName, Link: cat.APILink, API: true}, nil
	}
	desc, ok := cat.Get(name)
	if !ok {
		return Target{}, moderrors.UnknownMod(name)
	}
	return Target{Name: desc.Name, Link: desc.Link}, nil
}

// Install downloads the target's archive and installs it. The downloaded
// archive is removed afterwards whatever the result.
func (in *Installer) Install(ctx context.Context, t Target) (*Outcome, error) {
	logger := logging.OrDiscard(in.Logger)

	dir := in.Paths.ModsDir
	if t.API {
		dir = in.Paths.InstallRoot
	}
	archive := filepath.Join(dir, t.Name+".zip")

	if in.Downloader == nil {
		return nil, moderrors.Download(t.Name, t.Link, errors.New("no downloader configured"))
	}

	logger.Debug("downloading archive", "mod", t.Name, "link", t.Link, "to", archive)
	defer func() { _ = os.Remove(archive) }()
	if err := in.Downloader.Download(ctx, t.Link, archive); err != nil {
		return nil, moderrors.Download(t.Name, t.Link, err)
	}

	return in.InstallArchive(ctx, t.Name, archive, t.API)
}

// InstallArchive extracts a local archive into the scratch directory and
// places its contents. The scratch directory is cleared before extraction and
// removed when done.
func (in *Installer) InstallArchive(ctx context.Context, name, archive string, api bool) (*Outcome, error) {
	logger := logging.OrDiscard(in.Logger)
	scratch := in.Paths.ScratchDir

	if err := os.RemoveAll(scratch); err != nil {
		return nil, ioErr(name, "clean", scratch, err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	extractor := in.Extractor
	if extractor == nil {
		extractor = ArchiveExtractor{}
	}
	if err := extractor.Extract(ctx, archive, scratch); err != nil {
		return nil, moderrors.Extract(name, archive, err)
	}

	entries, err := os.ReadDir(scratch)
	if err != nil {
		return nil, ioErr(name, "read", scratch, err)
	}

	layout := types.LayoutFlat
	for _, e := range entries {
		if !e.IsDir() && types.IsLibrary(e.Name()) {
			layout = types.LayoutDirect
			break
		}
	}
	logger.Debug("classified archive", "mod", name, "layout", layout)

	out := &Outcome{Name: name, Layout: layout}
	if layout == types.LayoutFlat {
		managed := in.Paths.ModsDir
		if api {
			managed = in.Paths.APIDir
		}
		err = in.placeFlat(name, scratch, entries, managed, out)
	} else {
		err = in.placeDirect(name, scratch, entries, in.Paths.ModsDir, out)
	}
	if err != nil {
		return out, err
	}

	logger.Info("installed", "mod", name, "layout", layout, "files", len(out.ManagedFiles))
	return out, nil
}

// placeFlat copies every library anywhere in scratch into managed, merges
// library-free top-level directories into the install root and ships loose
// root files as renamed resources.
func (in *Installer) placeFlat(name, scratch string, entries []os.DirEntry, managed string, out *Outcome) error {
	logger := logging.OrDiscard(in.Logger)

	err := filepath.WalkDir(scratch, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !types.IsLibrary(d.Name()) {
			return nil
		}
		if err := copyFile(path, filepath.Join(managed, d.Name())); err != nil {
			return err
		}
		out.ManagedFiles = append(out.ManagedFiles, d.Name())
		return nil
	})
	if err != nil {
		return ioErr(name, "copy", managed, err)
	}

	for _, e := range entries {
		src := filepath.Join(scratch, e.Name())

		if e.IsDir() {
			hasLib, err := containsLibrary(src)
			if err != nil {
				return ioErr(name, "read", src, err)
			}
			if hasLib {
				continue
			}

			dst := filepath.Join(in.Paths.InstallRoot, e.Name())
			backups, err := MergeDir(src, dst)
			out.BackedUp = append(out.BackedUp, backups...)
			if err != nil {
				return ioErr(name, "merge", dst, err)
			}
			for _, b := range backups {
				logger.Debug("backed up original file", "path", b)
			}
			out.MergedDirs = append(out.MergedDirs, dst)
			continue
		}

		dst := filepath.Join(in.Paths.InstallRoot, resourceName(e.Name(), name))
		if err := copyFile(src, dst); err != nil {
			return ioErr(name, "copy", dst, err)
		}
		if err := os.Remove(src); err != nil {
			return ioErr(name, "remove", src, err)
		}
		out.Resources = append(out.Resources, dst)
	}
	return nil
}

// placeDirect ships recognised resources to the install root and every other
// top-level file to managed unchanged.
func (in *Installer) placeDirect(name, scratch string, entries []os.DirEntry, managed string, out *Outcome) error {
	logger := logging.OrDiscard(in.Logger)

	for _, e := range entries {
		src := filepath.Join(scratch, e.Name())
		if e.IsDir() {
			logger.Debug("ignoring directory in direct archive", "mod", name, "dir", e.Name())
			continue
		}

		if in.isResource(e.Name()) {
			dst := filepath.Join(in.Paths.InstallRoot, resourceName(e.Name(), name))
			if err := copyFile(src, dst); err != nil {
				return ioErr(name, "copy", dst, err)
			}
			out.Resources = append(out.Resources, dst)
			continue
		}

		dst := filepath.Join(managed, e.Name())
		if err := copyFile(src, dst); err != nil {
			return ioErr(name, "copy", dst, err)
		}
		out.ManagedFiles = append(out.ManagedFiles, e.Name())
	}
	return nil
}

func (in *Installer) isResource(file string) bool {
	ext := filepath.Ext(file)
	for _, r := range in.ResourceExts {
		if strings.EqualFold(ext, r) {
			return true
		}
	}
	return false
}

// InstallFile copies a bare file into the mods directory.
func (in *Installer) InstallFile(path string) (*Outcome, error) {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	dst := filepath.Join(in.Paths.ModsDir, base)

	if err := copyFile(path, dst); err != nil {
		return nil, ioErr(name, "copy", path, err)
	}
	logging.OrDiscard(in.Logger).Info("installed file", "file", base, "to", in.Paths.ModsDir)

	return &Outcome{Name: name, Layout: types.LayoutDirect, ManagedFiles: []string{base}}, nil
}

// IsArchive reports whether path names a file InstallArchive can handle.
func IsArchive(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".rar":
		return true
	}
	return false
}

func ioErr(mod, op, path string, err error) error {
	e := moderrors.IO(op, path, err)
	e.Mod = mod
	return e
}
