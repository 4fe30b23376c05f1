// SPDX-License-Identifier: GPL-2.0-or-later

// Package filesystem provides the files of the base game directory and an
// optional mod directory, loose or inside pakN.pak archives.
package filesystem

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"q2map/pack"
)

// BaseGame is the directory of the base game below the base dir.
const BaseGame = "baseq2"

// maxPacks limits the pakN.pak files probed per directory.
const maxPacks = 10

var (
	baseDir     string
	gameDir     string
	searchPaths []searchPath // first entry is searched first
	mutex       sync.RWMutex
)

type File interface {
	io.ReadSeekCloser
	io.ReaderAt
}

type searchPath interface {
	open(name string) (File, error)
	close()
	String() string
}

type dirPath struct {
	dir string
}

func (d dirPath) open(name string) (File, error) {
	return os.Open(filepath.Join(d.dir, filepath.FromSlash(name)))
}

func (d dirPath) close() {}

func (d dirPath) String() string {
	return d.dir
}

type packPath struct {
	p *pack.Pack
}

type closer struct {
	*io.SectionReader
}

func (*closer) Close() error {
	return nil
}

func (p packPath) open(name string) (File, error) {
	f, err := p.p.Open(name)
	if err != nil {
		return nil, err
	}
	return &closer{f}, nil
}

func (p packPath) close() {
	p.p.Close()
}

func (p packPath) String() string {
	return p.p.String()
}

func GameDir() string {
	mutex.RLock()
	defer mutex.RUnlock()
	return gameDir
}

func BaseDir() string {
	mutex.RLock()
	defer mutex.RUnlock()
	return baseDir
}

// SearchPaths lists the directories and archives in search order.
func SearchPaths() []string {
	mutex.RLock()
	defer mutex.RUnlock()
	r := make([]string, 0, len(searchPaths))
	for _, s := range searchPaths {
		r = append(r, s.String())
	}
	return r
}

func reset() {
	for _, s := range searchPaths {
		s.close()
	}
	searchPaths = nil
}

// UseBaseDir searches dir/baseq2 only.
func UseBaseDir(dir string) {
	mutex.Lock()
	defer mutex.Unlock()
	reset()
	baseDir = dir
	gameDir = filepath.Join(baseDir, BaseGame)
	addGameDirectory(gameDir)
}

// UseGameDir searches the mod directory game before baseq2.
func UseGameDir(game string) {
	mutex.Lock()
	defer mutex.Unlock()
	reset()
	gameDir = filepath.Join(baseDir, BaseGame)
	addGameDirectory(gameDir)
	if game == "" || game == BaseGame {
		return
	}
	gameDir = filepath.Join(baseDir, game)
	addGameDirectory(gameDir)
}

// addGameDirectory puts dir and its pak files in front of the search path.
// Loose files are searched after the archives, higher numbered archives
// first.
func addGameDirectory(dir string) {
	paths := []searchPath{dirPath{dir}}
	for i := 0; i < maxPacks; i++ {
		pfp := filepath.Join(dir, fmt.Sprintf("pak%d.pak", i))
		p, err := pack.NewPackReader(pfp)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				slog.Warn("Could not add pack", slog.String("path", pfp), slog.Any("err", err))
			}
			continue
		}
		paths = append([]searchPath{packPath{p}}, paths...)
	}
	searchPaths = append(paths, searchPaths...)
}

// cleanName turns name into a slash separated path relative to the game
// dir.
func cleanName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

func Open(name string) (File, error) {
	mutex.RLock()
	defer mutex.RUnlock()
	n := cleanName(name)
	for _, s := range searchPaths {
		f, err := s.open(n)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(err, "could not open %s in %s", n, s)
		}
	}
	return nil, errors.Wrapf(os.ErrNotExist, "%s", n)
}

func ReadFile(name string) ([]byte, error) {
	file, err := Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func isSep(c uint8) bool {
	return c == '/' || c == '\\'
}

func Ext(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}

func StripExt(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}
