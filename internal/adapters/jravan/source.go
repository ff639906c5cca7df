package jravan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const datSuffix = ".DAT"

// Default file prefixes per kind.
const (
	PrefixSE = "SU"
	PrefixSR = "SR"
	PrefixUM = "UM"
)

// Source locates the DAT files of one kind under {Root}/{YEAR}/{Prefix}*.DAT.
type Source struct {
	Root   string
	Prefix string
	Kind   Kind
}

// Files returns the matching files of the given years in ascending year and
// name order. Missing year directories are skipped; a missing root is
// ErrSourceRoot.
func (s Source) Files(years []int) ([]string, error) {
	if err := s.checkRoot(); err != nil {
		return nil, err
	}

	sorted := append([]int(nil), years...)
	sort.Ints(sorted)

	var files []string
	seen := make(map[int]bool, len(sorted))
	for _, year := range sorted {
		if seen[year] {
			continue
		}
		seen[year] = true
		names, err := s.list(filepath.Join(s.Root, strconv.Itoa(year)))
		if err != nil {
			return nil, err
		}
		files = append(files, names...)
	}
	return files, nil
}

// Newest returns files from every numeric year directory, newest year and
// name first. limit > 0 keeps only the first limit files.
func (s Source) Newest(limit int) ([]string, error) {
	if err := s.checkRoot(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, fmt.Errorf("read source root %s: %w", s.Root, err)
	}
	var years []string
	for _, e := range entries {
		if e.IsDir() && isDigits(e.Name()) {
			years = append(years, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))

	var files []string
	for _, year := range years {
		names, err := s.list(filepath.Join(s.Root, year))
		if err != nil {
			return nil, err
		}
		sort.Sort(sort.Reverse(sort.StringSlice(names)))
		files = append(files, names...)
		if limit > 0 && len(files) >= limit {
			return files[:limit], nil
		}
	}
	return files, nil
}

func (s Source) checkRoot() error {
	info, err := os.Stat(s.Root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSourceRoot, s.Root)
		}
		return fmt.Errorf("stat source root %s: %w", s.Root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrSourceRoot, s.Root)
	}
	return nil
}

// list returns the matching files of dir sorted by name. A missing dir is
// empty.
func (s Source) list(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	prefix := strings.ToUpper(s.Prefix)
	var out []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := strings.ToUpper(e.Name())
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, datSuffix) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}
