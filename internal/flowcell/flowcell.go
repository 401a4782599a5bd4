// Package flowcell reads a sequencing run directory and assembles its run
// report. Missing files are logged and yield empty results; malformed files
// are logged and skipped.
package flowcell

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/roboco-io/fcmetrics/internal/parser"
)

// Parser reads the files of one run directory.
type Parser struct {
	path  string
	opts  parser.Options
	log   *slog.Logger
	files []string
}

// New creates a parser for the run directory at path and indexes its files.
func New(path string, opts parser.Options) (*Parser, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve run directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open run directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", abs)
	}
	if len(opts.Lanes) == 0 {
		opts.Lanes = parser.DefaultLanes
	}
	opts.Files = opts.Files.WithDefaults()

	p := &Parser{
		path: abs,
		opts: opts,
		log:  opts.Log().With("run", filepath.Base(abs)),
	}
	if err := p.collectFiles(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) collectFiles() error {
	return filepath.WalkDir(p.path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			p.log.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			p.files = append(p.files, path)
		}
		return nil
	})
}

// Path returns the absolute run directory.
func (p *Parser) Path() string {
	return p.path
}

// Files returns every file found under the run directory, in walk order.
func (p *Parser) Files() []string {
	return append([]string(nil), p.files...)
}

// FilterFiles returns the files whose base name matches pattern, sorted.
func (p *Parser) FilterFiles(pattern string) ([]string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
	}
	var out []string
	for _, f := range p.files {
		if re.MatchString(filepath.Base(f)) {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out, nil
}

// FilesOfFormat returns the files whose names detect as format, sorted.
func (p *Parser) FilesOfFormat(format parser.Format) []string {
	var out []string
	for _, f := range p.files {
		if parser.DetectFormat(f) == format {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

// FlowcellID guesses the flowcell name from the run directory name, whose
// last underscore separated field is the position letter and flowcell id.
func (p *Parser) FlowcellID() string {
	base := filepath.Base(p.path)
	if i := strings.LastIndex(base, "_"); i >= 0 {
		return base[i+1:]
	}
	return base
}

// basecallGlob matches the CASAVA Basecall_Stats directories of a flowcell.
// The position letter in front of the flowcell id is not part of the
// directory name.
func (p *Parser) basecallGlob(fcName, file string) string {
	suffix := ""
	if len(fcName) > 1 {
		suffix = fcName[1:]
	}
	return filepath.Join(p.path, "Unaligned*", "Basecall_Stats_*"+suffix, file)
}

func (p *Parser) glob(pattern string) []string {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		p.log.Warn("invalid glob pattern", "pattern", pattern, "error", err)
		return nil
	}
	sort.Strings(matches)
	return matches
}

// readFile reads a file relative to the run directory. A missing file is
// logged and reported as not found.
func (p *Parser) readFile(name string) ([]byte, bool) {
	path := filepath.Join(p.path, name)
	p.log.Debug("reading file", "file", path)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			p.log.Warn("no such file", "file", path)
		} else {
			p.log.Warn("reading file failed", "file", path, "error", err)
		}
		return nil, false
	}
	return data, true
}

func (p *Parser) openBytes(path string) (*bytes.Reader, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		p.log.Warn("reading file failed", "file", path, "error", err)
		return nil, false
	}
	return bytes.NewReader(data), true
}

func laneKey(lane int) string {
	return strconv.Itoa(lane)
}
