package registry

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"
)

const (
	// Sized for a few thousand names at well under 1% false positives.
	defaultBloomBits   = 1 << 16
	defaultBloomHashes = 5
)

// FileSystem is what the registry reads patient files from and writes them
// to. The default is the os file system; tests use an in-memory one.
type FileSystem = afero.Fs

type options struct {
	// Category letters routed to the list and the tree.
	categories Categories

	fs     FileSystem
	logger *slog.Logger

	// When non-nil Load draws a byte progress bar here.
	progress io.Writer

	bloomBits   uint
	bloomHashes uint
}

func defaultOptions() *options {
	return &options{
		categories:  DefaultCategories,
		fs:          afero.NewOsFs(),
		logger:      slog.New(slog.NewTextHandler(os.Stderr, nil)),
		bloomBits:   defaultBloomBits,
		bloomHashes: defaultBloomHashes,
	}
}

type Option interface {
	apply(*options)
}

type funcOption struct {
	fn func(*options)
}

func (funcOpt funcOption) apply(o *options) {
	funcOpt.fn(o)
}

func newFuncOption(fn func(*options)) *funcOption {
	return &funcOption{
		fn: fn,
	}
}

// WithCategories sets the letters of the list and tree categories.
func WithCategories(cats Categories) Option {
	return newFuncOption(func(o *options) {
		o.categories = cats
	})
}

// WithFileSystem set the file system to access.
func WithFileSystem(fs FileSystem) Option {
	return newFuncOption(func(o *options) {
		o.fs = fs
	})
}

// WithLogger sets the logger for load and registration diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return newFuncOption(func(o *options) {
		o.logger = logger
	})
}

// WithProgress shows a progress bar on w while loading.
func WithProgress(w io.Writer) Option {
	return newFuncOption(func(o *options) {
		o.progress = w
	})
}

// WithBloomFilter sizes the name filter used to short-circuit missed searches.
func WithBloomFilter(bits, hashes uint) Option {
	return newFuncOption(func(o *options) {
		o.bloomBits = bits
		o.bloomHashes = hashes
	})
}
