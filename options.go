package cellscript

import (
	"io"

	"github.com/deepnoodle-ai/cellscript/compiler"
	"github.com/deepnoodle-ai/cellscript/parser"
	"github.com/deepnoodle-ai/cellscript/vm"
	"github.com/rs/zerolog"
)

// Option configures a cellscript compilation or execution.
type Option func(*config)

type config struct {
	filename             string
	output               io.Writer
	logger               zerolog.Logger
	observer             vm.Observer
	sessionID            string
	maxParseDepth        int
	maxStackDepth        int
	maxFrameDepth        int
	contextCheckInterval int
}

func newConfig(options ...Option) *config {
	cfg := &config{logger: zerolog.Nop(), contextCheckInterval: -1}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

func (cfg *config) parserOpts() []parser.Option {
	var opts []parser.Option
	if cfg.filename != "" {
		opts = append(opts, parser.WithFilename(cfg.filename))
	}
	if cfg.maxParseDepth > 0 {
		opts = append(opts, parser.WithMaxDepth(cfg.maxParseDepth))
	}
	return opts
}

func (cfg *config) compilerOpts(source string) []compiler.Option {
	opts := []compiler.Option{
		compiler.WithSource(source),
		compiler.WithLogger(cfg.logger),
	}
	if cfg.filename != "" {
		opts = append(opts, compiler.WithFilename(cfg.filename))
	}
	return opts
}

func (cfg *config) vmOpts(logger zerolog.Logger) []vm.Option {
	opts := []vm.Option{vm.WithLogger(logger)}
	if cfg.output != nil {
		opts = append(opts, vm.WithOutput(cfg.output))
	}
	if cfg.observer != nil {
		opts = append(opts, vm.WithObserver(cfg.observer))
	}
	if cfg.maxStackDepth > 0 {
		opts = append(opts, vm.WithMaxStackDepth(cfg.maxStackDepth))
	}
	if cfg.maxFrameDepth > 0 {
		opts = append(opts, vm.WithMaxFrameDepth(cfg.maxFrameDepth))
	}
	if cfg.contextCheckInterval >= 0 {
		opts = append(opts, vm.WithContextCheckInterval(cfg.contextCheckInterval))
	}
	return opts
}

// WithFilename sets the filename for the source code being evaluated.
// This is used for error messages.
func WithFilename(filename string) Option {
	return func(cfg *config) {
		cfg.filename = filename
	}
}

// WithOutput sets the writer that print statements write to. The default is
// os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(cfg *config) {
		cfg.output = w
	}
}

// WithLogger sets the logger used by the compiler and the virtual machine.
// Events are tagged with the session id of the run.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithObserver sets an observer for VM execution events.
// The observer receives callbacks for instruction steps, function calls,
// and function returns.
func WithObserver(observer vm.Observer) Option {
	return func(cfg *config) {
		cfg.observer = observer
	}
}

// WithSessionID tags log events with the given id instead of a freshly
// generated one.
func WithSessionID(id string) Option {
	return func(cfg *config) {
		cfg.sessionID = id
	}
}

// WithMaxParseDepth limits how deeply expressions and blocks may nest.
func WithMaxParseDepth(depth int) Option {
	return func(cfg *config) {
		cfg.maxParseDepth = depth
	}
}

// WithMaxStackDepth sets the value stack capacity of the virtual machine.
func WithMaxStackDepth(depth int) Option {
	return func(cfg *config) {
		cfg.maxStackDepth = depth
	}
}

// WithMaxFrameDepth sets the maximum number of nested calls.
func WithMaxFrameDepth(depth int) Option {
	return func(cfg *config) {
		cfg.maxFrameDepth = depth
	}
}

// WithContextCheckInterval sets how many instructions run between checks of
// the context for cancellation. Zero disables the periodic check.
func WithContextCheckInterval(interval int) Option {
	return func(cfg *config) {
		cfg.contextCheckInterval = interval
	}
}
