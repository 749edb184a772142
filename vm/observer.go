package vm

import (
	"github.com/deepnoodle-ai/cellscript/bytecode"
	"github.com/deepnoodle-ai/cellscript/op"
	"github.com/rs/zerolog"
)

// StepMode controls when OnStep callbacks are triggered.
type StepMode uint8

const (
	// StepAll calls OnStep for every instruction.
	StepAll StepMode = iota

	// StepNone never calls OnStep. Use for observers that only need
	// Call/Return events.
	StepNone

	// StepSampled calls OnStep every N instructions.
	StepSampled

	// StepOnLine calls OnStep when the source line changes. Programs
	// without a line table never trigger it.
	StepOnLine
)

func (m StepMode) String() string {
	switch m {
	case StepAll:
		return "all"
	case StepNone:
		return "none"
	case StepSampled:
		return "sampled"
	case StepOnLine:
		return "line"
	default:
		return "unknown"
	}
}

// ObserverConfig specifies what events an observer wants to receive.
// Use NewObserverConfig() to create configs with safe defaults.
type ObserverConfig struct {
	// StepMode controls OnStep callback frequency.
	StepMode StepMode

	// SampleInterval is the number of instructions between OnStep calls
	// when StepMode is StepSampled. Values <= 0 are treated as 1.
	SampleInterval int

	// ObserveCalls enables OnCall callbacks.
	ObserveCalls bool

	// ObserveReturns enables OnReturn callbacks.
	ObserveReturns bool
}

// NewObserverConfig creates a config with ObserveCalls and ObserveReturns
// enabled.
func NewObserverConfig(mode StepMode) ObserverConfig {
	return ObserverConfig{
		StepMode:       mode,
		SampleInterval: 1000,
		ObserveCalls:   true,
		ObserveReturns: true,
	}
}

// NormalizeConfig validates and clamps config values.
func NormalizeConfig(cfg ObserverConfig) ObserverConfig {
	if cfg.StepMode == StepSampled && cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 1
	}
	return cfg
}

// Observer is an interface for observing VM execution events.
//
// Implementations can embed NoOpObserver to provide default no-op
// implementations for methods they don't need. Methods are called
// synchronously during execution.
type Observer interface {
	// Config returns the observer's configuration.
	// Called once when the run starts.
	Config() ObserverConfig

	// OnStep is called based on the StepMode in the observer's config,
	// before the instruction executes.
	// Returns false to halt execution immediately.
	OnStep(event StepEvent) bool

	// OnCall is called when a user function is invoked (if ObserveCalls is
	// true). Built-in calls are not reported.
	// Returns false to halt execution immediately.
	OnCall(event CallEvent) bool

	// OnReturn is called when a function returns (if ObserveReturns is true).
	// Returns false to halt execution immediately.
	OnReturn(event ReturnEvent) bool
}

// StepEvent contains information about a single instruction step.
type StepEvent struct {
	// IP is the instruction pointer (index into the instruction array).
	IP int

	// Instruction is the decoded instruction about to execute.
	Instruction op.Instruction

	// OpcodeName is the human-readable name of the opcode.
	OpcodeName string

	// Location is the source location of the instruction, if known.
	Location bytecode.SourceLocation

	// StackDepth is the current depth of the value stack.
	StackDepth int

	// FrameDepth is the current depth of the call stack.
	FrameDepth int
}

// CallEvent contains information about a function call.
type CallEvent struct {
	// FunctionName is the name of the function being called.
	FunctionName string

	// Entry is the instruction index the call jumps to.
	Entry int

	// ArgCount is the number of arguments passed to the function.
	ArgCount int

	// Location is the source location of the call site.
	Location bytecode.SourceLocation

	// FrameDepth is the call stack depth after the call.
	FrameDepth int
}

// ReturnEvent contains information about a function return.
type ReturnEvent struct {
	// FunctionName is the name of the function returning.
	FunctionName string

	// Result is the value handed back to the caller.
	Result string

	// Location is the source location of the return.
	Location bytecode.SourceLocation

	// FrameDepth is the call stack depth after returning.
	FrameDepth int
}

// NoOpObserver is an Observer implementation that does nothing.
// Embed this in your observer to provide default implementations
// for methods you don't need.
//
// NoOpObserver uses StepAll mode with ObserveCalls and ObserveReturns
// enabled. Override Config() to use a different mode.
type NoOpObserver struct{}

func (NoOpObserver) Config() ObserverConfig {
	return NewObserverConfig(StepAll)
}

func (NoOpObserver) OnStep(StepEvent) bool     { return true }
func (NoOpObserver) OnCall(CallEvent) bool     { return true }
func (NoOpObserver) OnReturn(ReturnEvent) bool { return true }

var _ Observer = NoOpObserver{}

// LogObserver writes one debug-level log event per observed instruction,
// call, and return.
type LogObserver struct {
	logger zerolog.Logger
	config ObserverConfig
}

// NewLogObserver returns an observer that traces execution to logger.
func NewLogObserver(logger zerolog.Logger, mode StepMode) *LogObserver {
	return &LogObserver{logger: logger, config: NewObserverConfig(mode)}
}

func (o *LogObserver) Config() ObserverConfig {
	return o.config
}

func (o *LogObserver) OnStep(event StepEvent) bool {
	e := o.logger.Debug().
		Int("ip", event.IP).
		Str("instruction", event.Instruction.String()).
		Int("stack", event.StackDepth).
		Int("frames", event.FrameDepth)
	if !event.Location.IsZero() {
		e = e.Int("line", event.Location.Line)
	}
	e.Msg("step")
	return true
}

func (o *LogObserver) OnCall(event CallEvent) bool {
	o.logger.Debug().
		Str("function", event.FunctionName).
		Int("entry", event.Entry).
		Int("args", event.ArgCount).
		Int("frames", event.FrameDepth).
		Msg("call")
	return true
}

func (o *LogObserver) OnReturn(event ReturnEvent) bool {
	o.logger.Debug().
		Str("function", event.FunctionName).
		Str("result", event.Result).
		Int("frames", event.FrameDepth).
		Msg("return")
	return true
}

var _ Observer = (*LogObserver)(nil)
