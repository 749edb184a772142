package cellscript

import (
	"encoding/json"
	"strings"

	"github.com/deepnoodle-ai/cellscript/builtins"
	"github.com/deepnoodle-ai/cellscript/errz"
)

// Version is the current cellscript version.
const Version = "0.3.0"

// DocsOption configures documentation retrieval.
type DocsOption func(*docsOptions)

type docsOptions struct {
	category string
	topic    string
}

// DocsCategory filters documentation to a specific category.
// Valid categories: "builtins", "syntax", "errors"
func DocsCategory(cat string) DocsOption {
	return func(o *docsOptions) {
		o.category = cat
	}
}

// DocsTopic retrieves documentation for a specific builtin or error kind.
// Examples: "abs", "division by zero"
func DocsTopic(topic string) DocsOption {
	return func(o *docsOptions) {
		o.topic = topic
	}
}

// Documentation provides structured access to cellscript documentation.
type Documentation struct {
	data any
}

// JSON returns the documentation as a JSON string.
func (d *Documentation) JSON() string {
	b, _ := json.MarshalIndent(d.data, "", "  ")
	return string(b)
}

// Data returns the raw documentation data.
func (d *Documentation) Data() any {
	return d.data
}

type docsInfo struct {
	Version        string `json:"version"`
	Description    string `json:"description"`
	ExecutionModel string `json:"execution_model"`
}

type docsSyntaxPattern struct {
	Pattern     string `json:"pattern"`
	Description string `json:"description"`
}

type docsQuickReference struct {
	Cellscript     docsInfo            `json:"cellscript"`
	SyntaxQuickRef []docsSyntaxPattern `json:"syntax_quick_ref"`
	Topics         map[string]string   `json:"topics"`
}

type docsBuiltin struct {
	Name      string   `json:"name"`
	Signature string   `json:"signature"`
	Doc       string   `json:"doc"`
	Args      []string `json:"args"`
}

type docsErrorKind struct {
	Kind        string `json:"kind"`
	Phase       string `json:"phase"`
	Description string `json:"description"`
}

var docsInfoValue = docsInfo{
	Version:        Version,
	Description:    "Toy scripting language with a packed bytecode compiler and stack VM",
	ExecutionModel: "source → lexer → parser → arena → compiler → bytecode → vm",
}

var docsSyntaxQuickRef = []docsSyntaxPattern{
	{Pattern: "x = 1", Description: "Assignment (let is optional)"},
	{Pattern: "print x * 2", Description: "Print a value on its own line"},
	{Pattern: "if (x > 1) { } else if (x) { } else { }", Description: "Conditional"},
	{Pattern: "while (i < 10) { i = i + 1 }", Description: "Loop"},
	{Pattern: "func add(a, b) { return a + b }", Description: "Named function (def works too)"},
	{Pattern: "a and b, a or b, not a", Description: "Short-circuit logic (&&, ||, ! also accepted)"},
	{Pattern: "# comment", Description: "Comment (// also accepted)"},
}

var docsErrorKinds = []docsErrorKind{
	{errz.Syntax.String(), errz.ParsePhase.String(), "The source text could not be parsed"},
	{errz.UnknownNode.String(), errz.CompilePhase.String(), "A tree cell has a kind the compiler does not know"},
	{errz.UnknownOperator.String(), errz.CompilePhase.String() + "/" + errz.RuntimePhase.String(), "A unary or binary cell, or a loaded instruction, carries an unknown operator"},
	{errz.UnresolvedName.String(), errz.CompilePhase.String(), "A variable is read before it is assigned"},
	{errz.UnresolvedCall.String(), errz.CompilePhase.String(), "A call names neither a variable nor a builtin"},
	{errz.InvalidLiteral.String(), errz.CompilePhase.String(), "A numeric literal does not fit its type"},
	{errz.InvalidReturn.String(), errz.CompilePhase.String(), "A return statement appears outside of a function"},
	{errz.ArityMismatch.String(), errz.CompilePhase.String() + "/" + errz.RuntimePhase.String(), "A function is called with the wrong number of arguments"},
	{errz.CapacityExceeded.String(), errz.CompilePhase.String() + "/" + errz.RuntimePhase.String(), "A fixed limit was reached: constants, slots, jumps, stack, or frames"},
	{errz.UnknownOpcode.String(), errz.RuntimePhase.String(), "The program contains an instruction the VM cannot execute"},
	{errz.StackImbalance.String(), errz.RuntimePhase.String(), "Values were left on the stack where none should remain"},
	{errz.DivisionByZero.String(), errz.RuntimePhase.String(), "An integer was divided by zero"},
	{errz.TypeError.String(), errz.RuntimePhase.String(), "A value of the wrong kind was used, such as calling a number"},
	{errz.Cancelled.String(), errz.RuntimePhase.String(), "The host cancelled execution"},
}

// Docs returns structured documentation about cellscript. Without options
// it returns a quick reference.
//
//	docs := cellscript.Docs(cellscript.DocsCategory("builtins"))
//	fmt.Println(docs.JSON())
func Docs(opts ...DocsOption) *Documentation {
	o := &docsOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.category != "" {
		return &Documentation{data: buildCategoryDocs(o.category)}
	}
	if o.topic != "" {
		return &Documentation{data: buildTopicDocs(o.topic)}
	}
	return &Documentation{data: docsQuickReference{
		Cellscript:     docsInfoValue,
		SyntaxQuickRef: docsSyntaxQuickRef,
		Topics: map[string]string{
			"builtins": "Built-in functions (" + strings.Join(builtins.Names(), ", ") + ")",
			"syntax":   "Syntax reference",
			"errors":   "Error kinds and when they are raised",
		},
	}}
}

func docsBuiltins() []docsBuiltin {
	var out []docsBuiltin
	for _, b := range builtins.All() {
		out = append(out, docsBuiltin{
			Name:      b.Name,
			Signature: b.Name + "(" + strings.Join(b.Args, ", ") + ")",
			Doc:       b.Doc,
			Args:      b.Args,
		})
	}
	return out
}

func buildCategoryDocs(category string) any {
	switch category {
	case "builtins":
		fns := docsBuiltins()
		return map[string]any{
			"category":    "builtins",
			"description": "Built-in functions available in every scope",
			"count":       len(fns),
			"functions":   fns,
		}
	case "syntax":
		return map[string]any{
			"category":    "syntax",
			"description": "Syntax reference",
			"patterns":    docsSyntaxQuickRef,
		}
	case "errors":
		return map[string]any{
			"category":    "errors",
			"description": "Error kinds and when they are raised",
			"kinds":       docsErrorKinds,
		}
	default:
		return map[string]any{
			"error": "unknown category: " + category,
		}
	}
}

func buildTopicDocs(topic string) any {
	for _, b := range docsBuiltins() {
		if b.Name == topic {
			return map[string]any{"type": "builtin", "builtin": b}
		}
	}
	for _, k := range docsErrorKinds {
		if k.Kind == topic {
			return map[string]any{"type": "error", "error": k}
		}
	}
	return map[string]any{"error": "unknown topic: " + topic}
}
