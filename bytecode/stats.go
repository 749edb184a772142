package bytecode

// Stats contains statistics about a compiled program.
type Stats struct {
	InstructionCount int `json:"instructions"`
	ConstantCount    int `json:"constants"`
	GlobalCount      int `json:"globals"`
	FunctionCount    int `json:"functions"`
	SourceBytes      int `json:"source_bytes"`
}
