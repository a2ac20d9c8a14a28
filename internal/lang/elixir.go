package lang

func init() {
	Register(&LanguageSpec{
		Language:       Elixir,
		FileExtensions: []string{".ex", ".exs"},
		// Elixir uses "call" for everything (homoiconic): def, defp, defmacro
		// and defmodule are all call nodes. Nothing in this module tells
		// them apart, so every call node matches FunctionNodeTypes.
		FunctionNodeTypes: []string{
			"call", // def/defp/defmacro, and every other call
		},
		ClassNodeTypes:  []string{}, // defmodule is a call node; no class kind
		ModuleNodeTypes: []string{"source"},
		CallNodeTypes:   []string{"call", "dot"},
		ImportNodeTypes: []string{"call"},

		BranchingNodeTypes: []string{
			"call", // if/cond/case are macro calls in Elixir
		},
		VariableNodeTypes:   []string{"binary_operator"},
		AssignmentNodeTypes: []string{"binary_operator"},
	})
}
