/*
Package compiler ties the phases together.

# Process of compilation

	YAML syntax tree ->
		astio.Decode ->
	Abstract Syntax Tree (ast) ->
		front.Analyze ->
	Checked tree, Symbol Table (symtab) ->
		front.Compile ->
	Intermediate Representation (ir) ->
		format.Format | back.Run ->
	IR text | program output
*/
package compiler
