// Package linetree is the intermediate representation between code generation
// and text. A tree is a Block of Nodes; a Node is either a Line of source text
// or another Block, whose contents render one indentation level deeper.
package linetree
