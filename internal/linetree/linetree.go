package linetree

// Node is an element of a Block. The only implementations are Line and Block.
type Node interface {
	node()
}

// Line is a single line of generated source, without indentation or newline.
type Line string

// Block is an ordered sequence of nodes. Nested blocks are one level deeper
// than the block that contains them.
type Block []Node

func (Line) node()  {}
func (Block) node() {}

// Lines builds a block of atomic lines.
func Lines(texts ...string) Block {
	b := make(Block, 0, len(texts))
	for _, t := range texts {
		b = append(b, Line(t))
	}
	return b
}

// Append adds lines to the end of the block.
func (b *Block) Append(texts ...string) {
	for _, t := range texts {
		*b = append(*b, Line(t))
	}
}

// Nest adds child as a nested block at the end of b.
func (b *Block) Nest(child Block) {
	*b = append(*b, child)
}

// Walk visits every Line in insertion order together with its depth, where
// the lines of b itself are at depth 0.
func (b Block) Walk(fn func(line Line, depth int)) {
	b.walk(fn, 0)
}

func (b Block) walk(fn func(Line, int), depth int) {
	for _, n := range b {
		switch n := n.(type) {
		case Line:
			fn(n, depth)
		case Block:
			n.walk(fn, depth+1)
		}
	}
}

// CountLines returns the number of atomic lines in the tree.
func (b Block) CountLines() int {
	count := 0
	b.Walk(func(Line, int) { count++ })
	return count
}
