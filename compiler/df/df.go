// Package df walks the control flow graph of IR functions.
package df

import (
	"nikand.dev/go/heap"

	"github.com/slowlang/pasir/compiler/ir"
)

// Reachable returns the blocks of f reachable from its entry.
// Blocks are visited in ascending ID order.
func Reachable(f *ir.Func) BlockSet {
	seen := MakeBlockSet(len(f.Blocks))

	if len(f.Blocks) == 0 {
		return seen
	}

	q := heap.Heap[*ir.Block]{Less: blockLess}
	q.Push(f.Blocks[0])

	for q.Len() != 0 {
		b := q.Pop()

		if seen.IsSet(b.ID) {
			continue
		}

		seen.Set(b.ID)

		for _, s := range b.Succs() {
			if !seen.IsSet(s.ID) {
				q.Push(s)
			}
		}
	}

	return seen
}

// Open returns reachable blocks that have no terminator.
func Open(f *ir.Func) []*ir.Block {
	var r []*ir.Block

	reach := Reachable(f)

	reach.Range(func(id int) bool {
		if b := f.Blocks[id]; !b.Terminated() {
			r = append(r, b)
		}

		return true
	})

	return r
}

func blockLess(d []*ir.Block, i, j int) bool {
	return d[i].ID < d[j].ID
}
