package df

import (
	"math/bits"

	"tlog.app/go/tlog/tlwire"
)

type (
	// BlockSet is a bitmap of block IDs.
	BlockSet struct {
		b  []uint64
		b0 [1]uint64
	}
)

func MakeBlockSet(n int) BlockSet {
	s := BlockSet{}
	s.b = s.b0[:]

	n = (n + 63) / 64

	if n > len(s.b) {
		s.b = make([]uint64, n)
	}

	return s
}

func (s *BlockSet) Set(id int) {
	i, j := id/64, id%64

	for i >= len(s.b) {
		s.b = append(s.b, 0)
	}

	s.b[i] |= 1 << j
}

func (s *BlockSet) IsSet(id int) bool {
	i, j := id/64, id%64

	if i >= len(s.b) {
		return false
	}

	return s.b[i]&(1<<j) != 0
}

func (s *BlockSet) Size() (r int) {
	for _, x := range s.b {
		r += bits.OnesCount64(x)
	}

	return r
}

// Range calls f for every member in ascending order until f returns false.
func (s *BlockSet) Range(f func(id int) bool) {
	for i, x := range s.b {
		for x != 0 {
			j := bits.TrailingZeros64(x)
			x &^= 1 << j

			if !f(i*64 + j) {
				return
			}
		}
	}
}

func (s BlockSet) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	if s.b == nil {
		return e.AppendNil(b)
	}

	b = e.AppendTag(b, tlwire.Array, -1)

	s.Range(func(id int) bool {
		b = e.AppendInt(b, id)

		return true
	})

	b = e.AppendBreak(b)

	return b
}
