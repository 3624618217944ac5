package book

import "github.com/google/btree"

const sideTreeDegree = 16

// bookSide holds one side's price levels in a btree keyed by price.
// Bids take their best from the maximum price, asks from the minimum.
type bookSide struct {
	side Side
	tree *btree.BTreeG[*level]
}

func newBookSide(s Side) *bookSide {
	return &bookSide{
		side: s,
		tree: btree.NewG(sideTreeDegree, func(a, b *level) bool {
			return a.price < b.price
		}),
	}
}

func (s *bookSide) getOrCreate(price int64) *level {
	if lvl, ok := s.tree.Get(&level{price: price}); ok {
		return lvl
	}
	lvl := &level{price: price}
	s.tree.ReplaceOrInsert(lvl)
	return lvl
}

// best returns the top-priority level, nil when the side is empty.
func (s *bookSide) best() *level {
	var lvl *level
	var ok bool
	if s.side == Buy {
		lvl, ok = s.tree.Max()
	} else {
		lvl, ok = s.tree.Min()
	}
	if !ok {
		return nil
	}
	return lvl
}

func (s *bookSide) remove(price int64) {
	s.tree.Delete(&level{price: price})
}

func (s *bookSide) len() int {
	return s.tree.Len()
}

// top walks the side in priority order, stopping after depth levels.
// Bids descend from the highest price, asks ascend from the lowest, so a
// shallow depth never touches the rest of the book.
func (s *bookSide) top(depth int) []PriceLevel {
	out := make([]PriceLevel, 0, depth)
	visit := func(lvl *level) bool {
		out = append(out, PriceLevel{Price: lvl.price, Qty: lvl.qty})
		return len(out) < depth
	}
	if s.side == Buy {
		s.tree.Descend(visit)
	} else {
		s.tree.Ascend(visit)
	}
	return out
}
