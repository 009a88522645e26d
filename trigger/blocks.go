/*
DESCRIPTION
  blocks.go implements the union-find block table used to merge per-pixel
  trigger hits into connected blocks within a single frame scan.

AUTHORS
  Priya Natarajan <priya@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package trigger

import "fmt"

// block accumulates the statistics of one connected group of triggering
// pixels within a single frame. count, sum, sumX and sumY only grow from
// pixels that were not chronic triggerers at the moment they joined (see
// PastTriggerMap.Chronic); top/bot/left/right are seeded from the pixel
// that allocated the block even if that pixel was itself chronic, matching
// trigger.c's unconditional bbox seed at allocation time.
type block struct {
	count          int64
	sum            int64 // sum of (image1-image2) intensity excess
	sumX, sumY     int64 // plain coordinate sums, for the unweighted centroid
	top, bot       int   // bounding box rows, inclusive
	left, right    int   // bounding box columns, inclusive
}

// blockTable is a redirect-chain union-find structure: merging two blocks
// does not compress the chain (every redirect stays in place), matching
// trigger.c's trigger_blocks_merge, which walks the live chain rather than
// re-pointing every member directly at the new root. This trades lookup
// speed for an exact translation of the original merge semantics.
type blockTable struct {
	blocks   []block
	redirect []int32 // redirect[i] == i for a root; otherwise points closer to the root
}

// newBlockTable allocates a table that can hold up to maxBlocks blocks
// before a scan must stop allocating new ones (spec.md's MAX_TRIGGER_BLOCKS
// safety cap).
func newBlockTable(maxBlocks int) (*blockTable, error) {
	if maxBlocks < 1 {
		return nil, fmt.Errorf("trigger: invalid maxBlocks %d", maxBlocks)
	}
	return &blockTable{
		blocks:   make([]block, 0, maxBlocks),
		redirect: make([]int32, 0, maxBlocks),
	}, nil
}

// alloc creates a new, empty block whose bounding box is seeded at (x,y),
// returning its id, or -1 if the table is full. The block's count and sums
// start at zero; call addPixel separately to credit the allocating pixel
// (trigger.c does the same, since a chronic pixel can allocate a block
// without contributing to its statistics).
func (t *blockTable) alloc(x, y int) int32 {
	if len(t.blocks) >= cap(t.blocks) {
		return -1
	}
	id := int32(len(t.blocks))
	t.blocks = append(t.blocks, block{top: y, bot: y, left: x, right: x})
	t.redirect = append(t.redirect, id)
	return id
}

// find follows the redirect chain from id to its current root.
func (t *blockTable) find(id int32) int32 {
	for t.redirect[id] != id {
		id = t.redirect[id]
	}
	return id
}

// addPixel folds one more pixel's coordinates and intensity excess into
// the block rooted at id (id must already be a root, i.e. the result of
// find).
func (t *blockTable) addPixel(id int32, x, y int, excess int64) {
	b := &t.blocks[id]
	b.count++
	b.sum += excess
	b.sumX += int64(x)
	b.sumY += int64(y)
	if y < b.top {
		b.top = y
	}
	if y > b.bot {
		b.bot = y
	}
	if x < b.left {
		b.left = x
	}
	if x > b.right {
		b.right = x
	}
}

// merge unions the blocks rooted at a and b (which may already be equal),
// folding the smaller block's statistics into the larger and redirecting
// the smaller's root at the larger, and returns the surviving root id.
func (t *blockTable) merge(a, b int32) int32 {
	a, b = t.find(a), t.find(b)
	if a == b {
		return a
	}
	if t.blocks[b].count > t.blocks[a].count {
		a, b = b, a
	}
	ba, bb := &t.blocks[a], &t.blocks[b]
	ba.count += bb.count
	ba.sum += bb.sum
	ba.sumX += bb.sumX
	ba.sumY += bb.sumY
	if bb.top < ba.top {
		ba.top = bb.top
	}
	if bb.bot > ba.bot {
		ba.bot = bb.bot
	}
	if bb.left < ba.left {
		ba.left = bb.left
	}
	if bb.right > ba.right {
		ba.right = bb.right
	}
	t.redirect[b] = a
	return a
}

// roots returns the ids of every block that is currently its own root,
// i.e. every distinct block surviving after all merges of this scan.
func (t *blockTable) roots() []int32 {
	var out []int32
	for i := range t.redirect {
		if t.redirect[i] == int32(i) {
			out = append(out, int32(i))
		}
	}
	return out
}
