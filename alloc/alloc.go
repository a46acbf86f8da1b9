// Package alloc implements the free list memory allocator.
//
// The free list is unordered. New and merged blocks are pushed at its head,
// so list order is not address order.
package alloc

import (
	"fmt"
	"iter"

	"github.com/hashicorp/go-hclog"

	"github.com/ezrec/pbrain/internal"
)

// Block is a contiguous extent of memory.
type Block struct {
	Address int
	Length  int
}

// End returns the first address after the block.
func (b Block) End() int {
	return b.Address + b.Length
}

func (b Block) String() string {
	return fmt.Sprintf("{%d,%d}", b.Address, b.Length)
}

const none = -1

// node is an arena slot of the free list.
type node struct {
	Block
	next int
}

// FreeList tracks the unallocated extents of a memory.
type FreeList struct {
	Verbose bool         // If set, narrates splits and merges.
	Logger  hclog.Logger // Destination of narration.

	nodes  []node
	unused internal.Stack[int]
	head   int
	count  int
}

// NewFreeList creates a free list holding a single block covering size words.
func NewFreeList(size int) (fl *FreeList) {
	fl = &FreeList{
		Logger: hclog.NewNullLogger(),
		head:   none,
	}

	if size > 0 {
		fl.Push(Block{Address: 0, Length: size})
	}

	return
}

// Push inserts a block at the head of the list.
func (fl *FreeList) Push(block Block) {
	index, ok := fl.unused.Pop()
	if !ok {
		index = len(fl.nodes)
		fl.nodes = append(fl.nodes, node{})
	}

	fl.nodes[index] = node{Block: block, next: fl.head}
	fl.head = index
	fl.count++
}

// unlink removes the slot at index, whose predecessor is prev.
func (fl *FreeList) unlink(prev int, index int) (block Block) {
	block = fl.nodes[index].Block
	if prev == none {
		fl.head = fl.nodes[index].next
	} else {
		fl.nodes[prev].next = fl.nodes[index].next
	}

	fl.nodes[index] = node{next: none}
	fl.unused.Push(index)
	fl.count--

	return
}

// slots iterates over (predecessor, slot) pairs in list order.
func (fl *FreeList) slots() iter.Seq2[int, int] {
	return func(yield func(prev int, index int) bool) {
		prev := none
		for index := fl.head; index != none; index = fl.nodes[index].next {
			if !yield(prev, index) {
				return
			}
			prev = index
		}
	}
}

// Blocks iterates over the free blocks in list order.
func (fl *FreeList) Blocks() iter.Seq[Block] {
	return func(yield func(Block) bool) {
		for _, index := range fl.slots() {
			if !yield(fl.nodes[index].Block) {
				return
			}
		}
	}
}

// Len returns the number of free blocks.
func (fl *FreeList) Len() int {
	return fl.count
}

// Available returns the total number of free words.
func (fl *FreeList) Available() int {
	return internal.IterSeqSum(fl.Blocks(), func(b Block) int { return b.Length })
}

// Largest returns the length of the largest free block.
func (fl *FreeList) Largest() (length int) {
	for block := range fl.Blocks() {
		length = max(length, block.Length)
	}
	return
}

// search finds the slot chosen by policy for length words.
// Ties go to the block found first in list order.
func (fl *FreeList) search(policy Policy, length int) (prev int, index int, ok bool) {
	best := 0
	for p, n := range fl.slots() {
		diff := fl.nodes[n].Length - length
		if diff < 0 {
			continue
		}

		switch policy {
		case FIRST_FIT:
			prev, index, ok = p, n, true
			return
		case WORST_FIT:
			if ok && diff <= best {
				continue
			}
		default:
			if ok && diff >= best {
				continue
			}
		}

		prev, index, ok, best = p, n, true, diff
	}

	return
}

// Search returns the block policy would choose for length words,
// without removing it from the list.
func (fl *FreeList) Search(policy Policy, length int) (block Block, ok bool) {
	_, index, ok := fl.search(policy, length)
	if ok {
		block = fl.nodes[index].Block
	}
	return
}

// Split carves length words from the start of a block that is not on the
// list. A non-empty remainder is pushed to the head of the list.
func (fl *FreeList) Split(block Block, length int) (allocated Block) {
	allocated = Block{Address: block.Address, Length: length}

	remainder := block.Length - length
	if remainder > 0 {
		rest := Block{Address: block.Address + length, Length: remainder}
		if fl.Verbose {
			fl.Logger.Debug("split", "block", block, "length", length, "remainder", rest)
		}
		fl.Push(rest)
	}

	return
}

// Allocate removes a block of exactly length words from the list, chosen
// by policy.
func (fl *FreeList) Allocate(policy Policy, length int) (block Block, ok bool) {
	if length <= 0 {
		return
	}

	prev, index, ok := fl.search(policy, length)
	if !ok {
		if fl.Verbose {
			fl.Logger.Debug("no fit", "policy", policy, "length", length)
		}
		return
	}

	found := fl.unlink(prev, index)
	block = fl.Split(found, length)

	if fl.Verbose {
		fl.Logger.Debug("allocate", "policy", policy, "found", found, "block", block)
	}

	return
}

// Coalesce returns a block to the list, merging it with the free blocks
// that touch either of its ends.
func (fl *FreeList) Coalesce(block Block) {
	prev := none
	index := fl.head
	for index != none {
		next := fl.nodes[index].next
		other := fl.nodes[index].Block

		switch {
		case other.Address == block.End():
			if fl.Verbose {
				fl.Logger.Debug("merge after", "block", block, "with", other)
			}
			block.Length += other.Length
			fl.unlink(prev, index)
		case other.End() == block.Address:
			if fl.Verbose {
				fl.Logger.Debug("merge before", "block", block, "with", other)
			}
			block.Address = other.Address
			block.Length += other.Length
			fl.unlink(prev, index)
		default:
			prev = index
		}

		index = next
	}

	fl.Push(block)
}
