// Package format defines the byte layout of the descriptors a heap embeds
// inside its arena. Every free region and every live allocation starts with a
// fixed-size slot; the packages above never interpret raw arena bytes without
// going through these helpers.
package format

import "math"

const (
	// SlotSize is the size in bytes of every in-arena descriptor.
	// Layout (little-endian):
	//   0x00  size  uint64  usable bytes following the slot
	//   0x08  kind  uint32  KindFree, KindHeader or KindRetired
	//   0x0C  next  uint32  offset of the next free node, NilOffset at the tail
	SlotSize = 0x10

	// DescriptorSize is the overhead of one free-list node.
	DescriptorSize = SlotSize

	// HeaderSize is the overhead of one allocation header. It must equal
	// DescriptorSize: a released header is rewritten in place as a node.
	HeaderSize = SlotSize

	// Slot field offsets.
	SlotSizeOffset = 0x00
	SlotKindOffset = 0x08
	SlotNextOffset = 0x0C

	// Alignment is the granularity every payload size is rounded up to.
	Alignment = 8

	// AlignmentMask is Alignment - 1.
	AlignmentMask = Alignment - 1

	// NilOffset terminates the free list.
	NilOffset uint32 = 0xFFFFFFFF

	// HeadOffset is where the first free node lives. Blocks are carved from
	// node tails, so nothing is ever placed in front of it.
	HeadOffset uint32 = 0

	// MaxCapacity is the largest arena the 32-bit offsets can address.
	MaxCapacity = math.MaxInt32

	// MinCapacity is the smallest arena that can hold the head node and one
	// aligned allocation.
	MinCapacity = SlotSize + HeaderSize + Alignment
)
