package tagging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Set", func() {
	var (
		set Set
	)

	BeforeEach(func() {
		set = newSet(3, 4, NewLRUVictimFinder())
	})

	It("should start empty", func() {
		Expect(set.NumWays()).To(Equal(4))
		Expect(set.NumValid()).To(Equal(0))
		Expect(set.MRU()).To(Equal(-1))
		Expect(set.LRU()).To(Equal(-1))
		Expect(set.RecencyOrder()).To(BeEmpty())

		_, found := set.Find(0)
		Expect(found).To(BeFalse())
	})

	It("should fill empty ways in index order", func() {
		for i := 0; i < 4; i++ {
			block, outcome, _ := set.InsertOrReplace(uint64(0x10 + i))

			Expect(outcome).To(Equal(FilledEmpty))
			Expect(block.WayID).To(Equal(i))
			Expect(block.SetID).To(Equal(3))
			Expect(block.IsValid).To(BeTrue())
		}

		Expect(set.NumValid()).To(Equal(4))
		Expect(set.RecencyOrder()).To(Equal([]int{3, 2, 1, 0}))
	})

	It("should find a valid block by tag", func() {
		set.InsertOrReplace(0x10)
		set.InsertOrReplace(0x20)

		block, found := set.Find(0x20)

		Expect(found).To(BeTrue())
		Expect(block.WayID).To(Equal(1))
		Expect(block.Tag).To(Equal(uint64(0x20)))
	})

	It("should not find a tag stored in an invalid block", func() {
		set.Blocks[2].Tag = 0x30

		_, found := set.Find(0x30)

		Expect(found).To(BeFalse())
	})

	It("should move a touched block to the front", func() {
		for i := 0; i < 4; i++ {
			set.InsertOrReplace(uint64(i))
		}

		set.Touch(1)

		Expect(set.RecencyOrder()).To(Equal([]int{1, 3, 2, 0}))
		Expect(set.MRU()).To(Equal(1))
		Expect(set.LRU()).To(Equal(0))
	})

	It("should keep the order when touching the most recent block", func() {
		set.InsertOrReplace(1)
		set.InsertOrReplace(2)

		set.Touch(1)

		Expect(set.RecencyOrder()).To(Equal([]int{1, 0}))
	})

	It("should update the tail when touching the least recent block", func() {
		set.InsertOrReplace(1)
		set.InsertOrReplace(2)
		set.InsertOrReplace(3)

		set.Touch(0)

		Expect(set.RecencyOrder()).To(Equal([]int{0, 2, 1}))
		Expect(set.LRU()).To(Equal(1))
	})

	It("should evict the least recently used block when full", func() {
		for i := 0; i < 4; i++ {
			set.InsertOrReplace(uint64(0x100 + i))
		}
		set.Touch(0)

		block, outcome, evictedTag := set.InsertOrReplace(0x200)

		Expect(outcome).To(Equal(Evicted))
		Expect(evictedTag).To(Equal(uint64(0x101)))
		Expect(block.WayID).To(Equal(1))
		Expect(set.NumValid()).To(Equal(4))
		Expect(set.RecencyOrder()).To(Equal([]int{1, 0, 3, 2}))

		_, found := set.Find(0x101)
		Expect(found).To(BeFalse())
	})

	It("should never hold more blocks than ways", func() {
		for i := 0; i < 100; i++ {
			set.InsertOrReplace(uint64(i))
			Expect(set.NumValid()).To(BeNumerically("<=", 4))
			Expect(set.RecencyOrder()).To(HaveLen(set.NumValid()))
		}
	})

	It("should panic when inserting a resident tag", func() {
		set.InsertOrReplace(0x10)

		Expect(func() { set.InsertOrReplace(0x10) }).To(Panic())
	})

	It("should panic when touching an invalid block", func() {
		Expect(func() { set.Touch(2) }).To(Panic())
	})

	It("should work as a single-way set", func() {
		set = newSet(0, 1, NewLRUVictimFinder())

		_, outcome, _ := set.InsertOrReplace(7)
		Expect(outcome).To(Equal(FilledEmpty))

		set.Touch(0)
		Expect(set.RecencyOrder()).To(Equal([]int{0}))

		block, outcome, evictedTag := set.InsertOrReplace(9)
		Expect(outcome).To(Equal(Evicted))
		Expect(evictedTag).To(Equal(uint64(7)))
		Expect(block.Tag).To(Equal(uint64(9)))
		Expect(set.MRU()).To(Equal(0))
		Expect(set.LRU()).To(Equal(0))
	})

	It("should name fill outcomes", func() {
		Expect(FilledEmpty.String()).To(Equal("filled-empty"))
		Expect(Evicted.String()).To(Equal("evicted"))
	})
})
