package cache

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/csim/sim/hooking"
	"go.uber.org/mock/gomock"
)

func accessAll(s *Simulator, addrs ...uint64) []Outcome {
	outcomes := make([]Outcome, 0, len(addrs))
	for _, addr := range addrs {
		outcomes = append(outcomes, s.Access(addr))
	}

	return outcomes
}

var _ = Describe("Simulator", func() {
	var (
		mockCtrl *gomock.Controller
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should evict in a small direct-mapped cache", func() {
		s := MakeBuilder().
			WithNumSetBits(1).
			WithAssociativity(1).
			WithNumBlockBits(0).
			Build()

		outcomes := accessAll(s, 0, 1, 8)

		Expect(outcomes).To(Equal([]Outcome{ColdMiss, ColdMiss, EvictionMiss}))
		Expect(s.Stats().String()).To(Equal("hits:0 misses:3 evictions:1"))
	})

	It("should hit on an immediate re-access", func() {
		s := MakeBuilder().Build()

		Expect(s.Access(0x1234)).To(Equal(ColdMiss))
		Expect(s.Access(0x1234)).To(Equal(Hit))
		Expect(s.Access(0x1234)).To(Equal(Hit))
	})

	It("should hit on another byte of the same block", func() {
		s := MakeBuilder().WithNumBlockBits(4).Build()

		Expect(s.Access(0x100)).To(Equal(ColdMiss))
		Expect(s.Access(0x10f)).To(Equal(Hit))
		Expect(s.Access(0x110)).To(Equal(ColdMiss))
	})

	It("should evict the least recently used line", func() {
		const numWays = 4
		s := MakeBuilder().
			WithNumSetBits(2).
			WithAssociativity(numWays).
			WithNumBlockBits(4).
			Build()

		// Same set, tags 1 to 5.
		addrOfTag := func(tag uint64) uint64 { return tag<<6 | 2<<4 }

		for tag := uint64(1); tag <= numWays; tag++ {
			Expect(s.Access(addrOfTag(tag))).To(Equal(ColdMiss))
		}

		Expect(s.Access(addrOfTag(1))).To(Equal(Hit))
		Expect(s.Access(addrOfTag(5))).To(Equal(EvictionMiss))

		Expect(s.Access(addrOfTag(1))).To(Equal(Hit))
		Expect(s.Access(addrOfTag(2))).To(Equal(EvictionMiss))
		Expect(s.Stats()).To(Equal(Stats{Hits: 2, Misses: 6, Evictions: 2}))
	})

	It("should conflict on every tag change in a direct-mapped cache", func() {
		s := MakeBuilder().
			WithNumSetBits(3).
			WithAssociativity(1).
			WithNumBlockBits(2).
			Build()

		// Both map to set 1 with tags 0 and 1.
		a, b := uint64(0x04), uint64(0x24)

		outcomes := accessAll(s, a, b, a, a, b)

		Expect(outcomes).To(Equal([]Outcome{
			ColdMiss, EvictionMiss, EvictionMiss, Hit, EvictionMiss,
		}))
	})

	It("should keep sets independent", func() {
		s := MakeBuilder().
			WithNumSetBits(1).
			WithAssociativity(1).
			WithNumBlockBits(0).
			Build()

		accessAll(s, 0, 1)

		Expect(s.Access(2)).To(Equal(EvictionMiss))
		Expect(s.Access(1)).To(Equal(Hit))
		Expect(s.NumValid(0)).To(Equal(1))
		Expect(s.NumValid(1)).To(Equal(1))
	})

	It("should work as a fully associative cache", func() {
		s := MakeBuilder().
			WithNumSetBits(0).
			WithAssociativity(2).
			WithNumBlockBits(0).
			Build()

		outcomes := accessAll(s, 10, 20, 10, 30, 20)

		Expect(outcomes).To(Equal([]Outcome{
			ColdMiss, ColdMiss, Hit, EvictionMiss, EvictionMiss,
		}))
	})

	It("should keep the accounting identity on random traces", func() {
		s := MakeBuilder().
			WithNumSetBits(3).
			WithAssociativity(2).
			WithNumBlockBits(4).
			Build()
		r := rand.New(rand.NewSource(7))

		for i := 1; i <= 5000; i++ {
			s.Access(uint64(r.Intn(1 << 12)))

			stats := s.Stats()
			Expect(stats.Accesses()).To(Equal(uint64(i)))
			Expect(stats.Evictions).To(BeNumerically("<=", stats.Misses))
		}

		for setID := 0; setID < 8; setID++ {
			Expect(s.NumValid(setID)).To(BeNumerically("<=", 2))
		}
	})

	It("should reset lines and counters", func() {
		s := MakeBuilder().Build()
		accessAll(s, 0x10, 0x10)

		s.Reset()

		Expect(s.Stats()).To(BeZero())
		Expect(s.Access(0x10)).To(Equal(ColdMiss))
	})

	It("should report every access to hooks", func() {
		hook := NewMockHook(mockCtrl)
		s := MakeBuilder().
			WithNumSetBits(1).
			WithAssociativity(1).
			WithNumBlockBits(0).
			WithHook(hook).
			Build()

		details := []AccessDetail{}
		hook.EXPECT().
			Func(gomock.Any()).
			Do(func(ctx hooking.HookCtx) {
				Expect(ctx.Pos).To(BeIdenticalTo(HookPosAccess))
				Expect(ctx.Domain).To(BeIdenticalTo(s))
				details = append(details, ctx.Detail.(AccessDetail))
			}).
			Times(3)

		accessAll(s, 0, 0, 8)

		Expect(details).To(Equal([]AccessDetail{
			{Seq: 1, Address: 0, Tag: 0, SetID: 0, WayID: 0, Outcome: ColdMiss},
			{Seq: 2, Address: 0, Tag: 0, SetID: 0, WayID: 0, Outcome: Hit},
			{
				Seq: 3, Address: 8, Tag: 4, SetID: 0, WayID: 0,
				Outcome: EvictionMiss, EvictedTag: 0,
			},
		}))
	})
})
