package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/csim/sim/hooking"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Config", func() {
	It("should derive the number of sets and the block size", func() {
		c := Config{NumSetBits: 4, Associativity: 2, NumBlockBits: 6}

		Expect(c.NumSets()).To(Equal(16))
		Expect(c.BlockSize()).To(Equal(uint64(64)))
		Expect(c.TotalByteSize()).To(Equal(uint64(2048)))
		Expect(c.String()).To(Equal("s=4 E=2 b=6 (S=16, B=64)"))
		Expect(c.Validate()).To(Succeed())
	})

	It("should accept a single set without block bits", func() {
		c := Config{NumSetBits: 0, Associativity: 8, NumBlockBits: 0}

		Expect(c.NumSets()).To(Equal(1))
		Expect(c.Validate()).To(Succeed())
	})

	It("should reject a non-positive associativity", func() {
		c := Config{NumSetBits: 1, Associativity: 0, NumBlockBits: 1}

		Expect(c.Validate()).To(MatchError(ErrInvalidConfig))
	})

	It("should reject too many set bits", func() {
		c := Config{NumSetBits: 31, Associativity: 1}

		Expect(c.Validate()).To(MatchError(ErrInvalidConfig))
	})

	It("should reject fields wider than the address", func() {
		c := Config{NumSetBits: 20, Associativity: 1, NumBlockBits: 45}

		Expect(c.Validate()).To(MatchError(ErrInvalidConfig))
	})
})

func expectSameHooks(got, want []hooking.Hook) {
	Expect(got).To(HaveLen(len(want)))

	for i := range want {
		Expect(got[i]).To(BeIdenticalTo(want[i]))
	}
}

var _ = Describe("Builder", func() {
	It("should build with the given shape", func() {
		s := MakeBuilder().
			WithNumSetBits(2).
			WithAssociativity(4).
			WithNumBlockBits(5).
			Build()

		Expect(s.Config()).To(Equal(Config{
			NumSetBits:    2,
			Associativity: 4,
			NumBlockBits:  5,
		}))
		Expect(s.Stats()).To(BeZero())

		for setID := 0; setID < 4; setID++ {
			Expect(s.NumValid(setID)).To(Equal(0))
		}
	})

	It("should take a whole config", func() {
		c := Config{NumSetBits: 1, Associativity: 1, NumBlockBits: 0}

		s := MakeBuilder().WithConfig(c).Build()

		Expect(s.Config()).To(Equal(c))
	})

	It("should panic on an invalid config", func() {
		Expect(func() {
			MakeBuilder().WithAssociativity(0).Build()
		}).To(Panic())
	})

	It("should keep the hooks of derived builders apart", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		shared := []hooking.Hook{
			NewMockHook(mockCtrl),
			NewMockHook(mockCtrl),
			NewMockHook(mockCtrl),
		}
		left := NewMockHook(mockCtrl)
		right := NewMockHook(mockCtrl)

		base := MakeBuilder()
		for _, h := range shared {
			base = base.WithHook(h)
		}

		leftBuilder := base.WithHook(left)
		rightBuilder := base.WithHook(right)

		expectSameHooks(leftBuilder.Build().Hooks(), append(shared, left))
		expectSameHooks(rightBuilder.Build().Hooks(), append(shared, right))
		expectSameHooks(base.Build().Hooks(), shared)
	})
})
