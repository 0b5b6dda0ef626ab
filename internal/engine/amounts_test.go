package engine

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("extractTotal", func() {
	var cfg Config

	BeforeEach(func() {
		cfg = DefaultConfig()
	})

	It("prefers a labeled total over the unlabeled maximum", func() {
		total := extractTotal([]string{
			"おにぎり ¥12,800",
			"合計 ¥10,871",
			"お預り ¥20,000",
		}, cfg)
		Expect(total).To(HaveValue(Equal(10871)))
	})

	It("never reads a subtotal line as the total", func() {
		total := extractTotal([]string{
			"SUBTOTAL ¥900",
			"TOTAL ¥1,080",
		}, cfg)
		Expect(total).To(HaveValue(Equal(1080)))
	})

	When("no labeled total exists", func() {
		It("falls back to the maximum currency amount under the ceiling", func() {
			total := extractTotal([]string{
				"おにぎり ¥140",
				"お弁当 ¥598",
				"レジ袋 ¥5",
			}, cfg)
			Expect(total).To(HaveValue(Equal(598)))
		})

		It("ignores amounts at or above the ceiling", func() {
			total := extractTotal([]string{"¥250,000", "¥730"}, cfg)
			Expect(total).To(HaveValue(Equal(730)))
		})

		It("is nil when the fallback is disabled", func() {
			cfg.DisableUnlabeledTotal = true
			Expect(extractTotal([]string{"¥730"}, cfg)).To(BeNil())
		})
	})
})

// fallbackTotal is a known heuristic weakness: on a receipt whose largest
// currency line is a single big item, the guess is that item, not the total.
// The case is pinned here so a tuning change shows up as a test diff.
var _ = Describe("fallbackTotal misfire", func() {
	It("guesses a lone large item line as the total", func() {
		total := fallbackTotal([]string{
			"うなぎ弁当(特上)",
			"¥45,000",
			"お茶 ¥150",
		}, DefaultConfig().TotalCeiling)
		Expect(total).To(HaveValue(Equal(45000)))
	})
})

var _ = Describe("extractSubtotal", func() {
	It("reads a labeled subtotal", func() {
		Expect(extractSubtotal([]string{"小計 ¥1,196"})).To(HaveValue(Equal(1196)))
	})

	It("is nil without a label", func() {
		Expect(extractSubtotal([]string{"¥1,196"})).To(BeNil())
	})
})

var _ = Describe("extractDiscount", func() {
	It("stores the amount as a negative number", func() {
		Expect(extractDiscount([]string{"クーポン割引 ¥200"})).To(HaveValue(Equal(-200)))
	})

	It("handles an explicit minus sign", func() {
		Expect(extractDiscount([]string{"値引 -¥50"})).To(HaveValue(Equal(-50)))
	})

	It("is nil when no discount label appears", func() {
		Expect(extractDiscount([]string{"合計 ¥1,196"})).To(BeNil())
	})
})
