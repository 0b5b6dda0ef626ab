package engine

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("extractItems", func() {
	var cfg Config

	BeforeEach(func() {
		cfg = DefaultConfig()
	})

	It("reconstructs quantity and unit price from the preceding line", func() {
		items := extractItems([]string{
			"2コ×単598",
			"¥1,196",
		}, cfg)
		Expect(items).To(HaveLen(1))
		Expect(items[0].Quantity).To(Equal(2))
		Expect(items[0].UnitPrice).To(HaveValue(Equal(598)))
		Expect(items[0].TotalPrice).To(Equal(1196))
	})

	It("defaults quantity to 1 and unit price to the total", func() {
		items := extractItems([]string{"おにぎり ¥140"}, cfg)
		Expect(items).To(HaveLen(1))
		Expect(items[0].Name).To(HaveValue(Equal("おにぎり")))
		Expect(items[0].Quantity).To(Equal(1))
		Expect(items[0].UnitPrice).To(HaveValue(Equal(140)))
	})

	It("rejects amounts below the sanity band", func() {
		Expect(extractItems([]string{"レジ袋 ¥50"}, cfg)).To(BeEmpty())
	})

	It("rejects amounts above the sanity band", func() {
		Expect(extractItems([]string{"ギフト券 ¥500,000"}, cfg)).To(BeEmpty())
	})

	It("never treats labeled monetary lines as items", func() {
		items := extractItems([]string{
			"お弁当 ¥598",
			"小計 ¥598",
			"合計 ¥598",
		}, cfg)
		Expect(items).To(HaveLen(1))
		Expect(items[0].Name).To(HaveValue(Equal("お弁当")))
	})

	It("derives the name from a prior line when the price stands alone", func() {
		items := extractItems([]string{
			"ポテトチップス うすしお",
			"¥158",
		}, cfg)
		Expect(items).To(HaveLen(1))
		Expect(items[0].Name).To(HaveValue(Equal("ポテトチップス うすしお")))
	})

	It("skips digit runs and code tokens while walking back for a name", func() {
		items := extractItems([]string{
			"チョコレート",
			"4901330573396",
			"ABC-123",
			"¥216",
		}, cfg)
		Expect(items).To(HaveLen(1))
		Expect(items[0].Name).To(HaveValue(Equal("チョコレート")))
	})

	It("emits a nameless item when no prior line qualifies", func() {
		items := extractItems([]string{"¥500"}, cfg)
		Expect(items).To(HaveLen(1))
		Expect(items[0].Name).To(BeNil())
	})

	It("discards a candidate whose derived name is whitespace", func() {
		Expect(extractItems([]string{"   ", "¥500"}, cfg)).To(BeEmpty())
	})

	It("finds a product code in the backward window", func() {
		items := extractItems([]string{
			"4901330573396",
			"ポテトチップス ¥158",
		}, cfg)
		Expect(items).To(HaveLen(1))
		Expect(items[0].ProductCode).To(HaveValue(Equal("4901330573396")))
	})

	It("finds a product code in the forward window, marker suffix tolerated", func() {
		items := extractItems([]string{
			"ポテトチップス ¥158",
			"4901330573396T",
		}, cfg)
		Expect(items).To(HaveLen(1))
		Expect(items[0].ProductCode).To(HaveValue(Equal("4901330573396")))
	})

	It("leaves the code nil outside the windows", func() {
		items := extractItems([]string{"お茶 ¥150"}, cfg)
		Expect(items).To(HaveLen(1))
		Expect(items[0].ProductCode).To(BeNil())
	})

	It("caps the item list", func() {
		lines := make([]string, 0, 30)
		for i := 0; i < 30; i++ {
			lines = append(lines, fmt.Sprintf("商品%d ¥%d", i, 200+i))
		}
		items := extractItems(lines, cfg)
		Expect(items).To(HaveLen(cfg.MaxItems))
	})
})
