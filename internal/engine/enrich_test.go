package engine

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Enrich", func() {
	It("rounds half-up when converting", func() {
		r := ParsedReceipt{TotalAmount: intPtr(217), Currency: "JPY"}
		out := Enrich(r, 8.83)
		Expect(out.TotalAmountLocal).To(HaveValue(Equal(1916)))
		Expect(out.ExchangeRate).To(Equal(8.83))
	})

	It("propagates nil fields as nil, never zero", func() {
		r := ParsedReceipt{TotalAmount: intPtr(1000), Currency: "JPY"}
		out := Enrich(r, 8.83)
		Expect(out.Subtotal).To(BeNil())
		Expect(out.SubtotalLocal).To(BeNil())
		Expect(out.Discount).To(BeNil())
		Expect(out.DiscountLocal).To(BeNil())
	})

	It("converts item prices alongside the source values", func() {
		r := ParsedReceipt{
			Currency: "JPY",
			Items: []LineItem{
				{Name: strPtr("お弁当"), Quantity: 2, UnitPrice: intPtr(598), TotalPrice: 1196},
			},
		}
		out := Enrich(r, 8.83)
		Expect(out.Items).To(HaveLen(1))
		Expect(out.Items[0].TotalPriceLocal).To(Equal(10561)) // round(1196 * 8.83)
		Expect(out.Items[0].UnitPriceLocal).To(HaveValue(Equal(5280)))
		Expect(out.Items[0].TotalPrice).To(Equal(1196))
	})

	It("keeps the discount sign", func() {
		r := ParsedReceipt{Discount: intPtr(-200), Currency: "JPY"}
		out := Enrich(r, 8.83)
		Expect(out.DiscountLocal).To(HaveValue(Equal(-1766)))
	})

	It("does not mutate the source receipt", func() {
		r := ParsedReceipt{
			TotalAmount: intPtr(217),
			Currency:    "JPY",
			Items:       []LineItem{{Quantity: 1, TotalPrice: 500}},
		}
		_ = Enrich(r, 8.83)
		Expect(*r.TotalAmount).To(Equal(217))
		Expect(r.Items[0].TotalPrice).To(Equal(500))
	})

	It("is idempotent for a fixed rate", func() {
		r := ParsedReceipt{
			StoreName:   strPtr("テスト店"),
			TotalAmount: intPtr(217),
			Discount:    intPtr(-50),
			Currency:    "JPY",
			Items:       []LineItem{{Quantity: 1, UnitPrice: intPtr(217), TotalPrice: 217}},
		}
		Expect(Enrich(r, 8.83)).To(Equal(Enrich(r, 8.83)))
	})
})
