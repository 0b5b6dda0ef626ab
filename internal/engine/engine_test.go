package engine

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Parser", func() {
	var parser *Parser

	BeforeEach(func() {
		parser = NewParser(Config{}, nil)
	})

	Describe("ParseText", func() {
		When("given a full convenience-store receipt", func() {
			var r ParsedReceipt

			BeforeEach(func() {
				r = parser.ParseText(`セブン-イレブン 渋谷店
2023年08月27日(日)21:48
おにぎり ツナマヨ ¥140
4901330573396
2コ×単598
¥1,196
小計 ¥1,336
クーポン割引 ¥100
合計 ¥1,236`)
			})

			It("extracts every header field", func() {
				Expect(r.StoreName).To(HaveValue(Equal("セブン-イレブン 渋谷店")))
				Expect(r.Date).To(HaveValue(Equal("2023-08-27")))
				Expect(r.Time).To(HaveValue(Equal("21:48")))
			})

			It("extracts the monetary fields", func() {
				Expect(r.TotalAmount).To(HaveValue(Equal(1236)))
				Expect(r.Subtotal).To(HaveValue(Equal(1336)))
				Expect(r.Discount).To(HaveValue(Equal(-100)))
			})

			It("reconstructs the purchases", func() {
				Expect(r.Items).To(HaveLen(2))
				Expect(r.Items[0].Name).To(HaveValue(Equal("おにぎり ツナマヨ")))
				Expect(r.Items[0].TotalPrice).To(Equal(140))
				Expect(r.Items[1].Quantity).To(Equal(2))
				Expect(r.Items[1].UnitPrice).To(HaveValue(Equal(598)))
				Expect(r.Items[1].TotalPrice).To(Equal(1196))
			})

			It("stamps currency and a high confidence", func() {
				Expect(r.Currency).To(Equal("JPY"))
				Expect(r.Confidence).To(BeNumerically(">=", 0.8))
			})
		})

		When("given empty text", func() {
			It("returns an empty receipt, not an error", func() {
				r := parser.ParseText("")
				Expect(r.StoreName).To(BeNil())
				Expect(r.Date).To(BeNil())
				Expect(r.TotalAmount).To(BeNil())
				Expect(r.Items).To(BeEmpty())
				Expect(r.Currency).To(Equal("JPY"))
			})
		})
	})

	Describe("ParseFields", func() {
		It("orders fields before extraction", func() {
			r := parser.ParseFields([]OcrField{
				{Text: "合計 ¥1,196", Confidence: 0.9, TopY: 200, LeftX: 0},
				{Text: "テスト商店", Confidence: 0.9, TopY: 10, LeftX: 0},
			})
			Expect(r.StoreName).To(HaveValue(Equal("テスト商店")))
			Expect(r.TotalAmount).To(HaveValue(Equal(1196)))
		})

		It("tolerates an empty field list", func() {
			r := parser.ParseFields(nil)
			Expect(r.Items).To(BeEmpty())
			Expect(r.Confidence).To(BeZero())
		})
	})
})

var _ = Describe("NormalizeText", func() {
	It("collapses CRLF, tabs, and repeated blanks", func() {
		Expect(NormalizeText("a\r\nb\t\tc   d\n\n\n\ne")).To(Equal("a\nb c d\n\ne"))
	})
})

var _ = Describe("SplitLines", func() {
	It("drops empty lines and trims the rest", func() {
		Expect(SplitLines("  おにぎり  \n\n ¥140 ")).To(Equal([]string{"おにぎり", "¥140"}))
	})
})
