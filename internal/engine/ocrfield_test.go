package engine

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NormalizeFields", func() {
	When("fields arrive out of reading order", func() {
		var lines []string

		BeforeEach(func() {
			lines = NormalizeFields([]OcrField{
				{Text: "合計 ¥1,196", Confidence: 0.9, TopY: 300, LeftX: 10},
				{Text: "セブン-イレブン 渋谷店", Confidence: 0.95, TopY: 10, LeftX: 12},
				{Text: "おにぎり", Confidence: 0.8, TopY: 120, LeftX: 8},
			}, 0.5)
		})

		It("sorts by vertical position ascending", func() {
			Expect(lines).To(Equal([]string{
				"セブン-イレブン 渋谷店",
				"おにぎり",
				"合計 ¥1,196",
			}))
		})
	})

	When("fields share a vertical position", func() {
		It("breaks the tie by horizontal position", func() {
			lines := NormalizeFields([]OcrField{
				{Text: "¥598", Confidence: 0.9, TopY: 50, LeftX: 200},
				{Text: "おにぎり", Confidence: 0.9, TopY: 50, LeftX: 10},
			}, 0.5)
			Expect(lines).To(Equal([]string{"おにぎり", "¥598"}))
		})
	})

	When("a field falls below the confidence threshold", func() {
		It("is discarded", func() {
			lines := NormalizeFields([]OcrField{
				{Text: "ノイズ", Confidence: 0.3, TopY: 10, LeftX: 0},
				{Text: "おにぎり", Confidence: 0.7, TopY: 20, LeftX: 0},
			}, 0.5)
			Expect(lines).To(Equal([]string{"おにぎり"}))
		})
	})

	When("the input is empty", func() {
		It("yields an empty output without raising", func() {
			Expect(NormalizeFields(nil, 0.5)).To(BeEmpty())
		})
	})
})

var _ = Describe("FlattenFields", func() {
	It("joins the normalized reading order with newlines", func() {
		text := FlattenFields([]OcrField{
			{Text: "¥1,196", Confidence: 0.9, TopY: 40, LeftX: 0},
			{Text: "おにぎり", Confidence: 0.9, TopY: 20, LeftX: 0},
		}, 0.5)
		Expect(text).To(Equal("おにぎり\n¥1,196"))
	})
})
