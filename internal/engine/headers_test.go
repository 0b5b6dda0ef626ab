package engine

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("extractStoreName", func() {
	It("prefers lines ending in a store-type suffix", func() {
		name := extractStoreName([]string{
			"領収書",
			"セブン-イレブン 渋谷店",
			"東京都渋谷区1-2-3",
		})
		Expect(name).To(HaveValue(Equal("セブン-イレブン 渋谷店")))
	})

	It("falls back to chain keywords", func() {
		name := extractStoreName([]string{
			"2023/08/27",
			"ファミリーマート 新宿三丁目",
		})
		Expect(name).To(HaveValue(Equal("ファミリーマート 新宿三丁目")))
	})

	It("falls back to the first non-numeric, non-currency line", func() {
		name := extractStoreName([]string{
			"2023/08/27 21:48",
			"¥1,196",
			"ごはん処 大盛亭",
		})
		Expect(name).To(HaveValue(Equal("ごはん処 大盛亭")))
	})

	It("is nil when nothing qualifies, never guessed", func() {
		Expect(extractStoreName([]string{"123456", "¥500"})).To(BeNil())
	})
})

var _ = Describe("extractDate", func() {
	It("normalizes YYYY/MM/DD", func() {
		Expect(extractDate([]string{"2023/08/27 21:48"})).To(HaveValue(Equal("2023-08-27")))
	})

	It("normalizes MM/DD/YYYY", func() {
		Expect(extractDate([]string{"08/27/2023"})).To(HaveValue(Equal("2023-08-27")))
	})

	It("normalizes the localized form with trailing noise", func() {
		Expect(extractDate([]string{"2023年08月27日(日)21:48"})).To(HaveValue(Equal("2023-08-27")))
	})

	It("takes the first match across all lines", func() {
		Expect(extractDate([]string{
			"お買上げ 2023-08-27",
			"お支払期限 2023-09-30",
		})).To(HaveValue(Equal("2023-08-27")))
	})

	It("rejects impossible calendar values", func() {
		Expect(extractDate([]string{"2023/13/45"})).To(BeNil())
	})

	It("is nil when no line carries a date", func() {
		Expect(extractDate([]string{"合計 ¥1,196"})).To(BeNil())
	})
})

var _ = Describe("extractTime", func() {
	It("zero-pads and drops seconds", func() {
		Expect(extractTime([]string{"9:05:33"})).To(HaveValue(Equal("09:05")))
	})

	It("reads the time off a combined date line", func() {
		Expect(extractTime([]string{"2023年08月27日(日)21:48"})).To(HaveValue(Equal("21:48")))
	})

	It("skips impossible clock values", func() {
		Expect(extractTime([]string{"99:99"})).To(BeNil())
	})
})
