package aiparse

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExtractJSONObject", func() {
	It("accepts a bare JSON object", func() {
		b, err := ExtractJSONObject(`{"currency": "JPY", "items": []}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(Equal(`{"currency": "JPY", "items": []}`))
	})

	It("strips markdown code fences", func() {
		b, err := ExtractJSONObject("```json\n{\"currency\": \"JPY\"}\n```")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(Equal(`{"currency": "JPY"}`))
	})

	It("ignores prose around the object", func() {
		b, err := ExtractJSONObject("Here is the receipt:\n{\"currency\": \"JPY\"}\nLet me know!")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(Equal(`{"currency": "JPY"}`))
	})

	It("fails when no object is present", func() {
		_, err := ExtractJSONObject("I could not read the receipt.")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("SanitizeReceiptPayload", func() {
	It("coerces decimal and string amounts to integers", func() {
		b, _, err := SanitizeReceiptPayload([]byte(`{"currency":"jpy","total_amount":1236.0,"subtotal":"1,336","items":[]}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(MatchJSON(`{"currency":"JPY","total_amount":1236,"subtotal":1336,"items":[]}`))
	})

	It("forces the discount negative", func() {
		b, _, err := SanitizeReceiptPayload([]byte(`{"currency":"JPY","discount":100,"items":[]}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(MatchJSON(`{"currency":"JPY","discount":-100,"items":[]}`))
	})

	It("drops amounts it cannot repair", func() {
		b, dropped, err := SanitizeReceiptPayload([]byte(`{"currency":"JPY","total_amount":"unknown","items":[]}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(dropped).To(ContainElement("total_amount"))
		Expect(string(b)).To(MatchJSON(`{"currency":"JPY","items":[]}`))
	})

	It("repairs item quantities and prices", func() {
		b, _, err := SanitizeReceiptPayload([]byte(`{"currency":"JPY","items":[{"name":"お弁当","quantity":0,"total_price":598.0,"unit_price":"598"}]}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(MatchJSON(`{"currency":"JPY","items":[{"name":"お弁当","quantity":1,"total_price":598,"unit_price":598}]}`))
	})

	It("discards items without a usable total price", func() {
		b, _, err := SanitizeReceiptPayload([]byte(`{"currency":"JPY","items":[{"name":"?","total_price":null}]}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(MatchJSON(`{"currency":"JPY","items":[]}`))
	})
})

var _ = Describe("DecodeReceiptPayload", func() {
	It("decodes a full payload", func() {
		rec, err := DecodeReceiptPayload([]byte(`{
			"store_name": "セブン-イレブン 渋谷店",
			"date": "2023-08-27",
			"time": "21:48",
			"total_amount": 1236,
			"subtotal": 1336,
			"discount": -100,
			"items": [{"name": "お弁当", "quantity": 2, "unit_price": 598, "total_price": 1196, "product_code": null}],
			"currency": "JPY",
			"confidence": 0.9
		}`), "JPY", 20)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.StoreName).To(HaveValue(Equal("セブン-イレブン 渋谷店")))
		Expect(rec.TotalAmount).To(HaveValue(Equal(1236)))
		Expect(rec.Items).To(HaveLen(1))
		Expect(rec.Items[0].Quantity).To(Equal(2))
	})

	It("defaults the currency and caps the items", func() {
		rec, err := DecodeReceiptPayload([]byte(`{"items":[{"quantity":1,"total_price":100},{"quantity":1,"total_price":200}]}`), "JPY", 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Currency).To(Equal("JPY"))
		Expect(rec.Items).To(HaveLen(1))
	})

	It("never returns a nil item list", func() {
		rec, err := DecodeReceiptPayload([]byte(`{"currency":"JPY"}`), "JPY", 20)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Items).NotTo(BeNil())
	})
})

var _ = Describe("ValidateAgainstSchema", func() {
	schema := BuildReceiptSchema(20)

	It("accepts a sanitized payload", func() {
		doc := []byte(`{"currency":"JPY","total_amount":1236,"items":[{"quantity":1,"total_price":598}]}`)
		Expect(ValidateAgainstSchema(schema, doc)).To(Succeed())
	})

	It("rejects a positive discount", func() {
		doc := []byte(`{"currency":"JPY","discount":100,"items":[]}`)
		Expect(ValidateAgainstSchema(schema, doc)).NotTo(Succeed())
	})

	It("rejects a malformed date", func() {
		doc := []byte(`{"currency":"JPY","date":"27-08-2023","items":[]}`)
		Expect(ValidateAgainstSchema(schema, doc)).NotTo(Succeed())
	})
})
