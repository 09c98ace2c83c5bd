package healthcheck_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gopkg.in/yaml.v3"

	"github.com/angeloszaimis/pkghealth/internal/healthcheck"
)

var _ = Describe("Record", func() {
	var rec healthcheck.Record

	BeforeEach(func() {
		err := json.Unmarshal([]byte(`{"package": "pkgA", "severity": "high", "broken": ["x", "y"], "meta": {"n": 1}}`), &rec)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should expose the package name", func() {
		Expect(rec.Package()).To(Equal("pkgA"))
	})

	It("should keep field order", func() {
		var names []string
		for _, f := range rec.Fields() {
			names = append(names, f.Name)
		}
		Expect(names).To(Equal([]string{"package", "severity", "broken", "meta"}))
	})

	It("should return raw values", func() {
		v, ok := rec.Get("severity")
		Expect(ok).To(BeTrue())
		Expect(string(v)).To(Equal(`"high"`))

		_, ok = rec.Get("missing")
		Expect(ok).To(BeFalse())
	})

	It("should marshal to compact JSON in field order", func() {
		b, err := json.Marshal(rec)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(Equal(`{"package":"pkgA","severity":"high","broken":["x","y"],"meta":{"n":1}}`))
		Expect(rec.String()).To(Equal(string(b)))
	})

	It("should marshal to block YAML in field order", func() {
		b, err := yaml.Marshal(rec)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).NotTo(ContainSubstring("{"))
		Expect(string(b)).NotTo(ContainSubstring("["))

		var doc yaml.Node
		Expect(yaml.Unmarshal(b, &doc)).To(Succeed())
		top := doc.Content[0]
		var keys []string
		for i := 0; i < len(top.Content); i += 2 {
			keys = append(keys, top.Content[i].Value)
		}
		Expect(keys).To(Equal([]string{"package", "severity", "broken", "meta"}))

		var decoded map[string]any
		Expect(yaml.Unmarshal(b, &decoded)).To(Succeed())
		Expect(decoded).To(HaveKeyWithValue("broken", []any{"x", "y"}))
		Expect(decoded).To(HaveKeyWithValue("meta", map[string]any{"n": 1}))
	})

	It("should report an empty package for non-string names", func() {
		var odd healthcheck.Record
		Expect(json.Unmarshal([]byte(`{"package": 42}`), &odd)).To(Succeed())
		Expect(odd.Package()).To(BeEmpty())
	})

	It("should let a repeated field overwrite in place", func() {
		var dup healthcheck.Record
		Expect(json.Unmarshal([]byte(`{"package": "a", "x": 1, "package": "b"}`), &dup)).To(Succeed())
		Expect(dup.Package()).To(Equal("b"))
		Expect(dup.Fields()).To(HaveLen(2))
	})

	It("should reject non-object records", func() {
		var bad healthcheck.Record
		Expect(json.Unmarshal([]byte(`"pkgA"`), &bad)).NotTo(Succeed())
	})
})
