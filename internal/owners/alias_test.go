package owners_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/pkghealth/internal/owners"
)

var _ = Describe("Alias", func() {
	Describe("ParseAlias", func() {
		It("should keep packages of the requested namespace", func() {
			alias, err := owners.ParseAlias([]byte(`{
				"rpms": {"foo": ["alice", "bob"], "bar": ["carol"]},
				"modules": {"baz": ["alice"]}
			}`), owners.DefaultNamespace)
			Expect(err).NotTo(HaveOccurred())
			Expect(alias.Len()).To(Equal(2))

			Expect(alias.OwnedBy("bob")).To(Equal([]string{"foo"}))
			Expect(alias.OwnedBy("alice")).To(Equal([]string{"foo"}))
		})

		It("should fail when the namespace is missing", func() {
			_, err := owners.ParseAlias([]byte(`{"modules": {}}`), owners.DefaultNamespace)
			Expect(err).To(MatchError(owners.ErrNamespaceMissing))
		})

		It("should fail on malformed owner lists", func() {
			_, err := owners.ParseAlias([]byte(`{"rpms": {"foo": "alice"}}`), owners.DefaultNamespace)
			Expect(err).To(HaveOccurred())
		})

		It("should fail on malformed documents", func() {
			_, err := owners.ParseAlias([]byte(`[]`), owners.DefaultNamespace)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("OwnedBy", func() {
		It("should return the packages a user owns", func() {
			alias, err := owners.ParseAlias([]byte(`{"rpms": {"foo": ["alice","bob"], "bar": ["carol"]}}`), "rpms")
			Expect(err).NotTo(HaveOccurred())
			Expect(alias.OwnedBy("alice")).To(Equal([]string{"foo"}))
		})

		It("should follow document order", func() {
			alias, err := owners.ParseAlias([]byte(`{"rpms": {"zsh": ["alice"], "bash": ["bob"], "awk": ["alice"]}}`), "rpms")
			Expect(err).NotTo(HaveOccurred())
			Expect(alias.OwnedBy("alice")).To(Equal([]string{"zsh", "awk"}))
		})

		It("should return nothing for an unknown user", func() {
			alias, err := owners.ParseAlias([]byte(`{"rpms": {"foo": ["alice"]}}`), "rpms")
			Expect(err).NotTo(HaveOccurred())
			Expect(alias.OwnedBy("mallory")).To(BeEmpty())
		})

		It("should list a package once even if the document repeats it", func() {
			alias, err := owners.ParseAlias([]byte(`{"rpms": {"foo": ["bob"], "bar": ["alice"], "foo": ["alice"]}}`), "rpms")
			Expect(err).NotTo(HaveOccurred())
			Expect(alias.OwnedBy("alice")).To(Equal([]string{"foo", "bar"}))
		})
	})
})
