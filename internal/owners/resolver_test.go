package owners_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/angeloszaimis/pkghealth/internal/httpclient"
	"github.com/angeloszaimis/pkghealth/internal/owners"
)

var _ = Describe("Resolver", func() {
	var (
		server   *ghttp.Server
		resolver *owners.Resolver
		ctx      context.Context
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		ctx = context.Background()
		log := slog.New(slog.NewTextHandler(io.Discard, nil))
		client := httpclient.New(httpclient.Options{Timeout: time.Second, Logger: log})
		resolver = owners.NewResolver(client, server.URL()+"/extras/pagure_owner_alias.json", "", log)
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("PackagesOwnedBy", func() {
		It("should return the user's packages", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodGet, "/extras/pagure_owner_alias.json"),
				ghttp.RespondWith(http.StatusOK, `{"rpms": {"foo": ["alice","bob"], "bar": ["carol"]}}`),
			))

			pkgs, err := resolver.PackagesOwnedBy(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(pkgs).To(Equal([]string{"foo"}))
		})

		It("should propagate HTTP errors", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, ""))

			_, err := resolver.PackagesOwnedBy(ctx, "alice")
			Expect(err).To(HaveOccurred())

			se, ok := httpclient.IsStatusError(err)
			Expect(ok).To(BeTrue())
			Expect(se.StatusCode).To(Equal(http.StatusInternalServerError))
		})
	})
})

var _ = Describe("CurrentUser", func() {
	It("should prefer LOGNAME", func() {
		GinkgoT().Setenv("LOGNAME", "alice")
		GinkgoT().Setenv("USER", "bob")

		user, err := owners.CurrentUser()
		Expect(err).NotTo(HaveOccurred())
		Expect(user).To(Equal("alice"))
	})

	It("should fall through empty variables", func() {
		GinkgoT().Setenv("LOGNAME", "")
		GinkgoT().Setenv("USER", "")
		GinkgoT().Setenv("LNAME", "carol")

		user, err := owners.CurrentUser()
		Expect(err).NotTo(HaveOccurred())
		Expect(user).To(Equal("carol"))
	})
})
