package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/pkghealth/pkg/logger"
)

var _ = Describe("Logger", func() {
	var (
		buf *bytes.Buffer
		ctx context.Context
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		ctx = context.Background()
	})

	Describe("New", func() {
		It("should default to info for an invalid level", func() {
			log := logger.New(logger.Options{Level: "invalid", Environment: "dev", Output: buf})
			Expect(log.Enabled(ctx, slog.LevelInfo)).To(BeTrue())
			Expect(log.Enabled(ctx, slog.LevelDebug)).To(BeFalse())
		})

		It("should respect debug level", func() {
			log := logger.New(logger.Options{Level: "debug", Environment: "dev", Output: buf})
			Expect(log.Enabled(ctx, slog.LevelDebug)).To(BeTrue())
		})

		It("should respect warn level", func() {
			log := logger.New(logger.Options{Level: "warn", Environment: "dev", Output: buf})
			Expect(log.Enabled(ctx, slog.LevelInfo)).To(BeFalse())
			Expect(log.Enabled(ctx, slog.LevelWarn)).To(BeTrue())
		})

		It("should respect error level", func() {
			log := logger.New(logger.Options{Level: "error", Environment: "dev", Output: buf})
			Expect(log.Enabled(ctx, slog.LevelWarn)).To(BeFalse())
			Expect(log.Enabled(ctx, slog.LevelError)).To(BeTrue())
		})

		It("should write text with the environment attribute in dev", func() {
			log := logger.New(logger.Options{Level: "info", Environment: "dev", Output: buf})
			log.Warn("Healthcheck 30 returned error 404")

			Expect(buf.String()).To(ContainSubstring(`msg="Healthcheck 30 returned error 404"`))
			Expect(buf.String()).To(ContainSubstring("environment=dev"))
		})

		It("should write JSON in prod", func() {
			log := logger.New(logger.Options{Level: "info", Environment: "prod", Output: buf})
			log.Info("hello")

			var entry map[string]any
			Expect(json.Unmarshal(buf.Bytes(), &entry)).To(Succeed())
			Expect(entry).To(HaveKeyWithValue("msg", "hello"))
			Expect(entry).To(HaveKeyWithValue("environment", "prod"))
		})

		It("should mirror records into the log file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "pkghealth.log")
			log := logger.New(logger.Options{
				Level:       "info",
				Environment: "dev",
				Output:      buf,
				File:        logger.FileOptions{Path: path, MaxSize: 1},
			})
			log.Info("to both")

			Expect(buf.String()).To(ContainSubstring("to both"))
			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("to both"))
		})
	})
})
