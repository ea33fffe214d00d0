package scanning

import (
	"errors"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

// tinyPNG is a 1x1 PNG so prepareImageData passes data through untouched
var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

var _ = Describe("Tabscanner", func() {
	var (
		server  *ghttp.Server
		scanner *Tabscanner
		slept   []time.Duration
		items   Items
		err     error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		var newErr error
		scanner, newErr = NewTabscanner(server.URL(), "test-key", 2, time.Millisecond)
		Expect(newErr).NotTo(HaveOccurred())

		slept = nil
		scanner.sleep = func(d time.Duration) {
			slept = append(slept, d)
		}
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		items, err = scanner.ScanReceipt(tinyPNG, "image/png")
	})

	When("the scan succeeds on the first poll", func() {
		BeforeEach(func() {
			server.AppendHandlers(
				ghttp.CombineHandlers(
					ghttp.VerifyRequest("POST", "/api/2/process"),
					ghttp.VerifyHeaderKV("apikey", "test-key"),
					ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{"token": "tok-1"}),
				),
				ghttp.CombineHandlers(
					ghttp.VerifyRequest("GET", "/api/result/tok-1"),
					ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
						"status": "Success",
						"result": map[string]any{
							"lineItems": []any{
								map[string]any{"descClean": "LAIT", "qty": 1.0},
								map[string]any{"descClean": "LAIT", "qty": 1.0},
							},
						},
					}),
				),
			)
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should sum duplicate lines for the same product", func() {
			Expect(items).To(HaveKeyWithValue("lait", 2.0))
		})

		It("should sleep before the first poll", func() {
			Expect(slept).To(HaveLen(1))
		})
	})

	When("the provider reports the token under id", func() {
		BeforeEach(func() {
			server.AppendHandlers(
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{"id": "tok-2"}),
				ghttp.CombineHandlers(
					ghttp.VerifyRequest("GET", "/api/result/tok-2"),
					ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
						"status": "done",
						"result": map[string]any{"lineItems": []any{}},
					}),
				),
			)
		})

		It("should accept the alternate token field", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
		})
	})

	When("the upload response has no token", func() {
		BeforeEach(func() {
			server.AppendHandlers(
				ghttp.RespondWithJSONEncoded(http.StatusBadRequest, map[string]any{"message": "bad image"}),
			)
		})

		It("should fail with ErrUploadFailed", func() {
			Expect(errors.Is(err, ErrUploadFailed)).To(BeTrue())
		})

		It("should never poll", func() {
			Expect(server.ReceivedRequests()).To(HaveLen(1))
		})
	})

	When("the poll budget is exhausted", func() {
		BeforeEach(func() {
			server.AppendHandlers(
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{"token": "tok-3"}),
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{"status": "pending"}),
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{"status": "processing"}),
			)
		})

		It("should fail with ErrTimeout", func() {
			Expect(errors.Is(err, ErrTimeout)).To(BeTrue())
		})

		It("should stop at the attempt ceiling", func() {
			// 1 upload + 2 polls, no extra retries
			Expect(server.ReceivedRequests()).To(HaveLen(3))
		})
	})

	When("the terminal status uses unusual casing", func() {
		BeforeEach(func() {
			server.AppendHandlers(
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{"token": "tok-4"}),
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
					"status": "COMPLETED",
					"result": map[string]any{},
				}),
			)
		})

		It("should treat the status as terminal", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
		})
	})
})
