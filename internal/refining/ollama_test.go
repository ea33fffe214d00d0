package refining

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/fridgelab/fridge-tracker/internal/scanning"
)

var _ = Describe("Ollama", func() {
	var (
		server  *ghttp.Server
		refiner *Ollama
		items   scanning.Items
		result  scanning.Items
		err     error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		var newErr error
		refiner, newErr = NewOllama(server.URL(), "llama3.2")
		Expect(newErr).NotTo(HaveOccurred())

		items = scanning.Items{"porc": 0.5, "lait": 1}
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		result, err = refiner.Refine(items)
	})

	When("the model returns a clean JSON object", func() {
		BeforeEach(func() {
			server.AppendHandlers(
				ghttp.CombineHandlers(
					ghttp.VerifyRequest("POST", "/api/generate"),
					ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
						"response": `{"pork": 0.5, "milk": 1.0}`,
						"done":     true,
					}),
				),
			)
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return the refined items", func() {
			Expect(result).To(Equal(scanning.Items{"pork": 0.5, "milk": 1.0}))
		})
	})

	When("the model wraps its reply in markdown", func() {
		BeforeEach(func() {
			server.AppendHandlers(
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
					"response": "```json\n{\"bread\": 1}\n```",
					"done":     true,
				}),
			)
		})

		It("should still parse the items", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(HaveKeyWithValue("bread", 1.0))
		})
	})

	When("the API returns a non-200 status", func() {
		BeforeEach(func() {
			server.AppendHandlers(
				ghttp.RespondWith(http.StatusInternalServerError, "model not loaded"),
			)
		})

		It("should return an error", func() {
			Expect(err).To(HaveOccurred())
		})
	})

	When("the model reply is not JSON", func() {
		BeforeEach(func() {
			server.AppendHandlers(
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
					"response": "I could not process that list",
					"done":     true,
				}),
			)
		})

		It("should return an error", func() {
			Expect(err).To(HaveOccurred())
		})
	})
})
