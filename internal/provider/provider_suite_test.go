package provider_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mcpchat/mcpchat/internal/provider"
)

func TestProviderSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Provider Suite")
}

func mockConfig() *MockLLMConfig {
	return &MockLLMConfig{
		Responses: map[string]MockResponse{
			"hello": {
				Content: "Hi there",
			},
			"what number": {
				Content: "The number is 42.",
			},
			"add": {
				ToolCalls: []MockToolCall{
					{
						ID:   "call_sum_001",
						Type: "function",
						Function: MockFunctionCall{
							Name:      "toolbox_sum",
							Arguments: `{"numbers":[2,2]}`,
						},
					},
				},
			},
		},
		Defaults: MockDefaults{
			Fallback: "I understand your request.",
		},
	}
}

var sumTool = &schema.ToolInfo{
	Name: "toolbox_sum",
	Desc: "Calculates the sum of an array of numbers",
	ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
		"numbers": {Type: schema.Array, ElemInfo: &schema.ParameterInfo{Type: schema.Number}, Required: true},
	}),
}

var _ = Describe("OpenAI-compatible backends with MockLLM", func() {
	var (
		ctx        context.Context
		mockServer *MockLLMServer
		backend    provider.Backend
	)

	for _, id := range []string{"groq", "openai"} {
		id := id

		Context(id, func() {
			BeforeEach(func() {
				ctx = context.Background()
				mockServer = NewMockLLMServer(mockConfig())

				temperature := 0.7
				var err error
				backend, err = provider.Configure(ctx, provider.Config{
					Provider:    id,
					APIKey:      "mock-api-key",
					BaseURL:     mockServer.URL(),
					Temperature: &temperature,
				})
				Expect(err).NotTo(HaveOccurred())
			})

			AfterEach(func() {
				mockServer.Close()
			})

			It("reports its provider and default model", func() {
				Expect(backend.ID()).To(Equal(id))
				Expect(backend.Model()).NotTo(BeEmpty())
			})

			It("returns the model reply", func() {
				msg, err := backend.Generate(ctx, []*schema.Message{
					schema.SystemMessage("You are helpful."),
					schema.UserMessage("Hello"),
				}, nil)
				Expect(err).NotTo(HaveOccurred())
				Expect(msg.Role).To(Equal(schema.Assistant))
				Expect(msg.Content).To(Equal("Hi there"))
			})

			It("sends prior turns with the request", func() {
				_, err := backend.Generate(ctx, []*schema.Message{
					schema.UserMessage("Remember the number 42"),
					schema.AssistantMessage("I'll remember that.", nil),
					schema.UserMessage("What number did I say?"),
				}, nil)
				Expect(err).NotTo(HaveOccurred())

				requests := mockServer.GetRequests()
				Expect(requests).To(HaveLen(1))
				Expect(requests[0].Body["messages"]).To(HaveLen(3))
				Expect(requests[0].Body["temperature"]).To(BeNumerically("~", 0.7, 0.001))
				Expect(requests[0].Headers.Get("Authorization")).To(Equal("Bearer mock-api-key"))
			})

			It("binds tools and returns tool calls", func() {
				msg, err := backend.Generate(ctx, []*schema.Message{
					schema.UserMessage("add 2 and 2"),
				}, []*schema.ToolInfo{sumTool})
				Expect(err).NotTo(HaveOccurred())
				Expect(msg.ToolCalls).To(HaveLen(1))
				Expect(msg.ToolCalls[0].ID).To(Equal("call_sum_001"))
				Expect(msg.ToolCalls[0].Function.Name).To(Equal("toolbox_sum"))
				Expect(msg.ToolCalls[0].Function.Arguments).To(MatchJSON(`{"numbers":[2,2]}`))

				requests := mockServer.GetRequests()
				Expect(requests).To(HaveLen(1))
				Expect(requests[0].Body).To(HaveKey("tools"))
			})
		})
	}

	Context("when the provider fails", func() {
		BeforeEach(func() {
			ctx = context.Background()
			cfg := mockConfig()
			cfg.Settings.FailStatus = 400
			mockServer = NewMockLLMServer(cfg)

			var err error
			backend, err = provider.Configure(ctx, provider.Config{
				Provider: "groq",
				Model:    "llama3-8b-8192",
				APIKey:   "mock-api-key",
				BaseURL:  mockServer.URL(),
			})
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			mockServer.Close()
		})

		It("returns a BackendError", func() {
			_, err := backend.Generate(ctx, []*schema.Message{schema.UserMessage("Hello")}, nil)
			Expect(err).To(HaveOccurred())

			var backendErr *provider.BackendError
			Expect(errors.As(err, &backendErr)).To(BeTrue())
			Expect(backendErr.Provider).To(Equal("groq"))
			Expect(backendErr.Model).To(Equal("llama3-8b-8192"))
		})
	})
})

var _ = Describe("Anthropic backend with MockLLM", func() {
	var (
		ctx        context.Context
		mockServer *MockLLMServer
		backend    provider.Backend
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockServer = NewMockLLMServer(mockConfig())

		var err error
		backend, err = provider.Configure(ctx, provider.Config{
			Provider:  "anthropic",
			APIKey:    "mock-api-key",
			BaseURL:   mockServer.URL(),
			MaxTokens: 1024,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		mockServer.Close()
	})

	It("returns the model reply", func() {
		msg, err := backend.Generate(ctx, []*schema.Message{schema.UserMessage("Hello")}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Content).To(Equal("Hi there"))

		requests := mockServer.GetRequests()
		Expect(requests).To(HaveLen(1))
		Expect(requests[0].Path).To(Equal("/v1/messages"))
		Expect(requests[0].Body["max_tokens"]).To(BeNumerically("==", 1024))
	})
})

var _ = Describe("ARK backend with MockLLM", func() {
	var (
		ctx        context.Context
		mockServer *MockLLMServer
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockServer = NewMockLLMServer(mockConfig())
	})

	AfterEach(func() {
		mockServer.Close()
	})

	It("requires an endpoint ID", func() {
		_, err := provider.Configure(ctx, provider.Config{
			Provider: "ark",
			APIKey:   "mock-api-key",
			BaseURL:  mockServer.URL(),
		})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("endpoint ID"))
	})

	It("returns the model reply", func() {
		backend, err := provider.Configure(ctx, provider.Config{
			Provider: "ark",
			Model:    "mock-ark-endpoint-123",
			APIKey:   "mock-api-key",
			BaseURL:  mockServer.URL(),
		})
		Expect(err).NotTo(HaveOccurred())

		msg, err := backend.Generate(ctx, []*schema.Message{schema.UserMessage("What number is it?")}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Content).To(Equal("The number is 42."))
	})
})
