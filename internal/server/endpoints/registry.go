package endpoints

import (
	"github.com/signet-dev/signet/internal/api"
)

// Config holds dependencies needed by some endpoints.
type Config struct{}

// All returns all endpoint instances.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{},

		// Document endpoints
		&UploadDocumentEndpoint{},
		&ListDocumentsEndpoint{},
		&GetDocumentEndpoint{},
		&DeleteDocumentEndpoint{},
		&GetPageEndpoint{},

		// Extraction endpoints
		&ExtractEndpoint{},
		&ListExtractionsEndpoint{},
		&GetExtractionEndpoint{},
		&ExportExtractionEndpoint{},

		// VQA endpoint
		&VQAEndpoint{},

		// Image similarity endpoint
		&SimilarEndpoint{},

		// Provider endpoints
		&ListProvidersEndpoint{},

		// LLM call history endpoints
		&ListLLMCallsEndpoint{},
		&GetLLMCallEndpoint{},
		&LLMCallStatsEndpoint{},

		// Static files (catch-all, must be last)
		&StaticEndpoint{},
	}
}
