// ABOUTME: Dependencies container provides dependency injection for core services
// ABOUTME: Defines the contract for collaborators required by the pipeline stages

package interfaces

// Dependencies holds the cross-cutting external dependencies required by
// the core pipeline stages. Constructed once in main and passed into every
// component constructor.
type Dependencies struct {
	// Cache provides caching functionality (feeds, footage)
	Cache Cache

	// HTTPClient provides HTTP request functionality
	HTTPClient HTTPClient

	// Logger provides structured logging
	Logger Logger
}
