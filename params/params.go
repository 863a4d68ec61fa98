package params

import "time"

const (
	ServerBodyLimit    = 10485760 // 10 MiB, document uploads can be large
	ServerIdleTimeout  = 30 * time.Second
	ServerReadTimeout  = 30 * time.Second
	ServerWriteTimeout = 60 * time.Second // RAG chat waits on the model

	PermissionCacheKeyPrefix = "p:"
	PermissionCacheTTL       = 5 * time.Minute

	DefaultChunkSize    = 1000 // characters per knowledge chunk
	DefaultChunkOverlap = 100  // characters shared between consecutive chunks
	MatchThreshold      = 0.7  // minimum cosine similarity for retrieval
	MatchCount          = 5    // top-K knowledge entries per query
	ChatHistoryLimit    = 10   // conversation messages forwarded to the model

	ClientAPIKeyLength = 32 // characters per generated tenant API key

	HealthCheckServerAddr = ":3001"

	// ChatFallbackResponse is returned verbatim whenever the chat backend
	// fails or replies without a message body.
	ChatFallbackResponse = "I'm sorry, I couldn't generate a response. Please try again."
)
