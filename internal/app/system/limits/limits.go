// internal/app/system/limits/limits.go
package limits

// Request body size limits and field caps.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBodySize is the maximum size for JSON request bodies.
	MaxJSONBodySize = 1 << 20 // 1 MB

	// MaxTitleLength is the maximum rune length for a feedback title,
	// measured after whitespace normalization.
	MaxTitleLength = 200

	// MaxBodyLength is the maximum rune length for a feedback body.
	MaxBodyLength = 20000

	// SnippetLength is the rune cap for body excerpts in duplicate-scan
	// results.
	SnippetLength = 160

	// MaxDuplicateResults caps how many matches a duplicate scan returns
	// to the client. The scan itself still considers every active item.
	MaxDuplicateResults = 20
)
