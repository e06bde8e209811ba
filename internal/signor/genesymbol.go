package signor

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
)

// DefaultGeneQueryURL is the mygene.info query endpoint used to resolve
// external identifiers to gene symbols.
const DefaultGeneQueryURL = "https://mygene.info/v3"

// GeneSymbolSearcher resolves external protein identifiers to canonical gene
// symbols over HTTP, caching every answer including misses. Lookup failures
// are logged and reported as an empty symbol; the caller treats those as
// unresolved.
type GeneSymbolSearcher struct {
	client *resty.Client
	cache  map[string]string
}

type geneQueryResult struct {
	Hits []struct {
		Symbol string `json:"symbol"`
	} `json:"hits"`
}

func NewGeneSymbolSearcher(baseURL string) *GeneSymbolSearcher {
	if baseURL == "" {
		baseURL = DefaultGeneQueryURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond)
	return &GeneSymbolSearcher{
		client: client,
		cache:  make(map[string]string),
	}
}

// Symbol returns the canonical gene symbol for an external identifier, or ""
// when none is found.
func (s *GeneSymbolSearcher) Symbol(id string) string {
	if symbol, ok := s.cache[id]; ok {
		return symbol
	}

	var result geneQueryResult
	resp, err := s.client.R().
		SetQueryParams(map[string]string{
			"q":      id,
			"fields": "symbol",
			"size":   "1",
		}).
		SetResult(&result).
		Get("/query")
	if err != nil {
		log.Error("gene symbol lookup failed", "id", id, "error", err)
		s.cache[id] = ""
		return ""
	}
	if resp.StatusCode() != 200 || len(result.Hits) == 0 {
		s.cache[id] = ""
		return ""
	}

	s.cache[id] = result.Hits[0].Symbol
	return s.cache[id]
}
