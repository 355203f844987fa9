package memory

import (
	"time"

	"docsync-be/internal/dto"

	"github.com/patrickmn/go-cache"
)

// SourceDocumentCache keeps recently looked-up search documents.
// Misses are never stored, so a document indexed later is found on the next lookup.
type SourceDocumentCache struct {
	cache *cache.Cache
}

func NewSourceDocumentCache(ttl time.Duration) *SourceDocumentCache {
	return &SourceDocumentCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (r *SourceDocumentCache) Save(doc *dto.SearchDocument) {
	if doc == nil {
		return
	}
	r.cache.Set(doc.Id, doc, cache.DefaultExpiration)
}

func (r *SourceDocumentCache) Get(id string) (*dto.SearchDocument, bool) {
	if x, found := r.cache.Get(id); found {
		return x.(*dto.SearchDocument), true
	}
	return nil, false
}

func (r *SourceDocumentCache) Delete(id string) {
	r.cache.Delete(id)
}
