package search

import (
	"context"
	"iter"

	"docsync-be/internal/dto"
	"docsync-be/internal/repository/memory"
)

type cachedDocumentReader struct {
	IDocumentReader
	cache *memory.SourceDocumentCache
}

// NewCachedDocumentReader serves repeated GetByID calls from memory. Streams always hit the backend.
func NewCachedDocumentReader(inner IDocumentReader, cache *memory.SourceDocumentCache) IDocumentReader {
	return &cachedDocumentReader{IDocumentReader: inner, cache: cache}
}

func (r *cachedDocumentReader) Stream(ctx context.Context, query dto.DocumentQuery) iter.Seq2[*dto.SearchDocument, error] {
	return r.IDocumentReader.Stream(ctx, query)
}

func (r *cachedDocumentReader) GetByID(ctx context.Context, id string) *dto.SearchDocument {
	if doc, found := r.cache.Get(id); found {
		return doc
	}
	doc := r.IDocumentReader.GetByID(ctx, id)
	r.cache.Save(doc)
	return doc
}
