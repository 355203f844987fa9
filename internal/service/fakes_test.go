package service

import (
	"context"
	"errors"
	"iter"
	"sync"
	"time"

	"docsync-be/internal/dto"
	"docsync-be/internal/entity"
)

// fakeReader serves a fixed page and skips hits without a source, as the search reader does.
type fakeReader struct {
	mu      sync.Mutex
	hits    []*dto.SearchDocument
	err     error
	queries []dto.DocumentQuery
}

func (r *fakeReader) Stream(ctx context.Context, query dto.DocumentQuery) iter.Seq2[*dto.SearchDocument, error] {
	return func(yield func(*dto.SearchDocument, error) bool) {
		r.mu.Lock()
		r.queries = append(r.queries, query)
		r.mu.Unlock()

		if r.err != nil {
			yield(nil, r.err)
			return
		}
		for _, hit := range r.hits {
			if hit.Source == nil {
				continue
			}
			if !yield(hit, nil) {
				return
			}
		}
	}
}

func (r *fakeReader) GetByID(ctx context.Context, id string) *dto.SearchDocument {
	for _, hit := range r.hits {
		if hit.Id == id {
			return hit
		}
	}
	return nil
}

func (r *fakeReader) queryCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queries)
}

var errWriteFailed = errors.New("write failed")

// recordingWriter fails on the call numbered failOn (1-based, 0 never fails).
type recordingWriter struct {
	mu      sync.Mutex
	written []string
	calls   int
	failOn  int
}

func (w *recordingWriter) Persist(ctx context.Context, document *entity.Document) (*entity.Document, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.calls == w.failOn {
		return nil, errWriteFailed
	}
	w.written = append(w.written, document.DocumentId)
	return document, nil
}

func (w *recordingWriter) CountByStatus(ctx context.Context, status string) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return int64(len(w.written)), nil
}

func sourceHit(id string) *dto.SearchDocument {
	return &dto.SearchDocument{
		Id:    id,
		Index: "documents",
		Source: &dto.DocumentSource{
			Title:       "title " + id,
			Content:     "content " + id,
			Status:      "NEW",
			CreatedDate: dto.NewDateTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		},
	}
}

func emptyHit(id string) *dto.SearchDocument {
	return &dto.SearchDocument{Id: id, Index: "documents"}
}
