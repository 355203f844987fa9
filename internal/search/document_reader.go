// Package search reads source documents from Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"

	"docsync-be/internal/constant"
	"docsync-be/internal/dto"
	"docsync-be/internal/pkg/logger"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrMalformedQuery is returned by a stream whose raw query is not a JSON object.
var ErrMalformedQuery = errors.New("malformed search query")

const DefaultPageSize = 100

type IDocumentReader interface {
	// Stream runs the query when ranged over. Ranging twice issues the query twice.
	Stream(ctx context.Context, query dto.DocumentQuery) iter.Seq2[*dto.SearchDocument, error]
	// GetByID returns nil when the document does not exist or the lookup fails.
	GetByID(ctx context.Context, id string) *dto.SearchDocument
}

type documentReader struct {
	client   *es.Client
	index    string
	pageSize int
	logger   logger.ILogger
	validate *validator.Validate
	tracer   trace.Tracer
}

func NewDocumentReader(client *es.Client, index string, pageSize int, logger logger.ILogger) IDocumentReader {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &documentReader{
		client:   client,
		index:    index,
		pageSize: pageSize,
		logger:   logger,
		validate: newSourceValidator(),
		tracer:   otel.Tracer("docsync-be/search"),
	}
}

func newSourceValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		var src dto.DocumentSource
		switch v := sl.Current().Interface().(type) {
		case dto.DocumentSource:
			src = v
		case *dto.DocumentSource:
			src = *v
		default:
			return
		}
		for _, field := range src.MissingFields() {
			sl.ReportError(nil, field, field, "required", "")
		}
	}, dto.DocumentSource{})
	return v
}

type searchResponse struct {
	Hits struct {
		Total *struct {
			Value    int64  `json:"value"`
			Relation string `json:"relation"`
		} `json:"total"`
		Hits []json.RawMessage `json:"hits"`
	} `json:"hits"`
}

func (r *documentReader) Stream(ctx context.Context, query dto.DocumentQuery) iter.Seq2[*dto.SearchDocument, error] {
	return func(yield func(*dto.SearchDocument, error) bool) {
		body, err := r.buildBody(query)
		if err != nil {
			yield(nil, err)
			return
		}

		resp, err := r.search(ctx, query, body)
		if err != nil {
			yield(nil, err)
			return
		}

		returned := int64(len(resp.Hits.Hits))
		if total := resp.Hits.Total; total != nil && total.Value > returned {
			r.logger.Warn(constant.ModuleSourceReader, "Search matched more documents than one page returns, remainder left for a later run", map[string]interface{}{
				"index":    r.index,
				"total":    total.Value,
				"relation": total.Relation,
				"returned": returned,
			})
		}

		for i, raw := range resp.Hits.Hits {
			var doc dto.SearchDocument
			if err := json.Unmarshal(raw, &doc); err != nil {
				yield(nil, fmt.Errorf("failed to decode search hit %d: %w", i, err))
				return
			}
			if doc.Source == nil {
				continue
			}
			if err := r.validate.Struct(doc.Source); err != nil {
				r.logger.Warn(constant.ModuleSourceReader, "Skipping document with incomplete source", map[string]interface{}{
					"document_id": doc.Id,
					"error":       err.Error(),
				})
				continue
			}
			if !yield(&doc, nil) {
				return
			}
		}
	}
}

func (r *documentReader) buildBody(query dto.DocumentQuery) ([]byte, error) {
	var body map[string]interface{}

	switch q := query.(type) {
	case dto.StatusQuery:
		body = map[string]interface{}{
			"size": r.pageSize,
			"query": map[string]interface{}{
				"term": map[string]interface{}{constant.DocumentsSearchField: q.Status},
			},
		}
	case dto.CreatedAfterQuery:
		body = map[string]interface{}{
			"size": r.pageSize,
			"query": map[string]interface{}{
				"range": map[string]interface{}{
					constant.CreatedDateField: map[string]interface{}{"gt": dto.FormatISODateTime(q.After)},
				},
			},
		}
	case dto.RawQuery:
		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(q.JSON), &parsed); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedQuery, err)
		}
		if parsed == nil {
			return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedQuery)
		}
		return []byte(q.JSON), nil
	default:
		return nil, fmt.Errorf("unsupported query type %T", query)
	}

	return json.Marshal(body)
}

func (r *documentReader) search(ctx context.Context, query dto.DocumentQuery, body []byte) (*searchResponse, error) {
	ctx, span := r.tracer.Start(ctx, "search.documents", trace.WithAttributes(
		attribute.String("search.index", r.index),
		attribute.String("search.mode", string(query.Mode())),
	))
	defer span.End()

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.index),
		r.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search request failed")
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		err := fmt.Errorf("search request failed: %s: %s", res.Status(), strings.TrimSpace(string(msg)))
		span.RecordError(err)
		span.SetStatus(codes.Error, "search request failed")
		return nil, err
	}

	var resp searchResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	span.SetAttributes(attribute.Int("search.hits", len(resp.Hits.Hits)))
	return &resp, nil
}

func (r *documentReader) GetByID(ctx context.Context, id string) *dto.SearchDocument {
	res, err := r.client.Get(r.index, id, r.client.Get.WithContext(ctx))
	if err != nil {
		r.logger.Error(constant.ModuleSourceReader, "Failed to fetch document", map[string]interface{}{
			"document_id": id,
			"error":       err,
		})
		return nil
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		r.logger.Error(constant.ModuleSourceReader, "Failed to fetch document", map[string]interface{}{
			"document_id": id,
			"status":      res.Status(),
		})
		return nil
	}

	var found struct {
		dto.SearchDocument
		Found bool `json:"found"`
	}
	if err := json.NewDecoder(res.Body).Decode(&found); err != nil {
		r.logger.Error(constant.ModuleSourceReader, "Failed to decode document", map[string]interface{}{
			"document_id": id,
			"error":       err,
		})
		return nil
	}
	if !found.Found {
		return nil
	}
	return &found.SearchDocument
}
