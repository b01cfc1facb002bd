package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/Skotchmaster/delivery_shop/internal/models"
)

// Index keeps a full-text copy of the catalog. Search returns product ids
// ranked by relevance; callers load current rows from the database.
type Index interface {
	Index(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, from, size int) (int64, []uuid.UUID, error)
}

type ES struct {
	Client *elasticsearch.Client
	Name   string
}

func NewES(addr, user, password, index string) (*ES, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{addr},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return &ES{Client: client, Name: index}, nil
}

const indexMapping = `{
  "mappings": {
    "properties": {
      "title":       {"type": "text"},
      "description": {"type": "text"},
      "category":    {"type": "keyword"},
      "colors":      {"type": "keyword"},
      "sizes":       {"type": "keyword"}
    }
  }
}`

// EnsureIndex pings the cluster and creates the index when it is missing.
func (s *ES) EnsureIndex(ctx context.Context) error {
	res, err := s.Client.Indices.Exists([]string{s.Name}, s.Client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("index exists: %s", res.Status())
	}

	res, err = s.Client.Indices.Create(
		s.Name,
		s.Client.Indices.Create.WithContext(ctx),
		s.Client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res.Status(), res.Body)
	}
	return nil
}

type document struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Colors      []string `json:"colors"`
	Sizes       []string `json:"sizes"`
}

func (s *ES) Index(ctx context.Context, p *models.Product) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(document{
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Colors:      p.Colors,
		Sizes:       p.Sizes,
	}); err != nil {
		return err
	}

	res, err := s.Client.Index(
		s.Name,
		&buf,
		s.Client.Index.WithContext(ctx),
		s.Client.Index.WithDocumentID(p.ID.String()),
		s.Client.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("index product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index product", res.Status(), res.Body)
	}
	return nil
}

func (s *ES) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.Client.Delete(
		s.Name,
		id.String(),
		s.Client.Delete.WithContext(ctx),
		s.Client.Delete.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete product", res.Status(), res.Body)
	}
	return nil
}

func (s *ES) Search(ctx context.Context, query string, from, size int) (int64, []uuid.UUID, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"title^2", "description", "category"},
				"fuzziness": "AUTO",
			},
		},
		"from":    from,
		"size":    size,
		"_source": false,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := s.Client.Search(
		s.Client.Search.WithContext(ctx),
		s.Client.Search.WithIndex(s.Name),
		s.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search", res.Status(), res.Body)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return r.Hits.Total.Value, ids, nil
}

func responseError(op, status string, body io.Reader) error {
	msg, _ := io.ReadAll(io.LimitReader(body, 1024))
	return fmt.Errorf("%s: %s: %s", op, status, bytes.TrimSpace(msg))
}
