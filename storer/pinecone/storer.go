package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/w-h-a/support/storer"
	getsafe "github.com/w-h-a/support/util/get_safe"
)

const (
	defaultControlPlane = "https://api.pinecone.io"
	apiVersion          = "2024-07"
)

var errNotFound = errors.New("pinecone: not found")

type pineconeStorer struct {
	options      storer.Options
	controlPlane string
	serverless   serverless
	client       *http.Client
	host         string
	mtx          sync.RWMutex
}

func (s *pineconeStorer) EnsureCollection(ctx context.Context) error {
	desc, err := s.describeIndex(ctx)
	if errors.Is(err, errNotFound) {
		desc, err = s.createIndex(ctx)
	}
	if err != nil {
		return storer.Unavailable(err)
	}

	if desc.Dimension != s.options.Dimension || !strings.EqualFold(desc.Metric, string(s.options.Metric)) {
		return fmt.Errorf(
			"%w: index %s has dimension %d and metric %s, expected %d and %s",
			storer.ErrCollectionMismatch,
			s.options.Collection,
			desc.Dimension,
			desc.Metric,
			s.options.Dimension,
			s.options.Metric,
		)
	}

	s.setHost(desc.Host)

	return nil
}

func (s *pineconeStorer) Upsert(ctx context.Context, rec storer.Record) error {
	return s.UpsertBatch(ctx, []storer.Record{rec})
}

func (s *pineconeStorer) UpsertBatch(ctx context.Context, recs []storer.Record) error {
	return storer.UpsertChunked(ctx, recs, s.options.BatchSize, s.upsertChunk)
}

func (s *pineconeStorer) upsertChunk(ctx context.Context, chunk []storer.Record) error {
	req := upsertRequest{
		Vectors: make([]vector, 0, len(chunk)),
	}

	for _, rec := range chunk {
		if err := storer.CheckDimension(rec.Vector, s.options.Dimension); err != nil {
			return err
		}
		req.Vectors = append(req.Vectors, vector{
			Id:       rec.Id,
			Values:   rec.Vector,
			Metadata: rec.Metadata,
		})
	}

	if err := s.data(ctx, "/vectors/upsert", req, nil); err != nil {
		return storer.Unavailable(err)
	}

	return nil
}

func (s *pineconeStorer) Query(ctx context.Context, vec []float32, topK int, filter *storer.Filter) ([]storer.Match, error) {
	if topK < 1 {
		return nil, nil
	}

	if err := storer.CheckDimension(vec, s.options.Dimension); err != nil {
		return nil, err
	}

	req := queryRequest{
		Vector:          vec,
		TopK:            topK,
		IncludeMetadata: true,
	}

	if filter != nil {
		req.Filter = map[string]any{
			filter.Field: map[string]any{"$eq": filter.Value},
		}
	}

	var rsp queryResponse

	if err := s.data(ctx, "/query", req, &rsp); err != nil {
		return nil, storer.Unavailable(err)
	}

	matches := make([]storer.Match, 0, len(rsp.Matches))
	for _, m := range rsp.Matches {
		matches = append(matches, storer.NewMatch(m.Id, m.Score, getsafe.Strings(m.Metadata)))
	}

	storer.SortMatches(matches)

	return matches, nil
}

func (s *pineconeStorer) Count(ctx context.Context) (int, error) {
	var rsp statsResponse

	if err := s.data(ctx, "/describe_index_stats", map[string]any{}, &rsp); err != nil {
		return 0, storer.Unavailable(err)
	}

	return rsp.TotalVectorCount, nil
}

func (s *pineconeStorer) DeleteAll(ctx context.Context) error {
	if err := s.data(ctx, "/vectors/delete", deleteRequest{DeleteAll: true}, nil); err != nil {
		return storer.Unavailable(err)
	}
	return nil
}

func (s *pineconeStorer) describeIndex(ctx context.Context) (indexDescription, error) {
	var desc indexDescription
	u := fmt.Sprintf("%s/indexes/%s", s.controlPlane, url.PathEscape(s.options.Collection))
	err := s.do(ctx, http.MethodGet, u, nil, &desc)
	return desc, err
}

func (s *pineconeStorer) createIndex(ctx context.Context) (indexDescription, error) {
	req := createIndexRequest{
		Name:      s.options.Collection,
		Dimension: s.options.Dimension,
		Metric:    string(s.options.Metric),
		Spec:      indexSpec{Serverless: s.serverless},
	}

	var desc indexDescription
	err := s.do(ctx, http.MethodPost, s.controlPlane+"/indexes", req, &desc)
	return desc, err
}

func (s *pineconeStorer) setHost(host string) {
	if len(host) == 0 {
		return
	}

	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.host = strings.TrimRight(host, "/")
}

// dataPlane resolves the index host, looking it up once when neither
// configured nor learned from EnsureCollection.
func (s *pineconeStorer) dataPlane(ctx context.Context) (string, error) {
	s.mtx.RLock()
	host := s.host
	s.mtx.RUnlock()

	if len(host) > 0 {
		return host, nil
	}

	desc, err := s.describeIndex(ctx)
	if err != nil {
		return "", err
	}

	s.setHost(desc.Host)

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if len(s.host) == 0 {
		return "", errors.New("pinecone: index has no host")
	}

	return s.host, nil
}

func (s *pineconeStorer) data(ctx context.Context, path string, req any, rsp any) error {
	host, err := s.dataPlane(ctx)
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodPost, host+path, req, rsp)
}

func (s *pineconeStorer) do(ctx context.Context, method string, u string, req any, rsp any) error {
	var buf io.Reader
	if req != nil {
		data, err := json.Marshal(req)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, u, buf)
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Api-Key", s.options.ApiKey)
	request.Header.Set("X-Pinecone-API-Version", apiVersion)

	response, err := s.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode == http.StatusNotFound {
		return errNotFound
	}

	if response.StatusCode >= 300 {
		return fmt.Errorf("pinecone http %d: %s", response.StatusCode, string(payload))
	}

	if rsp != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, rsp); err != nil {
			return err
		}
	}

	return nil
}

func NewStorer(opts ...storer.Option) storer.Storer {
	options := storer.NewOptions(opts...)

	if len(options.Collection) == 0 || options.Dimension == 0 {
		panic("missing collection or dimension for pinecone storer")
	}

	s := &pineconeStorer{
		options:      options,
		controlPlane: defaultControlPlane,
		serverless:   serverless{Cloud: "aws", Region: "us-east-1"},
		client: &http.Client{
			Timeout: options.Timeout,
		},
	}

	if loc, ok := ControlPlaneFrom(options.Context); ok && len(loc) > 0 {
		s.controlPlane = strings.TrimRight(loc, "/")
	}

	if sl, ok := ServerlessFrom(options.Context); ok {
		s.serverless = sl
	}

	s.setHost(options.Location)

	return s
}
