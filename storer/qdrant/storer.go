package qdrant

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

	"github.com/google/uuid"
	"github.com/w-h-a/support/storer"
	getsafe "github.com/w-h-a/support/util/get_safe"
)

var errNotFound = errors.New("qdrant: not found")

type qdrantStorer struct {
	options storer.Options
	client  *http.Client
}

func (s *qdrantStorer) EnsureCollection(ctx context.Context) error {
	info, err := s.collectionInfo(ctx)
	if errors.Is(err, errNotFound) {
		return s.createCollection(ctx)
	}
	if err != nil {
		return storer.Unavailable(err)
	}

	params := info.Config.Params.Vectors
	if params.Size != s.options.Dimension || !strings.EqualFold(params.Distance, distance(s.options.Metric)) {
		return fmt.Errorf(
			"%w: collection %s has size %d and distance %s, expected %d and %s",
			storer.ErrCollectionMismatch,
			s.options.Collection,
			params.Size,
			params.Distance,
			s.options.Dimension,
			distance(s.options.Metric),
		)
	}

	return nil
}

func (s *qdrantStorer) Upsert(ctx context.Context, rec storer.Record) error {
	return s.UpsertBatch(ctx, []storer.Record{rec})
}

func (s *qdrantStorer) UpsertBatch(ctx context.Context, recs []storer.Record) error {
	return storer.UpsertChunked(ctx, recs, s.options.BatchSize, s.upsertChunk)
}

func (s *qdrantStorer) upsertChunk(ctx context.Context, chunk []storer.Record) error {
	points := make([]qdrantPoint, 0, len(chunk))

	for _, rec := range chunk {
		if err := storer.CheckDimension(rec.Vector, s.options.Dimension); err != nil {
			return err
		}

		payload := map[string]any{docIdKey: rec.Id}
		for k, v := range rec.Metadata {
			payload[k] = v
		}

		points = append(points, qdrantPoint{
			Id:      pointId(rec.Id),
			Vector:  rec.Vector,
			Payload: payload,
		})
	}

	req := map[string]any{
		"points": points,
	}

	var rsp qdrantEnvelope[json.RawMessage]

	if err := s.do(ctx, http.MethodPut, s.path("/points?wait=true"), req, &rsp); err != nil {
		return storer.Unavailable(err)
	}

	if !strings.EqualFold(rsp.Status.State, "ok") && len(rsp.Status.Error) > 0 {
		return storer.Unavailable(errors.New(rsp.Status.Error))
	}

	return nil
}

func (s *qdrantStorer) Query(ctx context.Context, vector []float32, topK int, filter *storer.Filter) ([]storer.Match, error) {
	if topK < 1 {
		return nil, nil
	}

	if err := storer.CheckDimension(vector, s.options.Dimension); err != nil {
		return nil, err
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}

	if filter != nil {
		req["filter"] = map[string]any{
			"must": []map[string]any{
				{
					"key":   filter.Field,
					"match": map[string]any{"value": filter.Value},
				},
			},
		}
	}

	var rsp qdrantEnvelope[[]qdrantScoredPoint]

	if err := s.do(ctx, http.MethodPost, s.path("/points/search"), req, &rsp); err != nil {
		return nil, storer.Unavailable(err)
	}

	matches := make([]storer.Match, 0, len(rsp.Result))

	for _, point := range rsp.Result {
		id := getsafe.String(point.Payload, docIdKey)
		if len(id) == 0 {
			id = fmt.Sprint(point.Id)
		}
		matches = append(matches, storer.NewMatch(id, point.Score, getsafe.Strings(point.Payload)))
	}

	storer.SortMatches(matches)

	return matches, nil
}

func (s *qdrantStorer) Count(ctx context.Context) (int, error) {
	var rsp qdrantEnvelope[qdrantCount]

	if err := s.do(ctx, http.MethodPost, s.path("/points/count"), map[string]any{"exact": true}, &rsp); err != nil {
		return 0, storer.Unavailable(err)
	}

	return rsp.Result.Count, nil
}

// DeleteAll drops the collection and recreates it empty.
func (s *qdrantStorer) DeleteAll(ctx context.Context) error {
	var rsp qdrantEnvelope[json.RawMessage]

	if err := s.do(ctx, http.MethodDelete, s.path(""), nil, &rsp); err != nil && !errors.Is(err, errNotFound) {
		return storer.Unavailable(err)
	}

	return s.createCollection(ctx)
}

func (s *qdrantStorer) collectionInfo(ctx context.Context) (qdrantCollectionInfo, error) {
	var rsp qdrantEnvelope[qdrantCollectionInfo]

	if err := s.do(ctx, http.MethodGet, s.path(""), nil, &rsp); err != nil {
		return qdrantCollectionInfo{}, err
	}

	return rsp.Result, nil
}

func (s *qdrantStorer) createCollection(ctx context.Context) error {
	req := map[string]any{
		"vectors": qdrantVectorParams{
			Size:     s.options.Dimension,
			Distance: distance(s.options.Metric),
		},
	}

	var rsp qdrantEnvelope[json.RawMessage]

	if err := s.do(ctx, http.MethodPut, s.path(""), req, &rsp); err != nil {
		return storer.Unavailable(err)
	}

	if !strings.EqualFold(rsp.Status.State, "ok") {
		return storer.Unavailable(errors.New(rsp.Status.Error))
	}

	return nil
}

func (s *qdrantStorer) path(suffix string) string {
	return fmt.Sprintf("/collections/%s%s", url.PathEscape(s.options.Collection), suffix)
}

func (s *qdrantStorer) do(ctx context.Context, method string, path string, req any, rsp any) error {
	u := strings.TrimRight(s.options.Location, "/") + path

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

	if len(s.options.ApiKey) > 0 {
		request.Header.Set("api-key", s.options.ApiKey)
	}

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

	if response.StatusCode >= 400 {
		return fmt.Errorf("qdrant http %d: %s", response.StatusCode, string(payload))
	}

	if rsp != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, rsp); err != nil {
			return err
		}
	}

	return nil
}

// pointId derives a stable UUID from a document id, since qdrant only
// accepts UUIDs or integers as point ids.
func pointId(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(id)).String()
}

func distance(metric storer.Metric) string {
	switch metric {
	case storer.MetricDot:
		return "Dot"
	case storer.MetricEuclidean:
		return "Euclid"
	default:
		return "Cosine"
	}
}

func NewStorer(opts ...storer.Option) storer.Storer {
	options := storer.NewOptions(opts...)

	if len(options.Location) == 0 ||
		len(options.Collection) == 0 ||
		options.Dimension == 0 {
		panic("missing location, collection, or dimension for qdrant storer")
	}

	client := &http.Client{
		Timeout: options.Timeout,
	}

	s := &qdrantStorer{
		options: options,
		client:  client,
	}

	return s
}
