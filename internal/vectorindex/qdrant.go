package vectorindex

import (
	"context"
	"fmt"

	"catalog/internal/models"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// payloadIDKey holds the record id, since Qdrant point ids must be UUIDs or integers
const payloadIDKey = "id"

// QdrantOptions configures the gRPC connection
type QdrantOptions struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
}

// QdrantIndex stores records as points of one Qdrant collection
type QdrantIndex struct {
	client *qdrant.Client
	name   string
	logger zerolog.Logger
}

// NewQdrantIndex connects to Qdrant and binds the collection name
func NewQdrantIndex(opts QdrantOptions, name string, logger zerolog.Logger) (*QdrantIndex, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   opts.Host,
		Port:   opts.Port,
		APIKey: opts.APIKey,
		UseTLS: opts.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant at %s:%d: %w", opts.Host, opts.Port, err)
	}

	return &QdrantIndex{
		client: client,
		name:   name,
		logger: logger.With().Str("component", "qdrant").Str("collection", name).Logger(),
	}, nil
}

func (q *QdrantIndex) Name() string {
	return q.name
}

// Close releases the gRPC connection
func (q *QdrantIndex) Close() error {
	return q.client.Close()
}

func (q *QdrantIndex) ListIndexes(ctx context.Context) ([]string, error) {
	return q.client.ListCollections(ctx)
}

func (q *QdrantIndex) CreateIndex(ctx context.Context, spec Spec) error {
	distance, err := toDistance(spec.Metric)
	if err != nil {
		return err
	}
	if spec.Dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", spec.Dimension)
	}

	return q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: spec.Name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(spec.Dimension),
			Distance: distance,
		}),
	})
}

func (q *QdrantIndex) Describe(ctx context.Context) (Description, error) {
	info, err := q.client.GetCollectionInfo(ctx, q.name)
	if err != nil {
		return Description{}, q.wrap(err)
	}

	params := info.GetConfig().GetParams().GetVectorsConfig().GetParams()
	return Description{
		Name:      q.name,
		Dimension: int(params.GetSize()),
		Metric:    fromDistance(params.GetDistance()),
		Ready:     readyStatus(info.GetStatus()),
	}, nil
}

func (q *QdrantIndex) DescribeStats(ctx context.Context) (Stats, error) {
	info, err := q.client.GetCollectionInfo(ctx, q.name)
	if err != nil {
		return Stats{}, q.wrap(err)
	}

	return Stats{
		TotalVectorCount: info.GetPointsCount(),
		Dimension:        int(info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()),
	}, nil
}

func (q *QdrantIndex) Upsert(ctx context.Context, records []models.EmbeddingRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, r := range records {
		point, err := toPoint(r)
		if err != nil {
			return err
		}
		points = append(points, point)
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.name,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return q.wrap(err)
	}

	q.logger.Debug().Int("count", len(points)).Msg("Upserted points")
	return nil
}

func (q *QdrantIndex) DeleteAll(ctx context.Context) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.name,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelectorFilter(&qdrant.Filter{}),
	})
	return q.wrap(err)
}

func (q *QdrantIndex) Query(ctx context.Context, query Query) ([]models.Match, error) {
	req := &qdrant.QueryPoints{
		CollectionName: q.name,
		Query:          qdrant.NewQuery(query.Vector...),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if query.TopK > 0 {
		req.Limit = qdrant.PtrOf(uint64(query.TopK))
	}
	if !query.Filter.IsEmpty() {
		req.Filter = buildFilter(query.Filter)
	}

	points, err := q.client.Query(ctx, req)
	if err != nil {
		return nil, q.wrap(err)
	}

	matches := make([]models.Match, 0, len(points))
	for _, p := range points {
		metadata := fromPayload(p.GetPayload())
		id, _ := metadata[payloadIDKey].(string)
		if id == "" {
			id = p.GetId().GetUuid()
		}
		delete(metadata, payloadIDKey)

		match := models.Match{ID: id, Score: p.GetScore()}
		if query.IncludeMetadata {
			match.Metadata = metadata
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func (q *QdrantIndex) wrap(err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %s: %w", ErrIndexNotFound, q.name, err)
	}
	return err
}

// readyStatus reports whether a collection accepts writes. Yellow is
// optimizing and Grey waits for the next write to resume optimization; both
// serve upserts. Red means an operation failed.
func readyStatus(s qdrant.CollectionStatus) bool {
	switch s {
	case qdrant.CollectionStatus_Green, qdrant.CollectionStatus_Yellow, qdrant.CollectionStatus_Grey:
		return true
	default:
		return false
	}
}

// pointID maps a record id to a stable UUID so re-upserts overwrite
func pointID(recordID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(recordID)).String()
}

func toPoint(r models.EmbeddingRecord) (*qdrant.PointStruct, error) {
	payload := make(map[string]any, len(r.Metadata)+1)
	for k, v := range r.Metadata {
		payload[k] = v
	}
	payload[payloadIDKey] = r.ID

	values, err := qdrant.TryValueMap(payload)
	if err != nil {
		return nil, fmt.Errorf("record %s: invalid metadata: %w", r.ID, err)
	}

	return &qdrant.PointStruct{
		Id:      qdrant.NewID(pointID(r.ID)),
		Vectors: qdrant.NewVectors(r.Vector...),
		Payload: values,
	}, nil
}

func fromPayload(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		switch kind := v.GetKind().(type) {
		case *qdrant.Value_StringValue:
			out[k] = kind.StringValue
		case *qdrant.Value_DoubleValue:
			out[k] = kind.DoubleValue
		case *qdrant.Value_IntegerValue:
			out[k] = float64(kind.IntegerValue)
		case *qdrant.Value_BoolValue:
			out[k] = kind.BoolValue
		}
	}
	return out
}

func buildFilter(f Filter) *qdrant.Filter {
	var must []*qdrant.Condition
	if len(f.Categories) > 0 {
		must = append(must, qdrant.NewMatchKeywords("category", f.Categories...))
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		must = append(must, qdrant.NewRange("price", &qdrant.Range{
			Gte: f.MinPrice,
			Lte: f.MaxPrice,
		}))
	}
	if f.AvailableOnly {
		must = append(must, qdrant.NewMatchBool("available", true))
	}
	return &qdrant.Filter{Must: must}
}

func toDistance(metric string) (qdrant.Distance, error) {
	switch metric {
	case MetricCosine:
		return qdrant.Distance_Cosine, nil
	case MetricDotProduct:
		return qdrant.Distance_Dot, nil
	case MetricEuclidean:
		return qdrant.Distance_Euclid, nil
	default:
		return qdrant.Distance_UnknownDistance, fmt.Errorf("unsupported metric %q", metric)
	}
}

func fromDistance(d qdrant.Distance) string {
	switch d {
	case qdrant.Distance_Cosine:
		return MetricCosine
	case qdrant.Distance_Dot:
		return MetricDotProduct
	case qdrant.Distance_Euclid:
		return MetricEuclidean
	default:
		return d.String()
	}
}
