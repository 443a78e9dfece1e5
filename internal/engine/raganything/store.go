package raganything

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	qdrantReadTimeout  = 10 * time.Second
	qdrantWriteTimeout = 30 * time.Second
)

// Passage is one retrievable chunk of an ingested document.
type Passage struct {
	ID     string
	KB     string
	Source string
	Text   string
	Page   int
}

// ScoredPassage is a search hit with its cosine similarity score.
type ScoredPassage struct {
	Passage Passage
	Score   float64
}

// VectorStore holds passages and their embeddings in a Qdrant collection.
type VectorStore struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collName    string
	dimension   uint64
	logger      *slog.Logger
}

// NewVectorStore opens a lazily connected Qdrant client.
func NewVectorStore(host string, port int, collection string, dimension uint64, useTLS bool, logger *slog.Logger) (*VectorStore, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	opts := []grpc.DialOption{}
	if !useTLS {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to Qdrant at %s: %w", addr, err)
	}

	return &VectorStore{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collName:    collection,
		dimension:   dimension,
		logger:      logger,
	}, nil
}

// Ping issues a lightweight RPC to verify the connection.
func (s *VectorStore) Ping(ctx context.Context) error {
	rctx, cancel := context.WithTimeout(ctx, qdrantReadTimeout)
	defer cancel()
	if _, err := s.collections.List(rctx, &pb.ListCollectionsRequest{}); err != nil {
		return fmt.Errorf("qdrant unreachable: %w", err)
	}
	return nil
}

// EnsureCollection creates the passage collection if it doesn't exist.
func (s *VectorStore) EnsureCollection(ctx context.Context) error {
	rctx, rcancel := context.WithTimeout(ctx, qdrantReadTimeout)
	defer rcancel()
	resp, err := s.collections.List(rctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("listing collections: %w", err)
	}
	for _, c := range resp.GetCollections() {
		if c.GetName() == s.collName {
			return nil
		}
	}

	wctx, wcancel := context.WithTimeout(ctx, qdrantWriteTimeout)
	defer wcancel()
	_, err = s.collections.Create(wctx, &pb.CreateCollection{
		CollectionName: s.collName,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     s.dimension,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", s.collName, err)
	}
	s.logger.Info("created collection", "name", s.collName, "dimension", s.dimension)

	// Keyword index on kb so per-knowledge-base filters stay fast.
	ictx, icancel := context.WithTimeout(ctx, qdrantWriteTimeout)
	defer icancel()
	if _, err := s.points.CreateFieldIndex(ictx, &pb.CreateFieldIndexCollection{
		CollectionName: s.collName,
		FieldName:      "kb",
		FieldType:      pb.FieldType_FieldTypeKeyword.Enum(),
	}); err != nil {
		s.logger.Warn("creating kb field index", "error", err)
	}
	return nil
}

// Upsert inserts or updates one passage with its embedding vector.
func (s *VectorStore) Upsert(ctx context.Context, p Passage, vector []float32) error {
	ctx, cancel := context.WithTimeout(ctx, qdrantWriteTimeout)
	defer cancel()

	id := p.ID
	if id == "" {
		id = uuid.New().String()
	}

	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collName,
		Points: []*pb.PointStruct{
			{
				Id: &pb.PointId{
					PointIdOptions: &pb.PointId_Uuid{Uuid: id},
				},
				Vectors: &pb.Vectors{
					VectorsOptions: &pb.Vectors_Vector{
						Vector: &pb.Vector{Data: vector},
					},
				},
				Payload: passageToPayload(p),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("upserting passage %s: %w", id, err)
	}
	return nil
}

// Search returns the passages most similar to the query vector, restricted
// to the named knowledge base when kbName is non-empty.
func (s *VectorStore) Search(ctx context.Context, vector []float32, kbName string, limit uint64) ([]ScoredPassage, error) {
	ctx, cancel := context.WithTimeout(ctx, qdrantReadTimeout)
	defer cancel()

	req := &pb.SearchPoints{
		CollectionName: s.collName,
		Vector:         vector,
		Limit:          limit,
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	}
	if kbName != "" {
		req.Filter = &pb.Filter{
			Must: []*pb.Condition{
				{
					ConditionOneOf: &pb.Condition_Field{
						Field: &pb.FieldCondition{
							Key: "kb",
							Match: &pb.Match{
								MatchValue: &pb.Match_Keyword{Keyword: kbName},
							},
						},
					},
				},
			},
		}
	}

	resp, err := s.points.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}

	results := make([]ScoredPassage, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		results = append(results, ScoredPassage{
			Passage: payloadToPassage(point.GetId().GetUuid(), point.GetPayload()),
			Score:   float64(point.GetScore()),
		})
	}
	return results, nil
}

// Count returns how many passages the collection holds.
func (s *VectorStore) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, qdrantReadTimeout)
	defer cancel()
	info, err := s.collections.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: s.collName,
	})
	if err != nil {
		return 0, fmt.Errorf("getting collection info: %w", err)
	}
	return int64(info.GetResult().GetPointsCount()), nil
}

// Close releases the gRPC connection.
func (s *VectorStore) Close() error {
	return s.conn.Close()
}

func passageToPayload(p Passage) map[string]*pb.Value {
	return map[string]*pb.Value{
		"kb":     {Kind: &pb.Value_StringValue{StringValue: p.KB}},
		"source": {Kind: &pb.Value_StringValue{StringValue: p.Source}},
		"text":   {Kind: &pb.Value_StringValue{StringValue: p.Text}},
		"page":   {Kind: &pb.Value_IntegerValue{IntegerValue: int64(p.Page)}},
	}
}

func payloadToPassage(id string, payload map[string]*pb.Value) Passage {
	p := Passage{ID: id}
	if v, ok := payload["kb"]; ok {
		p.KB = v.GetStringValue()
	}
	if v, ok := payload["source"]; ok {
		p.Source = v.GetStringValue()
	}
	if v, ok := payload["text"]; ok {
		p.Text = v.GetStringValue()
	}
	if v, ok := payload["page"]; ok {
		p.Page = int(v.GetIntegerValue())
	}
	return p
}
