package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"alfredoptarigan/talent-allocator/internal/models"
)

const (
	positionVectorSize = 768
	qdrantGRPCPort     = 6334
)

// PositionIndex keeps an embedding per active position for similarity lookups.
type PositionIndex interface {
	InitCollection(ctx context.Context) error
	Upsert(ctx context.Context, position models.Position) error
	Remove(ctx context.Context, positionID uint) error
	Similar(ctx context.Context, text string, limit int) ([]models.SimilarPosition, error)
}

type qdrantPositionIndex struct {
	client         *qdrant.Client
	embedder       Embedder
	collectionName string
	vectorSize     uint64
	log            *zap.Logger
}

func NewPositionIndex(urlStr, apiKey, collectionName string, embedder Embedder, log *zap.Logger) (PositionIndex, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	// The go client speaks gRPC, so the default port is the gRPC one.
	port := qdrantGRPCPort
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   parsed.Hostname(),
		Port:   port,
		APIKey: apiKey,
		UseTLS: parsed.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &qdrantPositionIndex{
		client:         client,
		embedder:       embedder,
		collectionName: collectionName,
		vectorSize:     positionVectorSize,
		log:            log,
	}, nil
}

func (q *qdrantPositionIndex) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.log.Info("qdrant collection created", zap.String("collection", q.collectionName))
	return nil
}

// Upsert uses the position id as point id, so re-indexing replaces the old vector.
func (q *qdrantPositionIndex) Upsert(ctx context.Context, position models.Position) error {
	embedding, err := q.embedder.GenerateEmbedding(ctx, positionDocument(position))
	if err != nil {
		return fmt.Errorf("failed to embed position %d: %w", position.ID, err)
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDNum(uint64(position.ID)),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"position_id": int64(position.ID),
			"name":        position.Name,
		}),
	}

	_, err = q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

func (q *qdrantPositionIndex) Remove(ctx context.Context, positionID uint) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points:         qdrant.NewPointsSelector(qdrant.NewIDNum(uint64(positionID))),
	})
	if err != nil {
		return fmt.Errorf("failed to delete position %d from index: %w", positionID, err)
	}
	return nil
}

func (q *qdrantPositionIndex) Similar(ctx context.Context, text string, limit int) ([]models.SimilarPosition, error) {
	embedding, err := q.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]models.SimilarPosition, 0, len(points))
	for _, point := range points {
		result := models.SimilarPosition{Score: point.Score}

		if id, ok := point.Payload["position_id"]; ok {
			if val, ok := id.GetKind().(*qdrant.Value_IntegerValue); ok {
				result.PositionID = uint(val.IntegerValue)
			}
		}

		if name, ok := point.Payload["name"]; ok {
			if val, ok := name.GetKind().(*qdrant.Value_StringValue); ok {
				result.Name = val.StringValue
			}
		}

		results = append(results, result)
	}

	return results, nil
}

func positionDocument(p models.Position) string {
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteString("\n")
	b.WriteString(p.Description)
	if len(p.RequiredSkills) > 0 {
		b.WriteString("\nRequired: ")
		b.WriteString(strings.Join(p.RequiredSkills, ", "))
	}
	if len(p.NiceToHave) > 0 {
		b.WriteString("\nNice to have: ")
		b.WriteString(strings.Join(p.NiceToHave, ", "))
	}
	return b.String()
}
