package vectorstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// Schema fields of the Milvus collection.
const (
	fieldVectorID   = "id"
	fieldDocumentID = "document_id"
	fieldChunkID    = "chunk_id"
	fieldChunkIndex = "chunk_index"
	fieldContent    = "content"
	fieldSource     = "source"
	fieldEmbedding  = "embedding"
)

// MilvusStore implements Store against a Milvus collection using the
// COSINE metric, so search scores are similarities directly.
type MilvusStore struct {
	client     client.Client
	collection string
	dim        int64
}

var _ Store = (*MilvusStore)(nil)

// NewMilvusStore connects to Milvus and ensures the collection exists,
// is indexed, and is loaded.
func NewMilvusStore(ctx context.Context, address, collection string, dim int) (*MilvusStore, error) {
	c, err := client.NewClient(ctx, client.Config{Address: address})
	if err != nil {
		return nil, fmt.Errorf("connect to milvus: %w", err)
	}

	s := &MilvusStore{
		client:     c,
		collection: collection,
		dim:        int64(dim),
	}
	if err := s.ensureCollection(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return s, nil
}

func (s *MilvusStore) ensureCollection(ctx context.Context) error {
	has, err := s.client.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}

	if !has {
		schema := entity.NewSchema().
			WithName(s.collection).
			WithField(entity.NewField().WithName(fieldVectorID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(128).WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName(fieldDocumentID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64)).
			WithField(entity.NewField().WithName(fieldChunkID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64)).
			WithField(entity.NewField().WithName(fieldChunkIndex).WithDataType(entity.FieldTypeInt64)).
			WithField(entity.NewField().WithName(fieldContent).WithDataType(entity.FieldTypeVarChar).WithMaxLength(65535)).
			WithField(entity.NewField().WithName(fieldSource).WithDataType(entity.FieldTypeVarChar).WithMaxLength(512)).
			WithField(entity.NewField().WithName(fieldEmbedding).WithDataType(entity.FieldTypeFloatVector).WithDim(s.dim))

		if err := s.client.CreateCollection(ctx, schema, 1); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}

		idx, err := entity.NewIndexIvfFlat(entity.COSINE, 128)
		if err != nil {
			return fmt.Errorf("build index definition: %w", err)
		}
		if err := s.client.CreateIndex(ctx, s.collection, fieldEmbedding, idx, false); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	if err := s.client.LoadCollection(ctx, s.collection, false); err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	return nil
}

func (s *MilvusStore) AddChunks(ctx context.Context, vectors []*ChunkVector) error {
	if len(vectors) == 0 {
		return nil
	}

	ids := make([]string, len(vectors))
	docIDs := make([]string, len(vectors))
	chunkIDs := make([]string, len(vectors))
	chunkIndexes := make([]int64, len(vectors))
	contents := make([]string, len(vectors))
	sources := make([]string, len(vectors))
	embeddings := make([][]float32, len(vectors))

	for i, v := range vectors {
		ids[i] = v.VectorID
		docIDs[i] = v.DocumentID.String()
		chunkIDs[i] = v.ChunkID.String()
		chunkIndexes[i] = int64(v.ChunkIndex)
		contents[i] = v.Content
		sources[i] = v.Source
		embeddings[i] = v.Embedding
	}

	_, err := s.client.Insert(ctx, s.collection, "",
		entity.NewColumnVarChar(fieldVectorID, ids),
		entity.NewColumnVarChar(fieldDocumentID, docIDs),
		entity.NewColumnVarChar(fieldChunkID, chunkIDs),
		entity.NewColumnInt64(fieldChunkIndex, chunkIndexes),
		entity.NewColumnVarChar(fieldContent, contents),
		entity.NewColumnVarChar(fieldSource, sources),
		entity.NewColumnFloatVector(fieldEmbedding, int(s.dim), embeddings),
	)
	if err != nil {
		return fmt.Errorf("insert into milvus: %w", err)
	}
	return nil
}

func (s *MilvusStore) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	expr := fmt.Sprintf(`%s == "%s"`, fieldDocumentID, documentID)
	if err := s.client.Delete(ctx, s.collection, "", expr); err != nil {
		return fmt.Errorf("delete document vectors: %w", err)
	}
	return nil
}

func (s *MilvusStore) Search(ctx context.Context, embedding []float32, limit int) ([]*SearchHit, error) {
	if limit <= 0 {
		limit = 5
	}

	sp, err := entity.NewIndexIvfFlatSearchParam(10)
	if err != nil {
		return nil, fmt.Errorf("build search params: %w", err)
	}

	outputFields := []string{fieldVectorID, fieldDocumentID, fieldChunkID, fieldChunkIndex, fieldContent, fieldSource, fieldEmbedding}
	results, err := s.client.Search(
		ctx, s.collection, []string{}, "", outputFields,
		[]entity.Vector{entity.FloatVector(embedding)},
		fieldEmbedding, entity.COSINE, limit, sp,
	)
	if err != nil {
		return nil, fmt.Errorf("search milvus: %w", err)
	}

	var hits []*SearchHit
	for _, res := range results {
		ids := varcharColumn(res.Fields, fieldVectorID)
		docIDs := varcharColumn(res.Fields, fieldDocumentID)
		chunkIDs := varcharColumn(res.Fields, fieldChunkID)
		indexes := int64Column(res.Fields, fieldChunkIndex)
		contents := varcharColumn(res.Fields, fieldContent)
		sources := varcharColumn(res.Fields, fieldSource)
		vectors := floatVectorColumn(res.Fields, fieldEmbedding)

		for i := 0; i < res.ResultCount; i++ {
			hit := &SearchHit{
				// COSINE metric scores are similarities already.
				Similarity: ClampSimilarity(float64(res.Scores[i])),
			}
			if i < len(ids) {
				hit.VectorID = ids[i]
			}
			if i < len(docIDs) {
				hit.DocumentID, _ = uuid.Parse(docIDs[i])
			}
			if i < len(chunkIDs) {
				hit.ChunkID, _ = uuid.Parse(chunkIDs[i])
			}
			if i < len(indexes) {
				hit.ChunkIndex = int(indexes[i])
			}
			if i < len(contents) {
				hit.Content = contents[i]
			}
			if i < len(sources) {
				hit.Source = sources[i]
			}
			if i < len(vectors) {
				hit.Embedding = vectors[i]
			}
			hits = append(hits, hit)
		}
	}
	return hits, nil
}

func (s *MilvusStore) Count(ctx context.Context) (int64, error) {
	stats, err := s.client.GetCollectionStatistics(ctx, s.collection)
	if err != nil {
		return 0, fmt.Errorf("collection statistics: %w", err)
	}
	rowCount, ok := stats["row_count"]
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(rowCount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse row_count %q: %w", rowCount, err)
	}
	return n, nil
}

func (s *MilvusStore) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

func varcharColumn(fields []entity.Column, name string) []string {
	for _, f := range fields {
		if f.Name() == name {
			if col, ok := f.(*entity.ColumnVarChar); ok {
				return col.Data()
			}
		}
	}
	return nil
}

func floatVectorColumn(fields []entity.Column, name string) [][]float32 {
	for _, f := range fields {
		if f.Name() == name {
			if col, ok := f.(*entity.ColumnFloatVector); ok {
				return col.Data()
			}
		}
	}
	return nil
}

func int64Column(fields []entity.Column, name string) []int64 {
	for _, f := range fields {
		if f.Name() == name {
			if col, ok := f.(*entity.ColumnInt64); ok {
				return col.Data()
			}
		}
	}
	return nil
}
