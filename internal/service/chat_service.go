package service

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"doc-qa-be/internal/dto"
	"doc-qa-be/internal/entity"
	"doc-qa-be/internal/pkg/logger"
	"doc-qa-be/internal/repository/specification"
	"doc-qa-be/internal/repository/unitofwork"
	"doc-qa-be/pkg/answer"
	"doc-qa-be/pkg/retriever"
	"doc-qa-be/pkg/vectorstore"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	answerCacheTTL    = 10 * time.Minute
	contentPreviewLen = 200
)

type ChatServiceOptions struct {
	SimilarityThreshold float64
	TopK                int
	MMRLambda           float64
}

type IChatService interface {
	Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error)
	// AskStream delivers sources first, then cumulative answer text as it
	// is generated. The returned response holds the final answer.
	AskStream(
		ctx context.Context,
		req *dto.AskRequest,
		onSources func(sources []dto.SourceInfo, info dto.SearchInfo) error,
		onContent func(cumulative string) error,
	) (*dto.AskResponse, error)
	Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error)
}

type chatService struct {
	uowFactory  unitofwork.RepositoryFactory
	retriever   *retriever.Retriever
	generator   *answer.Generator
	vectorStore vectorstore.Store
	rdb         *redis.Client
	log         logger.ILogger
	opts        ChatServiceOptions
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	ret *retriever.Retriever,
	generator *answer.Generator,
	vectorStore vectorstore.Store,
	rdb *redis.Client,
	log logger.ILogger,
	opts ChatServiceOptions,
) IChatService {
	if opts.SimilarityThreshold <= 0 {
		opts.SimilarityThreshold = retriever.DefaultThreshold
	}
	if opts.TopK <= 0 {
		opts.TopK = retriever.DefaultTopK
	}
	if opts.MMRLambda <= 0 {
		opts.MMRLambda = retriever.DefaultMMRLambda
	}
	return &chatService{
		uowFactory:  uowFactory,
		retriever:   ret,
		generator:   generator,
		vectorStore: vectorStore,
		rdb:         rdb,
		log:         log,
		opts:        opts,
	}
}

func (s *chatService) params(req *dto.AskRequest) retriever.Params {
	p := retriever.Params{
		TopK:         s.opts.TopK,
		Threshold:    s.opts.SimilarityThreshold,
		UseThreshold: true,
		UseMMR:       true,
		MMRLambda:    s.opts.MMRLambda,
	}
	if req.TopK > 0 {
		p.TopK = req.TopK
	}
	if req.SimilarityThreshold != nil {
		p.Threshold = *req.SimilarityThreshold
	}
	if req.UseThreshold != nil {
		p.UseThreshold = *req.UseThreshold
	}
	if req.UseMMR != nil {
		p.UseMMR = *req.UseMMR
	}
	if req.MMRLambda != nil {
		p.MMRLambda = *req.MMRLambda
	}
	return p
}

func (s *chatService) Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error) {
	cacheKey := s.cacheKey(req)
	if cached := s.cachedAnswer(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	res, err := s.retriever.Retrieve(ctx, req.Question, s.params(req))
	if err != nil {
		return nil, err
	}

	sources, info := s.buildSources(ctx, res, s.params(req).Threshold)

	text, err := s.generator.Generate(ctx, req.Question, res)
	if err != nil {
		return nil, err
	}

	response := &dto.AskResponse{
		Answer:     text,
		Sources:    sources,
		SearchInfo: info,
	}
	s.cacheAnswer(ctx, cacheKey, response)
	return response, nil
}

func (s *chatService) AskStream(
	ctx context.Context,
	req *dto.AskRequest,
	onSources func(sources []dto.SourceInfo, info dto.SearchInfo) error,
	onContent func(cumulative string) error,
) (*dto.AskResponse, error) {
	res, err := s.retriever.Retrieve(ctx, req.Question, s.params(req))
	if err != nil {
		return nil, err
	}

	sources, info := s.buildSources(ctx, res, s.params(req).Threshold)
	if err := onSources(sources, info); err != nil {
		return nil, err
	}

	text, err := s.generator.Stream(ctx, req.Question, res, onContent)
	if err != nil {
		return nil, err
	}

	return &dto.AskResponse{
		Answer:     text,
		Sources:    sources,
		SearchInfo: info,
	}, nil
}

func (s *chatService) Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	topK := req.TopK
	if topK <= 0 {
		topK = s.opts.TopK
	}

	res, err := s.retriever.SearchRaw(ctx, req.Query, topK)
	if err != nil {
		return nil, err
	}

	sources, info := s.buildSources(ctx, res, s.opts.SimilarityThreshold)
	return &dto.SearchResponse{
		Results:    sources,
		SearchInfo: info,
	}, nil
}

// buildSources joins hits to their document rows. Hits whose document is
// gone are stale vectors: they are skipped and purged opportunistically.
func (s *chatService) buildSources(ctx context.Context, res *retriever.Result, threshold float64) ([]dto.SourceInfo, dto.SearchInfo) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	docs := make(map[uuid.UUID]*entity.Document)
	staleDocs := make(map[uuid.UUID]bool)

	sources := make([]dto.SourceInfo, 0, len(res.Hits))
	kept := res.Hits[:0:0]
	for _, hit := range res.Hits {
		doc, seen := docs[hit.DocumentID]
		if !seen && !staleDocs[hit.DocumentID] {
			found, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: hit.DocumentID})
			if err != nil {
				s.log.Warn("chat", "Failed to load source document", map[string]interface{}{
					"document_id": hit.DocumentID.String(),
					"error":       err.Error(),
				})
				continue
			}
			if found == nil {
				staleDocs[hit.DocumentID] = true
			} else {
				docs[hit.DocumentID] = found
				doc = found
			}
		}
		if staleDocs[hit.DocumentID] {
			continue
		}

		kept = append(kept, hit)
		sources = append(sources, dto.SourceInfo{
			DocumentId:       hit.DocumentID,
			ChunkId:          hit.ChunkID,
			ChunkIndex:       hit.ChunkIndex,
			DocumentName:     doc.Filename,
			OriginalFilename: doc.OriginalFilename,
			FileType:         doc.FileType,
			ChunkText:        hit.Content,
			ContentPreview:   preview(hit.Content),
			Similarity:       round4(hit.Similarity),
			AboveThreshold:   hit.Similarity >= threshold,
		})
	}
	res.Hits = kept

	for docId := range staleDocs {
		id := docId
		go func() {
			purgeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.vectorStore.DeleteByDocument(purgeCtx, id); err != nil {
				s.log.Warn("chat", "Failed to purge stale vectors", map[string]interface{}{
					"document_id": id.String(),
					"error":       err.Error(),
				})
			}
		}()
	}

	info := dto.SearchInfo{
		TotalFound:          res.TotalFound,
		AboveThreshold:      res.AboveThreshold,
		Returned:            len(sources),
		SimilarityThreshold: threshold,
		ResultQuality:       string(res.Quality),
	}
	if len(sources) == 0 {
		info.ResultQuality = string(retriever.QualityNone)
	}
	return sources, info
}

func (s *chatService) cacheKey(req *dto.AskRequest) string {
	raw, _ := json.Marshal(req)
	return fmt.Sprintf("chat:answer:%x", sha256.Sum256(raw))
}

func (s *chatService) cachedAnswer(ctx context.Context, key string) *dto.AskResponse {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil // miss or redis down, both fine
	}
	var cached dto.AskResponse
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil
	}
	return &cached
}

func (s *chatService) cacheAnswer(ctx context.Context, key string, res *dto.AskResponse) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, raw, answerCacheTTL).Err(); err != nil {
		s.log.Debug("chat", "Answer cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= contentPreviewLen {
		return text
	}
	return string(runes[:contentPreviewLen]) + "..."
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
