package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"talenthub/match-engine/internal/models"
	"talenthub/match-engine/internal/scoring"
)

// RelatedSkillResolver decides, per required skill, whether the candidate holds
// a related skill worth partial credit. Resolution happens before scoring so
// the calculators stay pure.
type RelatedSkillResolver interface {
	ResolveRelated(ctx context.Context, candidate *models.CandidateProfile, job *models.JobPosting) scoring.RelatedSkills
}

// ── Static resolver ────────────────────────────────────────────────────────

type staticResolver struct{}

// NewStaticResolver resolves related skills from the built-in category
// taxonomy only.
func NewStaticResolver() RelatedSkillResolver {
	return &staticResolver{}
}

// ResolveRelated implements RelatedSkillResolver.
func (s *staticResolver) ResolveRelated(_ context.Context, candidate *models.CandidateProfile, job *models.JobPosting) scoring.RelatedSkills {
	return scoring.BuildStaticRelated(candidate, job)
}

// ── Vector skill index (Qdrant) ────────────────────────────────────────────

type SkillMatch struct {
	Name     string
	Category string
	Score    float32
}

type SkillIndexService interface {
	InitCollection() error
	UpsertSkill(ctx context.Context, name, category string, embedding []float32) error
	FindNearest(ctx context.Context, embedding []float32, limit int) ([]SkillMatch, error)
}

type skillIndexService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewSkillIndexService(urlStr, apiKey, collectionName string) (SkillIndexService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port, not the HTTP one
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &skillIndexService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 size
	}, nil
}

// InitCollection implements SkillIndexService.
func (s *skillIndexService) InitCollection() error {
	ctx := context.Background()

	exists, err := s.client.CollectionExists(ctx, s.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Println("✅ Skill index collection already exists")
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", s.collectionName)
	return nil
}

// UpsertSkill implements SkillIndexService. The point ID is derived from the
// normalized skill name, so re-ingesting the taxonomy overwrites in place.
func (s *skillIndexService) UpsertSkill(ctx context.Context, name, category string, embedding []float32) error {
	pointID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(scoring.NormalizeSkill(name)))

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(pointID.String()),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"name":     name,
			"category": category,
		}),
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert skill point: %w", err)
	}

	return nil
}

// FindNearest implements SkillIndexService.
func (s *skillIndexService) FindNearest(ctx context.Context, embedding []float32, limit int) ([]SkillMatch, error) {
	searchResult, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search skill index: %w", err)
	}

	var matches []SkillMatch
	for _, point := range searchResult {
		match := SkillMatch{Score: point.Score}
		if name, ok := point.Payload["name"]; ok {
			if val, ok := name.GetKind().(*qdrant.Value_StringValue); ok {
				match.Name = val.StringValue
			}
		}
		if category, ok := point.Payload["category"]; ok {
			if val, ok := category.GetKind().(*qdrant.Value_StringValue); ok {
				match.Category = val.StringValue
			}
		}
		matches = append(matches, match)
	}

	return matches, nil
}

// ── Vector resolver ────────────────────────────────────────────────────────

// relatedSimilarityThreshold is the minimum cosine similarity between a
// required skill and a candidate skill to count as related.
const relatedSimilarityThreshold = 0.75

type vectorResolver struct {
	index  SkillIndexService
	gemini GeminiService
}

// NewVectorResolver resolves related skills through the vector index, with the
// static taxonomy as the base layer. Index or embedding failures degrade to the
// static result; they never fail a computation.
func NewVectorResolver(index SkillIndexService, gemini GeminiService) RelatedSkillResolver {
	return &vectorResolver{index: index, gemini: gemini}
}

// ResolveRelated implements RelatedSkillResolver.
func (v *vectorResolver) ResolveRelated(ctx context.Context, candidate *models.CandidateProfile, job *models.JobPosting) scoring.RelatedSkills {
	related := scoring.BuildStaticRelated(candidate, job)

	have := make(map[string]bool, len(candidate.Skills))
	for _, skill := range candidate.Skills {
		have[scoring.NormalizeSkill(skill.Name)] = true
	}

	for _, required := range job.RequiredSkills {
		reqNorm := scoring.NormalizeSkill(required)
		if related[reqNorm] || have[reqNorm] {
			continue
		}

		embedding, err := v.gemini.GenerateEmbedding(ctx, required)
		if err != nil {
			log.Printf("⚠️  Skill embedding failed for %q, keeping static result: %v\n", required, err)
			continue
		}

		matches, err := v.index.FindNearest(ctx, embedding, 5)
		if err != nil {
			log.Printf("⚠️  Skill index lookup failed for %q, keeping static result: %v\n", required, err)
			continue
		}

		for _, match := range matches {
			if match.Score < relatedSimilarityThreshold {
				continue
			}
			if have[scoring.NormalizeSkill(match.Name)] {
				related[reqNorm] = true
				break
			}
		}
	}

	return related
}
