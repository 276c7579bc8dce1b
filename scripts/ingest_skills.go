// Seeds the Qdrant skill index with the built-in taxonomy so the vector
// resolver can serve related-skill lookups beyond exact category matches.
//
// Run with: go run scripts/ingest_skills.go
package main

import (
	"context"
	"log"

	"talenthub/match-engine/internal/config"
	"talenthub/match-engine/internal/services"
)

// taxonomySeed lists the skills to index, grouped by category. Mirrors the
// static taxonomy in the scoring package.
var taxonomySeed = []struct {
	Name     string
	Category string
}{
	{"Customer Service", "customer_support"},
	{"Customer Support", "customer_support"},
	{"Technical Support", "customer_support"},
	{"Help Desk", "customer_support"},
	{"Chat Support", "customer_support"},
	{"Sales", "sales"},
	{"Telemarketing", "sales"},
	{"Lead Generation", "sales"},
	{"Business Development", "sales"},
	{"Account Management", "sales"},
	{"Go", "software"},
	{"Python", "software"},
	{"Java", "software"},
	{"JavaScript", "software"},
	{"TypeScript", "software"},
	{"Node.js", "software"},
	{"React", "software"},
	{"PHP", "software"},
	{"SQL", "data"},
	{"Excel", "data"},
	{"Data Analysis", "data"},
	{"Google Sheets", "data"},
	{"Photoshop", "design"},
	{"Figma", "design"},
	{"UI Design", "design"},
	{"Graphic Design", "design"},
	{"Data Entry", "admin"},
	{"Virtual Assistance", "admin"},
	{"Scheduling", "admin"},
	{"Email Management", "admin"},
	{"Bookkeeping", "finance"},
	{"Accounting", "finance"},
	{"Payroll", "finance"},
	{"QuickBooks", "finance"},
	{"SEO", "marketing"},
	{"Content Writing", "marketing"},
	{"Copywriting", "marketing"},
	{"Social Media", "marketing"},
	{"Email Marketing", "marketing"},
}

func main() {
	log.Println("🚀 Starting skill taxonomy ingestion...")

	// Load configuration
	cfg := config.Load()

	// Initialize services
	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	skillIndex, err := services.NewSkillIndexService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := skillIndex.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	ctx := context.Background()

	ingested := 0
	for _, skill := range taxonomySeed {
		embedding, err := geminiService.GenerateEmbedding(ctx, skill.Name)
		if err != nil {
			log.Printf("⚠️  Failed to embed %q: %v\n", skill.Name, err)
			continue
		}

		if err := skillIndex.UpsertSkill(ctx, skill.Name, skill.Category, embedding); err != nil {
			log.Printf("⚠️  Failed to upsert %q: %v\n", skill.Name, err)
			continue
		}

		ingested++
		log.Printf("📥 Indexed %q (%s)\n", skill.Name, skill.Category)
	}

	log.Printf("✅ Skill ingestion completed: %d/%d skills indexed\n", ingested, len(taxonomySeed))
}
