// Seed tool: fills a development database with authors, taxonomy, site
// settings and a spread of posts in every workflow state.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bizsite/cache"
	"bizsite/config"
	"bizsite/domain"
	"bizsite/logger"
	"bizsite/store"
)

var (
	categoryNames = []string{"Guides", "News", "Case Studies", "Company"}
	tagNames      = []string{"Go", "SQL", "Marketing", "Design", "Hiring", "Security"}
)

func main() {
	var numPosts int
	var sameTime int
	var seed int64
	flag.IntVar(&numPosts, "posts", 60, "number of posts to insert")
	flag.IntVar(&sameTime, "same-time", 3, "posts sharing each publish timestamp")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()
	db, err := store.Open(ctx, cfg.DBDriver, cfg.DBURL)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	start := time.Now()
	r := rand.New(rand.NewSource(seed))
	if err := populate(ctx, db, r, numPosts, max(sameTime, 1), cfg); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
	if cfg.RedisURL != "" {
		if err := dropCachedCounts(ctx, db, cfg.RedisURL); err != nil {
			log.Warn("could not drop cached taxonomy counts", zap.Error(err))
		}
	}
	log.Info("seed done", zap.Int("posts", numPosts), zap.Duration("took", time.Since(start).Truncate(time.Millisecond)))
}

func populate(ctx context.Context, db *store.Store, r *rand.Rand, numPosts, sameTime int, cfg config.Config) error {
	if _, err := db.SaveSiteConfig(ctx, domain.SiteConfig{
		Title:       cfg.SiteTitle,
		Description: cfg.SiteDescription,
		Footer:      "© " + cfg.SiteTitle,
	}); err != nil {
		return err
	}

	authors := make([]string, 0, 3)
	for _, name := range []string{"Alex Rivera", "Jordan Lee", "Sam Okafor"} {
		id, err := db.CreateAuthor(ctx, domain.Author{Name: name})
		if err != nil {
			return err
		}
		authors = append(authors, id)
	}

	categories := make([]string, 0, len(categoryNames))
	for _, name := range categoryNames {
		c, err := db.CreateCategory(ctx, slugify(name), name)
		if err != nil {
			return err
		}
		categories = append(categories, c.ID)
	}
	tags := make([]string, 0, len(tagNames))
	for _, name := range tagNames {
		t, err := db.CreateTag(ctx, slugify(name), name)
		if err != nil {
			return err
		}
		tags = append(tags, t.ID)
	}

	statuses := []domain.PostStatus{domain.StatusPublished, domain.StatusPublished, domain.StatusPublished, domain.StatusReadyToPublish, domain.StatusDraft}
	newest := time.Now().UTC().Truncate(time.Hour)
	for i := 0; i < numPosts; i++ {
		title := fmt.Sprintf("Post number %d", i+1)
		p := domain.Post{
			Slug:        slugify(title),
			Title:       title,
			Excerpt:     ptr(fmt.Sprintf("A short summary of post %d.", i+1)),
			Content:     body(r, i),
			ReadingTime: ptr(2 + r.Intn(10)),
			Status:      statuses[r.Intn(len(statuses))],
			AuthorID:    &authors[r.Intn(len(authors))],
		}
		if p.Status == domain.StatusPublished {
			at := newest.Add(-time.Duration(i/sameTime) * 24 * time.Hour)
			p.PublishedAt = &at
		}
		if i%3 == 0 {
			mediaID, err := db.CreateMedia(ctx, domain.Media{
				URL: fmt.Sprintf("/media/post-%d.jpg", i+1),
				Alt: title,
			})
			if err != nil {
				return err
			}
			p.FeaturedImageID = &mediaID
		}

		id, err := db.CreatePost(ctx, p)
		if err != nil {
			return err
		}
		if err := db.AttachCategories(ctx, id, categories[r.Intn(len(categories))]); err != nil {
			return err
		}
		if err := db.AttachTags(ctx, id, tags[r.Intn(len(tags))], tags[r.Intn(len(tags))]); err != nil {
			return err
		}
	}
	return nil
}

// dropCachedCounts clears taxonomy counts cached by the server so the new
// posts show up before the TTL runs out.
func dropCachedCounts(ctx context.Context, db *store.Store, redisURL string) error {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return err
	}
	client := redis.NewClient(opts)
	defer client.Close()
	return cache.NewTaxonomy(db, client, 0, zap.NewNop()).Invalidate(ctx)
}

func body(r *rand.Rand, i int) string {
	var b strings.Builder
	sections := 2 + r.Intn(4)
	for s := 0; s < sections; s++ {
		fmt.Fprintf(&b, "## Section %d\n\n", s+1)
		for p := 0; p < 1+r.Intn(3); p++ {
			b.WriteString("Lorem ipsum dolor sit amet, consectetur adipiscing elit. Sed do eiusmod tempor incididunt ut labore.\n\n")
		}
		if i%4 == 0 && s == 0 {
			b.WriteString("<!-- CTA:services -->\n\n")
		}
	}
	return b.String()
}

func slugify(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}

func ptr[T any](v T) *T { return &v }
