package posts

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"blockpress/models"
	"blockpress/storage"
	"blockpress/utils"
)

func samplePosts(now time.Time) []models.Post {
	day := 24 * time.Hour
	return []models.Post{
		{
			Title:      "Building a Desk Setup for Long Coding Sessions",
			Slug:       "desk-setup-for-long-coding-sessions",
			Author:     "Sarah Chen",
			CoverImage: "https://images.unsplash.com/photo-1461749280684-dccba630e2f6?auto=format&fit=crop&w=800&h=400",
			Category:   "Technology",
			Tags:       []string{"hardware", "productivity", "setup"},
			Content: `A good desk setup pays for itself within a month. The three things that matter most are the keyboard, the pointing device and the screen.

## Start with input

Your hands touch the keyboard thousands of times an hour. A **mechanical keyboard** with a light switch reduces fatigue, and a mouse that fits your grip keeps your wrist neutral.

{{block name="Top Development Tools" image="/top-products.png" products="SKU123,SKU456,SKU789"}}

## Then the screen

Put the top edge of the monitor at eye level and about an arm's length away. A larger screen is only useful if you can read it without moving your head.

## Conclusion

Buy the keyboard first, the screen second and everything else later.`,
			PublishedAt: now.Add(-2 * day),
		},
		{
			Title:      "Design Systems: Creating Consistent User Experiences",
			Slug:       "design-systems-consistent-user-experiences",
			Author:     "Alex Rivera",
			CoverImage: "https://images.unsplash.com/photo-1561070791-2526d30994b5?auto=format&fit=crop&w=800&h=400",
			Category:   "Design",
			Tags:       []string{"design-systems", "ui-ux", "components"},
			Content: `A design system is a set of reusable components and the rules for combining them.

## Component libraries

Components should be small, documented and versioned like any other dependency.

## Design tokens

Tokens name the visual decisions (colours, spacing, type scale) so that every product reads them from one place.`,
			PublishedAt: now.Add(-7 * day),
		},
		{
			Title:      "Gaming Peripherals Worth the Money",
			Slug:       "gaming-peripherals-worth-the-money",
			Author:     "Emily Watson",
			CoverImage: "https://images.unsplash.com/photo-1551288049-bebda4e38f71?auto=format&fit=crop&w=800&h=400",
			Category:   "Gaming",
			Tags:       []string{"gaming", "hardware"},
			Content: `Most peripherals are marketing. A few are not.

{{block name="Mouse Pick" products="SKU456"}}

The mouse is the one upgrade you will notice in every match. Pair it with a fast monitor and you are done.

{{block name="Screen Pick" products="SKU789"}}`,
			PublishedAt: now.Add(-3 * day),
		},
	}
}

// Seed inserts the sample posts into an empty store. It returns the
// posts it inserted.
func Seed(ctx context.Context, store storage.PostStore, logger arbor.ILogger) ([]models.Post, error) {
	count, err := store.CountPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	if count > 0 {
		logger.Debug().Int("posts", count).Msg("Store not empty, skipping sample posts")
		return nil, nil
	}

	samples := samplePosts(time.Now().UTC())
	for i := range samples {
		p := &samples[i]
		p.ID = utils.GetUUID()
		p.UpdatedAt = p.PublishedAt
		if err := store.CreatePost(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to seed post %q: %w", p.Slug, err)
		}
	}
	logger.Info().Int("posts", len(samples)).Msg("Sample posts seeded")
	return samples, nil
}
