package search

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/ternarybob/arbor"

	"blockpress/blocks"
	"blockpress/models"
)

// Indexer keeps an inverted index of posts in Redis. Each token maps to a
// sorted set of post IDs scored by publish time, and each post keeps the set
// of tokens it was indexed under so re-indexing can drop stale entries.
type Indexer struct {
	client *redis.Client
	logger arbor.ILogger
}

func NewIndexer(client *redis.Client, logger arbor.ILogger) *Indexer {
	return &Indexer{client: client, logger: logger}
}

// DocumentTokens returns the tokens a post is indexed under.
func DocumentTokens(post *models.Post) []string {
	text := post.Title + " " + post.Author + " " + post.Category + " " + blocks.PlainText(post.Content)
	for _, tag := range post.Tags {
		text += " " + tag + " #" + tag
	}
	return Tokenize(text)
}

func (ix *Indexer) IndexPost(ctx context.Context, post *models.Post) error {
	old, err := ix.client.SMembers(ctx, postTokensKey(post.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to read tokens of post %s: %w", post.ID, err)
	}

	tokens := DocumentTokens(post)
	score := float64(post.PublishedAt.Unix())

	_, err = ix.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, t := range old {
			pipe.ZRem(ctx, invertedKey(t), post.ID)
		}
		pipe.Del(ctx, postTokensKey(post.ID))
		if len(tokens) == 0 {
			return nil
		}
		members := make([]interface{}, 0, len(tokens))
		for _, t := range tokens {
			pipe.ZAdd(ctx, invertedKey(t), redis.Z{Score: score, Member: post.ID})
			members = append(members, t)
		}
		pipe.SAdd(ctx, postTokensKey(post.ID), members...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to index post %s: %w", post.ID, err)
	}

	ix.logger.Debug().Str("post_id", post.ID).Int("tokens", len(tokens)).Msg("Post indexed")
	return nil
}

func (ix *Indexer) RemovePost(ctx context.Context, id string) error {
	old, err := ix.client.SMembers(ctx, postTokensKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to read tokens of post %s: %w", id, err)
	}

	_, err = ix.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, t := range old {
			pipe.ZRem(ctx, invertedKey(t), id)
		}
		pipe.Del(ctx, postTokensKey(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove post %s from index: %w", id, err)
	}
	return nil
}

// Query returns the IDs of posts matching every token of q, newest first.
// A limit of zero or less returns all matches.
func (ix *Indexer) Query(ctx context.Context, q string, limit int) ([]string, error) {
	tokens := Tokenize(q)
	if len(tokens) == 0 {
		return nil, nil
	}

	lists := make([][]string, len(tokens))
	errs := make([]error, len(tokens))

	var wg sync.WaitGroup
	for i, token := range tokens {
		wg.Add(1)
		go func(i int, token string) {
			defer wg.Done()
			lists[i], errs[i] = ix.client.ZRevRange(ctx, invertedKey(token), 0, -1).Result()
		}(i, token)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("failed to read index for %q: %w", tokens[i], err)
		}
	}
	return intersect(lists, limit), nil
}

// intersect keeps the IDs present in every list. Order follows the first
// list after sorting by length, which is newest first for ZRevRange results.
func intersect(lists [][]string, limit int) []string {
	if len(lists) == 0 {
		return nil
	}
	for _, l := range lists {
		if len(l) == 0 {
			return nil
		}
	}

	sort.SliceStable(lists, func(i, j int) bool { return len(lists[i]) < len(lists[j]) })
	base := lists[0]

	others := make([]map[string]struct{}, 0, len(lists)-1)
	for _, l := range lists[1:] {
		m := make(map[string]struct{}, len(l))
		for _, id := range l {
			m[id] = struct{}{}
		}
		others = append(others, m)
	}

	out := make([]string, 0, len(base))
	for _, id := range base {
		match := true
		for _, s := range others {
			if _, ok := s[id]; !ok {
				match = false
				break
			}
		}
		if match {
			out = append(out, id)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}
