package comments

import (
	"blockpress/models"
	"blockpress/storage"
)

// Threads groups comments under their top-level parent. Top-level
// comments keep the given order; replies are oldest first. Replies whose
// parent is missing are dropped.
func Threads(all []models.Comment) []models.CommentThread {
	replies := make(map[string][]models.Comment)
	var top []models.Comment
	for _, c := range all {
		if c.ParentID == "" {
			top = append(top, c)
			continue
		}
		replies[c.ParentID] = append(replies[c.ParentID], c)
	}

	threads := make([]models.CommentThread, 0, len(top))
	for _, c := range top {
		rs := replies[c.ID]
		if rs == nil {
			rs = []models.Comment{}
		}
		storage.SortComments(rs, storage.SortOldest)
		threads = append(threads, models.CommentThread{Comment: c, Replies: rs})
	}
	return threads
}
