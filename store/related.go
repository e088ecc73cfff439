package store

import (
	"context"
	"fmt"

	"bizsite/domain"
)

// A shared category and a shared tag currently count the same towards
// relatedness.
const (
	categoryWeight = 1
	tagWeight      = 1
)

// RelatedPosts returns published posts that share categories or tags with
// postID, most shared terms first, newest first within a score.
func (s *Store) RelatedPosts(ctx context.Context, postID string, limit int) ([]domain.ListedPost, error) {
	rows, err := s.db.QueryContext(ctx, `WITH shared AS (
			SELECT pc2.post_id AS post_id, ? AS weight
			FROM post_categories pc1
			JOIN post_categories pc2 ON pc2.category_id = pc1.category_id
			WHERE pc1.post_id = ? AND pc2.post_id <> ?
			UNION ALL
			SELECT pt2.post_id, ?
			FROM post_tags pt1
			JOIN post_tags pt2 ON pt2.tag_id = pt1.tag_id
			WHERE pt1.post_id = ? AND pt2.post_id <> ?
		)
		SELECT `+listedColumns+`, SUM(s.weight) AS score
		FROM shared s
		JOIN posts p ON p.id = s.post_id
		`+listedJoins+`
		WHERE `+publishedPredicate+`
		GROUP BY p.id
		ORDER BY score DESC, p.published_at DESC, p.id DESC
		LIMIT ?`,
		categoryWeight, postID, postID, tagWeight, postID, postID, limit)
	if err != nil {
		return nil, fmt.Errorf("query related posts: %w", err)
	}
	defer rows.Close()

	out := []domain.ListedPost{}
	for rows.Next() {
		var score int
		p, err := scanListed(rows, &score)
		if err != nil {
			return nil, fmt.Errorf("scan related post: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate related posts: %w", err)
	}
	return out, nil
}
