package store

import "context"

// Stats summarizes collection sizes. Used by the stats CLI command.
type Stats struct {
	Users         int `json:"users"`
	Posts         int `json:"posts"`
	Answers       int `json:"answers"`
	Likes         int `json:"likes"`
	SavedPosts    int `json:"saved_posts"`
	Notifications int `json:"notifications"`
	UnreadCount   int `json:"unread_notifications"`
}

// CollectionStats counts the rows of every collection.
func (c queries) CollectionStats(ctx context.Context) (Stats, error) {
	var st Stats
	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM users`, &st.Users},
		{`SELECT COUNT(*) FROM posts`, &st.Posts},
		{`SELECT COUNT(*) FROM answers`, &st.Answers},
		{`SELECT COUNT(*) FROM post_likes`, &st.Likes},
		{`SELECT COUNT(*) FROM saved_posts`, &st.SavedPosts},
		{`SELECT COUNT(*) FROM notifications`, &st.Notifications},
		{`SELECT COUNT(*) FROM notifications WHERE is_read = 0`, &st.UnreadCount},
	}
	for _, c2 := range counts {
		if err := c.q.QueryRowContext(ctx, c2.query).Scan(c2.dest); err != nil {
			return Stats{}, wrapDB(err, "could not read collection stats")
		}
	}
	return st, nil
}
