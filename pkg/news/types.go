package news

import "time"

// ArticleSource identifies the publisher of an article.
type ArticleSource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Article is a single NewsAPI article. Fields the publisher omitted stay
// empty rather than failing the decode.
type Article struct {
	Source      ArticleSource `json:"source"`
	Author      string        `json:"author"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	URLToImage  string        `json:"urlToImage"`
	PublishedAt time.Time     `json:"publishedAt"`
	Content     string        `json:"content"`
}

// everythingResponse is the raw /everything payload. NewsAPI reports
// application-level failures through status/code/message with an HTTP 200,
// so both shapes decode into the same struct.
type everythingResponse struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
}
