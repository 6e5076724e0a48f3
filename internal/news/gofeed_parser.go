package news

import (
	"context"

	"github.com/mmcdole/gofeed"
)

// GofeedParser adapts mmcdole/gofeed to the FeedParser interface.
type GofeedParser struct {
	parser *gofeed.Parser
}

func NewGofeedParser() *GofeedParser {
	return &GofeedParser{parser: gofeed.NewParser()}
}

func (g *GofeedParser) Parse(ctx context.Context, url string) ([]FeedItem, error) {
	feed, err := g.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, err
	}

	items := make([]FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		item := FeedItem{
			Title:   it.Title,
			Link:    it.Link,
			Summary: it.Description,
			Content: it.Content,
		}
		if it.PublishedParsed != nil {
			item.Published = *it.PublishedParsed
		}
		items = append(items, item)
	}
	return items, nil
}
