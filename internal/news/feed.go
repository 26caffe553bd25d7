package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"
)

// rssFeed はRSS 2.0のルート要素。
type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Category    string `xml:"category"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

// FeedConfig はRSSフィード生成の設定。
type FeedConfig struct {
	SiteTitle       string
	SiteDescription string
	BaseURL         string
}

// BuildFeed は公開済み記事からRSS 2.0フィードを生成する。
// 記事はListPublishedの順（公開日の新しい順）で出力する。
func (s *Service) BuildFeed(ctx context.Context, cfg FeedConfig) ([]byte, error) {
	articles, err := s.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("フィードの生成に失敗しました: %w", err)
	}

	channel := rssChannel{
		Title:       cfg.SiteTitle,
		Link:        cfg.BaseURL,
		Description: cfg.SiteDescription,
		Language:    "ja",
	}

	if len(articles) > 0 {
		channel.LastBuildDate = articles[0].PublishedAt.Format(time.RFC1123Z)
	}

	for _, a := range articles {
		link := fmt.Sprintf("%s/news/%d", cfg.BaseURL, a.ID)
		channel.Items = append(channel.Items, rssItem{
			Title:       a.Title,
			Link:        link,
			Description: a.Content,
			Category:    string(a.Category),
			PubDate:     a.PublishedAt.Format(time.RFC1123Z),
			GUID:        link,
		})
	}

	out, err := xml.MarshalIndent(rssFeed{Version: "2.0", Channel: channel}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("フィードのシリアライズに失敗しました: %w", err)
	}

	return append([]byte(xml.Header), out...), nil
}
