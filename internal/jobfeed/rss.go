package jobfeed

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"smart-resume-go/internal/config"
	"smart-resume-go/internal/logger"
	"smart-resume-go/internal/types"
)

// rssDocument RSS 2.0 信道结构，只取职位条目需要的字段
type rssDocument struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Region      string `xml:"region"`
}

// Client RSS 职位源客户端。职位板的 RSS 输出是只读的公共资源，
// 拉取失败只影响职位推荐展示，不影响简历分析主流程。
type Client struct {
	feedURL    string
	maxItems   int
	httpClient *http.Client
}

// NewClient 根据配置创建职位源客户端
func NewClient(cfg *config.JobFeedConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxItems := cfg.MaxItems
	if maxItems <= 0 {
		maxItems = 60
	}
	return &Client{
		feedURL:    cfg.FeedURL,
		maxItems:   maxItems,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchJobs 拉取职位源并按关键词过滤。keywords 为空时返回全部条目，
// 否则仅保留标题或描述命中任一关键词的职位。结果条数受 maxItems 约束。
func (c *Client) FetchJobs(ctx context.Context, keywords []string) ([]types.JobPosting, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("创建职位源请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("拉取职位源失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("职位源返回非预期状态码: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("读取职位源响应失败: %w", err)
	}

	var doc rssDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("解析职位源 XML 失败: %w", err)
	}

	lowerKeywords := make([]string, len(keywords))
	for i, kw := range keywords {
		lowerKeywords[i] = strings.ToLower(kw)
	}

	jobs := make([]types.JobPosting, 0, c.maxItems)
	for _, item := range doc.Channel.Items {
		if len(jobs) >= c.maxItems {
			break
		}
		if !matchesKeywords(item, lowerKeywords) {
			continue
		}
		jobs = append(jobs, toPosting(item))
	}

	logger.Ctx(ctx).Debug().
		Str("feed", c.feedURL).
		Int("total", len(doc.Channel.Items)).
		Int("matched", len(jobs)).
		Msg("职位源拉取完成")
	return jobs, nil
}

func matchesKeywords(item rssItem, lowerKeywords []string) bool {
	if len(lowerKeywords) == 0 {
		return true
	}
	haystack := strings.ToLower(item.Title + " " + item.Description)
	for _, kw := range lowerKeywords {
		if kw != "" && strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

// toPosting 转换 RSS 条目。职位板惯例是 "公司: 职位名" 形式的标题，
// 能切分时拆出公司名。
func toPosting(item rssItem) types.JobPosting {
	title := strings.TrimSpace(item.Title)
	company := ""
	if idx := strings.Index(title, ":"); idx > 0 {
		company = strings.TrimSpace(title[:idx])
		title = strings.TrimSpace(title[idx+1:])
	}
	return types.JobPosting{
		Title:       title,
		Company:     company,
		Location:    strings.TrimSpace(item.Region),
		URL:         strings.TrimSpace(item.Link),
		PublishedAt: parsePubDate(item.PubDate),
	}
}

// parsePubDate RSS 源的日期格式不统一，逐个格式尝试，全失败时返回零值
func parsePubDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
