package collector

import (
	"errors"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NewsItem 统一采集后的基础结构，构造后不再修改
type NewsItem struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      Source    `json:"source"`
	PublishedAt time.Time `json:"publishedAt"`
	Summary     string    `json:"summary,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
}

var (
	errMissingTitle = errors.New("item has no title")
	errMissingURL   = errors.New("item has no url")
)

// ItemInput 构造 NewsItem 的原始字段
type ItemInput struct {
	Title       string
	Href        string
	BaseURL     string // 站点根地址，用于补全相对链接
	PublishedAt time.Time
	Summary     string
	ImageURL    string
}

// NewItem 按固定优先级补全字段：
// 链接为绝对地址则直接使用，否则拼接站点根地址；标题为空时由链接最后一段 slug 生成。
func NewItem(src Source, in ItemInput) (NewsItem, error) {
	link := AbsoluteURL(in.BaseURL, in.Href)
	if link == "" {
		return NewsItem{}, errMissingURL
	}

	title := cleanTitle(in.Title)
	if title == "" {
		title = TitleFromSlug(link)
	}
	if title == "" {
		return NewsItem{}, errMissingTitle
	}

	return NewsItem{
		Title:       title,
		URL:         link,
		Source:      src,
		PublishedAt: in.PublishedAt,
		Summary:     strings.TrimSpace(in.Summary),
		ImageURL:    AbsoluteURL(in.BaseURL, in.ImageURL),
	}, nil
}

// AbsoluteURL 相对链接补全为 base 域名下的绝对地址
func AbsoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	// 绝对地址原样保留，不做重新编码
	if u.IsAbs() {
		return href
	}
	if base == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() {
		return ""
	}
	return b.ResolveReference(u).String()
}

// TitleFromSlug 取链接路径最后一段，按 "-" 拆词后每个词首字母大写
func TitleFromSlug(link string) string {
	p := link
	if u, err := url.Parse(link); err == nil {
		p = u.Path
	}
	slug := path.Base(strings.TrimRight(p, "/"))
	if slug == "." || slug == "/" {
		return ""
	}

	// Caser 有状态，不能跨 goroutine 共享
	caser := cases.Title(language.English, cases.NoLower)
	words := strings.Split(slug, "-")
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		out = append(out, caser.String(w))
	}
	return strings.Join(out, " ")
}

func cleanTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
