package filter

import "strings"

// Mode 过滤模式
type Mode string

const (
	ModeDisabled    Mode = "disabled"
	ModeIncludeOnly Mode = "include_only"
	ModeExclude     Mode = "exclude"
)

// ParseMode 未知值回落为 disabled
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeIncludeOnly, ModeExclude:
		return Mode(s)
	default:
		return ModeDisabled
	}
}

// Keyword 候选帖文本字段上的关键词谓词。纯函数，构造后不可变。
type Keyword struct {
	keywords        []string
	mode            Mode
	caseSensitive   bool
	searchInContent bool
}

// New 大小写不敏感时关键词在构造期统一小写
func New(keywords []string, mode Mode, caseSensitive, searchInContent bool) *Keyword {
	kws := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if !caseSensitive {
			k = strings.ToLower(k)
		}
		kws = append(kws, k)
	}
	return &Keyword{
		keywords:        kws,
		mode:            mode,
		caseSensitive:   caseSensitive,
		searchInContent: searchInContent,
	}
}

// Enabled 过滤是否生效
func (f *Keyword) Enabled() bool {
	return f.mode != ModeDisabled && len(f.keywords) > 0
}

// Matches 标题（可选加正文）对关键词集合做子串包含，
// include_only 返回命中结果，exclude 返回其取反
func (f *Keyword) Matches(title, body string) bool {
	if !f.Enabled() {
		return true
	}

	if !f.caseSensitive {
		title = strings.ToLower(title)
	}
	content := ""
	if f.searchInContent {
		content = body
		if !f.caseSensitive {
			content = strings.ToLower(content)
		}
	}
	searchText := strings.TrimSpace(title + " " + content)

	hit := false
	for _, kw := range f.keywords {
		if strings.Contains(searchText, kw) {
			hit = true
			break
		}
	}

	if f.mode == ModeExclude {
		return !hit
	}
	return hit
}
