package models

import "strings"

// TagSet 表示一组能力标签（技能、机构类别、分队类型）。
// 标签在解析时统一转为小写并去除空白，匹配时做子串包含判断，
// 与历史上的逗号分隔字符串字段保持相同的匹配语义。
type TagSet []string

// ParseTags 将逗号分隔的标签字符串解析为规范化的标签集合
func ParseTags(raw string) TagSet {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make(TagSet, 0, len(parts))
	for _, p := range parts {
		tag := strings.ToLower(strings.TrimSpace(p))
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}

// MatchesCategory 判断集合中是否有任一标签出现在工单类别文本中（不区分大小写）
func (s TagSet) MatchesCategory(category string) bool {
	category = strings.ToLower(category)
	for _, tag := range s {
		if strings.Contains(category, tag) {
			return true
		}
	}
	return false
}

// String 还原为逗号分隔的存储格式
func (s TagSet) String() string {
	return strings.Join(s, ",")
}
