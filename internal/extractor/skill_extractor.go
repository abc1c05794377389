package extractor

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// techVariants 常见数据库/技术名称变体，独立于词表按整词匹配
var techVariants = []string{"postgresql", "postgres", "mysql", "mongodb", "oracle", "sql server"}

var (
	techLineRe       = regexp.MustCompile(`(?i)technical skills\s*[:\-]\s*(.+)`)
	techLinePrefixRe = regexp.MustCompile(`(?i)^\s*technical skills\s*[:\-]?\s*`)
	skillSplitRe     = regexp.MustCompile("[,;•\n]+")
	phraseSplitRe    = regexp.MustCompile(`[,.;:!?•()\[\]\n]+`)
)

// SkillExtractor 基于词表与模式匹配的技能抽取器
// 纯函数式：构造时建好短语索引，抽取过程无副作用
type SkillExtractor struct {
	skills             []string
	skillTokens        map[string]struct{}
	enableNounFallback bool
}

// NewSkillExtractor 创建技能抽取器
// vocabulary 为空时使用内置词表；词条加载时小写、去空白，空词条丢弃
func NewSkillExtractor(vocabulary []string, enableNounFallback bool) *SkillExtractor {
	if len(vocabulary) == 0 {
		vocabulary = DefaultSkillsVocabulary()
	}

	skills := make([]string, 0, len(vocabulary))
	tokens := make(map[string]struct{})
	for _, s := range vocabulary {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		skills = append(skills, s)
		for _, tok := range tokenize(s) {
			tokens[tok] = struct{}{}
		}
	}

	return &SkillExtractor{
		skills:             skills,
		skillTokens:        tokens,
		enableNounFallback: enableNounFallback,
	}
}

// ExtractSkills 多策略联合抽取技能，返回排序去重后的小写技能列表
// 策略1-3无条件执行取并集；策略4仅在前三者全部落空时触发
func (e *SkillExtractor) ExtractSkills(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	lower := strings.ToLower(text)
	found := make(map[string]struct{})

	// 策略1：词表短语精确匹配（大小写不敏感，支持多词短语与 c++/node.js 类符号词）
	for _, skill := range e.skills {
		if containsPhrase(lower, skill) {
			found[skill] = struct{}{}
		}
	}

	// 策略2：技术名称变体整词匹配，独立于词表
	for _, variant := range techVariants {
		if containsPhrase(lower, variant) {
			found[variant] = struct{}{}
		}
	}

	// 策略3：解析 "Technical Skills:" 标注行，词表外技能也能捕获
	for _, s := range extractTechnicalSkillsLine(text) {
		found[strings.ToLower(s)] = struct{}{}
	}

	// 策略4：名词短语兜底，仅在全部落空时作为召回补偿
	if len(found) == 0 && e.enableNounFallback {
		e.nounPhraseFallback(lower, found)
	}

	result := make([]string, 0, len(found))
	for s := range found {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// extractTechnicalSkillsLine 提取 "Technical Skills:" 行中罗列的技能
// 先全文搜索，找不到再逐行匹配前缀；分隔符支持逗号/分号/项目符号/换行
func extractTechnicalSkillsLine(text string) []string {
	if text == "" {
		return nil
	}

	var remainder string
	if m := techLineRe.FindStringSubmatch(text); m != nil {
		remainder = m[1]
	} else {
		for _, line := range strings.Split(text, "\n") {
			if techLinePrefixRe.MatchString(line) {
				rest := techLinePrefixRe.ReplaceAllString(line, "")
				if rest != "" {
					remainder = rest
					break
				}
			}
		}
	}

	if remainder == "" {
		return nil
	}

	parts := skillSplitRe.Split(remainder, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// nounPhraseFallback 在标点分隔的候选短语中寻找含词表词根的片段
// 短语整体入选而非仅命中的词；长度不足3字符的片段忽略
func (e *SkillExtractor) nounPhraseFallback(lower string, found map[string]struct{}) {
	for _, phrase := range phraseSplitRe.Split(lower, -1) {
		phrase = strings.TrimSpace(phrase)
		if utf8.RuneCountInString(phrase) < 3 {
			continue
		}
		for _, tok := range tokenize(phrase) {
			_, ok := e.skillTokens[tok]
			if !ok {
				_, ok = e.skillTokens[lemma(tok)]
			}
			if ok {
				found[phrase] = struct{}{}
				break
			}
		}
	}
}

// containsPhrase 判断短语是否以整词形式出现在文本中
// 不用 \b 边界：c++、c#、node.js 等符号词在正则词边界下会误判
func containsPhrase(lower, phrase string) bool {
	for start := 0; ; {
		idx := strings.Index(lower[start:], phrase)
		if idx < 0 {
			return false
		}
		idx += start

		beforeOK := idx == 0
		if !beforeOK {
			r, _ := utf8.DecodeLastRuneInString(lower[:idx])
			beforeOK = !isWordRune(r)
		}

		end := idx + len(phrase)
		afterOK := end == len(lower)
		if !afterOK {
			r, _ := utf8.DecodeRuneInString(lower[end:])
			afterOK = !isWordRune(r)
		}

		if beforeOK && afterOK {
			return true
		}
		start = idx + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// tokenize 切分为词元，保留 + # . / - 等技能名常见符号
func tokenize(s string) []string {
	isTokenRune := func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r) ||
			r == '+' || r == '#' || r == '.' || r == '/' || r == '-'
	}

	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tok := strings.Trim(b.String(), "./-")
			if tok != "" {
				tokens = append(tokens, tok)
			}
			b.Reset()
		}
	}
	for _, r := range s {
		if isTokenRune(r) {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// lemma 近似词根还原，覆盖常见英文复数形式
func lemma(tok string) string {
	switch {
	case strings.HasSuffix(tok, "ies") && len(tok) > 4:
		return tok[:len(tok)-3] + "y"
	case strings.HasSuffix(tok, "es") && len(tok) > 4:
		return tok[:len(tok)-2]
	case strings.HasSuffix(tok, "s") && len(tok) > 3 && !strings.HasSuffix(tok, "ss"):
		return tok[:len(tok)-1]
	default:
		return tok
	}
}
