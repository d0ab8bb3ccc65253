package service

import (
	"strings"
	"unicode"
)

// negationPrefix 标记被否定词翻转的单词
const negationPrefix = "NOT_"

var negationWords = map[string]bool{
	"not": true, "no": true, "never": true, "nothing": true,
	"nowhere": true, "noone": true, "none": true, "nor": true,
	"neither": true, "n't": true,
}

// NormalizeText 文本归一化：小写、否定词标记、去标点、去停用词。
// 已带 NOT_ 前缀的词原样通过，因此对归一化结果再做一次归一化不变。
func NormalizeText(text string) string {
	tokens := tokenize(text)

	processed := make([]string, 0, len(tokens))
	negate := false
	for _, token := range tokens {
		// 已标记的词不再小写，保持幂等
		if !strings.HasPrefix(token, negationPrefix) {
			token = strings.ToLower(token)
		}

		switch {
		case negationWords[token]:
			negate = true
			processed = append(processed, token)
		case negate && isAlpha(token):
			// 只翻转紧随其后的一个单词
			processed = append(processed, negationPrefix+token)
			negate = false
		default:
			processed = append(processed, token)
			// 否定只作用一个词：标点或其他词都会终结作用域
			negate = false
		}
	}

	// 去掉字母和下划线之外的字符，压缩空白
	joined := strings.Join(processed, " ")
	var b strings.Builder
	b.Grow(len(joined))
	for _, r := range joined {
		if unicode.IsLetter(r) || r == '_' || r == ' ' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	words := strings.Fields(b.String())
	kept := words[:0]
	for _, word := range words {
		if strings.HasPrefix(word, negationPrefix) || !stopwords[word] {
			kept = append(kept, word)
		}
	}

	return strings.Join(kept, " ")
}

// tokenize 把文本切成单词和单字符标点。
// 缩写里的 n't 拆成独立的词，don't -> do + n't，
// 这样否定逻辑才能命中缩写形式。
func tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		word := current.String()
		current.Reset()

		if len(word) > 3 && strings.EqualFold(word[len(word)-3:], "n't") {
			tokens = append(tokens, word[:len(word)-3], word[len(word)-3:])
			return
		}
		tokens = append(tokens, word)
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '\'':
			current.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()

	return tokens
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// NLTK 英文停用词表
var stopwords = buildStopwords()

func buildStopwords() map[string]bool {
	words := []string{
		"i", "me", "my", "myself", "we", "our", "ours", "ourselves",
		"you", "you're", "you've", "you'll", "you'd", "your", "yours",
		"yourself", "yourselves", "he", "him", "his", "himself", "she",
		"she's", "her", "hers", "herself", "it", "it's", "its", "itself",
		"they", "them", "their", "theirs", "themselves", "what", "which",
		"who", "whom", "this", "that", "that'll", "these", "those", "am",
		"is", "are", "was", "were", "be", "been", "being", "have", "has",
		"had", "having", "do", "does", "did", "doing", "a", "an", "the",
		"and", "but", "if", "or", "because", "as", "until", "while",
		"of", "at", "by", "for", "with", "about", "against", "between",
		"into", "through", "during", "before", "after", "above", "below",
		"to", "from", "up", "down", "in", "out", "on", "off", "over",
		"under", "again", "further", "then", "once", "here", "there",
		"when", "where", "why", "how", "all", "any", "both", "each",
		"few", "more", "most", "other", "some", "such", "no", "nor",
		"not", "only", "own", "same", "so", "than", "too", "very", "s",
		"t", "can", "will", "just", "don", "don't", "should",
		"should've", "now", "d", "ll", "m", "o", "re", "ve", "y", "ain",
		"aren", "aren't", "couldn", "couldn't", "didn", "didn't",
		"doesn", "doesn't", "hadn", "hadn't", "hasn", "hasn't", "haven",
		"haven't", "isn", "isn't", "ma", "mightn", "mightn't", "mustn",
		"mustn't", "needn", "needn't", "shan", "shan't", "shouldn",
		"shouldn't", "wasn", "wasn't", "weren", "weren't", "won",
		"won't", "wouldn", "wouldn't",
	}

	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
