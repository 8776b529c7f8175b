package strategy

import "strings"

// Analyzer 是评论情感分析器接口。实现返回 1–5 的情感分
// （1 最负面，5 最正面），与常见的五星情感模型对齐。
//
// 默认实现是 LexiconAnalyzer；需要模型级精度时可以接入外部
// 情感服务，只要实现本接口即可替换。
type Analyzer interface {
	ScoreComment(text string) float64
}

// CommentStats 是一批评论的情感统计。
type CommentStats struct {
	// AverageSentiment 是平均情感分，1–5；空评论集为中性 3.0。
	AverageSentiment float64
	PositiveRatio    float64 // 情感分 ≥ 4 的占比
	NegativeRatio    float64 // 情感分 ≤ 2 的占比
}

// AnalyzeComments 汇总一批评论的情感统计。评论为空时返回中性。
func AnalyzeComments(a Analyzer, comments []string) CommentStats {
	if len(comments) == 0 {
		return CommentStats{AverageSentiment: 3.0}
	}

	var sum float64
	var positive, negative int
	for _, c := range comments {
		score := a.ScoreComment(c)
		sum += score
		if score >= 4 {
			positive++
		} else if score <= 2 {
			negative++
		}
	}

	n := float64(len(comments))
	return CommentStats{
		AverageSentiment: sum / n,
		PositiveRatio:    float64(positive) / n,
		NegativeRatio:    float64(negative) / n,
	}
}

// NormalizeSentiment 把 1–5 的情感分缩放到 [0,1]：(avg-1)/4。
func NormalizeSentiment(avg float64) float64 {
	s := (avg - 1) / 4
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// LexiconAnalyzer 是基于词表的轻量情感分析器。
// 按正负词净计数映射到 1–5：净正 ≥2 → 5，净正 1 → 4，中性 → 3，
// 净负 1 → 2，净负 ≥2 → 1。无词表命中时为中性 3。
type LexiconAnalyzer struct{}

var positiveWords = map[string]struct{}{
	"love": {}, "great": {}, "amazing": {}, "awesome": {}, "perfect": {},
	"beautiful": {}, "best": {}, "good": {}, "excellent": {}, "wonderful": {},
	"favorite": {}, "incredible": {}, "banger": {}, "masterpiece": {}, "catchy": {},
	"superbe": {}, "magnifique": {}, "excellente": {}, "adore": {}, "genial": {},
}

var negativeWords = map[string]struct{}{
	"hate": {}, "bad": {}, "terrible": {}, "awful": {}, "worst": {},
	"boring": {}, "annoying": {}, "horrible": {}, "trash": {}, "skip": {},
	"overrated": {}, "disappointing": {}, "mauvais": {}, "nul": {}, "ennuyeux": {},
}

func (LexiconAnalyzer) ScoreComment(text string) float64 {
	var net int
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:'\"()")
		if _, ok := positiveWords[word]; ok {
			net++
		} else if _, ok := negativeWords[word]; ok {
			net--
		}
	}

	switch {
	case net >= 2:
		return 5
	case net == 1:
		return 4
	case net == -1:
		return 2
	case net <= -2:
		return 1
	default:
		return 3
	}
}

var _ Analyzer = LexiconAnalyzer{}
