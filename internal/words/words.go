package words

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

// 一局游戏使用的一对词语：平民词和骗子词
type Pair struct {
	Civilian string `json:"civilian"`
	Liar     string `json:"liar"`
}

// Source 是房间状态机看到的词语来源
// 两个方法都保证返回可用结果，内部失败走兜底数据，不向外抛错
type Source interface {
	SuggestTopics(ctx context.Context, excluding []string) []string
	GenerateWordPair(ctx context.Context, topic string) Pair
}

// Generator 是底层的文本生成调用，视为不可靠依赖
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

const (
	maxAttempts = 3
	maxTopics   = 5

	topicRetryDelay = 1000 * time.Millisecond
	pairRetryDelay  = 1500 * time.Millisecond
)

// 重试全部失败后的兜底主题
var FallbackTopics = []string{"便利店", "学校", "旅行地", "职业", "家用电器"}

// 重试全部失败后随机抽取的兜底词对
var FallbackPairs = []Pair{
	{Civilian: "小狗", Liar: "小猫"},
	{Civilian: "炸酱面", Liar: "拉面"},
	{Civilian: "苹果", Liar: "梨"},
	{Civilian: "公交车", Liar: "出租车"},
	{Civilian: "夏天", Liar: "冬天"},
	{Civilian: "爱情", Liar: "友情"},
	{Civilian: "笔记本电脑", Liar: "平板电脑"},
}

// RetrySource 在 Generator 之上实现重试和兜底
type RetrySource struct {
	gen Generator

	topicDelay time.Duration
	pairDelay  time.Duration
}

func NewRetrySource(gen Generator) *RetrySource {
	return &RetrySource{
		gen:        gen,
		topicDelay: topicRetryDelay,
		pairDelay:  pairRetryDelay,
	}
}

func (rs *RetrySource) SuggestTopics(ctx context.Context, excluding []string) []string {
	prompt := buildTopicsPrompt(excluding)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := rs.gen.GenerateText(ctx, prompt)
		if err == nil {
			topics := parseTopics(text)
			if len(topics) > 0 {
				return topics
			}

			err = errors.New("解析出的主题列表为空")
		}

		zap.L().Warn(
			"生成主题失败",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt < maxAttempts {
			time.Sleep(rs.topicDelay)
		}
	}

	zap.L().Error("生成主题重试耗尽，使用兜底主题")

	return slices.Clone(FallbackTopics)
}

func (rs *RetrySource) GenerateWordPair(ctx context.Context, topic string) Pair {
	prompt := buildPairPrompt(topic)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := rs.gen.GenerateJSON(ctx, prompt)
		if err == nil {
			pair, perr := parsePair(text)
			if perr == nil {
				return pair
			}

			err = perr
		}

		zap.L().Warn(
			"生成词对失败",
			zap.String("topic", topic),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt < maxAttempts {
			time.Sleep(rs.pairDelay)
		}
	}

	zap.L().Error(
		"生成词对重试耗尽，使用兜底词对",
		zap.String("topic", topic),
	)

	return FallbackPairs[rand.IntN(len(FallbackPairs))]
}

func buildTopicsPrompt(excluding []string) string {
	var b strings.Builder

	b.WriteString("请为“骗子（Liar）”语言游戏推荐 5 个可用的主题（类别），用中文回答。\n")
	b.WriteString("输出格式：用英文逗号(,)分隔的纯文本。例：\"美食, 动物, 音乐, 电影, 书籍\"\n")

	if len(excluding) > 0 {
		b.WriteString("[排除条件] 以下主题已经推荐过，请排除它们并给出不重复的新主题：")
		b.WriteString(strings.Join(excluding, ", "))
		b.WriteString("\n")
	}

	b.WriteString("可以使用例子里出现的主题，但请尽量多样化。")

	return b.String()
}

func buildPairPrompt(topic string) string {
	var b strings.Builder

	b.WriteString("这是为“骗子（Liar）”语言游戏生成词语的任务。\n\n")
	b.WriteString("主题（类别）：\"" + topic + "\"\n\n")
	b.WriteString("[重要规则]\n")
	b.WriteString("必须选择属于该主题的具体事例、名称或条目。\n")
	b.WriteString("- 主题是“电影”→ 给出具体的电影名（如“复仇者联盟”），不要演员、导演、类型\n")
	b.WriteString("- 主题是“美食”→ 给出具体的菜名（如“炸酱面”），不要厨师、餐厅、做法\n")
	b.WriteString("- 主题是“动物”→ 给出具体的动物名（如“小狗”），不要饲养员、动物园\n\n")
	b.WriteString("[必要条件]\n")
	b.WriteString("1. 平民词和骗子词必须是同类别里相似但能明确区分的两个具体事例\n")
	b.WriteString("2. 大众都熟悉的东西\n")
	b.WriteString("3. 难度适中，描述含糊时平民之间也会互相怀疑\n\n")
	b.WriteString("输出 JSON 格式：\n{\n  \"civilian\": \"平民词\",\n  \"liar\": \"骗子词\"\n}\n")

	return b.String()
}

// 去掉模型偶尔包裹的 markdown 代码块
func stripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	return strings.TrimSpace(text)
}

func parseTopics(text string) []string {
	text = stripFences(text)
	// 容忍模型输出中文逗号
	text = strings.ReplaceAll(text, "，", ",")

	seen := make(map[string]bool)
	topics := make([]string, 0, maxTopics)

	for _, part := range strings.Split(text, ",") {
		topic := strings.TrimSpace(part)
		if topic == "" || seen[topic] {
			continue
		}

		seen[topic] = true
		topics = append(topics, topic)

		if len(topics) >= maxTopics {
			break
		}
	}

	return topics
}

func parsePair(text string) (Pair, error) {
	var pair Pair

	if err := json.Unmarshal([]byte(stripFences(text)), &pair); err != nil {
		return Pair{}, errors.New("解析词对 JSON 失败: " + err.Error())
	}

	pair.Civilian = strings.TrimSpace(pair.Civilian)
	pair.Liar = strings.TrimSpace(pair.Liar)

	if pair.Civilian == "" || pair.Liar == "" {
		return Pair{}, errors.New("词对字段缺失或为空")
	}

	return pair, nil
}
