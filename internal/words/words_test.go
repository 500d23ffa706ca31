package words

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResp struct {
	text string
	err  error
}

// 按脚本依次返回结果，脚本耗尽后重复最后一条
type fakeGenerator struct {
	textScript []fakeResp
	jsonScript []fakeResp

	textCalls      int
	jsonCalls      int
	lastTextPrompt string
	lastJSONPrompt string
}

func takeResp(script []fakeResp, call int) fakeResp {
	if call <= len(script) {
		return script[call-1]
	}

	return script[len(script)-1]
}

func (f *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	f.textCalls++
	f.lastTextPrompt = prompt

	resp := takeResp(f.textScript, f.textCalls)
	return resp.text, resp.err
}

func (f *fakeGenerator) GenerateJSON(_ context.Context, prompt string) (string, error) {
	f.jsonCalls++
	f.lastJSONPrompt = prompt

	resp := takeResp(f.jsonScript, f.jsonCalls)
	return resp.text, resp.err
}

func newFastSource(gen Generator) *RetrySource {
	src := NewRetrySource(gen)
	src.topicDelay = 0
	src.pairDelay = 0

	return src
}

func TestSuggestTopicsFallsBackAfterRetries(t *testing.T) {
	gen := &fakeGenerator{
		textScript: []fakeResp{{err: errors.New("接口超时")}},
	}

	got := newFastSource(gen).SuggestTopics(context.Background(), nil)

	assert.Equal(t, 3, gen.textCalls, "耗尽 3 次重试后才能走兜底")
	assert.Equal(t, FallbackTopics, got)
}

func TestSuggestTopicsRetriesThenSucceeds(t *testing.T) {
	gen := &fakeGenerator{
		textScript: []fakeResp{
			{err: errors.New("接口超时")},
			{err: errors.New("接口超时")},
			{text: "美食, 动物"},
		},
	}

	got := newFastSource(gen).SuggestTopics(context.Background(), nil)

	assert.Equal(t, 3, gen.textCalls)
	assert.Equal(t, []string{"美食", "动物"}, got)
}

func TestSuggestTopicsParsesMessyOutput(t *testing.T) {
	gen := &fakeGenerator{
		textScript: []fakeResp{
			{text: "```\n 美食 ，动物, 美食, 音乐 ,, 电影，书籍, 天气\n```"},
		},
	}

	got := newFastSource(gen).SuggestTopics(context.Background(), nil)

	// 去重、去空白、上限 5 个
	assert.Equal(t, []string{"美食", "动物", "音乐", "电影", "书籍"}, got)
	assert.Equal(t, 1, gen.textCalls)
}

func TestSuggestTopicsEmptyResultRetries(t *testing.T) {
	gen := &fakeGenerator{
		textScript: []fakeResp{
			{text: " , ,, "},
			{text: "旅行地"},
		},
	}

	got := newFastSource(gen).SuggestTopics(context.Background(), nil)

	assert.Equal(t, 2, gen.textCalls, "空结果视为失败并重试")
	assert.Equal(t, []string{"旅行地"}, got)
}

func TestSuggestTopicsPromptExcludesSeeds(t *testing.T) {
	gen := &fakeGenerator{
		textScript: []fakeResp{{text: "美食"}},
	}

	newFastSource(gen).SuggestTopics(context.Background(), []string{"旅行地", "职业"})

	assert.Contains(t, gen.lastTextPrompt, "旅行地")
	assert.Contains(t, gen.lastTextPrompt, "职业")
	assert.Contains(t, gen.lastTextPrompt, "排除")
}

func TestGenerateWordPairParsesFencedJSON(t *testing.T) {
	gen := &fakeGenerator{
		jsonScript: []fakeResp{
			{text: "```json\n{\"civilian\": \"Pizza\", \"liar\": \"Pasta\"}\n```"},
		},
	}

	got := newFastSource(gen).GenerateWordPair(context.Background(), "美食")

	require.Equal(t, 1, gen.jsonCalls)
	assert.Equal(t, Pair{Civilian: "Pizza", Liar: "Pasta"}, got)
	assert.Contains(t, gen.lastJSONPrompt, "美食")
}

func TestGenerateWordPairRejectsEmptyFields(t *testing.T) {
	gen := &fakeGenerator{
		jsonScript: []fakeResp{
			{text: "{\"civilian\": \"Pizza\", \"liar\": \"\"}"},
			{text: "{\"civilian\": \"Pizza\", \"liar\": \"Pasta\"}"},
		},
	}

	got := newFastSource(gen).GenerateWordPair(context.Background(), "美食")

	assert.Equal(t, 2, gen.jsonCalls, "字段为空视为失败并重试")
	assert.Equal(t, Pair{Civilian: "Pizza", Liar: "Pasta"}, got)
}

func TestGenerateWordPairFallsBackAfterRetries(t *testing.T) {
	gen := &fakeGenerator{
		jsonScript: []fakeResp{{err: errors.New("接口超时")}},
	}

	got := newFastSource(gen).GenerateWordPair(context.Background(), "美食")

	assert.Equal(t, 3, gen.jsonCalls)
	assert.Contains(t, FallbackPairs, got, "兜底词对必须来自固定表")
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, "{\"a\":1}", stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, "普通文本", stripFences("  普通文本  "))
}

func TestFallbackTablesAreUsable(t *testing.T) {
	assert.Len(t, FallbackTopics, 5)

	for _, pair := range FallbackPairs {
		assert.NotEmpty(t, strings.TrimSpace(pair.Civilian))
		assert.NotEmpty(t, strings.TrimSpace(pair.Liar))
		assert.NotEqual(t, pair.Civilian, pair.Liar)
	}
}
