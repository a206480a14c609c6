// Package chat 实现会话与消息的应用层编排
package chat

import "sort"

// 预置系统提示词，按场景选择，未命中时回退到 general
var systemPrompts = map[string]string{
	"general":  "You are a helpful AI assistant. Provide clear, accurate, and helpful responses.",
	"coding":   "You are an expert software developer. Help with coding questions, provide clean code examples, and explain programming concepts clearly.",
	"business": "You are a business consultant. Provide strategic advice, help with business planning, and offer insights on entrepreneurship and growth.",
	"creative": "You are a creative writing assistant. Help with storytelling, content creation, and creative projects. Be imaginative and inspiring.",
	"academic": "You are an academic tutor. Explain concepts clearly, help with research, and provide educational guidance across various subjects.",
	"saas":     "You are a SaaS expert. Help with software-as-a-service business models, product development, user experience, and scaling strategies.",
}

// DefaultPromptKey 默认场景标识
const DefaultPromptKey = "general"

// SystemPromptFor 返回指定场景的系统提示词。
// key 为空或未知时返回 general 场景的提示词。
func SystemPromptFor(key string) string {
	if p, ok := systemPrompts[key]; ok {
		return p
	}
	return systemPrompts[DefaultPromptKey]
}

// SystemPromptKeys 返回全部可用的场景标识
func SystemPromptKeys() []string {
	keys := make([]string, 0, len(systemPrompts))
	for k := range systemPrompts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
