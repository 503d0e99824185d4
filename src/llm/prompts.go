package llm

import (
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// PromptPair is a system/user message pair in FString syntax.
// Literal braces must be doubled.
type PromptPair struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// Prompts holds one template per generation task
type Prompts struct {
	Explanation  PromptPair `yaml:"explanation"`
	Exercises    PromptPair `yaml:"exercises"`
	LearningPath PromptPair `yaml:"learning_path"`
}

func DefaultPrompts() Prompts {
	return Prompts{
		Explanation: PromptPair{
			System: `你是一个专业的教育专家，擅长用通俗易懂的方式解释复杂的概念。`,
			User: `请用以下三种方式解释"{concept}"这个概念：
1. 核心定义
2. 用费曼技巧解释
3. 列出3个常见的误解

请按以下JSON格式返回：
{{"core_definition": "...", "feynman_explanation": "...", "misconceptions": ["...", "...", "..."]}}`,
		},
		Exercises: PromptPair{
			System: `你是一个专业的教育专家，擅长设计练习题。`,
			User: `请为"{concept}"这个概念生成{difficulty}难度的练习题，包括：
1. 2道判断题
2. 1个案例分析
3. 1道编程题

请按以下JSON格式返回：
{{
  "true_false": [{{"question": "...", "answer": true, "explanation": "..."}}],
  "case_studies": [{{"scenario": "...", "questions": ["..."], "answers": ["..."]}}],
  "code_exercises": [{{"description": "...", "template": "...", "solution": "...", "hints": ["..."]}}]
}}`,
		},
		LearningPath: PromptPair{
			System: `你是一个专业的教育专家，擅长制定学习计划。`,
			User: `为{user_level}级别的学习者制定"{concept}"的{days}天学习路径，包括每天的学习目标、学习活动和推荐的学习资源。

请按以下JSON格式返回：
{{"days": [{{"day": 1, "goal": "...", "activities": ["..."], "resources": ["..."]}}]}}`,
		},
	}
}

// withDefaults fills empty templates from DefaultPrompts
func (p Prompts) withDefaults() Prompts {
	d := DefaultPrompts()
	fill := func(dst *PromptPair, def PromptPair) {
		if dst.System == "" {
			dst.System = def.System
		}
		if dst.User == "" {
			dst.User = def.User
		}
	}
	fill(&p.Explanation, d.Explanation)
	fill(&p.Exercises, d.Exercises)
	fill(&p.LearningPath, d.LearningPath)
	return p
}

func newTemplate(p PromptPair) prompt.ChatTemplate {
	messages := []schema.MessagesTemplate{
		schema.SystemMessage(p.System),
		schema.UserMessage(p.User),
	}
	return prompt.FromMessages(schema.FString, messages...)
}
