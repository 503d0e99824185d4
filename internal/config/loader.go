package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"feynman_tutor/src/llm"
	"feynman_tutor/src/model"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of prompts.yaml
type YAMLConfig struct {
	Prompts  llm.Prompts     `yaml:"prompts"`
	Concepts []model.Concept `yaml:"concepts"`
}

// LoadConfig loads prompts and seed concepts from a YAML file. A missing
// file is not an error; the built-in prompts and catalog are used instead.
func LoadConfig(filepath string) (*YAMLConfig, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &YAMLConfig{Prompts: llm.DefaultPrompts(), Concepts: DefaultConcepts()}, nil
		}
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config YAMLConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %v", err)
	}

	if len(config.Concepts) == 0 {
		config.Concepts = DefaultConcepts()
	}
	for i, c := range config.Concepts {
		if c.Name == "" {
			return nil, fmt.Errorf("concept %d has no name", i)
		}
	}
	return &config, nil
}

// DefaultConcepts is the built-in catalog
func DefaultConcepts() []model.Concept {
	return []model.Concept{
		{Name: "机器学习", Description: "让计算机从数据中学习规律并做出预测的方法。", Category: "人工智能", Difficulty: "中等", RelatedConcepts: []string{"深度学习", "算法", "Python", "大数据"}},
		{Name: "深度学习", Description: "基于多层神经网络的机器学习方法。", Category: "人工智能", Difficulty: "困难", RelatedConcepts: []string{"神经网络", "机器学习"}},
		{Name: "神经网络", Description: "由相互连接的神经元组成的计算模型。", Category: "人工智能", Difficulty: "困难", RelatedConcepts: []string{"深度学习", "算法"}},
		{Name: "Python", Description: "一种简洁易读的通用编程语言。", Category: "软件工程", Difficulty: "简单", RelatedConcepts: []string{"数据结构", "Web开发"}},
		{Name: "数据结构", Description: "组织和存储数据以便高效访问的方式。", Category: "计算机科学", Difficulty: "中等", RelatedConcepts: []string{"算法"}},
		{Name: "算法", Description: "解决问题的明确步骤。", Category: "计算机科学", Difficulty: "中等", RelatedConcepts: []string{"数据结构"}},
		{Name: "数据库", Description: "有组织地存储和管理数据的系统。", Category: "计算机科学", Difficulty: "中等", RelatedConcepts: []string{"大数据", "Web开发"}},
		{Name: "Web开发", Description: "构建网站和网络应用的过程。", Category: "软件工程", Difficulty: "简单", RelatedConcepts: []string{"Python", "数据库"}},
		{Name: "人工智能", Description: "让机器表现出智能行为的学科。", Category: "人工智能", Difficulty: "中等", RelatedConcepts: []string{"机器学习", "深度学习"}},
		{Name: "大数据", Description: "规模超出传统工具处理能力的数据集及其处理技术。", Category: "数据科学", Difficulty: "中等", RelatedConcepts: []string{"数据库", "机器学习"}},
	}
}
