package services

import (
	"fmt"

	"feynman_tutor/src/model"
)

// Deterministic content served when the model is unavailable or its
// answer cannot be parsed.

func fallbackExplanation(concept string) model.Explanation {
	return model.Explanation{
		CoreDefinition:     fmt.Sprintf("%s的核心定义是...", concept),
		FeynmanExplanation: fmt.Sprintf("用费曼技巧解释%s...", concept),
		Misconceptions: []string{
			fmt.Sprintf("关于%s的常见误解1...", concept),
			fmt.Sprintf("关于%s的常见误解2...", concept),
			fmt.Sprintf("关于%s的常见误解3...", concept),
		},
		Source: model.SourceFallback,
	}
}

func fallbackExercises(concept string) model.Exercises {
	return model.Exercises{
		TrueFalse: []model.TrueFalse{
			{
				Question:    fmt.Sprintf("关于%s的说法1是正确的。", concept),
				Answer:      true,
				Explanation: fmt.Sprintf("解释为什么关于%s的说法1是正确的。", concept),
			},
			{
				Question:    fmt.Sprintf("关于%s的说法2是错误的。", concept),
				Answer:      false,
				Explanation: fmt.Sprintf("解释为什么关于%s的说法2是错误的。", concept),
			},
		},
		CaseStudies: []model.CaseStudy{
			{
				Scenario: fmt.Sprintf("场景1：如何使用%s解决问题A...", concept),
				Questions: []string{
					fmt.Sprintf("在场景1中，%s的应用是否正确？", concept),
					fmt.Sprintf("在场景1中，如何改进%s的应用？", concept),
				},
				Answers: []string{"是的，应用正确。", "可以通过以下方式改进..."},
			},
		},
		CodeExercises: []model.CodeExercise{
			{
				Description: fmt.Sprintf("编写代码实现%s的基本功能...", concept),
				Template:    "def function_name():\n    # 在这里编写代码\n    pass",
				Solution:    "def function_name():\n    # 解决方案\n    return result",
				Hints: []string{
					fmt.Sprintf("提示1：考虑%s的核心特性...", concept),
					fmt.Sprintf("提示2：注意%s的边界条件...", concept),
				},
			},
		},
		Source: model.SourceFallback,
	}
}

var pathPhases = []struct{ goal, activity string }{
	{"了解%s的核心定义和基本术语", "阅读%s的入门资料并整理笔记"},
	{"用自己的话解释%s", "向他人讲解%s并记录讲不清楚的地方"},
	{"通过练习巩固%s", "完成%s相关的练习题"},
	{"将%s应用到实际问题", "完成一个使用%s的小项目"},
	{"复习%s并查漏补缺", "回顾%s的常见误解并自测"},
}

// fallbackPath spreads the phases over the requested number of days
func fallbackPath(concept, level string, days int) model.LearningPath {
	path := model.LearningPath{
		Concept:   concept,
		UserLevel: level,
		Days:      make([]model.PathDay, 0, days),
		Source:    model.SourceFallback,
	}
	for i := 0; i < days; i++ {
		phase := pathPhases[i*len(pathPhases)/days]
		path.Days = append(path.Days, model.PathDay{
			Day:        i + 1,
			Goal:       fmt.Sprintf(phase.goal, concept),
			Activities: []string{fmt.Sprintf(phase.activity, concept)},
			Resources:  []string{},
		})
	}
	return path
}
