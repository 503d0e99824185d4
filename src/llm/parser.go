package llm

import (
	"bytes"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"feynman_tutor/src/model"

	"github.com/bytedance/sonic"
)

// Parsers never fail. They return whatever structure they could recover
// and report whether anything was recognized.

const (
	maxHeadingRunes = 24
	// a bare line with no numbering, bullet or colon must be this short to count as a heading
	maxBareHeadingRunes = 6
)

var (
	bulletPattern = regexp.MustCompile(`^\s*(?:[-*•+]+|\(?\d+[.、)）]|（\d+）)\s*`)
	dayPattern    = regexp.MustCompile(`(?i)^(?:day\s*(\d+)|第\s*([0-9]+|[一二三四五六七八九十]+)\s*天)`)
	fencePattern  = regexp.MustCompile("^\\s*```")
	titlePattern  = regexp.MustCompile(`^(?:#+|\d+[.、)）])\s*(.+)$`)
)

// ----------------------------------------------------
// ================ Explanation ================

type explanationWire struct {
	CoreDefinition     string   `json:"core_definition"`
	FeynmanExplanation string   `json:"feynman_explanation"`
	Misconceptions     []string `json:"misconceptions"`
}

var explanationHeadings = []heading{
	{field: "feynman", keywords: []string{"费曼", "feynman", "通俗"}},
	{field: "misconceptions", keywords: []string{"误解", "误区", "misconception"}},
	{field: "core", keywords: []string{"核心定义", "定义", "definition"}},
}

// ParseExplanation reads a JSON object, then headed sections, then falls
// back to treating the first three paragraphs positionally.
func ParseExplanation(text string) (model.Explanation, bool) {
	if raw, ok := extractJSON(text); ok {
		var w explanationWire
		if err := sonic.UnmarshalString(raw, &w); err == nil && (w.CoreDefinition != "" || w.FeynmanExplanation != "") {
			return model.Explanation{
				CoreDefinition:     strings.TrimSpace(w.CoreDefinition),
				FeynmanExplanation: strings.TrimSpace(w.FeynmanExplanation),
				Misconceptions:     cleanItems(w.Misconceptions),
			}, true
		}
	}

	if sections := splitSections(text, explanationHeadings); len(sections) > 0 {
		explanation := model.Explanation{
			CoreDefinition:     joinLines(sections["core"]),
			FeynmanExplanation: joinLines(sections["feynman"]),
			Misconceptions:     cleanItems(sections["misconceptions"]),
		}
		if explanation.CoreDefinition != "" || explanation.FeynmanExplanation != "" {
			return explanation, true
		}
	}

	paragraphs := splitParagraphs(text)
	explanation := model.Explanation{Misconceptions: []string{}}
	if len(paragraphs) > 0 {
		explanation.CoreDefinition = paragraphs[0]
	}
	if len(paragraphs) > 1 {
		explanation.FeynmanExplanation = paragraphs[1]
	}
	if len(paragraphs) > 2 {
		explanation.Misconceptions = cleanItems(strings.Split(paragraphs[2], "\n"))
	}
	return explanation, len(paragraphs) > 1
}

// ----------------------------------------------------
// ================ Exercises ================

// oneOrMany accepts either a single object or a list of them
type oneOrMany[T any] []T

func (o *oneOrMany[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var v T
		if err := sonic.Unmarshal(data, &v); err != nil {
			return err
		}
		*o = oneOrMany[T]{v}
		return nil
	}
	var vs []T
	if err := sonic.Unmarshal(data, &vs); err != nil {
		return err
	}
	*o = vs
	return nil
}

type exercisesWire struct {
	TrueFalse     oneOrMany[model.TrueFalse]    `json:"true_false"`
	CaseStudies   oneOrMany[model.CaseStudy]    `json:"case_studies"`
	CodeExercises oneOrMany[model.CodeExercise] `json:"code_exercises"`
}

var exerciseHeadings = []heading{
	{field: "true_false", keywords: []string{"判断题", "判断", "true/false", "true or false"}},
	{field: "case", keywords: []string{"案例", "case"}},
	{field: "code", keywords: []string{"编程题", "编程", "代码", "code", "programming"}},
}

// ParseExercises reads a JSON object, then falls back to headed sections
func ParseExercises(text string) (model.Exercises, bool) {
	exercises := model.Exercises{
		TrueFalse:     []model.TrueFalse{},
		CaseStudies:   []model.CaseStudy{},
		CodeExercises: []model.CodeExercise{},
	}

	if raw, ok := extractJSON(text); ok {
		var w exercisesWire
		if err := sonic.UnmarshalString(raw, &w); err == nil && len(w.TrueFalse)+len(w.CaseStudies)+len(w.CodeExercises) > 0 {
			exercises.TrueFalse = append(exercises.TrueFalse, w.TrueFalse...)
			exercises.CaseStudies = append(exercises.CaseStudies, w.CaseStudies...)
			exercises.CodeExercises = append(exercises.CodeExercises, w.CodeExercises...)
			return exercises, true
		}
	}

	sections := splitSections(text, exerciseHeadings)
	exercises.TrueFalse = parseTrueFalse(sections["true_false"])
	if cs, ok := parseCaseStudy(sections["case"]); ok {
		exercises.CaseStudies = append(exercises.CaseStudies, cs)
	}
	if ce, ok := parseCodeExercise(sections["code"]); ok {
		exercises.CodeExercises = append(exercises.CodeExercises, ce)
	}

	found := len(exercises.TrueFalse)+len(exercises.CaseStudies)+len(exercises.CodeExercises) > 0
	return exercises, found
}

func parseTrueFalse(lines []string) []model.TrueFalse {
	questions := []model.TrueFalse{}
	for _, line := range lines {
		item := cleanItem(line)
		if item == "" {
			continue
		}
		last := len(questions) - 1
		if v, ok := cutLabel(item, "答案", "answer"); ok && last >= 0 {
			questions[last].Answer = isTrueMarker(v)
			continue
		}
		if v, ok := cutLabel(item, "解析", "解释", "explanation"); ok && last >= 0 {
			questions[last].Explanation = v
			continue
		}
		questions = append(questions, model.TrueFalse{
			Question: item,
			Answer:   isTrueMarker(item),
		})
	}
	return questions
}

func parseCaseStudy(lines []string) (model.CaseStudy, bool) {
	cs := model.CaseStudy{Questions: []string{}, Answers: []string{}}
	var scenario []string
	for _, line := range lines {
		item := cleanItem(line)
		if item == "" {
			continue
		}
		if v, ok := cutLabel(item, "参考答案", "答案", "answer"); ok {
			cs.Answers = append(cs.Answers, v)
			continue
		}
		if v, ok := cutLabel(item, "问题", "question"); ok {
			cs.Questions = append(cs.Questions, v)
			continue
		}
		scenario = append(scenario, item)
	}
	cs.Scenario = strings.Join(scenario, "\n")
	return cs, cs.Scenario != "" || len(cs.Questions) > 0
}

func parseCodeExercise(lines []string) (model.CodeExercise, bool) {
	ce := model.CodeExercise{Hints: []string{}}
	var description, block []string
	var blocks []string
	inFence := false

	for _, line := range lines {
		if fencePattern.MatchString(line) {
			if inFence {
				blocks = append(blocks, strings.Join(block, "\n"))
				block = nil
			}
			inFence = !inFence
			continue
		}
		if inFence {
			block = append(block, line)
			continue
		}
		item := cleanItem(line)
		if item == "" {
			continue
		}
		if v, ok := cutLabel(item, "提示", "hint"); ok {
			ce.Hints = append(ce.Hints, v)
			continue
		}
		description = append(description, item)
	}
	if inFence && len(block) > 0 {
		blocks = append(blocks, strings.Join(block, "\n"))
	}

	ce.Description = strings.Join(description, "\n")
	if len(blocks) > 0 {
		ce.Template = blocks[0]
	}
	if len(blocks) > 1 {
		ce.Solution = blocks[1]
	}
	return ce, ce.Description != "" || ce.Template != ""
}

func isTrueMarker(s string) bool {
	lower := strings.ToLower(s)
	if strings.Contains(lower, "错误") || strings.Contains(lower, "false") || strings.Contains(lower, "×") {
		return false
	}
	for _, marker := range []string{"正确", "true", "√"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// ----------------------------------------------------
// ================ Learning path ================

type pathWire struct {
	Days []model.PathDay `json:"days"`
}

type pathDayWire struct {
	Goal       string   `json:"goal"`
	Activities []string `json:"activities"`
	Resources  []string `json:"resources"`
}

var dayKeyPattern = regexp.MustCompile(`^(?i)day[_\s]*(\d+)$`)

// ParseLearningPath reads {"days": [...]} or {"day1": {...}} JSON, then
// falls back to "Day N" / "第N天" headed text.
func ParseLearningPath(text string) (model.LearningPath, bool) {
	path := model.LearningPath{Days: []model.PathDay{}}

	if raw, ok := extractJSON(text); ok {
		if days := parsePathJSON(raw); len(days) > 0 {
			path.Days = days
			return path, true
		}
	}

	path.Days = parsePathText(text)
	return path, len(path.Days) > 0
}

func parsePathJSON(raw string) []model.PathDay {
	var w pathWire
	if err := sonic.UnmarshalString(raw, &w); err == nil && len(w.Days) > 0 {
		for i := range w.Days {
			if w.Days[i].Day <= 0 {
				w.Days[i].Day = i + 1
			}
			w.Days[i].Activities = nonNil(w.Days[i].Activities)
			w.Days[i].Resources = nonNil(w.Days[i].Resources)
		}
		return w.Days
	}

	var keyed map[string]pathDayWire
	if err := sonic.UnmarshalString(raw, &keyed); err != nil {
		return nil
	}
	var days []model.PathDay
	for key, d := range keyed {
		m := dayKeyPattern.FindStringSubmatch(strings.TrimSpace(key))
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		days = append(days, model.PathDay{
			Day:        n,
			Goal:       d.Goal,
			Activities: nonNil(d.Activities),
			Resources:  nonNil(d.Resources),
		})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day < days[j].Day })
	return days
}

func parsePathText(text string) []model.PathDay {
	var days []model.PathDay
	var current *model.PathDay
	mode := "activities"

	for _, line := range splitLines(text) {
		stripped := strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "#*"))
		if stripped == "" {
			continue
		}

		if m := dayPattern.FindStringSubmatch(stripped); m != nil {
			n := len(days) + 1
			if m[1] != "" {
				n, _ = strconv.Atoi(m[1])
			} else if v, ok := parseChineseNumber(m[2]); ok {
				n = v
			}
			days = append(days, model.PathDay{Day: n, Activities: []string{}, Resources: []string{}})
			current = &days[len(days)-1]
			mode = "activities"
			if rest := afterColon(stripped[len(m[0]):]); rest != "" {
				current.Goal = rest
			}
			continue
		}
		if current == nil {
			continue
		}

		item := cleanItem(stripped)
		if v, ok := cutLabel(item, "学习目标", "目标", "goal"); ok {
			current.Goal = v
			continue
		}
		if v, ok := cutLabel(item, "推荐资源", "学习资源", "资源", "resources", "resource"); ok {
			mode = "resources"
			if v != "" {
				current.Resources = append(current.Resources, v)
			}
			continue
		}
		if v, ok := cutLabel(item, "学习活动", "活动", "activities", "activity"); ok {
			mode = "activities"
			if v != "" {
				current.Activities = append(current.Activities, v)
			}
			continue
		}

		switch {
		case strings.Contains(item, "http"):
			current.Resources = append(current.Resources, item)
		case current.Goal == "" && !bulletPattern.MatchString(stripped):
			current.Goal = item
		case mode == "resources":
			current.Resources = append(current.Resources, item)
		default:
			current.Activities = append(current.Activities, item)
		}
	}
	return days
}

var chineseDigits = map[rune]int{'一': 1, '二': 2, '三': 3, '四': 4, '五': 5, '六': 6, '七': 7, '八': 8, '九': 9}

// parseChineseNumber handles 1 to 99 written with 一 to 九 and 十
func parseChineseNumber(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	runes := []rune(s)
	switch len(runes) {
	case 1:
		if runes[0] == '十' {
			return 10, true
		}
		d, ok := chineseDigits[runes[0]]
		return d, ok
	case 2:
		if runes[0] == '十' {
			d, ok := chineseDigits[runes[1]]
			return 10 + d, ok
		}
		if runes[1] == '十' {
			d, ok := chineseDigits[runes[0]]
			return d * 10, ok
		}
	case 3:
		tens, ok1 := chineseDigits[runes[0]]
		ones, ok2 := chineseDigits[runes[2]]
		if runes[1] == '十' && ok1 && ok2 {
			return tens*10 + ones, true
		}
	}
	return 0, false
}

// ----------------------------------------------------
// ================ Helpers ================

type heading struct {
	field    string
	keywords []string
}

// splitSections groups lines under the most recent recognized heading.
// Lines before the first heading are dropped.
func splitSections(text string, headings []heading) map[string][]string {
	sections := map[string][]string{}
	current := ""
	inFence := false
	for _, line := range splitLines(text) {
		if fencePattern.MatchString(line) {
			inFence = !inFence
		}
		if field, rest, ok := matchHeading(line, headings); ok && !inFence {
			current = field
			if _, seen := sections[field]; !seen {
				sections[field] = []string{}
			}
			if rest != "" {
				sections[field] = append(sections[field], rest)
			}
			continue
		}
		if current != "" {
			sections[current] = append(sections[current], line)
		}
	}
	return sections
}

func matchHeading(line string, headings []heading) (string, string, bool) {
	trimmed := strings.TrimSpace(line)
	stripped := strings.Trim(cleanItem(strings.TrimLeft(trimmed, "#")), "* ")
	if stripped == "" {
		return "", "", false
	}
	decorated := stripped != trimmed

	title, rest := stripped, ""
	if i := strings.IndexAny(stripped, ":："); i >= 0 {
		title = stripped[:i]
		rest = strings.TrimSpace(strings.TrimLeft(stripped[i:], ":："))
		decorated = true
	}
	title = strings.Trim(title, "* ")
	n := utf8.RuneCountInString(title)
	if n > maxHeadingRunes || (!decorated && n > maxBareHeadingRunes) {
		return "", "", false
	}

	lower := strings.ToLower(title)
	for _, h := range headings {
		for _, kw := range h.keywords {
			if strings.Contains(lower, kw) {
				return h.field, strings.Trim(rest, "* "), true
			}
		}
	}
	return "", "", false
}

// cutLabel matches "label: value" (optionally numbered, e.g. "问题1：")
func cutLabel(item string, labels ...string) (string, bool) {
	lower := strings.ToLower(item)
	for _, label := range labels {
		if !strings.HasPrefix(lower, label) {
			continue
		}
		rest := strings.TrimLeft(item[len(label):], "0123456789 *")
		if rest == "" {
			return "", true
		}
		if strings.HasPrefix(rest, ":") || strings.HasPrefix(rest, "：") {
			return strings.TrimSpace(strings.TrimLeft(rest, ":：")), true
		}
	}
	return "", false
}

func afterColon(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, ":：-— *")
	return strings.TrimSpace(s)
}

// extractJSON returns the outermost {...} span, ignoring code fences
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// splitParagraphs splits on blank lines and drops a leading title line: any
// "## Title", or a "1. 核心定义" line unless it starts a numbered list.
func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, block := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		first := strings.TrimSpace(lines[0])
		startsList := len(lines) > 1 && bulletPattern.MatchString(lines[1])
		if isTitleLine(first) && (strings.HasPrefix(first, "#") || !startsList) {
			lines = lines[1:]
		}
		block = strings.TrimSpace(strings.Join(lines, "\n"))
		if block == "" {
			continue
		}
		paragraphs = append(paragraphs, block)
	}
	return paragraphs
}

// isTitleLine matches a short numbered or #-prefixed line without sentence punctuation
func isTitleLine(line string) bool {
	m := titlePattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return false
	}
	title := strings.Trim(m[1], "* ")
	return title != "" &&
		utf8.RuneCountInString(title) <= maxHeadingRunes &&
		!strings.ContainsAny(title, "。，,;；!！?？")
}

func cleanItem(line string) string {
	return strings.TrimSpace(bulletPattern.ReplaceAllString(line, ""))
}

func cleanItems(lines []string) []string {
	items := []string{}
	for _, line := range lines {
		if item := cleanItem(line); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func joinLines(lines []string) string {
	var kept []string
	for _, line := range lines {
		if s := strings.TrimSpace(line); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, "\n")
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
