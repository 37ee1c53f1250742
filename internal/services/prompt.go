package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/talent-allocator/internal/models"
)

// Every prompt opens with a task line so that logs and test doubles can tell the call shapes apart.
const (
	TaskClassifyIntention = "classify-intention"
	TaskEvaluatePosition  = "evaluate-position"
	TaskMatchIntention    = "match-intention"
	TaskAnalyzePosition   = "analyze-position"
)

// TaskOf returns the task named on a prompt's first line.
func TaskOf(prompt string) string {
	line, _, _ := strings.Cut(prompt, "\n")
	return strings.TrimSpace(strings.TrimPrefix(line, "TASK:"))
}

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildIntentionPrompt asks whether the candidate names a specific target position.
func (pb *PromptBuilder) BuildIntentionPrompt(profile models.CandidateProfile) string {
	return fmt.Sprintf(`TASK: %s
You are an experienced recruiter reading a candidate profile. Decide whether the candidate explicitly states the position they are applying for.

CANDIDATE NAME: %s
OBJECTIVE: %s
SELF EVALUATION: %s
MOST RECENT EXPERIENCE: %s

Only count a position the candidate states themselves (an objective line, "applying for", a target role). Do not infer one from skills.

Return ONLY a JSON object:
{
  "has_explicit_intention": <true or false>,
  "explicit_position_name": "<position name, or null>",
  "source_excerpt": "<the text the position was taken from, or null>",
  "reasoning": "<one sentence>"
}`,
		TaskClassifyIntention,
		profile.Name,
		orNA(profile.Objective),
		orNA(profile.SelfEvaluation),
		orNA(firstOf(profile.WorkExperience)))
}

// BuildEvaluationPrompt scores a candidate against one position.
func (pb *PromptBuilder) BuildEvaluationPrompt(profile models.CandidateProfile, position models.Position) string {
	education := make([]string, 0, len(profile.Education))
	for _, e := range profile.Education {
		education = append(education, strings.TrimSpace(strings.Join([]string{e.School, e.Degree, e.Major}, " ")))
	}

	return fmt.Sprintf(`TASK: %s
You are an expert HR recruiter scoring a candidate for the %s position.

POSITION DESCRIPTION:
%s

REQUIRED SKILLS: %s
NICE TO HAVE: %s

SCORING RUBRIC:
%s

CANDIDATE SKILLS: %s
EDUCATION: %s
EXPERIENCE:
%s
SELF EVALUATION: %s

Return ONLY a JSON object:
{
  "overall_score": <integer 0-100>,
  "grade": "<A, B, C or D>",
  "rationale": "<2-4 sentences>",
  "matches": ["<requirement the candidate meets>"],
  "gaps": ["<requirement the candidate misses>"],
  "potential": "<low, medium or high>"
}`,
		TaskEvaluatePosition,
		position.Name,
		position.Description,
		orNA(strings.Join(position.RequiredSkills, ", ")),
		orNA(strings.Join(position.NiceToHave, ", ")),
		orNA(position.EvaluationRubric),
		orNA(strings.Join(profile.SkillNames(), ", ")),
		orNA(strings.Join(education, "; ")),
		orNA(strings.Join(profile.WorkExperience, "\n")),
		orNA(profile.SelfEvaluation))
}

// BuildMatchIntentionPrompt asks whether a position is the one a candidate said they want.
func (pb *PromptBuilder) BuildMatchIntentionPrompt(intention, positionName, positionDescription string) string {
	return fmt.Sprintf(`TASK: %s
Decide whether a newly opened position is the position a candidate stated they are looking for.

CANDIDATE INTENTION: %s
NEW POSITION: %s
POSITION DESCRIPTION:
%s

Synonyms, translations and seniority variants of the same role count as a match. Different roles do not.

Return ONLY a JSON object:
{
  "match": <true or false>,
  "confidence": <number between 0.0 and 1.0>,
  "reasoning": "<one sentence>"
}`,
		TaskMatchIntention, intention, positionName, orNA(positionDescription))
}

// BuildPositionAnalysisPrompt derives requirement lists and a rubric from a position description.
func (pb *PromptBuilder) BuildPositionAnalysisPrompt(name, description string) string {
	return fmt.Sprintf(`TASK: %s
You are a hiring manager preparing an evaluation guide for the %s position.

POSITION DESCRIPTION:
%s

Return ONLY a JSON object:
{
  "required_skills": ["<core requirement>"],
  "nice_to_have": ["<bonus qualification>"],
  "evaluation_rubric": "<how to score 0-100: what 60, 76 and 86 mean for this position>"
}`,
		TaskAnalyzePosition, name, description)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func firstOf(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[0]
}
