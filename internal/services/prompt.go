package services

import (
	"fmt"
)

const (
	maxJobDescriptionChars = 3000
	maxResumeChars         = 8000
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildEvaluationPrompt creates the prompt for scoring one resume against a
// job description.
func (pb *PromptBuilder) BuildEvaluationPrompt(jobTitle, jobDescription, resumeText string) string {
	return fmt.Sprintf(`You are an expert HR recruiter evaluating a candidate's resume against a job posting.

Job Title: %s

Job Description:
%s

Resume Text:
%s

Analyze the resume, extract the candidate's attributes, and evaluate how well they match the job description. Consider programming languages, frameworks, tools, methodologies, and soft skills. Pay special attention to the EDUCATION section (Bachelor, Master, PhD, B.Tech, M.Tech, MBA and fields of study).

Return your response in the following JSON format:
{
  "match_score": <0-100 percentage score>,
  "status": "<'OK to Proceed' if score >= 60, otherwise 'Not OK'>",
  "justification": "<2-3 sentence explanation of the evaluation>",
  "skills_extracted": ["all technical and soft skills found in the resume"],
  "skills_matched": ["subset of skills_extracted that the job description requires"],
  "experience_years": <number or null if not found>,
  "education": "<highest education level and field, or null>",
  "previous_roles": ["list of job titles/roles held"]
}

Be fair but thorough. Consider both hard skills and soft skills.
Return ONLY the JSON object, no additional text.`,
		jobTitle,
		truncate(jobDescription, maxJobDescriptionChars),
		truncate(resumeText, maxResumeChars))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
