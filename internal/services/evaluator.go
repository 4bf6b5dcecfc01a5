package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"hrtools/resume-shortlister/internal/models"
	"hrtools/resume-shortlister/internal/repositories"
)

// Verdict is the model evaluator's response contract. It is enforced on
// return: the score is clamped to [0,100], an unrecognized status maps to
// Pending, and matched skills are filtered down to a subset of extracted.
type Verdict struct {
	MatchScore      float64  `json:"match_score"`
	Status          string   `json:"status"`
	Justification   string   `json:"justification"`
	SkillsExtracted []string `json:"skills_extracted"`
	SkillsMatched   []string `json:"skills_matched"`
	ExperienceYears *float64 `json:"experience_years"`
	Education       *string  `json:"education"`
	PreviousRoles   []string `json:"previous_roles"`
}

type EvaluatorService interface {
	EvaluateResume(ctx context.Context, resumeID uint, force bool) (*models.Evaluation, error)
}

type evaluatorService struct {
	jobRepo       repositories.JobRepository
	resumeRepo    repositories.ResumeRepository
	evalRepo      repositories.EvaluationRepository
	auditRepo     repositories.AuditRepository
	storage       StorageService
	extractor     TextExtractor
	gemini        GeminiService
	promptBuilder *PromptBuilder
	locks         *resumeLocks
}

func NewEvaluatorService(
	jobRepo repositories.JobRepository,
	resumeRepo repositories.ResumeRepository,
	evalRepo repositories.EvaluationRepository,
	auditRepo repositories.AuditRepository,
	storage StorageService,
	extractor TextExtractor,
	gemini GeminiService,
) EvaluatorService {
	return &evaluatorService{
		jobRepo:       jobRepo,
		resumeRepo:    resumeRepo,
		evalRepo:      evalRepo,
		auditRepo:     auditRepo,
		storage:       storage,
		extractor:     extractor,
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
		locks:         newResumeLocks(),
	}
}

// resumeLocks serializes evaluations per resume: at most one in-flight
// evaluation for a given resume id, last writer under the lock wins.
type resumeLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newResumeLocks() *resumeLocks {
	return &resumeLocks{locks: make(map[uint]*sync.Mutex)}
}

func (l *resumeLocks) acquire(resumeID uint) *sync.Mutex {
	l.mu.Lock()
	m, ok := l.locks[resumeID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[resumeID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m
}

// EvaluateResume implements EvaluatorService. Unless force is set, a resume
// that already has an evaluation is returned as-is; force replaces it.
func (e *evaluatorService) EvaluateResume(ctx context.Context, resumeID uint, force bool) (*models.Evaluation, error) {
	lock := e.locks.acquire(resumeID)
	defer lock.Unlock()

	resume, err := e.resumeRepo.FindByID(resumeID)
	if err != nil {
		return nil, err
	}

	if !force {
		if existing, err := e.evalRepo.FindByResumeID(resumeID); err == nil {
			return existing, nil
		}
	}

	job, err := e.jobRepo.FindByJobID(resume.JobID)
	if err != nil {
		return nil, err
	}

	log.Printf("🔄 Evaluating resume %d (%s) for job %s\n", resume.ID, resume.FileName, job.JobID)

	data, err := e.storage.Fetch(ctx, resume.StorageKey)
	if err != nil {
		return nil, err
	}

	text, err := e.extractText(data)
	if err != nil {
		// Terminal per-resume failure: recorded, never retried.
		log.Printf("⚠️  Resume %d unreadable: %v\n", resume.ID, err)
		return e.persistVerdict(resume, &Verdict{
			MatchScore:    0,
			Status:        string(models.StatusNotOK),
			Justification: fmt.Sprintf("Resume could not be evaluated: the uploaded document is unreadable (%v).", err),
		})
	}

	name := e.extractor.ExtractCandidateName(text, resume.FileName)
	if name != "" && (resume.CandidateName == nil || *resume.CandidateName != name) {
		if err := e.resumeRepo.UpdateCandidateName(resume.ID, name); err != nil {
			log.Printf("⚠️  Failed to update candidate name for resume %d: %v\n", resume.ID, err)
		}
	}

	prompt := e.promptBuilder.BuildEvaluationPrompt(job.Title, job.Description, text)

	response, err := e.gemini.GenerateTextWithRetry(ctx, prompt, 0.2)
	if err != nil {
		// Degraded record so the resume is visibly incomplete rather than
		// silently missing.
		log.Printf("⚠️  Evaluator unavailable for resume %d: %v\n", resume.ID, err)
		return e.persistVerdict(resume, &Verdict{
			MatchScore:    0,
			Status:        string(models.StatusPending),
			Justification: "Evaluation incomplete: the evaluator was unavailable after repeated attempts. Re-evaluate to retry.",
		})
	}

	verdict, err := parseVerdict(response)
	if err != nil {
		return nil, err
	}

	eval, err := e.persistVerdict(resume, verdict)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Evaluated resume %d: %.1f%% - %s\n", resume.ID, eval.MatchScore, eval.Status)
	return eval, nil
}

func (e *evaluatorService) extractText(data []byte) (string, error) {
	format, err := DetectFormat(data)
	if err != nil {
		return "", err
	}
	return e.extractor.Extract(data, format)
}

func (e *evaluatorService) persistVerdict(resume *models.Resume, verdict *Verdict) (*models.Evaluation, error) {
	enforceContract(verdict)

	eval := &models.Evaluation{
		ResumeID:        resume.ID,
		JobID:           resume.JobID,
		MatchScore:      verdict.MatchScore,
		Status:          models.EvaluationStatus(verdict.Status),
		Justification:   verdict.Justification,
		SkillsExtracted: verdict.SkillsExtracted,
		SkillsMatched:   verdict.SkillsMatched,
		ExperienceYears: verdict.ExperienceYears,
		Education:       verdict.Education,
		PreviousRoles:   verdict.PreviousRoles,
		EvaluatedAt:     time.Now(),
	}

	if err := e.evalRepo.Upsert(eval); err != nil {
		return nil, err
	}

	if err := e.auditRepo.Record("evaluation", fmt.Sprintf("%d", resume.ID), "evaluated", map[string]interface{}{
		"job_id":      resume.JobID,
		"match_score": eval.MatchScore,
		"status":      string(eval.Status),
	}); err != nil {
		log.Printf("⚠️  Failed to record audit entry: %v\n", err)
	}

	return eval, nil
}

// enforceContract normalizes a verdict into the persisted contract.
func enforceContract(v *Verdict) {
	if v.MatchScore < 0 {
		v.MatchScore = 0
	}
	if v.MatchScore > 100 {
		v.MatchScore = 100
	}

	if !models.ValidStatus(models.EvaluationStatus(v.Status)) {
		v.Status = string(models.StatusPending)
	}

	// skills_matched must be a subset of skills_extracted.
	extracted := make(map[string]bool, len(v.SkillsExtracted))
	for _, s := range v.SkillsExtracted {
		extracted[strings.ToLower(strings.TrimSpace(s))] = true
	}
	var matched []string
	for _, s := range v.SkillsMatched {
		if extracted[strings.ToLower(strings.TrimSpace(s))] {
			matched = append(matched, s)
		}
	}
	v.SkillsMatched = matched
}

func parseVerdict(response string) (*Verdict, error) {
	jsonStr := extractJSON(response)

	var verdict Verdict
	if err := json.Unmarshal([]byte(jsonStr), &verdict); err != nil {
		return nil, fmt.Errorf("malformed evaluator response: %v: %w", err, models.ErrEvaluationFailed)
	}
	return &verdict, nil
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	// Remove markdown code blocks
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}

	return text
}
