package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrtools/resume-shortlister/internal/models"
)

type evaluatorFixture struct {
	jobRepo    *fakeJobRepo
	resumeRepo *fakeResumeRepo
	evalRepo   *fakeEvalRepo
	auditRepo  *fakeAuditRepo
	storage    *fakeStorage
	extractor  *fakeExtractor
	gemini     *fakeGemini
	service    EvaluatorService
	batch      BatchEvaluator
}

func blockBriefly() { time.Sleep(5 * time.Millisecond) }

func newEvaluatorFixture(t *testing.T) *evaluatorFixture {
	t.Helper()

	f := &evaluatorFixture{
		jobRepo:    newFakeJobRepo(),
		resumeRepo: newFakeResumeRepo(),
		evalRepo:   newFakeEvalRepo(),
		auditRepo:  newFakeAuditRepo(),
		storage:    newFakeStorage(),
		extractor: &fakeExtractor{
			text: "Jane Smith\nSenior Go engineer with 8 years of experience.",
			name: "Jane Smith",
		},
		gemini: &fakeGemini{},
	}
	f.service = NewEvaluatorService(
		f.jobRepo, f.resumeRepo, f.evalRepo, f.auditRepo,
		f.storage, f.extractor, f.gemini,
	)
	return f
}

// addResume stores a PDF blob and registers a resume pointing at it.
func (f *evaluatorFixture) addResume(t *testing.T, jobID, fileName string) *models.Resume {
	t.Helper()

	key, err := f.storage.Store(context.Background(), "jobs/"+jobID, fileName, []byte("%PDF-1.7 fake body"))
	require.NoError(t, err)

	resume := &models.Resume{
		JobID:      jobID,
		FileName:   fileName,
		StorageKey: key,
		UploadedAt: time.Now(),
	}
	require.NoError(t, f.resumeRepo.Create(resume))
	return resume
}

func (f *evaluatorFixture) addJob(t *testing.T, jobID string) {
	t.Helper()
	require.NoError(t, f.jobRepo.Create(&models.Job{
		JobID:       jobID,
		Title:       "Backend Engineer",
		Description: "Go, PostgreSQL, AWS.",
	}))
}

const goodVerdict = `{
	"match_score": 87.5,
	"status": "OK to Proceed",
	"justification": "Strong Go and PostgreSQL background.",
	"skills_extracted": ["Go", "PostgreSQL", "Docker"],
	"skills_matched": ["Go", "PostgreSQL"],
	"experience_years": 8,
	"education": "BSc Computer Science",
	"previous_roles": ["Senior Engineer"]
}`

func TestEvaluateResume_HappyPath(t *testing.T) {
	f := newEvaluatorFixture(t)
	f.addJob(t, "A1234")
	resume := f.addResume(t, "A1234", "jane.pdf")
	f.gemini.response = goodVerdict

	eval, err := f.service.EvaluateResume(context.Background(), resume.ID, false)

	require.NoError(t, err)
	assert.Equal(t, resume.ID, eval.ResumeID)
	assert.Equal(t, "A1234", eval.JobID)
	assert.Equal(t, 87.5, eval.MatchScore)
	assert.Equal(t, models.StatusOKToProceed, eval.Status)
	assert.Equal(t, []string{"Go", "PostgreSQL", "Docker"}, eval.SkillsExtracted)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, eval.SkillsMatched)
	require.NotNil(t, eval.ExperienceYears)
	assert.Equal(t, 8.0, *eval.ExperienceYears)
	assert.False(t, eval.EvaluatedAt.IsZero())

	stored, err := f.evalRepo.FindByResumeID(resume.ID)
	require.NoError(t, err)
	assert.Equal(t, eval.MatchScore, stored.MatchScore)

	// Candidate name picked up from the extracted text.
	updated, err := f.resumeRepo.FindByID(resume.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.CandidateName)
	assert.Equal(t, "Jane Smith", *updated.CandidateName)

	entries, err := f.auditRepo.ListByEntity("evaluation", fmt.Sprintf("%d", resume.ID))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "evaluated", entries[0].Action)
}

func TestEvaluateResume_MarkdownFencedResponse(t *testing.T) {
	f := newEvaluatorFixture(t)
	f.addJob(t, "A1234")
	resume := f.addResume(t, "A1234", "jane.pdf")
	f.gemini.response = "Here is my assessment:\n```json\n" + goodVerdict + "\n```\nHope this helps."

	eval, err := f.service.EvaluateResume(context.Background(), resume.ID, false)

	require.NoError(t, err)
	assert.Equal(t, 87.5, eval.MatchScore)
	assert.Equal(t, models.StatusOKToProceed, eval.Status)
}

func TestEvaluateResume_ContractEnforcement(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		wantScore  float64
		wantStatus models.EvaluationStatus
	}{
		{
			name:       "score above 100 clamped",
			response:   `{"match_score": 150, "status": "OK to Proceed", "justification": "x"}`,
			wantScore:  100,
			wantStatus: models.StatusOKToProceed,
		},
		{
			name:       "negative score clamped",
			response:   `{"match_score": -5, "status": "Not OK", "justification": "x"}`,
			wantScore:  0,
			wantStatus: models.StatusNotOK,
		},
		{
			name:       "unknown status becomes pending",
			response:   `{"match_score": 60, "status": "Maybe", "justification": "x"}`,
			wantScore:  60,
			wantStatus: models.StatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEvaluatorFixture(t)
			f.addJob(t, "A1234")
			resume := f.addResume(t, "A1234", "jane.pdf")
			f.gemini.response = tt.response

			eval, err := f.service.EvaluateResume(context.Background(), resume.ID, false)

			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, eval.MatchScore)
			assert.Equal(t, tt.wantStatus, eval.Status)
		})
	}
}

func TestEvaluateResume_MatchedSkillsFilteredToExtracted(t *testing.T) {
	f := newEvaluatorFixture(t)
	f.addJob(t, "A1234")
	resume := f.addResume(t, "A1234", "jane.pdf")
	f.gemini.response = `{
		"match_score": 70,
		"status": "OK to Proceed",
		"justification": "x",
		"skills_extracted": ["Go", "Docker"],
		"skills_matched": ["go", "Kubernetes", "Docker"]
	}`

	eval, err := f.service.EvaluateResume(context.Background(), resume.ID, false)

	require.NoError(t, err)
	// "Kubernetes" was never extracted; matching is case-insensitive.
	assert.Equal(t, []string{"go", "Docker"}, eval.SkillsMatched)
}

func TestEvaluateResume_MalformedResponse(t *testing.T) {
	f := newEvaluatorFixture(t)
	f.addJob(t, "A1234")
	resume := f.addResume(t, "A1234", "jane.pdf")
	f.gemini.response = "I cannot evaluate this resume."

	_, err := f.service.EvaluateResume(context.Background(), resume.ID, false)

	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrEvaluationFailed))
	assert.Equal(t, 0, f.evalRepo.count())
}

func TestEvaluateResume_UnreadableDocumentPersistsNotOK(t *testing.T) {
	f := newEvaluatorFixture(t)
	f.addJob(t, "A1234")
	resume := f.addResume(t, "A1234", "broken.pdf")
	f.extractor.err = fmt.Errorf("parser panic: %w", models.ErrUnreadableDocument)

	eval, err := f.service.EvaluateResume(context.Background(), resume.ID, false)

	require.NoError(t, err)
	assert.Equal(t, models.StatusNotOK, eval.Status)
	assert.Equal(t, 0.0, eval.MatchScore)
	assert.Contains(t, eval.Justification, "unreadable")
	assert.Equal(t, 0, f.gemini.callCount())

	stored, err := f.evalRepo.FindByResumeID(resume.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotOK, stored.Status)
}

func TestEvaluateResume_EvaluatorUnavailablePersistsPending(t *testing.T) {
	f := newEvaluatorFixture(t)
	f.addJob(t, "A1234")
	resume := f.addResume(t, "A1234", "jane.pdf")
	f.gemini.err = fmt.Errorf("3 attempts: %w", models.ErrEvaluatorUnavailable)

	eval, err := f.service.EvaluateResume(context.Background(), resume.ID, false)

	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, eval.Status)
	assert.Equal(t, 0.0, eval.MatchScore)
	assert.Contains(t, eval.Justification, "unavailable")
}

func TestEvaluateResume_StorageFailurePersistsNothing(t *testing.T) {
	f := newEvaluatorFixture(t)
	f.addJob(t, "A1234")
	resume := f.addResume(t, "A1234", "jane.pdf")
	f.storage.failKeys[resume.StorageKey] = true

	_, err := f.service.EvaluateResume(context.Background(), resume.ID, false)

	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrStorageUnavailable))
	assert.Equal(t, 0, f.evalRepo.count())
	assert.Equal(t, 0, f.gemini.callCount())
}

func TestEvaluateResume_UnknownResume(t *testing.T) {
	f := newEvaluatorFixture(t)

	_, err := f.service.EvaluateResume(context.Background(), 999, false)

	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestEvaluateResume_IdempotentWithoutForce(t *testing.T) {
	f := newEvaluatorFixture(t)
	f.addJob(t, "A1234")
	resume := f.addResume(t, "A1234", "jane.pdf")
	f.gemini.response = goodVerdict

	first, err := f.service.EvaluateResume(context.Background(), resume.ID, false)
	require.NoError(t, err)

	second, err := f.service.EvaluateResume(context.Background(), resume.ID, false)
	require.NoError(t, err)

	assert.Equal(t, first.MatchScore, second.MatchScore)
	assert.Equal(t, 1, f.gemini.callCount())
	assert.Equal(t, 1, f.evalRepo.count())
}

func TestEvaluateResume_ForceReplacesSingleRow(t *testing.T) {
	f := newEvaluatorFixture(t)
	f.addJob(t, "A1234")
	resume := f.addResume(t, "A1234", "jane.pdf")
	f.gemini.response = goodVerdict

	_, err := f.service.EvaluateResume(context.Background(), resume.ID, false)
	require.NoError(t, err)

	f.gemini.response = `{"match_score": 42, "status": "Not OK", "justification": "changed"}`
	eval, err := f.service.EvaluateResume(context.Background(), resume.ID, true)
	require.NoError(t, err)

	assert.Equal(t, 42.0, eval.MatchScore)
	assert.Equal(t, models.StatusNotOK, eval.Status)
	assert.Equal(t, 2, f.gemini.callCount())
	assert.Equal(t, 1, f.evalRepo.count())

	stored, err := f.evalRepo.FindByResumeID(resume.ID)
	require.NoError(t, err)
	assert.Equal(t, 42.0, stored.MatchScore)
}

func TestEvaluateResume_SerializedPerResume(t *testing.T) {
	f := newEvaluatorFixture(t)
	f.addJob(t, "A1234")
	resume := f.addResume(t, "A1234", "jane.pdf")
	f.gemini.response = goodVerdict
	f.gemini.block = blockBriefly

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.EvaluateResume(context.Background(), resume.ID, true)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// The per-resume lock admits one evaluation at a time.
	assert.Equal(t, 1, f.gemini.maxConcurrency())
	assert.Equal(t, 5, f.gemini.callCount())
	assert.Equal(t, 1, f.evalRepo.count())
}

func TestParseVerdict_ExtractsEmbeddedJSON(t *testing.T) {
	verdict, err := parseVerdict("prefix {\"match_score\": 55, \"status\": \"Pending\"} suffix")

	require.NoError(t, err)
	assert.Equal(t, 55.0, verdict.MatchScore)
	assert.Equal(t, "Pending", verdict.Status)
}
