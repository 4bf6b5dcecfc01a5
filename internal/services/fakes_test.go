package services

import (
	"context"
	"fmt"
	"sync"

	"hrtools/resume-shortlister/internal/models"
	"hrtools/resume-shortlister/internal/repositories"
)

// In-memory fakes over the repository and gateway interfaces.

type fakeJobRepo struct {
	mu     sync.Mutex
	jobs   map[string]*models.Job
	exists func(jobID string) (bool, error)
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[string]*models.Job)}
}

func (f *fakeJobRepo) Create(job *models.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[job.JobID]; ok {
		return fmt.Errorf("job %s: %w", job.JobID, models.ErrConflict)
	}
	f.jobs[job.JobID] = job
	return nil
}

func (f *fakeJobRepo) FindByJobID(jobID string) (*models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", jobID, models.ErrNotFound)
	}
	copied := *job
	return &copied, nil
}

func (f *fakeJobRepo) ExistsByJobID(jobID string) (bool, error) {
	if f.exists != nil {
		return f.exists(jobID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.jobs[jobID]
	return ok, nil
}

func (f *fakeJobRepo) List(query string, page, pageSize int) ([]models.Job, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var jobs []models.Job
	for _, job := range f.jobs {
		jobs = append(jobs, *job)
	}
	return jobs, int64(len(jobs)), nil
}

func (f *fakeJobRepo) Update(job *models.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.jobs[job.JobID]
	if !ok {
		return fmt.Errorf("job %s: %w", job.JobID, models.ErrNotFound)
	}
	stored.Title = job.Title
	stored.Description = job.Description
	return nil
}

func (f *fakeJobRepo) SetStorageFolder(jobID, folder string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return fmt.Errorf("job %s: %w", jobID, models.ErrNotFound)
	}
	job.StorageFolder = folder
	return nil
}

func (f *fakeJobRepo) Delete(jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[jobID]; !ok {
		return fmt.Errorf("job %s: %w", jobID, models.ErrNotFound)
	}
	delete(f.jobs, jobID)
	return nil
}

func (f *fakeJobRepo) CheckIntegrity() (*models.IntegrityReport, error) {
	return &models.IntegrityReport{Healthy: true}, nil
}

type fakeResumeRepo struct {
	mu      sync.Mutex
	nextID  uint
	resumes map[uint]*models.Resume
}

func newFakeResumeRepo() *fakeResumeRepo {
	return &fakeResumeRepo{resumes: make(map[uint]*models.Resume)}
}

func (f *fakeResumeRepo) Create(resume *models.Resume) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.resumes {
		if existing.JobID == resume.JobID && existing.StorageKey == resume.StorageKey {
			return fmt.Errorf("resume %s: %w", resume.FileName, models.ErrConflict)
		}
	}
	f.nextID++
	resume.ID = f.nextID
	f.resumes[resume.ID] = resume
	return nil
}

func (f *fakeResumeRepo) FindByID(id uint) (*models.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	resume, ok := f.resumes[id]
	if !ok {
		return nil, fmt.Errorf("resume %d: %w", id, models.ErrNotFound)
	}
	copied := *resume
	return &copied, nil
}

func (f *fakeResumeRepo) ListByJob(jobID string) ([]models.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var resumes []models.Resume
	for id := uint(1); id <= f.nextID; id++ {
		if resume, ok := f.resumes[id]; ok && resume.JobID == jobID {
			resumes = append(resumes, *resume)
		}
	}
	return resumes, nil
}

func (f *fakeResumeRepo) UpdateCandidateName(id uint, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	resume, ok := f.resumes[id]
	if !ok {
		return fmt.Errorf("resume %d: %w", id, models.ErrNotFound)
	}
	resume.CandidateName = &name
	return nil
}

func (f *fakeResumeRepo) Delete(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.resumes[id]; !ok {
		return fmt.Errorf("resume %d: %w", id, models.ErrNotFound)
	}
	delete(f.resumes, id)
	return nil
}

func (f *fakeResumeRepo) DeleteByJob(jobID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for id, resume := range f.resumes {
		if resume.JobID == jobID {
			delete(f.resumes, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeEvalRepo struct {
	mu    sync.Mutex
	evals map[uint]*models.Evaluation // keyed by resume id
}

func newFakeEvalRepo() *fakeEvalRepo {
	return &fakeEvalRepo{evals: make(map[uint]*models.Evaluation)}
}

func (f *fakeEvalRepo) Upsert(eval *models.Evaluation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.evals[eval.ResumeID]; ok {
		eval.ID = existing.ID
	} else {
		eval.ID = uint(len(f.evals) + 1)
	}
	copied := *eval
	f.evals[eval.ResumeID] = &copied
	return nil
}

func (f *fakeEvalRepo) FindByID(id uint) (*models.Evaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, eval := range f.evals {
		if eval.ID == id {
			copied := *eval
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("evaluation %d: %w", id, models.ErrNotFound)
}

func (f *fakeEvalRepo) FindByResumeID(resumeID uint) (*models.Evaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	eval, ok := f.evals[resumeID]
	if !ok {
		return nil, fmt.Errorf("evaluation for resume %d: %w", resumeID, models.ErrNotFound)
	}
	copied := *eval
	return &copied, nil
}

func (f *fakeEvalRepo) ListByJob(jobID string, filter repositories.EvaluationFilter) ([]models.Evaluation, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var evals []models.Evaluation
	for _, eval := range f.evals {
		if eval.JobID == jobID {
			evals = append(evals, *eval)
		}
	}
	return evals, int64(len(evals)), nil
}

func (f *fakeEvalRepo) DeleteByResumeID(resumeID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.evals, resumeID)
	return nil
}

func (f *fakeEvalRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.evals)
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (f *fakeAuditRepo) Record(entityType, entityID, action string, details map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, models.AuditLog{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Details:    details,
	})
	return nil
}

func (f *fakeAuditRepo) ListByEntity(entityType, entityID string) ([]models.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []models.AuditLog
	for _, entry := range f.entries {
		if entry.EntityType == entityType && entry.EntityID == entityID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

type fakeStorage struct {
	mu       sync.Mutex
	blobs    map[string][]byte
	failKeys map[string]bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		blobs:    make(map[string][]byte),
		failKeys: make(map[string]bool),
	}
}

func (f *fakeStorage) Store(ctx context.Context, jobFolder, fileName string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := jobFolder + "/" + fileName
	f.blobs[key] = data
	return key, nil
}

func (f *fakeStorage) Fetch(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKeys[key] {
		return nil, fmt.Errorf("fetch %s: %w", key, models.ErrStorageUnavailable)
	}
	data, ok := f.blobs[key]
	if !ok {
		return nil, fmt.Errorf("fetch %s: %w", key, models.ErrStorageUnavailable)
	}
	return data, nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, key)
	return nil
}

type fakeGemini struct {
	mu          sync.Mutex
	response    string
	err         error
	calls       int
	inFlight    int
	maxInFlight int
	block       func()
}

func (f *fakeGemini) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	return f.GenerateTextWithRetry(ctx, prompt, temperature)
}

func (f *fakeGemini) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32) (string, error) {
	f.mu.Lock()
	f.calls++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	block := f.block
	f.mu.Unlock()

	if block != nil {
		block()
	}

	f.mu.Lock()
	f.inFlight--
	response, err := f.response, f.err
	f.mu.Unlock()

	return response, err
}

func (f *fakeGemini) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeGemini) maxConcurrency() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

type fakeExtractor struct {
	text string
	err  error
	name string
}

func (f *fakeExtractor) Extract(data []byte, format DocumentFormat) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeExtractor) ExtractCandidateName(text, fileName string) string {
	return f.name
}
