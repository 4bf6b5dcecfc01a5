package services

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"hrtools/resume-shortlister/internal/models"
	"hrtools/resume-shortlister/internal/repositories"
)

const jobIDMaxAttempts = 10

type JobIDGenerator interface {
	Generate() (string, error)
}

type jobIDGenerator struct {
	jobRepo     repositories.JobRepository
	mu          sync.Mutex
	rng         *rand.Rand
	maxAttempts int
}

func NewJobIDGenerator(jobRepo repositories.JobRepository) JobIDGenerator {
	return &jobIDGenerator{
		jobRepo:     jobRepo,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		maxAttempts: jobIDMaxAttempts,
	}
}

// Generate produces a unique 5-character job identifier (one uppercase
// letter followed by 4 digits, e.g. A1234). Uniqueness is checked against
// existing jobs; on collision it regenerates up to the attempt bound.
func (g *jobIDGenerator) Generate() (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		id := g.randomID()

		exists, err := g.jobRepo.ExistsByJobID(id)
		if err != nil {
			return "", fmt.Errorf("failed to check job id uniqueness: %w", err)
		}
		if !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("after %d attempts: %w", g.maxAttempts, models.ErrGenerationExhausted)
}

// randomID holds the generator lock: rand.Rand is not safe for concurrent
// use and Generate can be hit by parallel job creations.
func (g *jobIDGenerator) randomID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	buf := make([]byte, 5)
	buf[0] = byte('A' + g.rng.Intn(26))
	for i := 1; i < 5; i++ {
		buf[i] = byte('0' + g.rng.Intn(10))
	}
	return string(buf)
}
