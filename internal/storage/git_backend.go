package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rs/zerolog/log"
)

// GitBackend stores dataset files in a local git repository so every
// generated dataset carries its provenance as a commit.
type GitBackend struct {
	repo             *git.Repository
	repoPath         string
	metricsCollector MetricsCollector
}

// NewGitBackend opens the repository at repoPath, initializing it when it
// does not exist yet.
func NewGitBackend(repoPath string, metrics MetricsCollector) (*GitBackend, error) {
	repo, err := git.PlainOpen(repoPath)
	if err == git.ErrRepositoryNotExists {
		repo, err = git.PlainInit(repoPath, false)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	return &GitBackend{
		repo:             repo,
		repoPath:         repoPath,
		metricsCollector: metrics,
	}, nil
}

func (g *GitBackend) StoreDataset(ctx context.Context, record *DatasetRecord, content []byte) (string, error) {
	start := time.Now()
	commitHash, err := g.storeDatasetInGit(ctx, record, content)

	g.recordMetric("store", start, err == nil, err)
	return commitHash, err
}

func (g *GitBackend) GetDataset(ctx context.Context, runID, filename string) ([]byte, error) {
	start := time.Now()

	path := filepath.Join(g.repoPath, datasetPath(runID, filename))
	content, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("dataset not found: %s/%s: %w", runID, filename, err)
	}

	g.recordMetric("get", start, err == nil, err)
	return content, err
}

func (g *GitBackend) ListDatasets(ctx context.Context) ([]*DatasetRecord, error) {
	start := time.Now()

	records, err := listRecords(filepath.Join(g.repoPath, "datasets"))

	g.recordMetric("list", start, err == nil, err)
	return records, err
}

func (g *GitBackend) Health(ctx context.Context) error {
	start := time.Now()

	// A freshly initialized repository has no HEAD yet; check the
	// worktree instead
	w, err := g.repo.Worktree()
	if err == nil {
		_, err = w.Status()
	}

	g.recordMetric("health", start, err == nil, err)
	return err
}

func (g *GitBackend) storeDatasetInGit(ctx context.Context, record *DatasetRecord, content []byte) (string, error) {
	if record.RunID == "" || record.Filename == "" {
		return "", fmt.Errorf("dataset record needs a run ID and filename")
	}

	w, err := g.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	relPath := datasetPath(record.RunID, record.Filename)
	dir := filepath.Join(g.repoPath, filepath.Dir(relPath))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(filepath.Join(g.repoPath, relPath), content, 0644); err != nil {
		return "", fmt.Errorf("failed to write dataset file: %w", err)
	}

	record.Path = relPath
	record.StoredAt = time.Now()
	metadataBytes, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run metadata: %w", err)
	}
	metadataPath := filepath.Join(dir, "metadata.json")
	if err := os.WriteFile(metadataPath, metadataBytes, 0644); err != nil {
		return "", fmt.Errorf("failed to write run metadata: %w", err)
	}

	if _, err := w.Add(filepath.Dir(relPath)); err != nil {
		return "", fmt.Errorf("failed to add files: %w", err)
	}

	message := fmt.Sprintf("Add dataset %s (run %s, strategy %s)", record.Filename, record.RunID, record.Strategy)
	commit, err := w.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "CSW Forge",
			Email: "forge@codeswitch-lab.org",
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}

	record.CommitHash = commit.String()
	log.Info().
		Str("run_id", record.RunID).
		Str("file", record.Filename).
		Str("commit", record.CommitHash).
		Msg("Dataset committed")
	return commit.String(), nil
}

func (g *GitBackend) recordMetric(operation string, start time.Time, success bool, err error) {
	if g.metricsCollector != nil {
		g.metricsCollector.RecordMetric(StorageMetrics{
			OperationType: operation,
			Duration:      time.Since(start).Nanoseconds(),
			Success:       success,
			Backend:       "git",
			Error:         err,
		})
	}
}

func datasetPath(runID, filename string) string {
	return filepath.Join("datasets", runID, filename)
}

// listRecords walks datasets/<run-id>/metadata.json files under root
func listRecords(root string) ([]*DatasetRecord, error) {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return []*DatasetRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read datasets directory: %w", err)
	}

	records := []*DatasetRecord{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		metadataPath := filepath.Join(root, entry.Name(), "metadata.json")
		metadataBytes, err := os.ReadFile(metadataPath)
		if err != nil {
			log.Warn().Err(err).Str("run_id", entry.Name()).Msg("Skipping run without metadata")
			continue
		}
		var record DatasetRecord
		if err := json.Unmarshal(metadataBytes, &record); err != nil {
			log.Warn().Err(err).Str("run_id", entry.Name()).Msg("Skipping run with bad metadata")
			continue
		}
		records = append(records, &record)
	}
	return records, nil
}
