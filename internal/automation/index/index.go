// Package index keeps a searchable summary of every automation job in
// Elasticsearch for operations dashboards.
package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"service-automation/internal/models"
)

// Indexer receives every job state change. Implementations are best effort.
type Indexer interface {
	IndexJob(ctx context.Context, job *models.Job) error
}

// Nop indexes nothing.
type Nop struct{}

func (Nop) IndexJob(context.Context, *models.Job) error { return nil }

// JobDocument is the indexed shape of a job. Logs are flattened to text so
// they can be searched without a nested mapping.
type JobDocument struct {
	JobID        string    `json:"jobId"`
	OrderID      string    `json:"orderId"`
	ServiceType  string    `json:"serviceType"`
	CurrentStage string    `json:"currentStage"`
	Status       string    `json:"status"`
	Attempts     int       `json:"attempts"`
	LastError    string    `json:"lastError,omitempty"`
	Log          string    `json:"log,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func NewJobDocument(job *models.Job) JobDocument {
	doc := JobDocument{
		JobID:        job.ID,
		OrderID:      job.OrderID,
		ServiceType:  job.Type,
		CurrentStage: string(job.CurrentStage),
		Status:       string(job.Status),
		Attempts:     job.Attempts,
		Log:          job.LogText(),
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
	}
	if job.LastError != nil {
		doc.LastError = *job.LastError
	}
	return doc
}

// ElasticIndexer upserts one document per job id.
type ElasticIndexer struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticIndexer(client *elasticsearch.Client, index string) *ElasticIndexer {
	return &ElasticIndexer{client: client, index: index}
}

func (e *ElasticIndexer) IndexJob(ctx context.Context, job *models.Job) error {
	body, err := json.Marshal(NewJobDocument(job))
	if err != nil {
		return fmt.Errorf("encode job document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      e.index,
		DocumentID: job.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("index job %s: %w", job.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index job %s: %s", job.ID, res.Status())
	}
	return nil
}
