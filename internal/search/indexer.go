package search

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cybercommand/internal/client"
	"cybercommand/internal/config"
	"cybercommand/internal/util"
)

// FindingDocument is the envelope stored per detection hit. The raw finding
// rides along untyped so every detection shares one index mapping.
type FindingDocument struct {
	FindingID  string      `json:"finding_id"`
	EpochID    string      `json:"epoch_id"`
	Detection  string      `json:"detection"`
	DetectedAt time.Time   `json:"detected_at"`
	Finding    interface{} `json:"finding"`
}

// Indexer writes detection findings into Elasticsearch for dashboard search
type Indexer struct {
	es    *client.ESClient
	index string
}

func NewIndexer(es *client.ESClient, cfg *config.Config) *Indexer {
	return &Indexer{
		es:    es,
		index: cfg.Elasticsearch.FindingsIndex,
	}
}

// IndexFindings stores one document per finding. A single bad document does
// not stop the rest; the first error is returned after the loop finishes.
func (i *Indexer) IndexFindings(ctx context.Context, epochID, detection string, findings []interface{}) error {
	detectedAt := time.Now().UTC()

	var firstErr error
	for _, finding := range findings {
		doc := FindingDocument{
			FindingID:  uuid.NewString(),
			EpochID:    epochID,
			Detection:  detection,
			DetectedAt: detectedAt,
			Finding:    finding,
		}

		res, err := i.es.IndexDocument(ctx, i.index, doc.FindingID, doc)
		if err == nil && res.IsError() {
			err = fmt.Errorf("elasticsearch rejected finding: %s", res.String())
		}
		if res != nil {
			res.Body.Close()
		}
		if err != nil {
			util.Warn("failed to index finding",
				zap.String("detection", detection),
				zap.String("epoch_id", epochID),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if firstErr == nil && len(findings) > 0 {
		util.Debug("findings indexed",
			zap.String("detection", detection),
			zap.Int("count", len(findings)))
	}
	return firstErr
}
