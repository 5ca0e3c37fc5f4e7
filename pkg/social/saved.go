package social

import (
	"context"
	"fmt"
	"sort"

	"github.com/cotovicz/dasein/pkg/document"
	"github.com/cotovicz/dasein/pkg/model"
)

// ResolveSaved fetches the creations behind a saved-ids list. The store
// bounds how many ids one fetch may carry, so the list is partitioned into
// chunks of at most document.MaxIDSetSize, fetched chunk by chunk, and the
// combined result re-sorted newest first. Ids that no longer resolve are
// silently dropped; any chunk failure fails the whole resolve.
func (s *Service) ResolveSaved(ctx context.Context, ids []string) ([]model.Creation, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	creations := make([]model.Creation, 0, len(ids))
	for start := 0; start < len(ids); start += document.MaxIDSetSize {
		end := start + document.MaxIDSetSize
		if end > len(ids) {
			end = len(ids)
		}
		docs, err := s.store.GetByIDs(ctx, model.CollectionCreations, ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to resolve saved creations: %w", err)
		}
		for _, doc := range docs {
			c, err := model.DecodeCreation(doc)
			if err != nil {
				s.logger.Warn("skipping undecodable document",
					"collection", model.CollectionCreations, "id", doc.ID, "error", err)
				continue
			}
			creations = append(creations, c)
		}
	}

	// Order by the entity's own recency, not by the caller's id order.
	sort.SliceStable(creations, func(i, j int) bool {
		if !creations[i].Timestamp.Equal(creations[j].Timestamp) {
			return creations[i].Timestamp.After(creations[j].Timestamp)
		}
		return creations[i].ID < creations[j].ID
	})
	return creations, nil
}

// AvailableTags reads the configured tag list from the config collection.
func (s *Service) AvailableTags(ctx context.Context) ([]string, error) {
	doc, err := s.store.Get(ctx, model.CollectionConfig, model.ConfigTagsDocID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tag configuration: %w", err)
	}
	tags, ok := doc.Fields[model.FieldAvailableTags].([]string)
	if !ok {
		return nil, fmt.Errorf("tag configuration has no %s list", model.FieldAvailableTags)
	}
	return tags, nil
}
