package providers

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"matching-workers/internal/common/errors"
	"matching-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/goccy/go-json"
)

const candidateQueryType = "candidates"

// ElasticsearchCandidateSearch queries a worker index whose document ids are
// worker ids.
type ElasticsearchCandidateSearch struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchCandidateSearch(client *elasticsearch.Client, index string) *ElasticsearchCandidateSearch {
	if index == "" {
		index = "workers"
	}
	return &ElasticsearchCandidateSearch{client: client, index: index}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *ElasticsearchCandidateSearch) SearchCandidates(ctx context.Context, job models.JobRequest, size int) ([]string, error) {
	body, err := json.Marshal(BuildCandidateQuery(job, size))
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(candidateQueryType, err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewSearchTimeoutError(candidateQueryType)
		}
		return nil, errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, errors.NewIndexNotFoundError(s.index)
	}
	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, errors.NewSearchQueryFailedError(candidateQueryType, fmt.Errorf("%s: %s", res.Status(), msg))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewSearchTimeoutError(candidateQueryType)
		}
		return nil, errors.NewSearchQueryFailedError(candidateQueryType, err)
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		if h.ID != "" {
			ids = append(ids, h.ID)
		}
	}
	return ids, nil
}

// BuildCandidateQuery ranks workers by skill, specialization and location
// relevance. It does not filter: the engine decides who qualifies.
func BuildCandidateQuery(job models.JobRequest, size int) map[string]interface{} {
	should := []interface{}{}

	if len(job.RequiredSkills) > 0 {
		should = append(should, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  strings.Join(job.RequiredSkills, " "),
				"fields": []string{"skills^3", "specializations"},
				"type":   "best_fields",
			},
		})
	}
	if job.Category != "" {
		should = append(should, map[string]interface{}{
			"match": map[string]interface{}{"specializations": job.Category},
		})
	}
	if job.Location != "" {
		should = append(should, map[string]interface{}{
			"match": map[string]interface{}{"location": job.Location},
		})
	}

	var query map[string]interface{}
	if len(should) == 0 {
		query = map[string]interface{}{"match_all": map[string]interface{}{}}
	} else {
		query = map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 0,
			},
		}
	}

	return map[string]interface{}{
		"size":    size,
		"_source": false,
		"query":   query,
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"rating": map[string]interface{}{"order": "desc", "unmapped_type": "float"}},
		},
	}
}
