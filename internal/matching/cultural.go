package matching

import (
	"math"

	"matching-workers/internal/models"
)

const (
	defaultLanguage        = "English"
	defaultCommunityRating = 3.0
)

type compiledLanguage struct {
	name    string
	regions map[string]struct{}
	share   float64
}

type CulturalEvaluator struct {
	languages []compiledLanguage
}

func NewCulturalEvaluator(languages []Language) *CulturalEvaluator {
	e := &CulturalEvaluator{languages: make([]compiledLanguage, 0, len(languages))}
	for _, l := range languages {
		e.languages = append(e.languages, compiledLanguage{
			name:    fold(l.Name),
			regions: foldSet(l.Regions),
			share:   l.SpeakerShare,
		})
	}
	return e
}

// LanguageScore is the largest speaker share among the worker's languages
// that are used in region. A worker listing no languages is read as an
// English speaker.
func (e *CulturalEvaluator) LanguageScore(region string, spoken []string) float64 {
	langs := foldSet(spoken)
	if len(langs) == 0 {
		langs = foldSet([]string{defaultLanguage})
	}
	reg := fold(region)

	score := 0.0
	for _, l := range e.languages {
		if _, ok := langs[l.name]; !ok {
			continue
		}
		_, inRegion := l.regions[reg]
		_, universal := l.regions[AllRegions]
		if inRegion || universal {
			score = math.Max(score, l.share)
		}
	}
	return score
}

func RegionalFit(job, worker ResolvedLocation, localExperience bool) float64 {
	score := 0.5
	if SameRegion(job, worker) {
		score += 0.3
	}
	if localExperience {
		score += 0.2
	}
	return math.Min(score, 1.0)
}

// CommunityReputation reads a missing community rating as 3.
func CommunityReputation(worker models.WorkerProfile) float64 {
	rating := defaultCommunityRating
	if worker.CommunityRating != nil {
		rating = *worker.CommunityRating
	}
	total := rating + float64(worker.LocalRecommendations) + float64(worker.RepeatCustomers)
	return math.Min(total/15, 1.0)
}

func (e *CulturalEvaluator) Score(job, workerLoc ResolvedLocation, worker models.WorkerProfile) models.CategoryScore {
	language := e.LanguageScore(job.Region, worker.Languages)
	fit := RegionalFit(job, workerLoc, worker.LocalExperience)
	community := CommunityReputation(worker)

	return models.CategoryScore{
		RawScore: clamp01(language*0.4 + fit*0.3 + community*0.3),
		Factors: map[string]float64{
			"languageMatch": language,
			"culturalFit":   fit,
			"communityRep":  community,
		},
	}
}
