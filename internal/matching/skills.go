package matching

import (
	"strings"

	"matching-workers/internal/models"
)

const (
	primarySkillsWeight   = 0.4
	certificationsWeight  = 0.3
	experienceWeight      = 0.2
	specializationsWeight = 0.1
)

var experienceThresholds = map[models.ExperienceLevel]float64{
	models.ExperienceEntry:        0,
	models.ExperienceIntermediate: 2,
	models.ExperienceExperienced:  5,
	models.ExperienceExpert:       10,
}

type compiledCertification struct {
	name       string
	weight     float64
	categories map[string]struct{}
}

type SkillEvaluator struct {
	certifications []compiledCertification
}

func NewSkillEvaluator(certs []Certification) *SkillEvaluator {
	e := &SkillEvaluator{certifications: make([]compiledCertification, 0, len(certs))}
	for _, c := range certs {
		e.certifications = append(e.certifications, compiledCertification{
			name:       fold(c.Name),
			weight:     c.Weight,
			categories: foldSet(c.Categories),
		})
	}
	return e
}

// SkillOverlap is the fraction of required skills that share a substring
// relation, in either direction, with some offered skill. No requirement is a
// full match.
func SkillOverlap(required, offered []string) float64 {
	req := foldAll(required)
	if len(req) == 0 {
		return 1.0
	}
	off := foldAll(offered)

	matched := 0
	for _, r := range req {
		for _, o := range off {
			if strings.Contains(o, r) || strings.Contains(r, o) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(req))
}

// CertificationScore divides the weight of held certifications by the weight
// of all certifications applicable to category. 0.5 when none apply.
func (e *SkillEvaluator) CertificationScore(category string, held []string) float64 {
	cat := fold(category)
	heldFolded := foldAll(held)

	var score, possible float64
	for _, c := range e.certifications {
		_, forCategory := c.categories[cat]
		_, forAll := c.categories[AllCategories]
		if !forCategory && !forAll {
			continue
		}
		possible += c.weight
		for _, h := range heldFolded {
			if strings.Contains(h, c.name) {
				score += c.weight
				break
			}
		}
	}

	if possible == 0 {
		return 0.5
	}
	return clamp01(score / possible)
}

// ExperienceScore compares years against the minimum for level. An unset
// level is treated as entry.
func ExperienceScore(level models.ExperienceLevel, years float64) float64 {
	required := experienceThresholds[level]
	switch {
	case years >= required:
		return 1.0
	case years >= required*0.7:
		return 0.8
	case years >= required*0.5:
		return 0.6
	default:
		return 0.4
	}
}

func SpecializationScore(category string, specializations []string) float64 {
	cat := fold(category)
	for _, s := range foldAll(specializations) {
		if s == cat {
			return 1.0
		}
	}
	return 0.5
}

func (e *SkillEvaluator) Score(job models.JobRequest, worker models.WorkerProfile) models.CategoryScore {
	primary := SkillOverlap(job.RequiredSkills, worker.Skills)
	certs := e.CertificationScore(job.Category, worker.Certifications)
	experience := ExperienceScore(job.ExperienceLevel, worker.ExperienceYears)
	specialization := SpecializationScore(job.Category, worker.Specializations)

	return models.CategoryScore{
		RawScore: clamp01(primary*primarySkillsWeight +
			certs*certificationsWeight +
			experience*experienceWeight +
			specialization*specializationsWeight),
		Factors: map[string]float64{
			"primarySkills":   primary,
			"certifications":  certs,
			"experience":      experience,
			"specializations": specialization,
		},
	}
}
