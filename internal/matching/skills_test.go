package matching

import (
	"testing"

	"matching-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSkillOverlap(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		offered  []string
		want     float64
	}{
		{"no requirements is a full match", nil, []string{"Carpentry"}, 1.0},
		{"no requirements and no skills", []string{}, nil, 1.0},
		{"blank requirements ignored", []string{"  "}, nil, 1.0},
		{"exact match", []string{"Pipe Repair"}, []string{"Pipe Repair", "Drainage"}, 1.0},
		{"case insensitive", []string{"pipe repair"}, []string{"PIPE REPAIR"}, 1.0},
		{"offered contains required", []string{"wiring"}, []string{"House Wiring"}, 1.0},
		{"required contains offered", []string{"Industrial Welding"}, []string{"welding"}, 1.0},
		{"partial", []string{"Tiling", "Plastering"}, []string{"tiling"}, 0.5},
		{"nothing offered", []string{"Tiling"}, nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SkillOverlap(tt.required, tt.offered))
		})
	}
}

func TestSkillEvaluator_CertificationScore(t *testing.T) {
	eval := NewSkillEvaluator(DefaultTables().Certifications)

	t.Run("category specific certificate", func(t *testing.T) {
		// plumbing pool: 0.9 + 0.8 + 0.7 + 0.7 + 0.6
		got := eval.CertificationScore("plumbing", []string{"Ghana Institute of Plumbers"})
		assert.InDelta(t, 0.9/3.7, got, 1e-9)
	})

	t.Run("held name matched by substring", func(t *testing.T) {
		got := eval.CertificationScore("Plumbing", []string{"Certified by the GHANA INSTITUTE OF PLUMBERS (2019)"})
		assert.InDelta(t, 0.9/3.7, got, 1e-9)
	})

	t.Run("certificate for another trade does not count", func(t *testing.T) {
		got := eval.CertificationScore("carpentry", []string{"Ghana Institute of Plumbers"})
		assert.Equal(t, 0.0, got)
	})

	t.Run("all applicable held", func(t *testing.T) {
		got := eval.CertificationScore("electrical", []string{
			"Institute of Electrical Engineers",
			"Ghana Standards Authority",
			"National Vocational Training Institute",
			"Council for Technical and Vocational Education",
			"Traditional Apprenticeship",
		})
		assert.InDelta(t, 1.0, got, 1e-9)
	})

	t.Run("no applicable certificates is neutral", func(t *testing.T) {
		eval := NewSkillEvaluator([]Certification{{Name: "Plumbers", Weight: 1, Categories: []string{"plumbing"}}})
		assert.Equal(t, 0.5, eval.CertificationScore("masonry", nil))
	})
}

func TestExperienceScore(t *testing.T) {
	tests := []struct {
		level models.ExperienceLevel
		years float64
		want  float64
	}{
		{"", 0, 1.0},
		{models.ExperienceEntry, 0, 1.0},
		{models.ExperienceIntermediate, 2, 1.0},
		{models.ExperienceIntermediate, 1.4, 0.8},
		{models.ExperienceIntermediate, 1, 0.6},
		{models.ExperienceIntermediate, 0.5, 0.4},
		{models.ExperienceExperienced, 3.5, 0.8},
		{models.ExperienceExpert, 10, 1.0},
		{models.ExperienceExpert, 7, 0.8},
		{models.ExperienceExpert, 5, 0.6},
		{models.ExperienceExpert, 4.9, 0.4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExperienceScore(tt.level, tt.years), "level=%q years=%v", tt.level, tt.years)
	}
}

func TestSpecializationScore(t *testing.T) {
	assert.Equal(t, 1.0, SpecializationScore("Plumbing", []string{"roofing", "plumbing"}))
	assert.Equal(t, 0.5, SpecializationScore("Plumbing", []string{"roofing"}))
	assert.Equal(t, 0.5, SpecializationScore("Plumbing", nil))
}

func TestSkillEvaluator_Score(t *testing.T) {
	eval := NewSkillEvaluator(DefaultTables().Certifications)

	t.Run("plumber against pipe repair job", func(t *testing.T) {
		score := eval.Score(plumbingJob(), plumber("w-1"))

		assert.Equal(t, 1.0, score.Factors["primarySkills"])
		assert.Equal(t, 1.0, score.Factors["experience"])
		assert.Equal(t, 0.5, score.Factors["specializations"])
		assert.InDelta(t, 0.4+0.3*0.9/3.7+0.2+0.05, score.RawScore, 1e-9)
	})

	t.Run("empty requirements always give full overlap", func(t *testing.T) {
		job := plumbingJob()
		job.RequiredSkills = nil
		for _, skills := range [][]string{nil, {"Painting"}, {"Pipe Repair", "Tiling"}} {
			w := plumber("w-1")
			w.Skills = skills
			assert.Equal(t, 1.0, eval.Score(job, w).Factors["primarySkills"])
		}
	})
}
