// Package seed loads an assessment catalog from YAML and writes it through the repositories.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"recruit_backend/internal/model"
	"recruit_backend/pkg/logger"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Catalog struct {
	Categories   []CategorySpec    `yaml:"categories" validate:"dive"`
	Templates    []TemplateSpec    `yaml:"templates" validate:"dive"`
	Jobs         []JobSpec         `yaml:"jobs" validate:"dive"`
	Applications []ApplicationSpec `yaml:"applications" validate:"dive"`
}

type CategorySpec struct {
	ID          uint   `yaml:"id" validate:"required"`
	Name        string `yaml:"name" validate:"required,max=255"`
	Description string `yaml:"description"`
}

type TemplateSpec struct {
	ID              uint           `yaml:"id" validate:"required"`
	Title           string         `yaml:"title" validate:"required,max=255"`
	Description     string         `yaml:"description"`
	CategoryID      uint           `yaml:"category_id"`
	DurationMinutes int            `yaml:"duration_minutes" validate:"gte=0"`
	PassingScore    int            `yaml:"passing_score" validate:"gte=0"`
	PassingUnit     string         `yaml:"passing_unit" validate:"omitempty,oneof=points percent"`
	Active          *bool          `yaml:"active"`
	CreatedBy       uint           `yaml:"created_by"`
	Questions       []QuestionSpec `yaml:"questions" validate:"required,min=1,dive"`
}

type QuestionSpec struct {
	ID      uint     `yaml:"id" validate:"required"`
	Text    string   `yaml:"text" validate:"required"`
	Type    string   `yaml:"type" validate:"required,oneof=mcq_single mcq_multiple true_false short_answer"`
	Options []string `yaml:"options"`
	Correct []string `yaml:"correct"`
	Points  int      `yaml:"points" validate:"gt=0"`
}

type JobSpec struct {
	ID          uint                `yaml:"id" validate:"required"`
	Title       string              `yaml:"title" validate:"required,max=255"`
	Department  string              `yaml:"department"`
	Status      string              `yaml:"status" validate:"omitempty,oneof=active closed"`
	Assessments []JobAssessmentSpec `yaml:"assessments" validate:"dive"`
}

type JobAssessmentSpec struct {
	ID         uint `yaml:"id" validate:"required"`
	TemplateID uint `yaml:"template_id" validate:"required"`
	Required   bool `yaml:"required"`
}

type ApplicationSpec struct {
	ID          uint   `yaml:"id" validate:"required"`
	JobID       uint   `yaml:"job_id" validate:"required"`
	CandidateID uint   `yaml:"candidate_id" validate:"required"`
	Status      string `yaml:"status"`
}

// CatalogWriter stores templates and categories.
type CatalogWriter interface {
	SaveCategory(ctx context.Context, c *model.AssessmentCategory) error
	SaveTemplate(ctx context.Context, t *model.AssessmentTemplate, questions []model.AssessmentQuestion) error
}

// JobWriter stores jobs, their assessment links and applications.
type JobWriter interface {
	SaveJob(ctx context.Context, j *model.Job) error
	SaveJobAssessment(ctx context.Context, ja *model.JobAssessment) error
	SaveApplication(ctx context.Context, a *model.Application) error
}

// Summary counts what Apply wrote.
type Summary struct {
	Categories   int
	Templates    int
	Questions    int
	Jobs         int
	Links        int
	Applications int
}

// Load reads and validates a catalog file. Unknown keys are rejected.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var cat Catalog
	if err := dec.Decode(&cat); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	if err := validator.New().Struct(&cat); err != nil {
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}
	if err := cat.check(); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (t TemplateSpec) toModel() (*model.AssessmentTemplate, []model.AssessmentQuestion) {
	unit := model.PassingUnitPoints
	if t.PassingUnit != "" {
		unit = model.PassingScoreUnit(t.PassingUnit)
	}
	active := true
	if t.Active != nil {
		active = *t.Active
	}
	tmpl := &model.AssessmentTemplate{
		BaseModel:       model.BaseModel{ID: t.ID},
		Title:           t.Title,
		Description:     t.Description,
		CategoryID:      t.CategoryID,
		DurationMinutes: t.DurationMinutes,
		PassingScore:    t.PassingScore,
		PassingUnit:     unit,
		IsActive:        active,
		CreatedBy:       t.CreatedBy,
	}
	questions := make([]model.AssessmentQuestion, 0, len(t.Questions))
	for i, q := range t.Questions {
		questions = append(questions, model.AssessmentQuestion{
			BaseModel:      model.BaseModel{ID: q.ID},
			TemplateID:     t.ID,
			Text:           q.Text,
			Type:           model.QuestionType(q.Type),
			Options:        q.Options,
			CorrectAnswers: q.Correct,
			Points:         q.Points,
			OrderIndex:     i + 1,
		})
	}
	return tmpl, questions
}

// check enforces what struct tags cannot: question invariants, unique ids and references.
func (c *Catalog) check() error {
	var errs []error
	categories := make(map[uint]bool, len(c.Categories))
	for _, cat := range c.Categories {
		categories[cat.ID] = true
	}

	templates := make(map[uint]bool, len(c.Templates))
	questionIDs := make(map[uint]bool)
	for _, spec := range c.Templates {
		if templates[spec.ID] {
			errs = append(errs, fmt.Errorf("template %d declared twice", spec.ID))
		}
		templates[spec.ID] = true
		if spec.CategoryID != 0 && !categories[spec.CategoryID] {
			errs = append(errs, fmt.Errorf("template %d: unknown category %d", spec.ID, spec.CategoryID))
		}

		_, questions := spec.toModel()
		for i := range questions {
			q := &questions[i]
			if questionIDs[q.ID] {
				errs = append(errs, fmt.Errorf("question %d declared twice", q.ID))
			}
			questionIDs[q.ID] = true
			if _, err := q.Definition(); err != nil {
				errs = append(errs, fmt.Errorf("template %d: %w", spec.ID, err))
				continue
			}
			if !q.Manual() {
				if err := correctWithinOptions(q); err != nil {
					errs = append(errs, fmt.Errorf("template %d: %w", spec.ID, err))
				}
			}
		}
	}

	jobs := make(map[uint]bool, len(c.Jobs))
	for _, job := range c.Jobs {
		jobs[job.ID] = true
		for _, link := range job.Assessments {
			if !templates[link.TemplateID] {
				errs = append(errs, fmt.Errorf("job %d: unknown template %d", job.ID, link.TemplateID))
			}
		}
	}
	for _, app := range c.Applications {
		if !jobs[app.JobID] {
			errs = append(errs, fmt.Errorf("application %d: unknown job %d", app.ID, app.JobID))
		}
	}
	return errors.Join(errs...)
}

func correctWithinOptions(q *model.AssessmentQuestion) error {
	if len(q.Options) == 0 {
		return nil
	}
	options := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		options[o] = true
	}
	for _, c := range q.CorrectAnswers {
		if !options[c] {
			return fmt.Errorf("%w: question %d lists %q as correct but not as an option", model.ErrInvalidQuestion, q.ID, c)
		}
	}
	return nil
}

// Apply writes the catalog. Rows keep their declared ids so re-running a seed updates in place.
func Apply(ctx context.Context, cat *Catalog, catalog CatalogWriter, jobs JobWriter) (*Summary, error) {
	sum := &Summary{}
	for _, spec := range cat.Categories {
		c := &model.AssessmentCategory{BaseModel: model.BaseModel{ID: spec.ID}, Name: spec.Name, Description: spec.Description}
		if err := catalog.SaveCategory(ctx, c); err != nil {
			return sum, fmt.Errorf("save category %d: %w", spec.ID, err)
		}
		sum.Categories++
	}

	for _, spec := range cat.Templates {
		tmpl, questions := spec.toModel()
		if err := catalog.SaveTemplate(ctx, tmpl, questions); err != nil {
			return sum, fmt.Errorf("save template %d: %w", spec.ID, err)
		}
		sum.Templates++
		sum.Questions += len(questions)
	}

	for _, spec := range cat.Jobs {
		status := spec.Status
		if status == "" {
			status = "active"
		}
		job := &model.Job{BaseModel: model.BaseModel{ID: spec.ID}, Title: spec.Title, Department: spec.Department, Status: status}
		if err := jobs.SaveJob(ctx, job); err != nil {
			return sum, fmt.Errorf("save job %d: %w", spec.ID, err)
		}
		sum.Jobs++
		for _, link := range spec.Assessments {
			ja := &model.JobAssessment{
				BaseModel:  model.BaseModel{ID: link.ID},
				JobID:      spec.ID,
				TemplateID: link.TemplateID,
				IsRequired: link.Required,
			}
			if err := jobs.SaveJobAssessment(ctx, ja); err != nil {
				return sum, fmt.Errorf("save job %d assessment %d: %w", spec.ID, link.ID, err)
			}
			sum.Links++
		}
	}

	for _, spec := range cat.Applications {
		status := spec.Status
		if status == "" {
			status = "applied"
		}
		app := &model.Application{BaseModel: model.BaseModel{ID: spec.ID}, JobID: spec.JobID, CandidateID: spec.CandidateID, Status: status}
		if err := jobs.SaveApplication(ctx, app); err != nil {
			return sum, fmt.Errorf("save application %d: %w", spec.ID, err)
		}
		sum.Applications++
	}

	logger.Log.Info("Assessment catalog seeded",
		zap.Int("templates", sum.Templates),
		zap.Int("questions", sum.Questions),
		zap.Int("jobs", sum.Jobs),
		zap.Int("applications", sum.Applications),
	)
	return sum, nil
}

// TemplateIDs lists the templates in the catalog, for cache invalidation after Apply.
func (c *Catalog) TemplateIDs() []uint {
	ids := make([]uint, 0, len(c.Templates))
	for _, t := range c.Templates {
		ids = append(ids, t.ID)
	}
	return ids
}
