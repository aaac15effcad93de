package tool

import (
	"time"

	"github.com/pkg/errors"

	"md2confluence/internal/converter"
	"md2confluence/internal/logger"
	"md2confluence/internal/templates"
)

// TemplateDetail is a template including its Markdown content.
type TemplateDetail struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// ConvertedTemplate is a template rendered to wiki markup.
type ConvertedTemplate struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	ConfluenceMarkup string `json:"confluenceMarkup"`
}

// Service implements the convert and template operations independent of the
// transport.
type Service struct {
	converter *converter.Converter
	templates *templates.Repository
	defaults  converter.Options
	log       *logger.Logger
}

// NewService creates a service. defaults supplies every option except the
// theme, which each call passes explicitly.
func NewService(conv *converter.Converter, repo *templates.Repository, defaults converter.Options, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		converter: conv,
		templates: repo,
		defaults:  defaults,
		log:       log,
	}
}

// options applies the call's theme. Blank means no theme.
func (s *Service) options(theme string) converter.Options {
	return s.defaults.WithTheme(theme)
}

func (s *Service) convert(source, markdown, theme string) (string, error) {
	start := time.Now()
	out, err := s.converter.Convert(markdown, s.options(theme))
	if err != nil {
		s.log.ConversionFailed(source, err)
		return "", err
	}
	s.log.ConversionCompleted(source, len(markdown), len(out), time.Since(start))
	return out, nil
}

// ConvertMarkdown converts markdown to wiki markup.
func (s *Service) ConvertMarkdown(markdown, theme string) (string, error) {
	return s.convert("convertMarkdown", markdown, theme)
}

// ListTemplates lists the available templates in order.
func (s *Service) ListTemplates() []templates.Info {
	return s.templates.List()
}

// GetTemplate returns a template's metadata and content.
func (s *Service) GetTemplate(id string) (TemplateDetail, error) {
	t, err := s.lookup(id)
	if err != nil {
		return TemplateDetail{}, err
	}
	return TemplateDetail{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Content:     t.Content,
	}, nil
}

// ConvertTemplate converts a template to wiki markup.
func (s *Service) ConvertTemplate(id, theme string) (ConvertedTemplate, error) {
	t, err := s.lookup(id)
	if err != nil {
		return ConvertedTemplate{}, err
	}
	markup, err := s.convert("template:"+t.ID, t.Content, theme)
	if err != nil {
		return ConvertedTemplate{}, errors.Wrapf(err, "convert template %s", t.ID)
	}
	return ConvertedTemplate{ID: t.ID, Name: t.Name, ConfluenceMarkup: markup}, nil
}

func (s *Service) lookup(id string) (templates.Template, error) {
	t, err := s.templates.Get(id)
	if errors.Is(err, templates.ErrNotFound) {
		s.log.TemplateMissing(id)
	}
	return t, err
}
