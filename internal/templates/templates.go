package templates

import (
	"bytes"
	"embed"
	"io/fs"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
)

//go:embed builtin/*.md
var builtinFS embed.FS

// ErrNotFound is returned by Get for an unknown template id.
var ErrNotFound = errors.New("template not found")

// NotFoundError carries the id that was looked up. It matches ErrNotFound.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return "template not found: " + e.ID
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Template is a canned Markdown document.
type Template struct {
	ID          string
	Name        string
	Description string
	Content     string
}

// Info is the listing view of a template.
type Info struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Repository is a read-only, ordered template set. It is built once and is
// safe for concurrent reads.
type Repository struct {
	templates []Template
	byID      map[string]int
}

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

type frontMatter struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Order       int    `yaml:"order"`
}

func (m frontMatter) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ID, validation.Required, validation.Match(idPattern)),
		validation.Field(&m.Name, validation.Required),
		validation.Field(&m.Description, validation.Required),
	)
}

type entry struct {
	meta frontMatter
	body string
}

// Load returns the built-in templates followed by the templates found in
// dir. An empty dir loads the built-ins only.
func Load(dir string) (*Repository, error) {
	builtins, err := readTemplates(builtinFS, "builtin")
	if err != nil {
		return nil, errors.Wrap(err, "load built-in templates")
	}

	all := builtins
	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, errors.Wrap(err, "template dir")
		}
		if !info.IsDir() {
			return nil, errors.Errorf("template dir %s is not a directory", dir)
		}
		extra, err := readTemplates(os.DirFS(dir), ".")
		if err != nil {
			return nil, errors.Wrapf(err, "load templates from %s", dir)
		}
		all = append(all, extra...)
	}
	return NewRepository(all...)
}

// NewRepository builds a repository keeping the given order. Ids must be
// unique.
func NewRepository(templates ...Template) (*Repository, error) {
	r := &Repository{
		templates: make([]Template, 0, len(templates)),
		byID:      make(map[string]int, len(templates)),
	}
	for _, t := range templates {
		if _, dup := r.byID[t.ID]; dup {
			return nil, errors.Errorf("duplicate template id %q", t.ID)
		}
		r.byID[t.ID] = len(r.templates)
		r.templates = append(r.templates, t)
	}
	return r, nil
}

// readTemplates parses every *.md file in root, sorted by order then id.
func readTemplates(fsys fs.FS, root string) ([]Template, error) {
	files, err := fs.Glob(fsys, path.Join(root, "*.md"))
	if err != nil {
		return nil, err
	}

	entries := make([]entry, 0, len(files))
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", name)
		}
		e, err := parseTemplate(data)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", name)
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].meta.Order != entries[j].meta.Order {
			return entries[i].meta.Order < entries[j].meta.Order
		}
		return entries[i].meta.ID < entries[j].meta.ID
	})

	out := make([]Template, len(entries))
	for i, e := range entries {
		out[i] = Template{
			ID:          e.meta.ID,
			Name:        e.meta.Name,
			Description: e.meta.Description,
			Content:     e.body,
		}
	}
	return out, nil
}

func parseTemplate(data []byte) (entry, error) {
	var meta frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return entry{}, err
	}
	if err := meta.Validate(); err != nil {
		return entry{}, err
	}
	return entry{meta: meta, body: strings.TrimLeft(string(body), "\r\n")}, nil
}

// List returns id, name and description of every template in order.
func (r *Repository) List() []Info {
	out := make([]Info, len(r.templates))
	for i, t := range r.templates {
		out[i] = Info{ID: t.ID, Name: t.Name, Description: t.Description}
	}
	return out
}

// Get returns the template with the given id or a *NotFoundError.
func (r *Repository) Get(id string) (Template, error) {
	i, ok := r.byID[id]
	if !ok {
		return Template{}, &NotFoundError{ID: id}
	}
	return r.templates[i], nil
}

// Len returns the number of templates.
func (r *Repository) Len() int {
	return len(r.templates)
}
