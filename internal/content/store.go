// Package content reads and writes the portfolio's on-disk pages:
// markdown files with YAML frontmatter under content/projects plus a
// single content/about.md.
package content

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// AboutSlug is the reserved page name for the about page.
const AboutSlug = "about"

var slugRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidSlug reports whether s is an acceptable project slug.
func ValidSlug(s string) bool { return slugRe.MatchString(s) }

// Page is one markdown file: parsed metadata plus the body below the
// frontmatter. RawMeta keeps the frontmatter text verbatim so an edit
// that never touches metadata writes it back byte for byte.
type Page struct {
	Slug    string
	Path    string
	Meta    map[string]any
	RawMeta string
	Body    string
}

// Store is the file-backed page store rooted at a content directory.
type Store struct {
	root string
}

func NewStore(root string) *Store { return &Store{root: root} }

func (s *Store) projectPath(slug string) string {
	return filepath.Join(s.root, "projects", slug+".md")
}

func (s *Store) aboutPath() string {
	return filepath.Join(s.root, "about.md")
}

// Project loads one project page by slug.
func (s *Store) Project(slug string) (*Page, error) {
	if !ValidSlug(slug) {
		return nil, fmt.Errorf("invalid slug %q", slug)
	}
	return s.load(slug, s.projectPath(slug))
}

// About loads the about page.
func (s *Store) About() (*Page, error) {
	return s.load(AboutSlug, s.aboutPath())
}

// Page loads either a project or the about page by name.
func (s *Store) Page(name string) (*Page, error) {
	if name == AboutSlug {
		return s.About()
	}
	return s.Project(name)
}

func (s *Store) load(slug, path string) (*Page, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read page %s: %w", slug, err)
	}
	rawMeta, body := splitFrontmatter(string(raw))
	meta := map[string]any{}
	if rawMeta != "" {
		if err := yaml.Unmarshal([]byte(rawMeta), &meta); err != nil {
			return nil, fmt.Errorf("parse frontmatter of %s: %w", slug, err)
		}
	}
	return &Page{Slug: slug, Path: path, Meta: meta, RawMeta: rawMeta, Body: body}, nil
}

// ListProjects returns the project slugs, sorted.
func (s *Store) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, "projects"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list projects: %w", err)
	}
	var slugs []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		slug := strings.TrimSuffix(name, ".md")
		if ValidSlug(slug) {
			slugs = append(slugs, slug)
		}
	}
	sort.Strings(slugs)
	return slugs, nil
}

// SaveProject writes a project page, creating it if needed. The write
// is atomic: a temp file in the same directory renamed over the
// target.
func (s *Store) SaveProject(slug, body string, meta map[string]any) error {
	if !ValidSlug(slug) {
		return fmt.Errorf("invalid slug %q", slug)
	}
	return s.save(s.projectPath(slug), body, "", meta)
}

// SaveAbout writes the about page.
func (s *Store) SaveAbout(body string, meta map[string]any) error {
	return s.save(s.aboutPath(), body, "", meta)
}

// SavePage writes back a loaded page with new body text, reusing its
// frontmatter verbatim.
func (s *Store) SavePage(p *Page, body string) error {
	return s.save(p.Path, body, p.RawMeta, p.Meta)
}

func (s *Store) save(path, body, rawMeta string, meta map[string]any) error {
	if rawMeta == "" && len(meta) > 0 {
		enc, err := yaml.Marshal(meta)
		if err != nil {
			return fmt.Errorf("encode frontmatter: %w", err)
		}
		rawMeta = string(enc)
	}
	var b strings.Builder
	if rawMeta != "" {
		b.WriteString("---\n")
		b.WriteString(strings.TrimRight(rawMeta, "\n"))
		b.WriteString("\n---\n\n")
	}
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".page-*")
	if err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write page: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write page: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// splitFrontmatter separates a leading "---" fenced YAML header from
// the body. Content without a header comes back with an empty header
// and the input untouched.
func splitFrontmatter(raw string) (meta, body string) {
	if !strings.HasPrefix(raw, "---\n") && raw != "---" {
		return "", raw
	}
	rest := strings.TrimPrefix(raw, "---\n")
	if i := strings.Index(rest, "\n---\n"); i >= 0 {
		meta = rest[:i]
		body = rest[i+len("\n---\n"):]
	} else if strings.HasSuffix(rest, "\n---") {
		meta = strings.TrimSuffix(rest, "\n---")
	} else {
		return "", raw
	}
	body = strings.TrimPrefix(body, "\n")
	return meta, body
}
