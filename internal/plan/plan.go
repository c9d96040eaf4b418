// Package plan collects the pages an external render stage must emit and the
// folders an external copy stage must mirror.
package plan

import "sync"

// PageToGenerate is one output page.
type PageToGenerate struct {
	Route      string `yaml:"route"`
	OutputPath string `yaml:"output_path"`
	// Metadata is passed through to the renderer untouched.
	Metadata any `yaml:"metadata,omitempty"`
}

// ContentToCopy is one folder to mirror. Source is relative to the content
// base directory and starts with the content path; Destination is relative to
// the output directory.
type ContentToCopy struct {
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
}

// Plan is an append-only list of pages and copy jobs, safe for concurrent use.
type Plan struct {
	mu     sync.Mutex
	pages  []PageToGenerate
	copies []ContentToCopy
}

// New returns an empty plan.
func New() *Plan { return &Plan{} }

// AddPage appends pages in order.
func (p *Plan) AddPage(pages ...PageToGenerate) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pages = append(p.pages, pages...)
}

// AddCopy appends copy jobs in order.
func (p *Plan) AddCopy(copies ...ContentToCopy) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.copies = append(p.copies, copies...)
}

// Pages returns a snapshot of the pages added so far.
func (p *Plan) Pages() []PageToGenerate {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PageToGenerate, len(p.pages))
	copy(out, p.pages)
	return out
}

// Copies returns a snapshot of the copy jobs added so far.
func (p *Plan) Copies() []ContentToCopy {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ContentToCopy, len(p.copies))
	copy(out, p.copies)
	return out
}
