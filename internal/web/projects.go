package web

import (
	"net/url"

	"github.com/a-h/templ"

	"github.com/NikhilNandyala/azure-daily-blog/internal/content"
	"github.com/NikhilNandyala/azure-daily-blog/internal/search"
)

// ProjectsData 是 /projects 数据，Projects 为已过滤结果。
type ProjectsData struct {
	Featured   []content.ProjectListItem
	Projects   []content.ProjectListItem
	Categories []string
	Filter     search.Filter
}

// Projects 渲染项目页：精选、筛选表单、已选条件、结果数与列表。
func Projects(data ProjectsData) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<section class="projects"><h1>Projects</h1>`)
		if len(data.Featured) > 0 {
			h.raw(`<section class="featured"><h2>Featured Projects</h2>`)
			for _, p := range data.Featured {
				projectCard(h, p)
			}
			h.raw(`</section>`)
		}

		f := data.Filter
		h.raw(`<form class="filters" method="get" action="/projects">`)
		h.raw(`<label for="status">Status</label><select id="status" name="status">`)
		for _, status := range search.ProjectStatuses() {
			option(h, status, statusLabel(status), statusValue(f))
		}
		h.raw(`</select><label for="category">Category</label><select id="category" name="category">`)
		option(h, search.All, "All Categories", categoryValue(f))
		for _, cat := range data.Categories {
			option(h, cat, search.CategoryName(cat), categoryValue(f))
		}
		h.raw(`</select><label for="search">Search</label>`)
		h.raw(`<input id="search" type="text" name="q" placeholder="Search by title or tech..." value="`, attr(f.Query), `"/>`)
		h.raw(`<button type="submit">Apply</button></form>`)

		if f.Active() {
			h.raw(`<div class="active-filters">`)
			if statusValue(f) != search.All {
				h.link(filterURL(search.Filter{Category: f.Category, Query: f.Query}), "Status: "+f.Status+" ×", "class", "chip")
			}
			if categoryValue(f) != search.All {
				h.link(filterURL(search.Filter{Status: f.Status, Query: f.Query}), search.CategoryName(f.Category)+" ×", "class", "chip")
			}
			if f.Query != "" {
				h.link(filterURL(search.Filter{Status: f.Status, Category: f.Category}), `"`+f.Query+`" ×`, "class", "chip")
			}
			h.raw(`</div>`)
		}

		n := len(data.Projects)
		h.rawf(`<p class="count">%d %s found</p>`, n, plural(n, "project", "projects"))
		if n == 0 {
			h.raw(`<div class="empty"><p>No projects match your filters.</p>`)
			h.link("/projects", "Clear all filters")
			h.raw(`</div></section>`)
			return
		}
		h.raw(`<div class="grid">`)
		for _, p := range data.Projects {
			projectCard(h, p)
		}
		h.raw(`</div></section>`)
	})
}

func statusValue(f search.Filter) string {
	if f.Status == "" {
		return search.All
	}
	return f.Status
}

func categoryValue(f search.Filter) string {
	if f.Category == "" {
		return search.All
	}
	return f.Category
}

func statusLabel(status string) string {
	switch content.ProjectStatus(status) {
	case search.All:
		return "All"
	case content.ProjectActive:
		return "Active"
	case content.ProjectPaused:
		return "Paused"
	case content.ProjectArchived:
		return "Archived"
	}
	return status
}

func option(h *htmlWriter, value, label, selected string) {
	h.raw(`<option value="`, attr(value), `"`)
	if value == selected {
		h.raw(` selected`)
	}
	h.raw(`>`)
	h.text(label)
	h.raw(`</option>`)
}

// filterURL 生成保留其余条件的项目页地址。
func filterURL(f search.Filter) string {
	q := url.Values{}
	if f.Status != "" && f.Status != search.All {
		q.Set("status", f.Status)
	}
	if f.Category != "" && f.Category != search.All {
		q.Set("category", f.Category)
	}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	if len(q) == 0 {
		return "/projects"
	}
	return "/projects?" + q.Encode()
}

func projectCard(h *htmlWriter, p content.ProjectListItem) {
	h.raw(`<article class="project-card">`)
	if img := p.HeroImage.URL(); img != "" {
		h.raw(`<img src="`, safeURL(img), `" alt="`, attr(p.Title), `" loading="lazy"/>`)
	}
	h.raw(`<h3>`)
	h.link("/projects/"+p.Slug.Current, p.Title)
	h.raw(`</h3>`)
	statusBadge(h, p.Status)
	if p.Category != "" {
		h.raw(`<span class="category">`)
		h.text(search.CategoryName(p.Category))
		h.raw(`</span>`)
	}
	if p.ShortDescription != "" {
		h.raw(`<p>`)
		h.text(p.ShortDescription)
		h.raw(`</p>`)
	}
	techChips(h, p.TechStack)
	h.raw(`</article>`)
}

func statusBadge(h *htmlWriter, status content.ProjectStatus) {
	if status == "" {
		return
	}
	h.raw(`<span class="status status-`, attr(string(status)), `">`)
	h.text(statusLabel(string(status)))
	h.raw(`</span>`)
}

func techChips(h *htmlWriter, stack []string) {
	if len(stack) == 0 {
		return
	}
	h.raw(`<ul class="tech">`)
	for _, tech := range stack {
		h.raw(`<li>`)
		h.text(tech)
		h.raw(`</li>`)
	}
	h.raw(`</ul>`)
}

// ProjectDetail 渲染项目详情，BodyHTML 为已渲染的正文。
func ProjectDetail(p *content.Project, bodyHTML string) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<article class="project">`)
		h.link("/projects", "← Back to projects")
		h.raw(`<h1>`)
		h.text(p.Title)
		h.raw(`</h1>`)
		statusBadge(h, p.Status)
		if p.Category != "" {
			h.raw(`<span class="category">`)
			h.text(search.CategoryName(p.Category))
			h.raw(`</span>`)
		}
		if p.ShortDescription != "" {
			h.raw(`<p class="lead">`)
			h.text(p.ShortDescription)
			h.raw(`</p>`)
		}
		if img := p.HeroImage.URL(); img != "" {
			h.raw(`<figure class="hero"><img src="`, safeURL(img), `" alt="`, attr(p.Title), `"/></figure>`)
		}
		techChips(h, p.TechStack)
		links := [][2]string{{p.RepoURL, "Repository"}, {p.LiveURL, "Live Demo"}, {p.DocsURL, "Documentation"}}
		h.raw(`<div class="links">`)
		for _, l := range links {
			if l[0] != "" {
				h.link(l[0], l[1], "target", "_blank", "rel", "noopener noreferrer")
			}
		}
		h.raw(`</div><div class="prose">`)
		h.component(templ.Raw(bodyHTML))
		h.raw(`</div>`)
		if len(p.Gallery) > 0 {
			h.raw(`<section class="gallery"><h2>Gallery</h2>`)
			for i := range p.Gallery {
				img := &p.Gallery[i]
				if img.URL() == "" {
					continue
				}
				alt := img.Alt
				if alt == "" {
					alt = p.Title
				}
				h.raw(`<figure><img src="`, safeURL(img.URL()), `" alt="`, attr(alt), `" loading="lazy"/>`)
				if img.Caption != "" {
					h.raw(`<figcaption>`)
					h.text(img.Caption)
					h.raw(`</figcaption>`)
				}
				h.raw(`</figure>`)
			}
			h.raw(`</section>`)
		}
		h.raw(`</article>`)
	})
}
