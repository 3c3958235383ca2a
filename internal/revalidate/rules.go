package revalidate

import (
	"net/url"

	"github.com/NikhilNandyala/azure-daily-blog/internal/content"
)

func withSlug(base []string, prefix, slug string) []string {
	paths := append([]string(nil), base...)
	if slug != "" {
		paths = append(paths, prefix+url.PathEscape(slug))
	}
	return paths
}

func init() {
	MustRegister(Rule{
		DocType:    "post",
		Namespaces: []string{content.NamespacePosts, content.NamespaceTags},
		Paths: func(slug string) []string {
			return withSlug([]string{"/", "/blog", "/tags"}, "/blog/", slug)
		},
	})
	MustRegister(Rule{
		DocType:    "tag",
		Namespaces: []string{content.NamespaceTags, content.NamespacePosts},
		Paths: func(slug string) []string {
			return withSlug([]string{"/", "/tags"}, "/tags/", slug)
		},
	})
	MustRegister(Rule{
		DocType:    "project",
		Namespaces: []string{content.NamespaceProjects},
		Paths: func(slug string) []string {
			return withSlug([]string{"/projects"}, "/projects/", slug)
		},
	})
	MustRegister(Rule{
		DocType:    "siteSettings",
		Namespaces: []string{content.NamespaceSettings},
		Paths:      func(string) []string { return []string{"/"} },
	})
	MustRegister(Rule{
		DocType:    "author",
		Namespaces: []string{content.NamespaceAuthors, content.NamespacePosts},
		Paths:      func(string) []string { return []string{"/", "/blog"} },
	})
}
