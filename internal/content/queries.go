package content

// 查询投影与 GROQ 文本集中在此处，分页偏移与 slug 一律通过参数传入。

const postListFields = `
  _id,
  _createdAt,
  title,
  slug,
  excerpt,
  coverImage { asset -> { _id, url }, alt, hotspot },
  tags[] -> { _id, title, slug },
  author -> { name, image { asset -> { _id, url }, hotspot } },
  publishedAt,
  "featured": coalesce(featured, false),
  "membersOnly": coalesce(membersOnly, false),
  status,
  "views": coalesce(views, 0)
`

const postDetailFields = `
  _id,
  _createdAt,
  _updatedAt,
  title,
  slug,
  excerpt,
  body[] {
    ...,
    _type == "image" => { ..., asset -> { _id, url } }
  },
  markdownBody,
  coverImage { asset -> { _id, url }, alt, hotspot, crop },
  tags[] -> { _id, title, slug },
  author -> { _id, name },
  publishedAt,
  status,
  "featured": coalesce(featured, false),
  "membersOnly": coalesce(membersOnly, false),
  "views": coalesce(views, 0),
  seoTitle,
  seoDescription,
  canonicalUrl
`

const projectListFields = `
  _id,
  _createdAt,
  title,
  slug,
  shortDescription,
  heroImage { asset -> { _id, url }, alt, hotspot },
  techStack,
  category,
  status,
  repoUrl,
  liveUrl,
  docsUrl,
  "featured": coalesce(featured, false),
  publishedAt
`

const projectDetailFields = `
  _id,
  _createdAt,
  _updatedAt,
  title,
  slug,
  shortDescription,
  body[] {
    ...,
    _type == "image" => { ..., asset -> { _id, url } }
  },
  heroImage { asset -> { _id, url }, alt, hotspot, crop },
  gallery[] { asset -> { _id, url }, alt, caption, hotspot, crop },
  techStack,
  category,
  status,
  repoUrl,
  liveUrl,
  docsUrl,
  "featured": coalesce(featured, false),
  publishedAt
`

const (
	publishedPostFilter = `_type == "post" && status == "published"`
	tagFilter           = `$tagSlug in tags[]->slug.current`

	queryLatestPosts    = `*[` + publishedPostFilter + `] | order(publishedAt desc) [0...$limit] {` + postListFields + `}`
	queryFeaturedPosts  = `*[` + publishedPostFilter + ` && featured == true] | order(publishedAt desc) [0...$limit] {` + postListFields + `}`
	queryPublishedPosts = `*[` + publishedPostFilter + `] | order(publishedAt desc) [$start...$end] {` + postListFields + `}`
	queryPublishedCount = `count(*[` + publishedPostFilter + `])`

	queryPublishedPostBySlug = `*[` + publishedPostFilter + ` && slug.current == $slug][0] {` + postDetailFields + `}`
	queryAnyPostBySlug       = `*[_type == "post" && slug.current == $slug][0] {` + postDetailFields + `}`

	queryPostExists = `count(*[_type == "post" && slug.current == $slug]) > 0`
	queryPostSlugs  = `*[` + publishedPostFilter + ` && defined(slug.current)] { "slug": slug.current, publishedAt }`
	queryDebugPosts = `*[_type == "post"] | order(publishedAt desc) { _id, title, "slug": slug.current, status, publishedAt }`

	queryAllTags        = `*[_type == "tag"] | order(title asc) { _id, title, slug }`
	queryTagsWithCounts = `*[_type == "tag"] {
  "tag": { _id, title, slug },
  "count": count(*[` + publishedPostFilter + ` && ^._id in tags[]._ref])
} | order(count desc)`
	queryPostsByTag      = `*[` + publishedPostFilter + ` && ` + tagFilter + `] | order(publishedAt desc) [$start...$end] {` + postListFields + `}`
	queryPostsByTagCount = `count(*[` + publishedPostFilter + ` && ` + tagFilter + `])`
	queryTagBySlug       = `*[_type == "tag" && slug.current == $slug][0] { _id, title, slug }`

	querySiteSettings = `*[_type == "siteSettings"][0] {
  siteTitle,
  siteDescription,
  defaultSeoTitle,
  defaultSeoDescription,
  ogImage { asset -> { _id, url }, hotspot }
}`
	queryAuthorByID = `*[_type == "author" && _id == $authorId][0] { _id, name, bio, image { asset -> { _id, url }, hotspot } }`

	projectOrder = `order(publishedAt desc, _createdAt desc)`

	queryAllProjects        = `*[_type == "project"] | ` + projectOrder + ` [$start...$end] {` + projectListFields + `}`
	queryFeaturedProjects   = `*[_type == "project" && featured == true] | ` + projectOrder + ` [0...$limit] {` + projectListFields + `}`
	queryProjectBySlug      = `*[_type == "project" && slug.current == $slug][0] {` + projectDetailFields + `}`
	queryProjectSlugs       = `*[_type == "project" && defined(slug.current)].slug.current`
	queryProjectsByStatus   = `*[_type == "project" && status == $status] | ` + projectOrder + ` [0...$limit] {` + projectListFields + `}`
	queryProjectsByCategory = `*[_type == "project" && category == $category] | ` + projectOrder + ` [0...$limit] {` + projectListFields + `}`
	queryProjectCategories  = `array::unique(*[_type == "project" && defined(category)].category)`
)
