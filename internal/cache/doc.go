// Package cache keeps published CMS query results on disk under
// StoragePath/cache/<namespace>/<shard>/<name>.json. Writes go through a temp
// file and rename; the save time is the file mtime, which Policy compares
// against the list or detail TTL. Namespaces group entries by document family
// (posts, tags, projects, ...) so webhook revalidation can purge a family at
// once.
package cache
