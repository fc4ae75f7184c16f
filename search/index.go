package search

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"devlog/models"
)

const (
	// IndexName is the RediSearch index over post documents.
	IndexName = "devlog-posts"
	docPrefix = "devlog:post:"
)

// Document is the full field set of an index document. The document id is
// the post slug, so a slug rename is a delete of the old document plus a
// create of the new one.
type Document struct {
	AccessLevel string
	Category    string
	Title       string
	Content     string
	CreatedAt   time.Time
}

// Index is the full-text index the synchronizer and the search path talk to.
type Index interface {
	EnsureIndex(ctx context.Context) error
	Exists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, slug string, doc Document) error
	Update(ctx context.Context, slug string, fields map[string]interface{}) error
	Delete(ctx context.Context, slug string) error
	Search(ctx context.Context, query string, authed bool) ([]string, error)
}

// RedisIndex implements Index on RediSearch, with documents stored as hashes
// under a common key prefix.
type RedisIndex struct {
	rdb *redis.Client
}

func NewRedisIndex(rdb *redis.Client) *RedisIndex {
	return &RedisIndex{rdb: rdb}
}

// EnsureIndex creates the search index if it does not exist yet.
func (i *RedisIndex) EnsureIndex(ctx context.Context) error {
	err := i.rdb.FTCreate(ctx, IndexName,
		&redis.FTCreateOptions{
			OnHash: true,
			Prefix: []interface{}{docPrefix},
		},
		&redis.FieldSchema{FieldName: "accessLevel", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "category", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "title", FieldType: redis.SearchFieldTypeText},
		&redis.FieldSchema{FieldName: "content", FieldType: redis.SearchFieldTypeText},
		&redis.FieldSchema{FieldName: "createdAt", FieldType: redis.SearchFieldTypeNumeric, Sortable: true},
	).Err()
	if err != nil && strings.Contains(err.Error(), "Index already exists") {
		return nil
	}
	return err
}

func (i *RedisIndex) Exists(ctx context.Context, slug string) (bool, error) {
	n, err := i.rdb.Exists(ctx, docPrefix+slug).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (i *RedisIndex) Create(ctx context.Context, slug string, doc Document) error {
	return i.rdb.HSet(ctx, docPrefix+slug, map[string]interface{}{
		"accessLevel": doc.AccessLevel,
		"category":    doc.Category,
		"title":       doc.Title,
		"content":     doc.Content,
		"createdAt":   doc.CreatedAt.Unix(),
	}).Err()
}

func (i *RedisIndex) Update(ctx context.Context, slug string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return i.rdb.HSet(ctx, docPrefix+slug, fields).Err()
}

func (i *RedisIndex) Delete(ctx context.Context, slug string) error {
	return i.rdb.Del(ctx, docPrefix+slug).Err()
}

// Search returns up to a page of matching slugs, newest first. Anonymous
// viewers are restricted to public documents; the access filter is part of
// the index query itself so unlisted and private posts never surface.
func (i *RedisIndex) Search(ctx context.Context, query string, authed bool) ([]string, error) {
	terms := sanitizeQuery(query)
	if terms == "" {
		return nil, nil
	}
	if !authed {
		terms = "@accessLevel:{" + string(models.AccessPublic) + "} " + terms
	}

	res, err := i.rdb.FTSearchWithArgs(ctx, IndexName, terms, &redis.FTSearchOptions{
		NoContent: true,
		SortBy:    []redis.FTSearchSortBy{{FieldName: "createdAt", Desc: true}},
		Limit:     20,
	}).Result()
	if err != nil {
		return nil, err
	}

	slugs := make([]string, 0, len(res.Docs))
	for _, doc := range res.Docs {
		slugs = append(slugs, strings.TrimPrefix(doc.ID, docPrefix))
	}
	return slugs, nil
}

// sanitizeQuery keeps only word characters so user input cannot inject
// RediSearch query syntax.
func sanitizeQuery(query string) string {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		return !(r == '-' || r == '_' ||
			('0' <= r && r <= '9') ||
			('a' <= r && r <= 'z') ||
			('A' <= r && r <= 'Z') ||
			r > 127)
	})
	return strings.Join(fields, " ")
}
