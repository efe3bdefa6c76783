package adminpanel

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/adminpanel/model"
)

// BlogLister fetches the active blogs of one category.
type BlogLister interface {
	ListActive(ctx context.Context, categoryID string) ([]model.Blog, error)
}

// CategoryLister fetches every blog category.
type CategoryLister interface {
	List(ctx context.Context) ([]model.Category, error)
}

// BlogCache is an in-memory cache of the public blog lists, one entry per
// category, plus the category list used by the sitemap. Entries expire
// after ttl.
type BlogCache struct {
	mu          sync.RWMutex
	blogs       BlogLister
	cats        CategoryLister
	ttl         time.Duration
	byCategory  map[string]cachedBlogs
	categories  []model.Category
	catsFetched time.Time
}

type cachedBlogs struct {
	blogs   []model.Blog
	fetched time.Time
}

// NewBlogCache creates a BlogCache over the given sources.
func NewBlogCache(blogs BlogLister, cats CategoryLister, ttl time.Duration) *BlogCache {
	return &BlogCache{
		blogs:      blogs,
		cats:       cats,
		ttl:        ttl,
		byCategory: make(map[string]cachedBlogs),
	}
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *BlogCache) Invalidate() {
	c.mu.Lock()
	c.byCategory = make(map[string]cachedBlogs)
	c.categories = nil
	c.mu.Unlock()
}

func (c *BlogCache) fresh(t time.Time) bool {
	return !t.IsZero() && time.Since(t) < c.ttl
}

// ActiveBlogs returns the active blogs of categoryID. It tries a read lock
// first and only takes the write lock when the entry must be reloaded.
func (c *BlogCache) ActiveBlogs(ctx context.Context, categoryID string) ([]model.Blog, error) {
	c.mu.RLock()
	if e, ok := c.byCategory[categoryID]; ok && c.fresh(e.fetched) {
		c.mu.RUnlock()
		return e.blogs, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.byCategory[categoryID]; ok && c.fresh(e.fetched) {
		return e.blogs, nil
	}
	blogs, err := c.blogs.ListActive(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	c.byCategory[categoryID] = cachedBlogs{blogs: blogs, fetched: time.Now()}
	return blogs, nil
}

// Categories returns every blog category.
func (c *BlogCache) Categories(ctx context.Context) ([]model.Category, error) {
	c.mu.RLock()
	if c.categories != nil && c.fresh(c.catsFetched) {
		cats := c.categories
		c.mu.RUnlock()
		return cats, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.categories != nil && c.fresh(c.catsFetched) {
		return c.categories, nil
	}
	cats, err := c.cats.List(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []model.Category{}
	}
	c.categories = cats
	c.catsFetched = time.Now()
	return cats, nil
}

// CategoryName resolves id through the cached category list, or "".
func (c *BlogCache) CategoryName(ctx context.Context, id string) string {
	cats, err := c.Categories(ctx)
	if err != nil {
		return ""
	}
	for _, cat := range cats {
		if cat.ID == id {
			return cat.Name
		}
	}
	return ""
}
