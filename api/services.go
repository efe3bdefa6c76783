package api

import (
	"context"
	"net/url"

	"github.com/eringen/adminpanel/model"
)

// BlogService wraps the blog endpoints. They are public: no token is sent.
type BlogService struct {
	c *Client
}

// Blogs returns the blog endpoints of c.
func (c *Client) Blogs() *BlogService {
	return &BlogService{c: c}
}

// List fetches every blog.
func (s *BlogService) List(ctx context.Context) ([]model.Blog, error) {
	var out []model.Blog
	if err := s.c.Get(ctx, "/blogget", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListActive fetches the active blogs of one category.
func (s *BlogService) ListActive(ctx context.Context, categoryID string) ([]model.Blog, error) {
	var out []model.Blog
	if err := s.c.Get(ctx, "/blogget-active/"+url.PathEscape(categoryID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create posts a new blog.
func (s *BlogService) Create(ctx context.Context, p *Payload) (model.Blog, error) {
	var out model.Blog
	err := s.c.Post(ctx, "/blogpost", nil, p, &out)
	return out, err
}

// Update replaces blog id.
func (s *BlogService) Update(ctx context.Context, id string, p *Payload) (model.Blog, error) {
	var out model.Blog
	err := s.c.Put(ctx, "/blogput/"+url.PathEscape(id), nil, p, &out)
	return out, err
}

// Delete removes blog id.
func (s *BlogService) Delete(ctx context.Context, id string) error {
	return s.c.Delete(ctx, "/blogdelete/"+url.PathEscape(id), nil, nil, nil)
}

// ToggleStatus flips blog id between active and inactive.
func (s *BlogService) ToggleStatus(ctx context.Context, id string) (model.Blog, error) {
	var out model.Blog
	err := s.c.Put(ctx, "/blogtoggle-status/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// KeyFeatureService wraps the key feature endpoints.
type KeyFeatureService struct {
	c *Client
}

// KeyFeatures returns the key feature endpoints of c.
func (c *Client) KeyFeatures() *KeyFeatureService {
	return &KeyFeatureService{c: c}
}

func (s *KeyFeatureService) List(ctx context.Context) ([]model.KeyFeature, error) {
	var out []model.KeyFeature
	if err := s.c.Get(ctx, "/key_feature_get", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *KeyFeatureService) Create(ctx context.Context, p *Payload) (model.KeyFeature, error) {
	var out model.KeyFeature
	err := s.c.Post(ctx, "/key_feature", nil, p, &out)
	return out, err
}

func (s *KeyFeatureService) Update(ctx context.Context, id string, p *Payload) (model.KeyFeature, error) {
	var out model.KeyFeature
	err := s.c.Put(ctx, "/key_feature/"+url.PathEscape(id), nil, p, &out)
	return out, err
}

func (s *KeyFeatureService) Delete(ctx context.Context, id string) error {
	return s.c.Delete(ctx, "/key_feature_delete/"+url.PathEscape(id), nil, nil, nil)
}

// Toggle flips the status and returns the updated record.
func (s *KeyFeatureService) Toggle(ctx context.Context, id string) (model.KeyFeature, error) {
	var out model.KeyFeature
	err := s.c.Patch(ctx, "/key_feature_toggle/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// TypeService wraps the type endpoints.
type TypeService struct {
	c *Client
}

// Types returns the type endpoints of c.
func (c *Client) Types() *TypeService {
	return &TypeService{c: c}
}

func (s *TypeService) List(ctx context.Context) ([]model.Type, error) {
	var out []model.Type
	if err := s.c.Get(ctx, "/types", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *TypeService) Create(ctx context.Context, p *Payload) (model.Type, error) {
	var out model.Type
	err := s.c.Post(ctx, "/types", nil, p, &out)
	return out, err
}

func (s *TypeService) Update(ctx context.Context, id string, p *Payload) (model.Type, error) {
	var out model.Type
	err := s.c.Put(ctx, "/types/"+url.PathEscape(id), nil, p, &out)
	return out, err
}

// CategoryService wraps the blog category endpoints. Every call carries the
// bearer token from auth.
type CategoryService struct {
	c    *Client
	auth Auth
}

// Categories returns the category endpoints of c, authenticated with auth.
func (c *Client) Categories(auth Auth) *CategoryService {
	return &CategoryService{c: c, auth: auth}
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	if err := s.c.Get(ctx, "/categorybloget", &s.auth, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CategoryService) Create(ctx context.Context, name string) (model.Category, error) {
	var out model.Category
	err := s.c.Post(ctx, "/categoryblog/post", &s.auth, JSON(map[string]string{"name": name}), &out)
	return out, err
}

func (s *CategoryService) Update(ctx context.Context, id, name string) (model.Category, error) {
	var out model.Category
	err := s.c.Put(ctx, "/categoryblogput/"+url.PathEscape(id), &s.auth, JSON(map[string]string{"name": name}), &out)
	return out, err
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return s.c.Delete(ctx, "/categoryblogid/"+url.PathEscape(id), &s.auth, nil, nil)
}

// BulkDelete removes every category in ids with one request.
func (s *CategoryService) BulkDelete(ctx context.Context, ids []string) error {
	return s.c.Delete(ctx, "/catogryblog/delete", &s.auth, JSON(map[string][]string{"ids": ids}), nil)
}
