package resource

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/eringen/adminpanel/api"
	"github.com/eringen/adminpanel/model"
)

// ErrUnknownField is returned by Draft.Set for a field the entity lacks.
var ErrUnknownField = errors.New("resource: unknown field")

// Draft is a dialog's local, unsaved copy of an entity.
type Draft interface {
	// EntityID is empty for a draft that has never been saved.
	EntityID() string
	// DisplayName is the draft's current name.
	DisplayName() string
	// Set replaces one field with value.
	Set(field, value string) error
	// Fill writes every field into a multipart payload.
	Fill(p *api.Payload) error
	// ImageField is the payload name of the entity's image.
	ImageField() string
	// ClearImage forgets the stored image filename.
	ClearImage()
}

func parseOrder(field, value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("resource: %s must be a number", field)
	}
	return n, nil
}

// BlogDraft is the editable form of a model.Blog.
type BlogDraft struct {
	ID              string
	Name            string `validate:"required"`
	Intro           string
	Category        string `validate:"required"`
	SortOrder       int
	Status          model.Status
	Tags            []string
	Description     string
	MetaTitle       string
	MetaDescription string
	Image           string
}

// BlankBlog is the draft shown when adding a blog.
func BlankBlog() *BlogDraft {
	return &BlogDraft{Status: model.Active, Tags: []string{}}
}

// SeedBlog copies every field of b into a new draft.
func SeedBlog(b model.Blog) *BlogDraft {
	return &BlogDraft{
		ID:              b.ID,
		Name:            b.Name,
		Intro:           b.Intro,
		Category:        b.Category.ID,
		SortOrder:       int(b.SortOrder),
		Status:          b.Status,
		Tags:            append([]string{}, b.Tags...),
		Description:     b.Description,
		MetaTitle:       b.MetaTitle,
		MetaDescription: b.MetaDescription,
		Image:           b.Image,
	}
}

func (d *BlogDraft) EntityID() string    { return d.ID }
func (d *BlogDraft) DisplayName() string { return d.Name }
func (d *BlogDraft) ImageField() string  { return "image" }
func (d *BlogDraft) ClearImage()         { d.Image = "" }

func (d *BlogDraft) Set(field, value string) error {
	switch field {
	case "name":
		d.Name = value
	case "intro":
		d.Intro = value
	case "category":
		d.Category = value
	case "sortOrder":
		n, err := parseOrder(field, value)
		if err != nil {
			return err
		}
		d.SortOrder = n
	case "status":
		d.Status = model.ParseStatus(value)
	case "description":
		d.Description = value
	case "metaTitle":
		d.MetaTitle = value
	case "metaDescription":
		d.MetaDescription = value
	case "image":
		d.Image = value
	case "tags":
		var tags model.Tags
		if err := tags.UnmarshalJSON([]byte(strconv.Quote(value))); err != nil {
			return fmt.Errorf("resource: tags: %w", err)
		}
		d.Tags = append([]string{}, tags...)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// AddTag appends the trimmed tag. Whitespace-only input is ignored and
// duplicates are kept.
func (d *BlogDraft) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	d.Tags = append(d.Tags, tag)
	return true
}

// RemoveTag deletes the first entry equal to tag.
func (d *BlogDraft) RemoveTag(tag string) bool {
	for i, t := range d.Tags {
		if t == tag {
			d.Tags = append(d.Tags[:i:i], d.Tags[i+1:]...)
			return true
		}
	}
	return false
}

func (d *BlogDraft) Fill(p *api.Payload) error {
	p.Set("name", d.Name).
		Set("intro", d.Intro).
		Set("category", d.Category).
		Set("sortOrder", strconv.Itoa(d.SortOrder)).
		Set("status", d.Status.String()).
		Set("tags", model.Tags(d.Tags).Encode()).
		Set("description", d.Description).
		Set("metaTitle", d.MetaTitle).
		Set("metaDescription", d.MetaDescription).
		Set("image", d.Image)
	return nil
}

// KeyFeatureDraft is the editable form of a model.KeyFeature.
type KeyFeatureDraft struct {
	ID        string
	Name      string `validate:"required"`
	Info      string
	KeyImg    string
	SortOrder int
	Status    model.Status
}

// BlankKeyFeature is the draft shown when adding a key feature.
func BlankKeyFeature() *KeyFeatureDraft {
	return &KeyFeatureDraft{Status: model.Active}
}

// SeedKeyFeature copies every field of k into a new draft.
func SeedKeyFeature(k model.KeyFeature) *KeyFeatureDraft {
	return &KeyFeatureDraft{
		ID:        k.ID,
		Name:      k.Name,
		Info:      k.Info,
		KeyImg:    k.KeyImg,
		SortOrder: int(k.SortOrder),
		Status:    k.Status,
	}
}

func (d *KeyFeatureDraft) EntityID() string    { return d.ID }
func (d *KeyFeatureDraft) DisplayName() string { return d.Name }
func (d *KeyFeatureDraft) ImageField() string  { return "keyimg" }
func (d *KeyFeatureDraft) ClearImage()         { d.KeyImg = "" }

func (d *KeyFeatureDraft) Set(field, value string) error {
	switch field {
	case "name":
		d.Name = value
	case "info":
		d.Info = value
	case "keyimg":
		d.KeyImg = value
	case "sortOrder":
		n, err := parseOrder(field, value)
		if err != nil {
			return err
		}
		d.SortOrder = n
	case "status":
		d.Status = model.ParseStatus(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

func (d *KeyFeatureDraft) Fill(p *api.Payload) error {
	p.Set("name", d.Name).
		Set("info", d.Info).
		Set("sortOrder", strconv.Itoa(d.SortOrder)).
		Set("status", d.Status.Flag()).
		Set("keyimg", d.KeyImg)
	return nil
}

// TypeDraft is the editable form of a model.Type.
type TypeDraft struct {
	ID         string
	Name       string `validate:"required"`
	Department string
	SortOrder  int
	Status     model.Status
	ShowHome   bool
	IconImg    string
}

// BlankType is the draft shown when adding a type.
func BlankType() *TypeDraft {
	return &TypeDraft{Status: model.Active}
}

// SeedType copies every field of t into a new draft.
func SeedType(t model.Type) *TypeDraft {
	return &TypeDraft{
		ID:         t.ID,
		Name:       t.Name,
		Department: t.Department,
		SortOrder:  int(t.SortOrder),
		Status:     t.Status,
		ShowHome:   bool(t.ShowHome),
		IconImg:    t.IconImg,
	}
}

func (d *TypeDraft) EntityID() string    { return d.ID }
func (d *TypeDraft) DisplayName() string { return d.Name }
func (d *TypeDraft) ImageField() string  { return "iconimg" }
func (d *TypeDraft) ClearImage()         { d.IconImg = "" }

func (d *TypeDraft) Set(field, value string) error {
	switch field {
	case "name":
		d.Name = value
	case "department":
		d.Department = value
	case "sortOrder":
		n, err := parseOrder(field, value)
		if err != nil {
			return err
		}
		d.SortOrder = n
	case "status":
		d.Status = model.ParseStatus(value)
	case "showHome":
		d.ShowHome = model.ParseStatus(value).Bool()
	case "iconimg":
		d.IconImg = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

func (d *TypeDraft) Fill(p *api.Payload) error {
	p.Set("name", d.Name).
		Set("department", d.Department).
		Set("sortOrder", strconv.Itoa(d.SortOrder)).
		Set("status", d.Status.String()).
		Set("showHome", strconv.FormatBool(d.ShowHome)).
		Set("iconimg", d.IconImg)
	return nil
}
