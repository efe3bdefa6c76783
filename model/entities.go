package model

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
)

// PlaceholderImage is shown when an entity has no image or the image fails
// to load.
const PlaceholderImage = "/public/placeholder.svg"

// Entity is implemented by every record the list views manage.
type Entity interface {
	EntityID() string
	DisplayName() string
}

// Category groups blogs. Category endpoints require the admin token.
type Category struct {
	ID   string `json:"_id,omitempty"`
	Name string `json:"name"`
}

func (c Category) EntityID() string    { return c.ID }
func (c Category) DisplayName() string { return c.Name }

func (c *Category) UnmarshalJSON(data []byte) error {
	type alias Category
	aux := struct {
		*alias
		AltID string `json:"id"`
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = aux.AltID
	}
	return nil
}

// CategoryRef is a blog's category: either a bare id or a populated
// document, depending on the endpoint.
type CategoryRef struct {
	ID   string
	Name string
}

func (r *CategoryRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = CategoryRef{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = CategoryRef{ID: id}
		return nil
	}
	var c Category
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	*r = CategoryRef{ID: c.ID, Name: c.Name}
	return nil
}

func (r CategoryRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

// Blog is a blog post as stored by the backend.
type Blog struct {
	ID              string      `json:"_id,omitempty"`
	Name            string      `json:"name"`
	Intro           string      `json:"intro"`
	Category        CategoryRef `json:"category"`
	SortOrder       Order       `json:"sortOrder"`
	Status          Status      `json:"status"`
	Tags            Tags        `json:"tags"`
	Description     string      `json:"description"`
	MetaTitle       string      `json:"metaTitle"`
	MetaDescription string      `json:"metaDescription"`
	Image           string      `json:"image"`
}

func (b Blog) EntityID() string    { return b.ID }
func (b Blog) DisplayName() string { return b.Name }

func (b *Blog) UnmarshalJSON(data []byte) error {
	type alias Blog
	aux := struct {
		*alias
		AltID string `json:"id"`
	}{alias: (*alias)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if b.ID == "" {
		b.ID = aux.AltID
	}
	return nil
}

// KeyFeature is a highlighted product feature with an icon image.
type KeyFeature struct {
	ID        string `json:"_id,omitempty"`
	Name      string `json:"name"`
	Info      string `json:"info"`
	KeyImg    string `json:"keyimg"`
	SortOrder Order  `json:"sortOrder"`
	Status    Status `json:"status"`
}

func (k KeyFeature) EntityID() string    { return k.ID }
func (k KeyFeature) DisplayName() string { return k.Name }

func (k *KeyFeature) UnmarshalJSON(data []byte) error {
	type alias KeyFeature
	aux := struct {
		*alias
		AltID string `json:"id"`
	}{alias: (*alias)(k)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if k.ID == "" {
		k.ID = aux.AltID
	}
	return nil
}

// Type is a department-scoped type with an icon, optionally shown on the
// home page.
type Type struct {
	ID         string `json:"_id,omitempty"`
	Name       string `json:"name"`
	Department string `json:"department"`
	SortOrder  Order  `json:"sortOrder"`
	Status     Status `json:"status"`
	ShowHome   Bool   `json:"showHome"`
	IconImg    string `json:"iconimg"`
}

func (t Type) EntityID() string    { return t.ID }
func (t Type) DisplayName() string { return t.Name }

func (t *Type) UnmarshalJSON(data []byte) error {
	type alias Type
	aux := struct {
		*alias
		AltID string `json:"id"`
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = aux.AltID
	}
	return nil
}

// ImageURL builds the public URL of an uploaded file:
// <base>/uploads/<filename>. An empty filename yields PlaceholderImage.
// Filenames that are already absolute URLs are returned unchanged.
func ImageURL(base, filename string) string {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return PlaceholderImage
	}
	if strings.HasPrefix(filename, "http://") || strings.HasPrefix(filename, "https://") {
		return filename
	}
	filename = strings.TrimPrefix(filename, "/")
	filename = strings.TrimPrefix(filename, "uploads/")
	return strings.TrimRight(base, "/") + "/uploads/" + url.PathEscape(filename)
}
