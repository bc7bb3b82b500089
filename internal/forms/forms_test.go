package forms

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_Login(t *testing.T) {
	ok, fields := Validate(Login{Identifier: "sari", Password: "secret"})
	assert.True(t, ok)
	assert.Nil(t, fields)

	ok, fields = Validate(Login{})
	assert.False(t, ok)
	assert.Equal(t, "form.error.required", fields.Get("Identifier"))
	assert.Equal(t, "form.error.required", fields.Get("Password"))
}

func TestValidate_Register(t *testing.T) {
	ok, _ := Validate(Register{Email: "sari@example.com", Username: "sari", Password: "secret"})
	assert.True(t, ok)

	_, fields := Validate(Register{Email: "not-an-email", Username: "ab", Password: "short"})
	assert.Equal(t, "form.error.email", fields.Get("Email"))
	assert.Equal(t, "form.error.too_short", fields.Get("Username"))
	assert.Equal(t, "form.error.too_short", fields.Get("Password"))
}

func TestValidate_Article(t *testing.T) {
	valid := Article{
		Title:         "Three Days in Ubud",
		Description:   "Rice terraces and warungs.",
		CoverImageURL: "https://img.example.com/ubud.jpg",
	}
	ok, _ := Validate(valid)
	assert.True(t, ok, "category is optional")

	_, fields := Validate(Article{CoverImageURL: "not a url"})
	assert.Equal(t, "form.error.required", fields.Get("Title"))
	assert.Equal(t, "form.error.required", fields.Get("Description"))
	assert.Equal(t, "form.error.url", fields.Get("CoverImageURL"))

	long := valid
	long.Title = strings.Repeat("x", 201)
	_, fields = Validate(long)
	assert.Equal(t, "form.error.too_long", fields.Get("Title"))
}

func TestValidate_Comment(t *testing.T) {
	ok, _ := Validate(Comment{Content: "great tips"})
	assert.True(t, ok)

	_, fields := Validate(Comment{})
	assert.True(t, fields.Has("Content"))

	_, fields = Validate(Comment{Content: strings.Repeat("y", 2001)})
	assert.Equal(t, "form.error.too_long", fields.Get("Content"))
}
