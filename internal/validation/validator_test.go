// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/folio/internal/media"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() returned nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same instance")
	}
}

func validComment() media.Comment {
	return media.Comment{
		ItemID:     "item-1",
		ItemKind:   media.KindPhotography,
		AuthorName: "Ana",
		Content:    "Lovely light",
		CreatedAt:  time.Now(),
	}
}

func TestValidate_Comment(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *media.Comment)
		wantField string
		wantTag   string
	}{
		{name: "valid", mutate: func(c *media.Comment) {}},
		{name: "empty content", mutate: func(c *media.Comment) { c.Content = "" }, wantField: "content", wantTag: "required"},
		{name: "blank content", mutate: func(c *media.Comment) { c.Content = "   \t" }, wantField: "content", wantTag: "notblank"},
		{name: "content too long", mutate: func(c *media.Comment) { c.Content = strings.Repeat("x", 2001) }, wantField: "content", wantTag: "max"},
		{name: "bad kind", mutate: func(c *media.Comment) { c.ItemKind = "video" }, wantField: "item_kind", wantTag: "oneof"},
		{name: "missing item", mutate: func(c *media.Comment) { c.ItemID = "" }, wantField: "item_id", wantTag: "required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validComment()
			tt.mutate(&c)

			ve := ValidateStruct(&c)
			if tt.wantField == "" {
				if ve != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", ve)
				}
				return
			}
			if ve == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			if len(ve.Fields) != 1 {
				t.Fatalf("got %d field errors, want 1: %v", len(ve.Fields), ve)
			}
			if ve.Fields[0].Field != tt.wantField {
				t.Errorf("Field = %q, want %q", ve.Fields[0].Field, tt.wantField)
			}
			if ve.Fields[0].Tag != tt.wantTag {
				t.Errorf("Tag = %q, want %q", ve.Fields[0].Tag, tt.wantTag)
			}
		})
	}
}

func TestValidate_ErrorsIsValidation(t *testing.T) {
	c := validComment()
	c.Content = ""

	err := Validate(&c)
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	if !errors.Is(err, media.ErrValidation) {
		t.Errorf("errors.Is(err, media.ErrValidation) = false for %v", err)
	}
}

func TestValidate_NilOnSuccess(t *testing.T) {
	c := validComment()
	if err := Validate(&c); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidate_MediaItem(t *testing.T) {
	item := media.MediaItem{
		ID:   "p1",
		Kind: media.KindPhotography,
		URLs: []string{"https://cdn.example/p1.jpg"},
	}
	if err := Validate(&item); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	item.URLs = nil
	ve := ValidateStruct(&item)
	if ve == nil {
		t.Fatal("missing urls should fail validation")
	}
	if !strings.Contains(ve.Error(), "urls") {
		t.Errorf("message %q should mention urls", ve.Error())
	}
}

func TestRequestValidationError_Details(t *testing.T) {
	c := validComment()
	c.Content = ""
	c.AuthorName = ""

	ve := ValidateStruct(&c)
	if ve == nil {
		t.Fatal("expected errors")
	}
	details := ve.Details()
	fields, ok := details["fields"].([]FieldError)
	if !ok {
		t.Fatalf("details[fields] has type %T", details["fields"])
	}
	if len(fields) != 2 {
		t.Errorf("got %d fields, want 2", len(fields))
	}
}
