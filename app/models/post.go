package models

import (
	"errors"
	"fmt"
	"time"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.Created.IsZero() {
		return errors.New("created cannot be zero")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	now := time.Now().UTC()
	if p.Created.IsZero() {
		p.Created = now
	}
	if p.Publish.IsZero() {
		p.Publish = now
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	p.Publish = p.Publish.UTC()
	p.Updated = now
}

// IsPublished reports whether the post is visible to readers.
func (p *Post) IsPublished() bool {
	return p.Status == StatusPublished
}

// PublishedOn reports whether the post was published on the given UTC date.
func (p *Post) PublishedOn(year, month, day int) bool {
	y, m, d := p.Publish.UTC().Date()
	return y == year && int(m) == month && d == day
}

// AbsoluteURL returns the canonical detail path of the post.
func (p *Post) AbsoluteURL() string {
	publish := p.Publish.UTC()
	return fmt.Sprintf("/blog/%d/%d/%d/%s/", publish.Year(), int(publish.Month()), publish.Day(), p.Slug)
}

// HasTag reports whether the post is labelled with slug.
func (p *Post) HasTag(slug string) bool {
	for _, t := range p.Tags {
		if t == slug {
			return true
		}
	}
	return false
}

// SharedTags counts the tags p has in common with other.
func (p *Post) SharedTags(other *Post) int {
	n := 0
	for _, t := range other.Tags {
		if p.HasTag(t) {
			n++
		}
	}
	return n
}
