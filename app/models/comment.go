package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoPost        = errors.New("comment needs a post")
	ErrPostNotStored = errors.New("post has not been saved")
)

// Validate checks the struct tags and that the comment points at the post
// it carries, if any.
func (c *Comment) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Created.IsZero() {
		return errors.New("created cannot be zero")
	}
	if c.Post != nil && c.Post.ID != c.PostID {
		return fmt.Errorf("comment post_id %d does not match post %d", c.PostID, c.Post.ID)
	}
	return nil
}

// BeforeCreate stamps Created and Updated.
func (c *Comment) BeforeCreate() {
	now := time.Now().UTC()
	if c.Created.IsZero() {
		c.Created = now
	}
	c.Updated = now
}

// Attach links the comment to a stored post.
func (c *Comment) Attach(post *Post) error {
	if post == nil {
		return ErrNoPost
	}
	if post.ID == 0 {
		return ErrPostNotStored
	}
	c.Post = post
	c.PostID = post.ID
	return nil
}
