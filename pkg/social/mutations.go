package social

import (
	"context"
	"fmt"
	"os"

	"github.com/cotovicz/dasein/pkg/blob"
	"github.com/cotovicz/dasein/pkg/document"
	"github.com/cotovicz/dasein/pkg/live"
	"github.com/cotovicz/dasein/pkg/model"
)

// Create publishes a new creation. When the input carries a local image path
// the image uploads first; only a successful upload proceeds to the document
// write, so an upload failure leaves the store untouched.
func (s *Service) Create(ctx context.Context, in model.NewCreation) error {
	if err := s.gate.Begin(); err != nil {
		return err
	}
	err := s.create(ctx, in)
	s.gate.Finish(err)
	return err
}

func (s *Service) create(ctx context.Context, in model.NewCreation) error {
	user, err := s.requireUser()
	if err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}

	imageURL := ""
	if in.ImagePath != "" {
		imageURL, err = s.uploadImage(ctx, user.UID, in.ImagePath)
		if err != nil {
			return err
		}
	}

	creation := model.Creation{
		AuthorID:   user.UID,
		AuthorName: s.profiles.DisplayNameFor(ctx, user.UID, user.Email),
		Title:      in.Title,
		Body:       in.Body,
		ImageURL:   imageURL,
		Tags:       in.Tags,
	}
	id, err := s.store.Add(ctx, model.CollectionCreations, model.EncodeCreation(creation))
	if err != nil {
		return fmt.Errorf("failed to publish creation: %w", err)
	}
	s.logger.Info("creation published", "id", id, "author", user.UID)
	return nil
}

// Update edits an existing creation. A new image uploads first and replaces
// the old URL; ImageRemoved clears it; otherwise the existing URL stays. The
// write touches exactly title, body, tags, and image URL.
func (s *Service) Update(ctx context.Context, creationID string, in model.CreationEdit) error {
	if err := s.gate.Begin(); err != nil {
		return err
	}
	err := s.update(ctx, creationID, in)
	s.gate.Finish(err)
	return err
}

func (s *Service) update(ctx context.Context, creationID string, in model.CreationEdit) error {
	user, err := s.requireUser()
	if err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}

	current, err := s.store.Get(ctx, model.CollectionCreations, creationID)
	if err != nil {
		return fmt.Errorf("failed to load creation: %w", err)
	}

	imageURL, _ := current.Fields[model.FieldImageURL].(string)
	switch {
	case in.NewImagePath != "":
		imageURL, err = s.uploadImage(ctx, user.UID, in.NewImagePath)
		if err != nil {
			return err
		}
	case in.ImageRemoved:
		imageURL = ""
	}

	updates := map[string]any{
		model.FieldTitle:    in.Title,
		model.FieldBody:     in.Body,
		model.FieldTags:     append([]string(nil), in.Tags...),
		model.FieldImageURL: imageURL,
	}
	if err := s.store.Update(ctx, model.CollectionCreations, creationID, updates); err != nil {
		return fmt.Errorf("failed to update creation: %w", err)
	}
	return nil
}

// Delete removes a creation together with all of its comments. The store has
// no native cascade, so the comment fan-out is explicit here: the creation
// and its comments go in one atomic batch, leaving no orphaned comments
// behind.
func (s *Service) Delete(ctx context.Context, creationID string) error {
	if err := s.gate.Begin(); err != nil {
		return err
	}
	err := s.deleteCreation(ctx, creationID)
	s.gate.Finish(err)
	return err
}

func (s *Service) deleteCreation(ctx context.Context, creationID string) error {
	if _, err := s.requireUser(); err != nil {
		return err
	}

	q := document.NewQuery(model.CollectionComments).
		WhereEq(model.FieldCreationID, creationID)
	comments, err := live.FetchOnce(ctx, s.store, q, model.DecodeComment, s.logger)
	if err != nil {
		return fmt.Errorf("failed to list comments for cascade delete: %w", err)
	}

	ops := make([]document.Op, 0, len(comments)+1)
	ops = append(ops, document.DeleteOp(model.CollectionCreations, creationID))
	for _, c := range comments {
		ops = append(ops, document.DeleteOp(model.CollectionComments, c.ID))
	}
	if err := s.store.RunBatch(ctx, ops); err != nil {
		return fmt.Errorf("failed to delete creation: %w", err)
	}
	s.logger.Info("creation deleted", "id", creationID, "comments", len(comments))
	return nil
}

// AddComment posts a comment. The comment write and the parent's counter
// increment go in one atomic batch: a comment never exists without its count
// being reflected, and vice versa.
func (s *Service) AddComment(ctx context.Context, creationID string, in model.NewComment) error {
	if err := s.gate.Begin(); err != nil {
		return err
	}
	err := s.addComment(ctx, creationID, in)
	s.gate.Finish(err)
	return err
}

func (s *Service) addComment(ctx context.Context, creationID string, in model.NewComment) error {
	user, err := s.requireUser()
	if err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}

	comment := model.Comment{
		CreationID: creationID,
		AuthorID:   user.UID,
		AuthorName: s.profiles.DisplayNameFor(ctx, user.UID, user.Email),
		Text:       in.Text,
		ParentID:   in.ParentID,
	}
	commentID := s.store.NewID()
	ops := []document.Op{
		document.SetOp(model.CollectionComments, commentID, model.EncodeComment(comment)),
		document.UpdateOp(model.CollectionCreations, creationID, map[string]any{
			model.FieldCommentCount: document.Increment(1),
		}),
	}
	if err := s.store.RunBatch(ctx, ops); err != nil {
		return fmt.Errorf("failed to post comment: %w", err)
	}
	return nil
}

// UpdateComment edits a comment's text in place.
func (s *Service) UpdateComment(ctx context.Context, commentID, newText string) error {
	if err := s.gate.Begin(); err != nil {
		return err
	}
	err := s.updateComment(ctx, commentID, newText)
	s.gate.Finish(err)
	return err
}

func (s *Service) updateComment(ctx context.Context, commentID, newText string) error {
	if _, err := s.requireUser(); err != nil {
		return err
	}
	if newText == "" {
		return &model.ValidationError{Field: "text", Message: "failed required check"}
	}
	updates := map[string]any{model.FieldText: newText}
	if err := s.store.Update(ctx, model.CollectionComments, commentID, updates); err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return nil
}

// DeleteComment removes a comment, decrementing the parent's counter in the
// same atomic batch.
func (s *Service) DeleteComment(ctx context.Context, commentID, creationID string) error {
	if err := s.gate.Begin(); err != nil {
		return err
	}
	err := s.deleteComment(ctx, commentID, creationID)
	s.gate.Finish(err)
	return err
}

func (s *Service) deleteComment(ctx context.Context, commentID, creationID string) error {
	if _, err := s.requireUser(); err != nil {
		return err
	}
	ops := []document.Op{
		document.DeleteOp(model.CollectionComments, commentID),
		document.UpdateOp(model.CollectionCreations, creationID, map[string]any{
			model.FieldCommentCount: document.Increment(-1),
		}),
	}
	if err := s.store.RunBatch(ctx, ops); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

// uploadImage pushes a local image file to blob storage and returns its
// download URL.
func (s *Service) uploadImage(ctx context.Context, userID, localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open image %s: %w", localPath, err)
	}
	defer file.Close()

	objectPath := blob.ImageObjectPath(userID)
	if err := s.blobs.Upload(ctx, objectPath, file); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	url, err := s.blobs.DownloadURL(ctx, objectPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve image URL: %w", err)
	}
	return url, nil
}
