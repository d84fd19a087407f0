package comment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/news-api/internal/domain"
	"github.com/news-api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldBody    = "body"
	fieldContent = "content"
	fieldStatus  = "status"
)

// Service manages the discussion under articles. Public reads leave out
// hidden comments and replies. Authors edit their own items; admins and the
// article's author moderate and delete any item under the article.
type Service interface {
	// List returns an article's visible comments, oldest first, each with
	// its visible replies.
	List(ctx context.Context, articleID string) ([]domain.Comment, error)
	GetComment(ctx context.Context, commentID string) (*domain.Comment, error)
	Create(ctx context.Context, principal domain.Principal, articleID string, input domain.CommentInput) (*domain.Comment, error)
	UpdateComment(ctx context.Context, principal domain.Principal, commentID string, input domain.CommentInput) (*domain.Comment, error)
	SetCommentStatus(ctx context.Context, principal domain.Principal, commentID string, status int) (*domain.Comment, error)
	DeleteComment(ctx context.Context, principal domain.Principal, commentID string) error
	LikeComment(ctx context.Context, commentID string) error

	ListReplies(ctx context.Context, commentID string) ([]domain.Reply, error)
	// ListChildReplies returns the visible replies answering parentReplyID.
	ListChildReplies(ctx context.Context, parentReplyID string) ([]domain.Reply, error)
	GetReply(ctx context.Context, replyID string) (*domain.Reply, error)
	Reply(ctx context.Context, principal domain.Principal, commentID string, input domain.ReplyInput) (*domain.Reply, error)
	UpdateReply(ctx context.Context, principal domain.Principal, replyID string, input domain.ReplyInput) (*domain.Reply, error)
	SetReplyStatus(ctx context.Context, principal domain.Principal, replyID string, status int) (*domain.Reply, error)
	DeleteReply(ctx context.Context, principal domain.Principal, replyID string) error
	LikeReply(ctx context.Context, replyID string) error
}

type commentStore interface {
	Put(ctx context.Context, c *domain.Comment) error
	Get(ctx context.Context, commentID string) (*domain.Comment, error)
	ListByArticle(ctx context.Context, articleID string) ([]domain.Comment, error)
	Update(ctx context.Context, commentID string, updates map[string]interface{}) error
	Delete(ctx context.Context, commentID string) error
	IncrementLikes(ctx context.Context, commentID string) error
}

type replyStore interface {
	Put(ctx context.Context, r *domain.Reply) error
	Get(ctx context.Context, replyID string) (*domain.Reply, error)
	ListByComment(ctx context.Context, commentID string) ([]domain.Reply, error)
	Update(ctx context.Context, replyID string, updates map[string]interface{}) error
	Delete(ctx context.Context, replyID string) error
	DeleteByComment(ctx context.Context, commentID string) error
	IncrementLikes(ctx context.Context, replyID string) error
}

type articleLookup interface {
	Get(ctx context.Context, articleID string) (*domain.Article, error)
}

type service struct {
	comments commentStore
	replies  replyStore
	articles articleLookup
	now      func() time.Time
}

type ServiceDeps struct {
	CommentRepo commentStore
	ReplyRepo   replyStore
	ArticleRepo articleLookup
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		comments: deps.CommentRepo,
		replies:  deps.ReplyRepo,
		articles: deps.ArticleRepo,
		now:      deps.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) List(ctx context.Context, articleID string) ([]domain.Comment, error) {
	comments, err := s.comments.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Comment, 0, len(comments))
	for _, c := range comments {
		if c.Status == domain.DiscussionHidden {
			continue
		}
		replies, err := s.ListReplies(ctx, c.CommentID)
		if err != nil {
			return nil, err
		}
		c.Replies = replies
		out = append(out, c)
	}
	return out, nil
}

func (s *service) GetComment(ctx context.Context, commentID string) (*domain.Comment, error) {
	c, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.DiscussionHidden {
		return nil, fmt.Errorf("comment %s: %w", commentID, domain.ErrNotFound)
	}
	return c, nil
}

func (s *service) Create(ctx context.Context, principal domain.Principal, articleID string, input domain.CommentInput) (*domain.Comment, error) {
	a, err := s.articles.Get(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if a.Status != domain.ArticlePublished {
		return nil, fmt.Errorf("article %s is not published: %w", articleID, domain.ErrBadRequest)
	}
	now := s.now().UTC()
	c := &domain.Comment{
		CommentID: id.New(),
		ArticleID: articleID,
		UserID:    principal.UserID,
		Body:      input.Comment,
		Status:    domain.DiscussionActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) UpdateComment(ctx context.Context, principal domain.Principal, commentID string, input domain.CommentInput) (*domain.Comment, error) {
	c, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c.UserID != principal.UserID && !principal.IsAdmin() {
		return nil, fmt.Errorf("comment belongs to another user: %w", domain.ErrForbidden)
	}
	if err := s.comments.Update(ctx, commentID, map[string]interface{}{fieldBody: input.Comment}); err != nil {
		return nil, err
	}
	c.Body = input.Comment
	c.UpdatedAt = s.now().UTC()
	return c, nil
}

func (s *service) SetCommentStatus(ctx context.Context, principal domain.Principal, commentID string, status int) (*domain.Comment, error) {
	if !validStatus(status) {
		return nil, fmt.Errorf("unknown moderation status %d: %w", status, domain.ErrBadRequest)
	}
	c, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.requireModerator(ctx, principal, c.ArticleID); err != nil {
		return nil, err
	}
	if err := s.comments.Update(ctx, commentID, map[string]interface{}{fieldStatus: status}); err != nil {
		return nil, err
	}
	slog.Info("comment moderated", "comment_id", commentID, "status", status, "by", principal.UserID)
	c.Status = status
	c.UpdatedAt = s.now().UTC()
	return c, nil
}

// DeleteComment removes a comment and its replies. Allowed for the comment's
// author, the article's author and admins.
func (s *service) DeleteComment(ctx context.Context, principal domain.Principal, commentID string) error {
	c, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return err
	}
	if c.UserID != principal.UserID {
		if err := s.requireModerator(ctx, principal, c.ArticleID); err != nil {
			return err
		}
	}
	if err := s.replies.DeleteByComment(ctx, commentID); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return err
	}
	slog.Info("comment deleted", "comment_id", commentID, "by", principal.UserID)
	return nil
}

func (s *service) LikeComment(ctx context.Context, commentID string) error {
	return s.comments.IncrementLikes(ctx, commentID)
}

func (s *service) ListReplies(ctx context.Context, commentID string) ([]domain.Reply, error) {
	replies, err := s.replies.ListByComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	return visibleReplies(replies, nil), nil
}

func (s *service) ListChildReplies(ctx context.Context, parentReplyID string) ([]domain.Reply, error) {
	parent, err := s.GetReply(ctx, parentReplyID)
	if err != nil {
		return nil, err
	}
	replies, err := s.replies.ListByComment(ctx, parent.CommentID)
	if err != nil {
		return nil, err
	}
	return visibleReplies(replies, &parentReplyID), nil
}

func (s *service) GetReply(ctx context.Context, replyID string) (*domain.Reply, error) {
	r, err := s.replies.Get(ctx, replyID)
	if err != nil {
		return nil, err
	}
	if r.Status == domain.DiscussionHidden {
		return nil, fmt.Errorf("reply %s: %w", replyID, domain.ErrNotFound)
	}
	return r, nil
}

func (s *service) Reply(ctx context.Context, principal domain.Principal, commentID string, input domain.ReplyInput) (*domain.Reply, error) {
	if _, err := s.comments.Get(ctx, commentID); err != nil {
		return nil, err
	}
	if input.ParentReplyID != nil && *input.ParentReplyID != "" {
		parent, err := s.replies.Get(ctx, *input.ParentReplyID)
		if err != nil {
			return nil, err
		}
		if parent.CommentID != commentID {
			return nil, fmt.Errorf("parent reply belongs to another comment: %w", domain.ErrBadRequest)
		}
	} else {
		input.ParentReplyID = nil
	}
	now := s.now().UTC()
	r := &domain.Reply{
		ReplyID:       id.New(),
		CommentID:     commentID,
		ParentReplyID: input.ParentReplyID,
		UserID:        principal.UserID,
		Content:       input.Content,
		Status:        domain.DiscussionActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.replies.Put(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// UpdateReply edits the text of a reply. Its parent is fixed at creation.
func (s *service) UpdateReply(ctx context.Context, principal domain.Principal, replyID string, input domain.ReplyInput) (*domain.Reply, error) {
	r, err := s.replies.Get(ctx, replyID)
	if err != nil {
		return nil, err
	}
	if r.UserID != principal.UserID && !principal.IsAdmin() {
		return nil, fmt.Errorf("reply belongs to another user: %w", domain.ErrForbidden)
	}
	if err := s.replies.Update(ctx, replyID, map[string]interface{}{fieldContent: input.Content}); err != nil {
		return nil, err
	}
	r.Content = input.Content
	r.UpdatedAt = s.now().UTC()
	return r, nil
}

func (s *service) SetReplyStatus(ctx context.Context, principal domain.Principal, replyID string, status int) (*domain.Reply, error) {
	if !validStatus(status) {
		return nil, fmt.Errorf("unknown moderation status %d: %w", status, domain.ErrBadRequest)
	}
	r, err := s.replies.Get(ctx, replyID)
	if err != nil {
		return nil, err
	}
	if err := s.requireReplyModerator(ctx, principal, r); err != nil {
		return nil, err
	}
	if err := s.replies.Update(ctx, replyID, map[string]interface{}{fieldStatus: status}); err != nil {
		return nil, err
	}
	slog.Info("reply moderated", "reply_id", replyID, "status", status, "by", principal.UserID)
	r.Status = status
	r.UpdatedAt = s.now().UTC()
	return r, nil
}

func (s *service) DeleteReply(ctx context.Context, principal domain.Principal, replyID string) error {
	r, err := s.replies.Get(ctx, replyID)
	if err != nil {
		return err
	}
	if r.UserID != principal.UserID {
		if err := s.requireReplyModerator(ctx, principal, r); err != nil {
			return err
		}
	}
	return s.replies.Delete(ctx, replyID)
}

func (s *service) LikeReply(ctx context.Context, replyID string) error {
	return s.replies.IncrementLikes(ctx, replyID)
}

// requireModerator passes admins and the author of the article.
func (s *service) requireModerator(ctx context.Context, principal domain.Principal, articleID string) error {
	if principal.IsAdmin() {
		return nil
	}
	a, err := s.articles.Get(ctx, articleID)
	if err != nil {
		return err
	}
	if a.AuthorID != principal.UserID {
		return fmt.Errorf("only the article author or an admin may moderate: %w", domain.ErrForbidden)
	}
	return nil
}

func (s *service) requireReplyModerator(ctx context.Context, principal domain.Principal, r *domain.Reply) error {
	if principal.IsAdmin() {
		return nil
	}
	c, err := s.comments.Get(ctx, r.CommentID)
	if err != nil {
		return err
	}
	return s.requireModerator(ctx, principal, c.ArticleID)
}

func validStatus(status int) bool {
	return status == domain.DiscussionHidden || status == domain.DiscussionActive
}

// visibleReplies drops hidden replies. A non-nil parent keeps only its
// direct children.
func visibleReplies(replies []domain.Reply, parent *string) []domain.Reply {
	out := make([]domain.Reply, 0, len(replies))
	for _, r := range replies {
		if r.Status == domain.DiscussionHidden {
			continue
		}
		if parent != nil && (r.ParentReplyID == nil || *r.ParentReplyID != *parent) {
			continue
		}
		out = append(out, r)
	}
	return out
}
