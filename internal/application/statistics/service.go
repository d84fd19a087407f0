package statistics

import (
	"context"
	"sort"

	"github.com/news-api/internal/domain"
)

// TopN caps every ranked listing on the dashboards.
const TopN = 5

type Service interface {
	Admin(ctx context.Context) (*domain.AdminStatistics, error)
	Writer(ctx context.Context, principal domain.Principal) (*domain.WriterStatistics, error)
}

type articleStore interface {
	List(ctx context.Context, f domain.ArticleFilter) ([]domain.Article, error)
}

type userStore interface {
	All(ctx context.Context) ([]domain.User, error)
}

type categoryStore interface {
	Scan(ctx context.Context) ([]domain.Category, error)
}

type commentStore interface {
	All(ctx context.Context) ([]domain.Comment, error)
}

type service struct {
	articles   articleStore
	users      userStore
	categories categoryStore
	comments   commentStore
}

type ServiceDeps struct {
	ArticleRepo  articleStore
	UserRepo     userStore
	CategoryRepo categoryStore
	CommentRepo  commentStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		articles:   deps.ArticleRepo,
		users:      deps.UserRepo,
		categories: deps.CategoryRepo,
		comments:   deps.CommentRepo,
	}
}

func (s *service) Admin(ctx context.Context) (*domain.AdminStatistics, error) {
	articles, err := s.articles.List(ctx, domain.ArticleFilter{})
	if err != nil {
		return nil, err
	}
	users, err := s.users.All(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.Scan(ctx)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.All(ctx)
	if err != nil {
		return nil, err
	}

	st := &domain.AdminStatistics{
		TotalArticles:    int64(len(articles)),
		TotalUsers:       int64(len(users)),
		TotalCategories:  int64(len(categories)),
		TotalComments:    int64(len(comments)),
		ArticlesByStatus: zeroed(domain.ArticleStatuses),
		UsersByRole:      zeroed(domain.Roles),
	}

	perCategory := make(map[string]int64, len(categories))
	perAuthor := make(map[string]int64)
	for i := range articles {
		a := &articles[i]
		st.TotalViews += a.Views
		st.ArticlesByStatus[a.Status]++
		perAuthor[a.AuthorID]++
		if a.CategoryID != nil {
			perCategory[*a.CategoryID]++
		}
	}

	var writers []domain.Ranked
	for i := range users {
		u := &users[i]
		st.UsersByRole[u.Role]++
		if u.Role == domain.RoleWriter {
			st.TotalWriters++
			writers = append(writers, domain.Ranked{ID: u.UserID, Name: u.Username, Value: perAuthor[u.UserID]})
		}
	}
	st.TopWriters = top(writers)

	ranked := make([]domain.Ranked, 0, len(categories))
	for _, c := range categories {
		ranked = append(ranked, domain.Ranked{ID: c.CategoryID, Name: c.Name, Value: perCategory[c.CategoryID]})
	}
	st.TopCategories = top(ranked)
	return st, nil
}

func (s *service) Writer(ctx context.Context, principal domain.Principal) (*domain.WriterStatistics, error) {
	articles, err := s.articles.List(ctx, domain.ArticleFilter{AuthorID: principal.UserID})
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.All(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.Scan(ctx)
	if err != nil {
		return nil, err
	}

	st := &domain.WriterStatistics{
		TotalArticles:    int64(len(articles)),
		ArticlesByStatus: zeroed(domain.ArticleStatuses),
	}
	own := make(map[string]struct{}, len(articles))
	viewsByCategory := make(map[string]int64)
	byViews := make([]domain.Ranked, 0, len(articles))
	for i := range articles {
		a := &articles[i]
		own[a.ArticleID] = struct{}{}
		st.TotalViews += a.Views
		st.ArticlesByStatus[a.Status]++
		byViews = append(byViews, domain.Ranked{ID: a.ArticleID, Name: a.Title, Value: a.Views})
		if a.CategoryID != nil {
			viewsByCategory[*a.CategoryID] += a.Views
		}
	}
	st.TopArticles = top(byViews)

	for i := range comments {
		if _, ok := own[comments[i].ArticleID]; ok {
			st.TotalComments++
			st.TotalLikes += comments[i].Likes
		}
	}

	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.CategoryID] = c.Name
	}
	perf := make([]domain.Ranked, 0, len(viewsByCategory))
	for cid, views := range viewsByCategory {
		perf = append(perf, domain.Ranked{ID: cid, Name: names[cid], Value: views})
	}
	st.CategoryPerformance = rank(perf)
	return st, nil
}

func zeroed(keys []string) map[string]int64 {
	m := make(map[string]int64, len(keys))
	for _, k := range keys {
		m[k] = 0
	}
	return m
}

// rank orders rows by value descending, then by name.
func rank(rows []domain.Ranked) []domain.Ranked {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Value != rows[j].Value {
			return rows[i].Value > rows[j].Value
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

func top(rows []domain.Ranked) []domain.Ranked {
	rows = rank(rows)
	if len(rows) > TopN {
		rows = rows[:TopN]
	}
	if rows == nil {
		rows = []domain.Ranked{}
	}
	return rows
}
