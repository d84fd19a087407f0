package domain

// AdminStatistics is the site-wide dashboard.
type AdminStatistics struct {
	TotalArticles    int64            `json:"total_articles"`
	TotalUsers       int64            `json:"total_users"`
	TotalWriters     int64            `json:"total_writers"`
	TotalCategories  int64            `json:"total_categories"`
	TotalComments    int64            `json:"total_comments"`
	TotalViews       int64            `json:"total_views"`
	ArticlesByStatus map[string]int64 `json:"articles_by_status"`
	UsersByRole      map[string]int64 `json:"users_by_role"`
	TopCategories    []Ranked         `json:"top_categories"`
	TopWriters       []Ranked         `json:"top_writers"`
}

// WriterStatistics is the dashboard for a single author.
type WriterStatistics struct {
	TotalArticles       int64            `json:"total_articles"`
	TotalViews          int64            `json:"total_views"`
	TotalComments       int64            `json:"total_comments"`
	TotalLikes          int64            `json:"total_likes"`
	ArticlesByStatus    map[string]int64 `json:"articles_by_status"`
	TopArticles         []Ranked         `json:"top_articles"`
	CategoryPerformance []Ranked         `json:"category_performance"`
}

// Ranked is one row of a top-N listing.
type Ranked struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value int64  `json:"value"`
}
