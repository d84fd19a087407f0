package role

import (
	"context"
	"fmt"
	"strings"

	"github.com/news-api/internal/domain"
)

var descriptions = map[string]string{
	domain.RoleAdmin:  "Full access to users, content and statistics",
	domain.RoleWriter: "Creates and manages own articles",
	domain.RoleReader: "Reads articles and comments",
}

type Service interface {
	List(ctx context.Context) ([]domain.Role, error)
	Get(ctx context.Context, name string) (*domain.Role, error)
}

type service struct{}

func NewService() Service { return service{} }

func (service) List(_ context.Context) ([]domain.Role, error) {
	out := make([]domain.Role, 0, len(domain.Roles))
	for _, name := range domain.Roles {
		out = append(out, domain.Role{Name: name, Description: descriptions[name]})
	}
	return out, nil
}

func (service) Get(_ context.Context, name string) (*domain.Role, error) {
	name = strings.ToUpper(name)
	if !domain.ValidRole(name) {
		return nil, fmt.Errorf("role %s: %w", name, domain.ErrNotFound)
	}
	return &domain.Role{Name: name, Description: descriptions[name]}, nil
}
