package service

import (
	"context"
	"fmt"
	"time"

	"github.com/plankit/project-service/internal/domain"
	"github.com/plankit/project-service/internal/repository"
)

type memUserRepo struct {
	users map[string]*domain.User
}

func newMemUserRepo(users ...*domain.User) *memUserRepo {
	repo := &memUserRepo{users: map[string]*domain.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = fmt.Sprintf("u-%d", len(r.users)+1)
	}
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	return r.users[id], nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) UpdateVerified(_ context.Context, user *domain.User, verified bool) error {
	user.IsVerified = verified
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, user *domain.User, hash string) error {
	user.PasswordHash = hash
	return nil
}

func (r *memUserRepo) UpdateTwoFactor(_ context.Context, user *domain.User, enabled bool) error {
	user.IsTwoFactorEnabled = enabled
	return nil
}

type memProjectRepo struct {
	projects map[string]*domain.Project
}

func newMemProjectRepo(projects ...*domain.Project) *memProjectRepo {
	repo := &memProjectRepo{projects: map[string]*domain.Project{}}
	for _, p := range projects {
		repo.projects[p.ID] = p
	}
	return repo
}

func (r *memProjectRepo) Create(_ context.Context, project *domain.Project) error {
	if project.ID == "" {
		project.ID = fmt.Sprintf("p-%d", len(r.projects)+1)
	}
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	r.projects[project.ID] = project
	return nil
}

func (r *memProjectRepo) FindByID(_ context.Context, id string) (*domain.Project, error) {
	return r.projects[id], nil
}

type memMembershipRepo struct {
	rows map[string]*domain.Membership
}

func newMemMembershipRepo() *memMembershipRepo {
	return &memMembershipRepo{rows: map[string]*domain.Membership{}}
}

func memberKey(userID, projectID string) string {
	return userID + "|" + projectID
}

func (r *memMembershipRepo) Find(_ context.Context, userID, projectID string) (*domain.Membership, error) {
	return r.rows[memberKey(userID, projectID)], nil
}

func (r *memMembershipRepo) Upsert(_ context.Context, m *domain.Membership) error {
	if existing, ok := r.rows[memberKey(m.UserID, m.ProjectID)]; ok {
		existing.Role = m.Role
		return nil
	}
	m.CreatedAt = time.Now()
	r.rows[memberKey(m.UserID, m.ProjectID)] = m
	return nil
}

func (r *memMembershipRepo) ListByProject(_ context.Context, projectID string) ([]domain.Membership, error) {
	var out []domain.Membership
	for _, m := range r.rows {
		if m.ProjectID == projectID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMembershipRepo) Delete(_ context.Context, userID, projectID string) error {
	delete(r.rows, memberKey(userID, projectID))
	return nil
}

type memTokenRepo struct {
	rows   map[string]*domain.Token
	nextID int
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{rows: map[string]*domain.Token{}}
}

func (r *memTokenRepo) Create(_ context.Context, token *domain.Token) error {
	for _, row := range r.rows {
		if row.Value == token.Value {
			return repository.ErrValueTaken
		}
	}
	r.nextID++
	token.ID = fmt.Sprintf("tok-%d", r.nextID)
	token.CreatedAt = time.Now()
	clone := *token
	r.rows[token.ID] = &clone
	return nil
}

func (r *memTokenRepo) FindLive(_ context.Context, email string, kind domain.TokenKind) (*domain.Token, error) {
	var latest *domain.Token
	for _, row := range r.rows {
		if row.SubjectEmail != email || row.Kind != kind {
			continue
		}
		if latest == nil || row.CreatedAt.After(latest.CreatedAt) {
			latest = row
		}
	}
	if latest == nil {
		return nil, nil
	}
	clone := *latest
	return &clone, nil
}

func (r *memTokenRepo) FindByValue(_ context.Context, value string, kind domain.TokenKind) (*domain.Token, error) {
	for _, row := range r.rows {
		if row.Value == value && row.Kind == kind {
			clone := *row
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memTokenRepo) DeleteByEmailAndKind(_ context.Context, email string, kind domain.TokenKind) error {
	for id, row := range r.rows {
		if row.SubjectEmail == email && row.Kind == kind {
			delete(r.rows, id)
		}
	}
	return nil
}

func (r *memTokenRepo) DeleteByID(_ context.Context, id string, kind domain.TokenKind) (bool, error) {
	if row, ok := r.rows[id]; ok && row.Kind == kind {
		delete(r.rows, id)
		return true, nil
	}
	return false, nil
}

func (r *memTokenRepo) count(kind domain.TokenKind) int {
	n := 0
	for _, row := range r.rows {
		if row.Kind == kind {
			n++
		}
	}
	return n
}

// recordingNotifier captures outbound mail instead of sending it.
type recordingNotifier struct {
	confirmations []string
	resets        []string
	codes         []string
	invites       []string
	lastToken     string
	failNext      error
}

func (n *recordingNotifier) send(err *error, bucket *[]string, email, token string) {
	if n.failNext != nil {
		*err = n.failNext
		n.failNext = nil
		return
	}
	*bucket = append(*bucket, email)
	n.lastToken = token
}

func (n *recordingNotifier) SendConfirmationEmail(email, token string) (err error) {
	n.send(&err, &n.confirmations, email, token)
	return
}

func (n *recordingNotifier) SendPasswordResetEmail(email, token string) (err error) {
	n.send(&err, &n.resets, email, token)
	return
}

func (n *recordingNotifier) SendTwoFactorEmail(email, code string) (err error) {
	n.send(&err, &n.codes, email, code)
	return
}

func (n *recordingNotifier) SendProjectInviteEmail(email, token, _ string, _ domain.MembershipRole) (err error) {
	n.send(&err, &n.invites, email, token)
	return
}
