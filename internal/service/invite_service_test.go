package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plankit/project-service/internal/config"
	"github.com/plankit/project-service/internal/domain"
	"github.com/plankit/project-service/internal/events"
	"github.com/plankit/project-service/internal/token"
	apperrors "github.com/plankit/project-service/pkg/util"
)

type inviteFixture struct {
	svc         *InviteService
	users       *memUserRepo
	memberships *memMembershipRepo
	tokens      *memTokenRepo
	notifier    *recordingNotifier
	dispatcher  events.Dispatcher
}

func newInviteFixture() *inviteFixture {
	users := newMemUserRepo(
		&domain.User{ID: "u-bob", Email: "bob@example.com", Role: domain.RoleRegular},
	)
	projects := newMemProjectRepo(
		&domain.Project{ID: "p1", Name: "Atlas", OwnerID: "u-alice"},
	)
	memberships := newMemMembershipRepo()
	tokens := newMemTokenRepo()
	notifier := &recordingNotifier{}
	dispatcher := events.NewInMemoryDispatcher()

	svc := NewInviteService(
		config.AuthConfig{TokenTTLMinutes: 60},
		users, projects, memberships,
		token.NewManager(tokens, nil),
		notifier, dispatcher, zap.NewNop(),
	)
	return &inviteFixture{svc: svc, users: users, memberships: memberships, tokens: tokens, notifier: notifier, dispatcher: dispatcher}
}

func TestInviteSendAndAccept(t *testing.T) {
	t.Parallel()

	f := newInviteFixture()
	ctx := context.Background()

	var joined []events.Event
	f.dispatcher.Subscribe(events.EventMemberJoined, func(_ context.Context, e events.Event) error {
		joined = append(joined, e)
		return nil
	})

	require.NoError(t, f.svc.Send(ctx, "u-alice", "p1", "bob@example.com", domain.MembershipMember))
	require.Len(t, f.notifier.invites, 1)

	membership, err := f.svc.Accept(ctx, f.notifier.lastToken)
	require.NoError(t, err)
	require.Equal(t, "u-bob", membership.UserID)
	require.Equal(t, "p1", membership.ProjectID)
	require.Equal(t, domain.MembershipMember, membership.Role)

	// The row exists and the token is spent.
	row, err := f.memberships.Find(ctx, "u-bob", "p1")
	require.NoError(t, err)
	require.NotNil(t, row)
	require.Equal(t, domain.MembershipMember, row.Role)
	require.Zero(t, f.tokens.count(domain.TokenProjectInvite))

	require.Len(t, joined, 1)
	require.Equal(t, "u-bob", joined[0].UserID)

	// A second redemption of the same link fails.
	_, err = f.svc.Accept(ctx, f.notifier.lastToken)
	require.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestInviteSendRejectsUnknownRole(t *testing.T) {
	t.Parallel()

	f := newInviteFixture()
	err := f.svc.Send(context.Background(), "u-alice", "p1", "bob@example.com", "OWNER")
	require.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	require.Zero(t, f.tokens.count(domain.TokenProjectInvite))
}

func TestInviteSendUnknownProject(t *testing.T) {
	t.Parallel()

	f := newInviteFixture()
	err := f.svc.Send(context.Background(), "u-alice", "p-missing", "bob@example.com", domain.MembershipMember)
	require.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestInviteAcceptUpgradesExistingMembership(t *testing.T) {
	t.Parallel()

	f := newInviteFixture()
	ctx := context.Background()

	require.NoError(t, f.memberships.Upsert(ctx, &domain.Membership{
		UserID: "u-bob", ProjectID: "p1", Role: domain.MembershipVisitor,
	}))

	require.NoError(t, f.svc.Send(ctx, "u-alice", "p1", "bob@example.com", domain.MembershipAdmin))
	_, err := f.svc.Accept(ctx, f.notifier.lastToken)
	require.NoError(t, err)

	row, err := f.memberships.Find(ctx, "u-bob", "p1")
	require.NoError(t, err)
	require.Equal(t, domain.MembershipAdmin, row.Role)
}

func TestInviteAcceptUnknownInvitee(t *testing.T) {
	t.Parallel()

	f := newInviteFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.Send(ctx, "u-alice", "p1", "stranger@example.com", domain.MembershipMember))
	_, err := f.svc.Accept(ctx, f.notifier.lastToken)
	require.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	// The token survives an accept that failed before consumption.
	require.Equal(t, 1, f.tokens.count(domain.TokenProjectInvite))
}
