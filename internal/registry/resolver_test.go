package registry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"toolbelt/internal/domain"
)

type fakeRemote struct {
	appCalls    atomic.Int64
	actionCalls atomic.Int64
	appErr      error
	actionErr   error
}

func (f *fakeRemote) FetchApp(_ context.Context, slug domain.Slug) (domain.AppRecord, error) {
	f.appCalls.Add(1)
	if f.appErr != nil {
		return domain.AppRecord{}, f.appErr
	}
	return domain.AppRecord{Slug: slug, Name: "remote app"}, nil
}

func (f *fakeRemote) FetchAction(_ context.Context, slug domain.Slug) (domain.ActionRecord, error) {
	f.actionCalls.Add(1)
	if f.actionErr != nil {
		return domain.ActionRecord{}, f.actionErr
	}
	return domain.ActionRecord{Slug: slug, Name: "remote action", App: "GITHUB", NoAuth: true, IsLocal: true}, nil
}

func newTestResolver(t *testing.T, remote RemoteSource) *Resolver {
	t.Helper()
	return NewResolver(New(nil), ResolverOptions{
		Remote:   remote,
		CacheDir: t.TempDir(),
	})
}

func TestResolverCaseInsensitive(t *testing.T) {
	resolver := newTestResolver(t, nil)

	for _, value := range []string{"github", "GitHub", "GITHUB", "  github  "} {
		app, err := resolver.App(value)
		require.NoError(t, err)
		require.Equal(t, domain.Slug("GITHUB"), app.Slug())
	}
}

func TestResolverUnknownSlug(t *testing.T) {
	resolver := newTestResolver(t, nil)

	_, err := resolver.Action("NO_SUCH_ACTION")
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrInvalidSlug)

	_, err = resolver.App("")
	require.ErrorIs(t, err, domain.ErrInvalidSlug)
}

func TestResolverDeprecatedSubstitution(t *testing.T) {
	resolver := newTestResolver(t, nil)

	deprecated, err := resolver.Action("GITHUB_STAR_REPO")
	require.NoError(t, err)

	current, err := resolver.Action("GITHUB_STAR_A_REPOSITORY")
	require.NoError(t, err)

	require.Equal(t, current.Slug(), deprecated.Slug())
	require.True(t, deprecated.Equal(current))
}

func TestResolverRuntimeNamespace(t *testing.T) {
	resolver := newTestResolver(t, nil)
	require.NoError(t, resolver.Registry().RegisterRuntimeAction(domain.ActionRecord{
		Slug: "MYTOOL_DO_THING",
		Name: "do_thing",
		App:  "MYTOOL",
	}))

	action, err := resolver.Action("mytool_do_thing")
	require.NoError(t, err)
	require.True(t, action.IsLocal())

	record, err := resolver.LoadAction(context.Background(), action)
	require.NoError(t, err)
	require.True(t, record.IsRuntime)
	require.True(t, record.NoAuth)
}

func TestResolverLocalNamespace(t *testing.T) {
	resolver := newTestResolver(t, nil)
	require.NoError(t, resolver.Registry().RegisterLocalTool(
		domain.AppRecord{Slug: "MYFILES", Name: "myfiles", IsLocal: true},
		[]domain.ActionRecord{{Slug: "MYFILES_READ", Name: "read", App: "MYFILES", NoAuth: true, IsLocal: true}},
	))

	app, err := resolver.App("myfiles")
	require.NoError(t, err)
	require.Equal(t, domain.LocalityLocal, app.Locality())

	action, err := resolver.Action("MYFILES_READ")
	require.NoError(t, err)
	require.True(t, action.IsLocal())
}

func TestLoadActionRemoteFetchOnce(t *testing.T) {
	remote := &fakeRemote{}
	resolver := newTestResolver(t, remote)

	action, err := resolver.Action("GITHUB_STAR_A_REPOSITORY")
	require.NoError(t, err)

	first, err := resolver.LoadAction(context.Background(), action)
	require.NoError(t, err)
	require.Equal(t, action.Slug(), first.Slug)
	// Remote metadata never carries behavior flags.
	require.False(t, first.NoAuth)
	require.False(t, first.IsLocal)

	second, err := resolver.LoadAction(context.Background(), action)
	require.NoError(t, err)
	require.Equal(t, first.Slug, second.Slug)
	require.EqualValues(t, 1, remote.actionCalls.Load())
}

func TestLoadActionDiskCacheSharedAcrossResolvers(t *testing.T) {
	dir := t.TempDir()
	remote := &fakeRemote{}

	first := NewResolver(New(nil), ResolverOptions{Remote: remote, CacheDir: dir})
	action, err := first.Action("SLACK_SEND_MESSAGE")
	require.NoError(t, err)
	_, err = first.LoadAction(context.Background(), action)
	require.NoError(t, err)
	require.EqualValues(t, 1, remote.actionCalls.Load())

	// A fresh resolver with the same cache dir hits disk, not the remote.
	second := NewResolver(New(nil), ResolverOptions{Remote: remote, CacheDir: dir})
	action2, err := second.Action("SLACK_SEND_MESSAGE")
	require.NoError(t, err)
	record, err := second.LoadAction(context.Background(), action2)
	require.NoError(t, err)
	require.Equal(t, domain.Slug("SLACK_SEND_MESSAGE"), record.Slug)
	require.EqualValues(t, 1, remote.actionCalls.Load())
}

func TestLoadActionRemoteFailure(t *testing.T) {
	remote := &fakeRemote{actionErr: errors.New("boom")}
	resolver := newTestResolver(t, remote)

	action, err := resolver.Action("GITHUB_CREATE_ISSUE")
	require.NoError(t, err)

	_, err = resolver.LoadAction(context.Background(), action)
	require.Error(t, err)
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	require.Equal(t, domain.CodeUnavailable, code)

	// Failures are not cached; the next load retries.
	remote.actionErr = nil
	record, err := resolver.LoadAction(context.Background(), action)
	require.NoError(t, err)
	require.Equal(t, action.Slug(), record.Slug)
}

func TestLoadActionNoRemoteConfigured(t *testing.T) {
	resolver := newTestResolver(t, nil)

	action, err := resolver.Action("GMAIL_SEND_EMAIL")
	require.NoError(t, err)

	_, err = resolver.LoadAction(context.Background(), action)
	require.Error(t, err)
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	require.Equal(t, domain.CodeUnavailable, code)
}

func TestLoadAppChain(t *testing.T) {
	remote := &fakeRemote{}
	resolver := newTestResolver(t, remote)

	app, err := resolver.App("GITHUB")
	require.NoError(t, err)

	record, err := resolver.LoadApp(context.Background(), app)
	require.NoError(t, err)
	require.Equal(t, domain.Slug("GITHUB"), record.Slug)
	require.EqualValues(t, 1, remote.appCalls.Load())

	_, err = resolver.LoadApp(context.Background(), app)
	require.NoError(t, err)
	require.EqualValues(t, 1, remote.appCalls.Load())
}

func TestLoadZeroValue(t *testing.T) {
	resolver := newTestResolver(t, nil)

	_, err := resolver.LoadApp(context.Background(), App{})
	require.ErrorIs(t, err, domain.ErrUninitialized)

	_, err = resolver.LoadAction(context.Background(), Action{})
	require.ErrorIs(t, err, domain.ErrUninitialized)

	_, err = resolver.LoadTrigger(context.Background(), Trigger{})
	require.ErrorIs(t, err, domain.ErrUninitialized)
}

func TestLoadTriggerLocalOnly(t *testing.T) {
	resolver := newTestResolver(t, &fakeRemote{})

	trigger, err := resolver.Trigger("GITHUB_COMMIT_EVENT")
	require.NoError(t, err)

	// No local registration and no remote endpoint for triggers.
	_, err = resolver.LoadTrigger(context.Background(), trigger)
	require.Error(t, err)
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	require.Equal(t, domain.CodeNotFound, code)

	require.NoError(t, resolver.Registry().RegisterTrigger(domain.TriggerRecord{
		Slug: "GITHUB_COMMIT_EVENT",
		Name: "commit_event",
		App:  "GITHUB",
	}))
	record, err := resolver.LoadTrigger(context.Background(), trigger)
	require.NoError(t, err)
	require.Equal(t, domain.Slug("GITHUB_COMMIT_EVENT"), record.Slug)
}

func TestAllActionsDeclarationOrder(t *testing.T) {
	resolver := newTestResolver(t, nil)

	actions := resolver.AllActions()
	require.Len(t, actions, len(staticActions))
	for i, action := range actions {
		require.Equal(t, staticActions[i], action.Slug())
	}
}

func TestRecordCloneIsolation(t *testing.T) {
	resolver := newTestResolver(t, nil)
	require.NoError(t, resolver.Registry().RegisterLocalTool(
		domain.AppRecord{Slug: "TAGTOOL", Name: "tagtool", IsLocal: true},
		[]domain.ActionRecord{{Slug: "TAGTOOL_RUN", Name: "run", App: "TAGTOOL", Tags: []string{"a"}, IsLocal: true}},
	))

	action, err := resolver.Action("TAGTOOL_RUN")
	require.NoError(t, err)

	record, err := resolver.LoadAction(context.Background(), action)
	require.NoError(t, err)
	record.Tags[0] = "mutated"

	again, err := resolver.LoadAction(context.Background(), action)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, again.Tags)
}
