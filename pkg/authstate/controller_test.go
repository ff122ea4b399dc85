package authstate_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/apiclient"
	"github.com/dmitrymomot/authkit/pkg/authstate"
	"github.com/dmitrymomot/authkit/pkg/credstore"
	"github.com/dmitrymomot/authkit/pkg/nav"
)

// fakeProfileAPI counts calls and serves a scripted profile or error.
type fakeProfileAPI struct {
	calls   atomic.Int32
	profile *apiclient.UserProfile
	err     error
}

func (f *fakeProfileAPI) GetUserProfile(ctx context.Context) (*apiclient.UserProfile, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func aliceProfile() *apiclient.UserProfile {
	return &apiclient.UserProfile{ID: 1, Username: "alice", Email: "alice@x.com", TfaEnabled: true}
}

func TestCheckAuth(t *testing.T) {
	t.Parallel()

	t.Run("idempotent with no token and no network call", func(t *testing.T) {
		t.Parallel()
		api := &fakeProfileAPI{profile: aliceProfile()}
		ctrl := authstate.New(api, credstore.NewMemoryStore(), nav.NewRecorder(nav.RouteLogin))

		ctrl.CheckAuth(context.Background())
		assert.False(t, ctrl.IsAuthenticated())
		assert.False(t, ctrl.Loading())

		ctrl.CheckAuth(context.Background())
		assert.False(t, ctrl.IsAuthenticated())
		assert.Equal(t, int32(0), api.calls.Load(), "absent-token path must not hit the network")
	})

	t.Run("valid token hydrates profile", func(t *testing.T) {
		t.Parallel()
		api := &fakeProfileAPI{profile: aliceProfile()}
		store := credstore.NewMemoryStore()
		require.NoError(t, store.Save("tok"))
		ctrl := authstate.New(api, store, nav.NewRecorder(nav.RouteDashboard))

		ctrl.CheckAuth(context.Background())

		assert.True(t, ctrl.IsAuthenticated())
		user, ok := ctrl.User()
		require.True(t, ok)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("rejected token is cleared", func(t *testing.T) {
		t.Parallel()
		api := &fakeProfileAPI{err: &apiclient.Error{Kind: apiclient.KindUnauthorized, Status: 401}}
		store := credstore.NewMemoryStore()
		require.NoError(t, store.Save("stale"))
		ctrl := authstate.New(api, store, nav.NewRecorder(nav.RouteDashboard))

		ctrl.CheckAuth(context.Background())

		assert.False(t, ctrl.IsAuthenticated())
		_, ok := store.Token()
		assert.False(t, ok, "failed validation must clear the persisted token")
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("hydration invariant holds on success", func(t *testing.T) {
		t.Parallel()
		api := &fakeProfileAPI{profile: aliceProfile()}
		store := credstore.NewMemoryStore()
		ctrl := authstate.New(api, store, nav.NewRecorder(nav.RouteVerify))

		require.NoError(t, ctrl.Login(context.Background(), "fresh-tok"))

		assert.True(t, ctrl.IsAuthenticated())
		_, ok := ctrl.User()
		assert.True(t, ok)
		token, ok := store.Token()
		require.True(t, ok)
		assert.Equal(t, "fresh-tok", token)
	})

	t.Run("hydration invariant holds on rejection", func(t *testing.T) {
		t.Parallel()
		api := &fakeProfileAPI{err: &apiclient.Error{Kind: apiclient.KindUnauthorized, Status: 401}}
		store := credstore.NewMemoryStore()
		ctrl := authstate.New(api, store, nav.NewRecorder(nav.RouteVerify))

		err := ctrl.Login(context.Background(), "bad-tok")
		require.ErrorIs(t, err, authstate.ErrTokenRejected)

		assert.False(t, ctrl.IsAuthenticated())
		_, ok := ctrl.User()
		assert.False(t, ok)
		_, ok = store.Token()
		assert.False(t, ok, "rejected token must not remain persisted")
	})

	t.Run("empty token rejected without persistence", func(t *testing.T) {
		t.Parallel()
		store := credstore.NewMemoryStore()
		ctrl := authstate.New(&fakeProfileAPI{}, store, nav.NewRecorder(nav.RouteLogin))

		err := ctrl.Login(context.Background(), "")
		require.ErrorIs(t, err, authstate.ErrEmptyToken)
		_, ok := store.Token()
		assert.False(t, ok)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	t.Run("clears session and redirects to login", func(t *testing.T) {
		t.Parallel()
		api := &fakeProfileAPI{profile: aliceProfile()}
		store := credstore.NewMemoryStore()
		recorder := nav.NewRecorder(nav.RouteDashboard)
		ctrl := authstate.New(api, store, recorder)
		require.NoError(t, ctrl.Login(context.Background(), "tok"))

		ctrl.Logout()

		assert.False(t, ctrl.IsAuthenticated())
		_, ok := store.Token()
		assert.False(t, ok)
		assert.Equal(t, nav.RouteLogin, recorder.Current())
	})

	t.Run("safe without a session", func(t *testing.T) {
		t.Parallel()
		recorder := nav.NewRecorder(nav.RouteDashboard)
		ctrl := authstate.New(&fakeProfileAPI{}, credstore.NewMemoryStore(), recorder)

		ctrl.Logout()
		assert.Equal(t, nav.RouteLogin, recorder.Current())
	})
}

func TestHandleUnauthorized(t *testing.T) {
	t.Parallel()

	t.Run("evicts and redirects exactly once under concurrency", func(t *testing.T) {
		t.Parallel()
		api := &fakeProfileAPI{profile: aliceProfile()}
		store := credstore.NewMemoryStore()
		recorder := nav.NewRecorder(nav.RouteDashboard)
		ctrl := authstate.New(api, store, recorder)
		require.NoError(t, ctrl.Login(context.Background(), "tok"))

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ctrl.HandleUnauthorized()
			}()
		}
		wg.Wait()

		_, ok := store.Token()
		assert.False(t, ok)
		assert.Equal(t, 1, recorder.Visits(nav.RouteLogin), "concurrent 401s must produce one redirect")
	})

	t.Run("no redirect loop on the login view", func(t *testing.T) {
		t.Parallel()
		recorder := nav.NewRecorder(nav.RouteLogin)
		ctrl := authstate.New(&fakeProfileAPI{}, credstore.NewMemoryStore(), recorder)

		ctrl.HandleUnauthorized()
		assert.Equal(t, 0, recorder.Visits(nav.RouteLogin))
	})
}

func TestSetUser(t *testing.T) {
	t.Parallel()

	t.Run("patches cached profile", func(t *testing.T) {
		t.Parallel()
		api := &fakeProfileAPI{profile: aliceProfile()}
		store := credstore.NewMemoryStore()
		ctrl := authstate.New(api, store, nav.NewRecorder(nav.RouteProfile))
		require.NoError(t, ctrl.Login(context.Background(), "tok"))

		disabled := false
		ctrl.SetUser(authstate.UserPatch{TfaEnabled: &disabled})

		user, ok := ctrl.User()
		require.True(t, ok)
		assert.False(t, user.TfaEnabled)
	})

	t.Run("next fetch reconciles the optimistic patch", func(t *testing.T) {
		t.Parallel()
		api := &fakeProfileAPI{profile: aliceProfile()}
		store := credstore.NewMemoryStore()
		ctrl := authstate.New(api, store, nav.NewRecorder(nav.RouteProfile))
		require.NoError(t, ctrl.Login(context.Background(), "tok"))

		disabled := false
		ctrl.SetUser(authstate.UserPatch{TfaEnabled: &disabled})
		ctrl.CheckAuth(context.Background())

		user, ok := ctrl.User()
		require.True(t, ok)
		assert.True(t, user.TfaEnabled, "server remains the source of truth")
	})

	t.Run("no-op without a session", func(t *testing.T) {
		t.Parallel()
		ctrl := authstate.New(&fakeProfileAPI{}, credstore.NewMemoryStore(), nav.NewRecorder(nav.RouteLogin))
		enabled := true
		ctrl.SetUser(authstate.UserPatch{TfaEnabled: &enabled})
		_, ok := ctrl.User()
		assert.False(t, ok)
	})
}
