package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/housesplit/internal/auth"
	"github.com/mmynk/housesplit/internal/middleware"
	"github.com/mmynk/housesplit/internal/models"
	"github.com/mmynk/housesplit/internal/notify"
	"github.com/mmynk/housesplit/internal/storage/sqlite"
	"github.com/mmynk/housesplit/pkg/api"
)

const testPIN = "1234"

var household = []models.Member{
	{ID: "lucas", Name: "Lucas"},
	{ID: "luis", Name: "Luis"},
	{ID: "monica", Name: "Monica"},
	{ID: "niels", Name: "Niels"},
}

// recorder is a notify.Publisher that keeps every change.
type recorder struct {
	mu      sync.Mutex
	changes []notify.Change
}

func (r *recorder) Publish(_ context.Context, c notify.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
	return nil
}

func (r *recorder) all() []notify.Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Change(nil), r.changes...)
}

type testEnv struct {
	auth        *api.AuthServiceClient
	expenses    *api.ExpenseServiceClient
	settlements *api.SettlementServiceClient
	changes     *recorder
	tokens      map[models.MemberID]string
}

// newTestEnv serves every service over httptest with a fresh SQLite database and logs
// each household member in.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte(testPIN), bcrypt.MinCost)
	require.NoError(t, err)
	credentials := make([]auth.Credential, len(household))
	for i, m := range household {
		credentials[i] = auth.Credential{Member: m, PINHash: string(hash)}
	}

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	changes := &recorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	authenticated := connect.WithInterceptors(middleware.RequireAuth(jwtManager))
	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(NewAuthService(auth.NewPINAuthenticator(credentials), jwtManager, logger)))
	mux.Handle(api.NewExpenseServiceHandler(NewExpenseService(store, household, changes), authenticated))
	mux.Handle(api.NewSettlementServiceHandler(NewSettlementService(store, household, changes), authenticated))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	env := &testEnv{
		auth:        api.NewAuthServiceClient(http.DefaultClient, server.URL),
		expenses:    api.NewExpenseServiceClient(http.DefaultClient, server.URL),
		settlements: api.NewSettlementServiceClient(http.DefaultClient, server.URL),
		changes:     changes,
		tokens:      make(map[models.MemberID]string),
	}
	for _, m := range household {
		resp, err := env.auth.Login(context.Background(), connect.NewRequest(&api.LoginRequest{
			MemberID: string(m.ID),
			PIN:      testPIN,
		}))
		require.NoError(t, err)
		env.tokens[m.ID] = resp.Msg.Token
	}
	return env
}

// as wraps msg in a request authenticated as member.
func as[T any](env *testEnv, member models.MemberID, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+env.tokens[member])
	return req
}

func requireCode(t *testing.T, want connect.Code, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, connect.CodeOf(err), "error: %v", err)
}
