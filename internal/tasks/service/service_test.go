package service

import (
	"testing"

	"github.com/aussiebroadwan/tasks/internal/tasks/session/drivers/memory"
	"github.com/aussiebroadwan/tasks/internal/tasks/store/drivers/sqlite"
	"github.com/aussiebroadwan/tasks/pkg/cryptox"
	"github.com/aussiebroadwan/tasks/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "tasks-test"

type fixture struct {
	store    *sqlite.Store
	sessions *memory.Cache
	signer   *jwtx.HMACSigner
	auth     *AuthService
	tasks    *TaskService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureDSN(t, ":memory:")
}

func newFixtureDSN(t *testing.T, dsn string) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, hmacVerifier, err := jwtx.NewHMAC([]byte("test-secret"), testIssuer)
	require.NoError(t, err)
	verifier, err := jwtx.NewCachedVerifier(hmacVerifier, 16)
	require.NoError(t, err)

	sessions := memory.New()

	return &fixture{
		store:    st,
		sessions: sessions,
		signer:   signer,
		auth: &AuthService{
			Store:    st,
			Sessions: sessions,
			Hasher:   cryptox.NewBcryptHasher(4),
			Signer:   signer,
			Verifier: verifier,
		},
		tasks: &TaskService{Store: st},
	}
}
