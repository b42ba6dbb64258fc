package identity

import (
	"testing"
	"time"

	"github.com/qchem/gausscat/internal/conf"
	"github.com/qchem/gausscat/internal/datastore"
	"github.com/qchem/gausscat/internal/datastore/repository"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const strongPassword = "Secr3t!pw"

func testPolicy() conf.PasswordPolicy {
	return conf.PasswordPolicy{
		RequiredLength:         6,
		RequireDigit:           true,
		RequireLowercase:       true,
		RequireUppercase:       true,
		RequireNonAlphanumeric: true,
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := datastore.Open(&conf.DatabaseSettings{
		Type:   conf.DatabaseSQLite,
		SQLite: conf.SQLiteSettings{Path: ":memory:"},
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(t.Context()))

	return New(
		repository.NewUserRepository(store.DB()),
		repository.NewRoleRepository(store.DB()),
		NewTokenIssuer("test-secret", "gausscat-test", time.Hour),
		Options{
			Policy:     testPolicy(),
			Lockout:    conf.LockoutSettings{MaxFailedAccessAttempts: 3, Duration: 5 * time.Minute},
			BcryptCost: bcrypt.MinCost,
		},
		nil,
	)
}
