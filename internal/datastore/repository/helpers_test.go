package repository

import (
	"sync"
	"testing"
	"time"

	"github.com/qchem/gausscat/internal/conf"
	"github.com/qchem/gausscat/internal/datastore"
	"github.com/qchem/gausscat/internal/datastore/entities"
	"github.com/qchem/gausscat/internal/events"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingPublisher captures events synchronously.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ChangeEvent
}

func (p *recordingPublisher) TryPublish(ev events.ChangeEvent) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return true
}

func (p *recordingPublisher) all() []events.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.ChangeEvent, len(p.events))
	copy(out, p.events)
	return out
}

type recordedOp struct {
	entity, operation, status string
}

type recordingRecorder struct {
	mu  sync.Mutex
	ops []recordedOp
}

func (r *recordingRecorder) RecordOperation(entity, operation, status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, recordedOp{entity, operation, status})
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	store, err := datastore.Open(&conf.DatabaseSettings{
		Type:   conf.DatabaseSQLite,
		SQLite: conf.SQLiteSettings{Path: ":memory:"},
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(t.Context()))
	return store.DB()
}

func newTestRepositories(t *testing.T) (*Repositories, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	return New(newTestDB(t), Options{Publisher: pub}), pub
}

// catalogueFixture is a small connected catalogue.
type catalogueFixture struct {
	unrestricted *entities.SpinState
	ground       *entities.ElectronicState
	excited      *entities.ElectronicState
	dft          *entities.MethodFamily
	b3lyp        *entities.BaseMethod
	groundDFT    *entities.ElectronicStateMethodFamily
	uGroundDFT   *entities.SpinStateElectronicStateMethodFamily
}

func seedFixture(t *testing.T, repos *Repositories) *catalogueFixture {
	t.Helper()
	ctx := t.Context()
	f := &catalogueFixture{}
	var err error

	f.unrestricted, err = repos.SpinStates.Create(ctx, &entities.SpinState{Name: "Unrestricted", Keyword: "U"})
	require.NoError(t, err)
	f.ground, err = repos.ElectronicStates.Create(ctx, &entities.ElectronicState{Name: "Ground State"})
	require.NoError(t, err)
	f.excited, err = repos.ElectronicStates.Create(ctx, &entities.ElectronicState{Name: "Excited State", Keyword: "TD-"})
	require.NoError(t, err)
	f.dft, err = repos.MethodFamilies.Create(ctx, &entities.MethodFamily{Name: "DFT", DescriptiveName: "Density Functional Theory"})
	require.NoError(t, err)
	f.b3lyp, err = repos.BaseMethods.Create(ctx, &entities.BaseMethod{
		Keyword: "B3LYP", DescriptiveName: "Becke three-parameter Lee-Yang-Parr", MethodFamilyID: f.dft.ID,
	})
	require.NoError(t, err)
	f.groundDFT, err = repos.ElectronicStateMethodFamilies.Create(ctx, &entities.ElectronicStateMethodFamily{
		ElectronicStateID: f.ground.ID, MethodFamilyID: &f.dft.ID,
	})
	require.NoError(t, err)
	f.uGroundDFT, err = repos.SpinStateElectronicStateMethodFamilies.Create(ctx, &entities.SpinStateElectronicStateMethodFamily{
		SpinStateID: &f.unrestricted.ID, ElectronicStateMethodFamilyID: f.groundDFT.ID,
	})
	require.NoError(t, err)
	return f
}
