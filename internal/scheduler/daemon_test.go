package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/keitaro-sync/internal/config"
	schedulermocks "github.com/vfg2006/keitaro-sync/internal/scheduler/mocks"
	"go.uber.org/mock/gomock"
)

func newDaemonConfig(apiKey string) *config.Config {
	cfg := &config.Config{}
	cfg.Keitaro.APIKey = apiKey
	cfg.Keitaro.Timezone = "UTC"
	cfg.Database.DSN = "postgres://localhost/keitaro"
	cfg.KeitaroSync.IntervalSeconds = 300
	cfg.KeitaroSync.CampaignIDs = []int64{12}
	return cfg
}

func TestDaemon_Run_FailsFastWithoutAPIKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Nenhuma expectativa: qualquer chamada ao schema ou ao syncer falha o teste
	schema := schedulermocks.NewMockSchemaInitializer(ctrl)
	syncer := schedulermocks.NewMockSyncer(ctrl)

	daemon := NewDaemon(newDaemonConfig(""), schema, syncer)
	daemon.sleep = func(context.Context, time.Duration) bool {
		t.Fatal("o loop não deveria ter iniciado")
		return false
	}

	err := daemon.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrMissingConfig))
	assert.Contains(t, err.Error(), "KEITARO_API_KEY")
}

func TestDaemon_Run_SchemaFailureStopsBeforeLoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	schema := schedulermocks.NewMockSchemaInitializer(ctrl)
	syncer := schedulermocks.NewMockSyncer(ctrl)
	schema.EXPECT().EnsureSchema(gomock.Any()).Return(errors.New("permission denied"))

	err := NewDaemon(newDaemonConfig("key"), schema, syncer).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestDaemon_Run_LoopSurvivesErrorsAndPanics(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	schema := schedulermocks.NewMockSchemaInitializer(ctrl)
	syncer := schedulermocks.NewMockSyncer(ctrl)

	schema.EXPECT().EnsureSchema(gomock.Any()).Return(nil).Times(1)
	gomock.InOrder(
		syncer.EXPECT().SyncAll(gomock.Any(), []int64{12}).Return(0, errors.New("db offline")),
		syncer.EXPECT().SyncAll(gomock.Any(), []int64{12}).DoAndReturn(func(context.Context, []int64) (int, error) {
			panic("mapa nil")
		}),
		syncer.EXPECT().SyncAll(gomock.Any(), []int64{12}).Return(4, nil),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sleeps []time.Duration
	daemon := NewDaemon(newDaemonConfig("key"), schema, syncer)
	daemon.sleep = func(_ context.Context, d time.Duration) bool {
		sleeps = append(sleeps, d)
		if len(sleeps) == 3 {
			cancel()
			return false
		}
		return true
	}

	err := daemon.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	require.Len(t, sleeps, 3)
	for _, d := range sleeps {
		assert.Equal(t, 300*time.Second, d)
	}
}

func TestDaemon_Run_InvalidCronExpression(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	schema := schedulermocks.NewMockSchemaInitializer(ctrl)
	syncer := schedulermocks.NewMockSyncer(ctrl)
	schema.EXPECT().EnsureSchema(gomock.Any()).Return(nil).Times(1)

	cfg := newDaemonConfig("key")
	cfg.KeitaroSync.CronSchedule = "not a cron"

	err := NewDaemon(cfg, schema, syncer).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "erro ao agendar sincronização da Keitaro")
	assert.False(t, errors.Is(err, context.Canceled))
}

func TestDaemon_Run_CronTriggersCycles(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	schema := schedulermocks.NewMockSchemaInitializer(ctrl)
	syncer := schedulermocks.NewMockSyncer(ctrl)
	schema.EXPECT().EnsureSchema(gomock.Any()).Return(nil).Times(1)
	syncer.EXPECT().SyncAll(gomock.Any(), []int64{12}).DoAndReturn(func(context.Context, []int64) (int, error) {
		cancel()
		return 3, nil
	}).MinTimes(1)

	cfg := newDaemonConfig("key")
	cfg.KeitaroSync.CronSchedule = "*/1 * * * * *"

	daemon := NewDaemon(cfg, schema, syncer)
	daemon.sleep = func(context.Context, time.Duration) bool {
		t.Fatal("o loop por intervalo não deveria ser usado com cron")
		return false
	}

	done := make(chan error, 1)
	go func() {
		done <- daemon.Run(ctx)
	}()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("o agendador não executou nenhum ciclo")
	}
}

func TestDaemon_RunCycle_RecoversPanic(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	syncer := schedulermocks.NewMockSyncer(ctrl)
	syncer.EXPECT().SyncAll(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, []int64) (int, error) {
		var records map[int64]int
		records[1] = 1
		return 1, nil
	})

	daemon := NewDaemon(newDaemonConfig("key"), schedulermocks.NewMockSchemaInitializer(ctrl), syncer)

	var (
		total int
		err   error
	)
	assert.NotPanics(t, func() {
		total, err = daemon.RunCycle(context.Background())
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")
	assert.Equal(t, 0, total)
}

func TestSleepContext(t *testing.T) {
	assert.True(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleepContext(ctx, time.Hour))
}
