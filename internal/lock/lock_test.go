package lock_test

import (
	"context"
	"fmt"
	"testing"
	"time"
	"timeRegistration/internal/lock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestNopLocker(t *testing.T) {
	release, acquired, err := lock.NopLocker{}.TryLock(context.Background(), "key", time.Second)

	require.NoError(t, err)
	assert.True(t, acquired)
	release()
}

func TestRedisLocker(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропуск интеграционных тестов в режиме short")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := lock.NewRedisClient(fmt.Sprintf("%s:%s", host, port.Port()))
	require.NoError(t, err)
	t.Cleanup(client.Close)

	first := lock.NewRedisLocker(client)
	second := lock.NewRedisLocker(client)

	release, acquired, err := first.TryLock(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	_, acquired, err = second.TryLock(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	assert.False(t, acquired, "пока блокировка держится, вторая реплика её не получает")

	release()

	releaseSecond, acquired, err := second.TryLock(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
	releaseSecond()

	// блокировка истекает сама
	_, acquired, err = first.TryLock(ctx, "short", 50*time.Millisecond)
	require.NoError(t, err)
	require.True(t, acquired)
	assert.Eventually(t, func() bool {
		release, ok, err := second.TryLock(ctx, "short", time.Minute)
		if err == nil && ok {
			release()
		}
		return ok
	}, 2*time.Second, 20*time.Millisecond)
}
