package redis

import (
	"context"
	"testing"

	"github.com/saviobatista/route-planner/internal/types"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestClient_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine",
		testcontainers.WithWaitStrategy(wait.ForLog("Ready to accept connections")),
	)
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	defer func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("Failed to terminate redis container: %v", err)
		}
	}()

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client, err := New(endpoint)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer client.Close()

	if err := client.StoreFlight(ctx, sampleFlight()); err != nil {
		t.Fatalf("StoreFlight() failed: %v", err)
	}
	got, err := client.GetFlight(ctx, "flight-1")
	if err != nil || got == nil {
		t.Fatalf("GetFlight() = %v, %v", got, err)
	}
	if !got.DepartureTime.Equal(sampleFlight().DepartureTime) {
		t.Errorf("DepartureTime = %v", got.DepartureTime)
	}

	if err := client.StoreCourse(ctx, 1, 2, 3, 4, &types.Course{TrueCourse: 10, DistanceNM: 20}); err != nil {
		t.Fatalf("StoreCourse() failed: %v", err)
	}
	course, err := client.GetCourse(ctx, 1, 2, 3, 4)
	if err != nil || course == nil || course.DistanceNM != 20 {
		t.Errorf("GetCourse() = %v, %v", course, err)
	}
}
