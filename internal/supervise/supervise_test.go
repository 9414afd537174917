package supervise

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

func TestSanitizeError(t *testing.T) {
	live := context.Background()
	done, cancel := context.WithCancel(context.Background())
	cancel()

	if err := SanitizeError(live, nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	plain := errors.New("boom")
	if err := SanitizeError(live, plain); err != plain {
		t.Fatalf("expected plain error untouched, got %v", err)
	}

	if err := SanitizeError(done, plain); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected ctx error when ctx is done, got %v", err)
	}

	err := SanitizeError(live, context.Canceled)
	if errors.Is(err, context.Canceled) {
		t.Fatalf("expected stray context error to be masked, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "canceled") {
		t.Fatalf("expected message to survive, got %v", err)
	}

	wrapped := errors.Join(suture.ErrDoNotRestart, context.DeadlineExceeded)
	err = SanitizeError(live, wrapped)
	if !errors.Is(err, suture.ErrDoNotRestart) {
		t.Fatalf("expected ErrDoNotRestart preserved, got %v", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded masked, got %v", err)
	}
}

func TestFuncService(t *testing.T) {
	ran := make(chan struct{})
	svc := NewFunc("worker", func(ctx context.Context) error {
		close(ran)
		<-ctx.Done()
		return ctx.Err()
	})
	if svc.String() != "worker" {
		t.Fatalf("unexpected name %q", svc.String())
	}

	var buf bytes.Buffer
	sup := New("test", slog.New(slog.NewTextHandler(&buf, nil)))
	Add(sup, svc)

	ctx, cancel := context.WithCancel(context.Background())
	errC := sup.ServeBackground(ctx)

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatalf("service did not start")
	}
	cancel()
	if err := <-errC; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled from supervisor, got %v", err)
	}
}

func TestEventHookLogsTermination(t *testing.T) {
	var buf bytes.Buffer
	hook := EventHook(slog.New(slog.NewTextHandler(&buf, nil)))

	hook(suture.EventServiceTerminate{
		SupervisorName: "framewm",
		ServiceName:    "ipc",
		Err:            errors.New("socket gone"),
		Restarting:     true,
	})

	out := buf.String()
	for _, want := range []string{"service failed", "service=ipc", "socket gone", "restarting=true"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in log output, got %q", want, out)
		}
	}
}
