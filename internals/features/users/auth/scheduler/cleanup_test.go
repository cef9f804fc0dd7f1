package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestRunJobsContinuesAfterFailure(t *testing.T) {
	var ran []string
	job := func(name string, n int64, err error) Job {
		return Job{Name: name, Run: func(ctx context.Context) (int64, error) {
			ran = append(ran, name)
			return n, err
		}}
	}

	got := RunJobs(context.Background(), quietLogger(), []Job{
		job("a", 3, nil),
		job("b", 0, errors.New("db down")),
		job("c", 0, nil),
	})

	if len(ran) != 3 {
		t.Fatalf("ran %v, want all three jobs", ran)
	}
	if got["a"] != 3 {
		t.Errorf("a = %d, want 3", got["a"])
	}
	if _, ok := got["b"]; ok {
		t.Errorf("failed job b should not be reported")
	}
	if n, ok := got["c"]; !ok || n != 0 {
		t.Errorf("c = %d (present %v), want 0 present", n, ok)
	}
}

func TestRunJobsHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := RunJobs(ctx, quietLogger(), []Job{{
		Name: "ctx",
		Run: func(ctx context.Context) (int64, error) {
			return 0, ctx.Err()
		},
	}})
	if len(got) != 0 {
		t.Fatalf("got %v, want no successful jobs", got)
	}
}
