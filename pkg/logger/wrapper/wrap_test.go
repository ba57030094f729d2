package wrap

import (
	"context"
	"errors"
	"testing"
)

func TestErrorCarriesOriginContext(t *testing.T) {
	origin := WithRunID(WithMonth(WithAction(context.Background(), "refresh"), "2024-01"), "run-1")
	base := errors.New("download failed")

	err := Error(origin, base)
	if !errors.Is(err, base) {
		t.Fatal("wrapped error must unwrap to the cause")
	}
	if err.Error() != base.Error() {
		t.Errorf("message = %q", err.Error())
	}

	// a second wrap keeps the first context
	again := Error(WithAction(context.Background(), "http_compute"), err)
	if again != err {
		t.Error("already wrapped error should be returned as is")
	}

	logging := WithRequestID(WithAction(context.Background(), "http_compute"), "req-9")
	got := fromContext(ErrorCtx(logging, again))

	want := LogCtx{Action: "refresh", RequestID: "req-9", Month: "2024-01", RunID: "run-1"}
	if got != want {
		t.Errorf("log ctx = %+v, want %+v", got, want)
	}
}

func TestErrorNilAndPlain(t *testing.T) {
	if Error(context.Background(), nil) != nil {
		t.Error("nil error must stay nil")
	}

	ctx := WithRequestID(context.Background(), "req-1")
	if got := ErrorCtx(ctx, errors.New("plain")); RequestID(got) != "req-1" {
		t.Error("plain error should leave ctx untouched")
	}
}
