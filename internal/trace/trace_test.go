package trace

import (
	"context"
	"strings"
	"testing"
)

func TestNewOperationID(t *testing.T) {
	a, b := NewOperationID(), NewOperationID()
	if !strings.HasPrefix(a, "op_") {
		t.Errorf("NewOperationID() = %q, want op_ prefix", a)
	}
	if len(a) != len("op_")+16 {
		t.Errorf("NewOperationID() = %q, want 16 hex digits", a)
	}
	if a == b {
		t.Errorf("NewOperationID() returned %q twice", a)
	}
}

func TestEnsure(t *testing.T) {
	ctx, id := Ensure(context.Background())
	if id == "" || OperationID(ctx) != id {
		t.Fatalf("Ensure() id = %q, context carries %q", id, OperationID(ctx))
	}

	again, same := Ensure(ctx)
	if same != id || again != ctx {
		t.Errorf("Ensure() on a tagged context = %q, want %q unchanged", same, id)
	}
}

func TestOperationIDMissing(t *testing.T) {
	if got := OperationID(context.Background()); got != "" {
		t.Errorf("OperationID() = %q, want empty", got)
	}
	if got := OperationID(WithOperationID(context.Background(), "op_x")); got != "op_x" {
		t.Errorf("OperationID() = %q, want op_x", got)
	}
}
