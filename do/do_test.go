package do_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/grailbio/somatic/do"
	"github.com/grailbio/testutil/expect"
)

func TestLocalRun(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	cmd := do.Command(ctx, "echo", "hello")
	cmd.Stdout = &out
	expect.NoError(t, do.Local{}.Run(ctx, "echo test", cmd))
	expect.EQ(t, strings.TrimSpace(out.String()), "hello")
}

func TestLocalRunFailure(t *testing.T) {
	ctx := context.Background()
	cmd := do.Command(ctx, "sh", "-c", "echo boom >&2; exit 3")
	err := do.Local{}.Run(ctx, "failing step", cmd)
	if err == nil {
		t.Fatal("expected error")
	}
	expect.True(t, strings.Contains(err.Error(), "failing step"), err.Error())
	expect.True(t, strings.Contains(err.Error(), "boom"), err.Error())
}

func TestLocalRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := do.Local{}.Run(ctx, "cancelled step", do.Command(ctx, "echo", "hi"))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestLookup(t *testing.T) {
	path, err := do.Lookup("sh")
	expect.NoError(t, err)
	expect.True(t, path != "")

	_, err = do.Lookup("definitely-not-a-real-tool-name")
	if err == nil {
		t.Fatal("expected error")
	}
	expect.True(t, strings.Contains(err.Error(), "definitely-not-a-real-tool-name"))
}
