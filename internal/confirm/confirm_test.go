package confirm

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestAlwaysNever(t *testing.T) {
	ctx := context.Background()
	if ok, _ := Always.Confirm(ctx, "q"); !ok {
		t.Error("Always returned false")
	}
	if ok, _ := Never.Confirm(ctx, "q"); ok {
		t.Error("Never returned true")
	}
}

func TestAsk(t *testing.T) {
	ctx := context.Background()
	if err := Ask(ctx, Always, "q"); err != nil {
		t.Errorf("Ask(Always) = %v, want nil", err)
	}
	if err := Ask(ctx, Never, "q"); !errors.Is(err, ErrDeclined) {
		t.Errorf("Ask(Never) = %v, want ErrDeclined", err)
	}
	boom := errors.New("boom")
	failing := Func(func(context.Context, string) (bool, error) { return false, boom })
	if err := Ask(ctx, failing, "q"); !errors.Is(err, boom) {
		t.Errorf("Ask(failing) = %v, want boom", err)
	}
}

func TestFunc_ReceivesQuestion(t *testing.T) {
	var got string
	c := Func(func(_ context.Context, q string) (bool, error) {
		got = q
		return true, nil
	})
	_, _ = c.Confirm(context.Background(), "Delete it?")
	if got != "Delete it?" {
		t.Errorf("question = %q, want %q", got, "Delete it?")
	}
}

func TestPrompter_Answers(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			p := &Prompter{In: strings.NewReader(tt.input), Out: &out, IsTTY: func() bool { return true }}
			got, err := p.Confirm(context.Background(), "Are you sure?")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if out.String() != "Are you sure? [y/N]: " {
				t.Errorf("prompt = %q", out.String())
			}
		})
	}
}

func TestPrompter_NotInteractive(t *testing.T) {
	p := &Prompter{In: strings.NewReader("y\n"), Out: io.Discard, IsTTY: func() bool { return false }}
	_, err := p.Confirm(context.Background(), "q")
	if !errors.Is(err, ErrNotInteractive) {
		t.Errorf("err = %v, want ErrNotInteractive", err)
	}
}

func TestPrompter_ContextCanceled(t *testing.T) {
	r, _ := io.Pipe()
	p := &Prompter{In: r, Out: io.Discard, IsTTY: func() bool { return true }}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Confirm(ctx, "q")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
