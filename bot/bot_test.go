package bot

import (
	"context"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/enemies/model"
	"os/exec"
	"testing"
	"time"
)

func TestParseMove(t *testing.T) {
	m, err := ParseMove(" 3   7 ")
	require.NoError(t, err)
	assert.Equal(t, Move{A: 3, B: 7}, m)
	assert.Equal(t, "3 7", m.String())

	for _, line := range []string{"", "1", "1 2 3", "a 2", "1 b"} {
		_, err := ParseMove(line)
		assert.True(t, errors.Is(err, ErrMalformedMove), "line %q", line)
	}
}

func shell(t *testing.T) string {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("no sh available")
	}
	return sh
}

func TestProcessBotRoundTrip(t *testing.T) {
	sh := shell(t)
	b, err := StartProcess("echo", []string{sh, "-c", `while read line; do echo "0 1"; done`}, time.Second)
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, "echo", b.Name())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		m, err := b.RequestMove(ctx, "turn 1 1")
		require.NoError(t, err)
		assert.Equal(t, Move{A: 0, B: 1}, m)
	}
	assert.NoError(t, b.Close())
}

func TestProcessBotNotifyThenMove(t *testing.T) {
	sh := shell(t)
	script := `read start; read turn; set -- $turn; echo "$2 5"`
	b, err := StartProcess("args", []string{sh, "-c", script}, time.Second)
	require.NoError(t, err)
	defer b.Close()

	ctx := context.Background()
	require.NoError(t, b.Notify(ctx, "start 1 0 0 1 1"))
	m, err := b.RequestMove(ctx, "turn 4")
	require.NoError(t, err)
	assert.Equal(t, Move{A: 4, B: 5}, m)
}

func TestProcessBotTimeout(t *testing.T) {
	sh := shell(t)
	b, err := StartProcess("sleeper", []string{sh, "-c", "read line; exec sleep 5"}, 50*time.Millisecond)
	require.NoError(t, err)
	defer b.Close()

	_, err = b.RequestMove(context.Background(), "turn 1")
	assert.True(t, errors.Is(err, ErrMoveTimeout), "got %v", err)
}

func TestProcessBotContextCancel(t *testing.T) {
	sh := shell(t)
	b, err := StartProcess("silent", []string{sh, "-c", "read line; exec sleep 5"}, 0)
	require.NoError(t, err)
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = b.RequestMove(ctx, "turn 1")
	assert.Equal(t, context.DeadlineExceeded, err)
}

func TestProcessBotDisconnect(t *testing.T) {
	sh := shell(t)
	b, err := StartProcess("quitter", []string{sh, "-c", "exit 0"}, time.Second)
	require.NoError(t, err)
	defer b.Close()

	_, err = b.RequestMove(context.Background(), "turn 1")
	assert.True(t, errors.Is(err, ErrBotDisconnected), "got %v", err)
}

func TestProcessBotMalformed(t *testing.T) {
	sh := shell(t)
	b, err := StartProcess("chatty", []string{sh, "-c", `read line; echo "hello there friend"; read line`}, time.Second)
	require.NoError(t, err)
	defer b.Close()

	_, err = b.RequestMove(context.Background(), "turn 1")
	assert.True(t, errors.Is(err, ErrMalformedMove), "got %v", err)
}

func TestStartProcessUnavailable(t *testing.T) {
	_, err := StartProcess("ghost", []string{"/definitely/not/a/bot"}, time.Second)
	var unavailable *BotUnavailableError
	require.True(t, errors.As(err, &unavailable), "got %v", err)
	assert.Equal(t, "ghost", unavailable.Name)
	assert.Equal(t, "start", unavailable.Stage)

	_, err = StartProcess("empty", nil, time.Second)
	assert.True(t, errors.As(err, &unavailable))
	assert.Equal(t, "command", unavailable.Stage)
}

func TestGreedy(t *testing.T) {
	ctx := context.Background()
	g := NewGreedy("greedy")
	// red home at 0, blue home far away, a neutral node one unit from red
	// and a second red node two units away
	require.NoError(t, g.Notify(ctx, "start 1 0 0 1 10 100 0 2 1 1 0 -1 1 0 2 1 1"))

	m, err := g.RequestMove(ctx, "turn 10 1 1 1")
	require.NoError(t, err)
	assert.Equal(t, Move{A: 0, B: 2}, m, "takes the neutral node with the widest margin")

	require.NoError(t, g.Notify(ctx, "result 1 0 2 1"))
	assert.Equal(t, model.Red, g.colors[2])

	m, err = g.RequestMove(ctx, "turn 0.1 1 5 0.1")
	require.NoError(t, err)
	assert.Equal(t, Move{A: 0, B: 2}, m, "nothing to capture, reinforce closest pair")

	require.NoError(t, g.Notify(ctx, "result 2 1 99 0"), "an invalid move by the other side is ignored")
	require.NoError(t, g.Notify(ctx, "result 2 -4 x 0"))
	assert.Equal(t, model.Red, g.colors[2])
	assert.Error(t, g.Notify(ctx, "result 2 1 99 1"))
	assert.Error(t, g.Notify(ctx, "result 2 1 2 yes"))

	_, err = g.RequestMove(ctx, "turn 1 2")
	assert.True(t, errors.Is(err, ErrMalformedMove))
	assert.Error(t, g.Notify(ctx, "start 1 0 0"))
}
