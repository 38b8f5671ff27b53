package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/coverage-extractor/constants"
	"github.com/joseph-ayodele/coverage-extractor/internal/common"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *common.Config {
	return &common.Config{
		Server: common.ServerConfig{
			HTTPAddr:    "127.0.0.1:0",
			UploadDir:   "uploads",
			MaxUploadMB: 1,
		},
		Extract: common.ExtractConfig{
			Mode:       constants.ModePattern,
			PDFBackend: constants.BackendNative,
		},
		LLM: common.LLMConfig{
			Provider: constants.ProviderOpenAI,
			Timeout:  time.Second,
		},
	}
}

func TestNewProcessor_NoKeyDisablesModel(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	proc, closeFn, err := NewProcessor(context.Background(), testConfig(), testLogger())
	require.NoError(t, err)
	assert.Nil(t, closeFn)
	assert.False(t, proc.ModelAvailable())
	assert.Equal(t, constants.ModePattern, proc.DefaultMode())
}

func TestNewProcessor_OpenAI(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.OpenAIAPIKey = "sk-test"
	cfg.Extract.Mode = constants.ModeLLM

	proc, closeFn, err := NewProcessor(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	assert.Nil(t, closeFn)
	assert.True(t, proc.ModelAvailable())
	assert.Equal(t, constants.ModeLLM, proc.DefaultMode())
}

func TestNewApp_HealthServer(t *testing.T) {
	cfg := testConfig()
	cfg.Server.GRPCHealthAddr = "127.0.0.1:0"

	a, err := NewApp(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Health)
	assert.NotEqual(t, "127.0.0.1:0", a.Health.Addr())
	go func() { _ = a.Health.Serve() }()
	a.Health.Stop()
}

type slowCompleter struct{}

func (slowCompleter) Complete(ctx context.Context, _, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestTimeoutCompleter(t *testing.T) {
	c := timeoutCompleter{next: slowCompleter{}, timeout: 10 * time.Millisecond}
	_, err := c.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
