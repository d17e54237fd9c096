package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/torchgen/internal/app"
	"github.com/vk/torchgen/internal/registry"
	"github.com/vk/torchgen/internal/testutil"
)

func TestModuleContract_ExtraLayerKind(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	envelope := `{
  "packet_type": "model_params",
  "model": {
    "layers": [
      {"layer_type": "linear", "in_shape": 8, "out_shape": 8},
      {"layer_type": "dropout", "p": 0.25},
      {"layer_type": "relu"}
    ]
  }
}`
	modules := append(app.CoreModules(), testutil.DropoutModule())

	// --- Act ---
	result := testutil.RunIntegrationTest(t, map[string]string{"model.json": envelope}, testutil.Options{Modules: modules})

	// --- Assert ---
	require.NoError(t, result.Err)
	src := result.ReadFile(t, app.DefaultOutputPath)
	assert.Contains(t, src, "        self.layer2 = torch.nn.Dropout(p=0.25)\n")
	assert.Contains(t, src, "        curr_tensor = self.layer2(curr_tensor)\n")
	assert.Contains(t, result.App.Registry().SupportedLayers(), "dropout")
}

func TestModuleContract_InvalidHandlerPanicsAtStartup(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A loss handler without an Init function can never generate anything,
	// which is a programming mistake caught when the app starts.
	broken := &testutil.SimpleModule{
		LossKind: "brokenloss",
		Loss:     &registry.ComponentHandler{},
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, map[string]string{"model.json": "{}"}, testutil.Options{
		Modules: append(app.CoreModules(), broken),
	})

	// --- Assert ---
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "application startup panicked")
	assert.Contains(t, result.Err.Error(), "brokenloss")
	assert.Nil(t, result.App)
}
