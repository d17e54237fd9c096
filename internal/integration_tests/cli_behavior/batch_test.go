package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/torchgen/internal/app"
	"github.com/vk/torchgen/internal/codegen"
	"github.com/vk/torchgen/internal/testutil"
)

const linearModel = `{
  "packet_type": "model_params",
  "model": {"layers": [{"layer_type": "linear", "in_shape": 4, "out_shape": 2}]}
}`

const tanhModelHCL = `
packet_type = "model_params"
model {
  layer "tanh" {}
}
`

func TestBatch_CompilesEveryDocument(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"models/linear.json":       linearModel,
		"models/nested/tanh.hcl":   tanhModelHCL,
		"models/README.md":         "not a model",
		"models/.cache/stale.json": "{",
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, testutil.Options{Input: "models", Output: "out"})

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Contains(t, result.ReadFile(t, "out/linear.py"), "self.layer1 = torch.nn.Linear(4, 2)\n")
	assert.Contains(t, result.ReadFile(t, "out/nested/tanh.py"), "self.layer1 = torch.tanh\n")
	testutil.AssertNoFile(t, result, "out/README.py")
}

func TestBatch_ContinuesPastFailures(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"models/a_broken.json": `{"packet_type": "model_params", "model": {"layers": [{"layer_type": "gru"}]}}`,
		"models/b_linear.json": linearModel,
	}

	// --- Act ---
	// The default output names a .py file, so its directory receives the batch.
	result := testutil.RunIntegrationTest(t, files, testutil.Options{Input: "models"})

	// --- Assert ---
	require.Error(t, result.Err)
	var kindErr *codegen.UnsupportedLayerKindError
	require.ErrorAs(t, result.Err, &kindErr)
	assert.Equal(t, "gru", kindErr.Kind)

	assert.Contains(t, result.ReadFile(t, "build/b_linear.py"), "torch.nn.Linear(4, 2)")
	testutil.AssertNoFile(t, result, "build/a_broken.py")
}

func TestBatch_RejectsDocumentsSharingAnOutput(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"models/net.json":  `{"packet_type": "model_params", "model": {"layers": [{"layer_type": "relu"}]}}`,
		"models/net.hcl":   tanhModelHCL,
		"models/solo.json": linearModel,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, testutil.Options{Input: "models", Output: "out"})

	// --- Assert ---
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "ambiguous batch output")
	assert.Contains(t, result.Err.Error(), "net.hcl")
	assert.Contains(t, result.Err.Error(), "net.json")
	assert.Contains(t, result.Err.Error(), "both compile to")
	testutil.AssertNoFile(t, result, "out/net.py")
	testutil.AssertNoFile(t, result, "out/solo.py")
}

func TestBatch_RejectsSingleFileOptions(t *testing.T) {
	t.Parallel()

	// --- Act ---
	result := testutil.RunIntegrationTest(t, map[string]string{"models/a.json": linearModel}, testutil.Options{
		Input: "models",
		Configure: func(cfg *app.Config, root string) {
			cfg.UploadURL = "http://127.0.0.1:1/upload"
		},
	})

	// --- Assert ---
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "single input file")
}

func TestRun_CustomClassNameAndIndent(t *testing.T) {
	t.Parallel()

	// --- Act ---
	result := testutil.RunIntegrationTest(t, map[string]string{"model.json": linearModel}, testutil.Options{
		Output: "Net.py",
		Configure: func(cfg *app.Config, root string) {
			cfg.ClassName = "Net"
			cfg.IndentWidth = 2
		},
	})

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Equal(t, `import torch
import torchvision
class Net(torch.nn.Module):
  def __init__(self):
    super(Net, self).__init__()
    self.layer1 = torch.nn.Linear(4, 2)
  def forward(self, curr_tensor):
    curr_tensor = self.layer1(curr_tensor)
    return curr_tensor
`, result.ReadFile(t, "Net.py"))
}

func TestRun_MissingInput(t *testing.T) {
	t.Parallel()

	// --- Act ---
	result := testutil.RunIntegrationTest(t, nil, testutil.Options{Input: "nope.json"})

	// --- Assert ---
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "failed to access input")
}
