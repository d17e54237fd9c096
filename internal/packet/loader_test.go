package packet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/torchgen/internal/config"
	"github.com/zclconf/go-cty/cty"
)

const scenarioA = `{
  "packet_type": "model_params",
  "model": {
    "dataset": {"type": "mnist"},
    "loss_function": {"type": "crossentropyloss"},
    "optimizer": {"type": "adam", "parameters": {"learning_rate": 0.001}},
    "layers": [
      {"layer_type": "linear", "in_shape": 64, "out_shape": 5},
      {"layer_type": "relu"},
      {"layer_type": "log_softmax"}
    ]
  }
}`

func TestLoad_ScenarioA(t *testing.T) {
	model, err := NewLoader().Load(context.Background(), []byte(scenarioA))
	require.NoError(t, err)

	require.NotNil(t, model.Dataset)
	assert.Equal(t, "mnist", model.Dataset.Type)
	require.NotNil(t, model.LossFunction)
	assert.Equal(t, "crossentropyloss", model.LossFunction.Type)
	require.NotNil(t, model.Optimizer)
	assert.Equal(t, "adam", model.Optimizer.Type)
	lr, ok := model.Optimizer.Parameters["learning_rate"]
	require.True(t, ok)
	f, _ := lr.AsBigFloat().Float64()
	assert.Equal(t, 0.001, f)

	require.Len(t, model.Layers, 3)
	assert.Equal(t, "linear", model.Layers[0].Type)
	assert.True(t, model.Layers[0].Parameters["in_shape"].RawEquals(cty.NumberIntVal(64)))
	assert.True(t, model.Layers[0].Parameters["out_shape"].RawEquals(cty.NumberIntVal(5)))
	assert.NotContains(t, model.Layers[0].Parameters, "layer_type")
	assert.Equal(t, "relu", model.Layers[1].Type)
	assert.Empty(t, model.Layers[1].Parameters)
	assert.Equal(t, "log_softmax", model.Layers[2].Type)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		assert func(t *testing.T, err error)
	}{
		{
			name:  "not json",
			input: `{"packet_type": "model_params",`,
			assert: func(t *testing.T, err error) {
				var target *config.MalformedDocumentError
				require.ErrorAs(t, err, &target)
			},
		},
		{
			name:  "top level array",
			input: `[1, 2, 3]`,
			assert: func(t *testing.T, err error) {
				var target *config.MalformedDocumentError
				require.ErrorAs(t, err, &target)
			},
		},
		{
			name:  "missing packet_type",
			input: `{"model": {"layers": []}}`,
			assert: func(t *testing.T, err error) {
				var target *config.MissingFieldError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "packet_type", target.Field)
			},
		},
		{
			name:  "null packet_type",
			input: `{"packet_type": null, "model": {"layers": []}}`,
			assert: func(t *testing.T, err error) {
				var target *config.MissingFieldError
				require.ErrorAs(t, err, &target)
			},
		},
		{
			name:  "wrong packet_type",
			input: `{"packet_type": "training_results", "model": {"layers": []}}`,
			assert: func(t *testing.T, err error) {
				var target *config.UnrecognizedPacketError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "training_results", target.PacketType)
			},
		},
		{
			name:  "numeric packet_type",
			input: `{"packet_type": 7, "model": {"layers": []}}`,
			assert: func(t *testing.T, err error) {
				var target *config.UnrecognizedPacketError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "7", target.PacketType)
			},
		},
		{
			name:  "missing model",
			input: `{"packet_type": "model_params"}`,
			assert: func(t *testing.T, err error) {
				var target *config.MissingFieldError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "model", target.Field)
			},
		},
		{
			name:  "missing layers",
			input: `{"packet_type": "model_params", "model": {}}`,
			assert: func(t *testing.T, err error) {
				var target *config.MissingFieldError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "model.layers", target.Field)
			},
		},
		{
			name:  "layer without layer_type",
			input: `{"packet_type": "model_params", "model": {"layers": [{"layer_type": "relu"}, {"in_shape": 3}]}}`,
			assert: func(t *testing.T, err error) {
				var target *config.MissingFieldError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "model.layers[1].layer_type", target.Field)
			},
		},
		{
			name:  "optimizer without type",
			input: `{"packet_type": "model_params", "model": {"optimizer": {"parameters": {}}, "layers": []}}`,
			assert: func(t *testing.T, err error) {
				var target *config.MissingFieldError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "model.optimizer.type", target.Field)
			},
		},
		{
			name:  "layers is not an array",
			input: `{"packet_type": "model_params", "model": {"layers": "linear"}}`,
			assert: func(t *testing.T, err error) {
				var target *config.MalformedDocumentError
				require.ErrorAs(t, err, &target)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			model, err := NewLoader().Load(context.Background(), []byte(tc.input))
			require.Error(t, err)
			assert.Nil(t, model, "loading is all-or-nothing")
			tc.assert(t, err)
		})
	}
}

func TestLoad_LegacyAndEditorShapes(t *testing.T) {
	t.Run("bare strings and name/lr optimizer", func(t *testing.T) {
		input := `{
			"packet_type": "model_params",
			"model": {
				"dataset": "mnist",
				"loss_function": "crossentropyloss",
				"optimizer": {"name": "adam", "lr": 0.01},
				"layers": [{"layer_type": "relu"}]
			}
		}`
		model, err := NewLoader().Load(context.Background(), []byte(input))
		require.NoError(t, err)
		assert.Equal(t, "mnist", model.Dataset.Type)
		assert.Equal(t, "crossentropyloss", model.LossFunction.Type)
		assert.Equal(t, "adam", model.Optimizer.Type)
		assert.Contains(t, model.Optimizer.Parameters, "lr")
	})

	t.Run("sections next to model", func(t *testing.T) {
		input := `{
			"packet_type": "model_params",
			"model": {"layers": [{"layer_type": "relu"}]},
			"dataset": {"type": "mnist", "shape": {"channels": 1, "height": 28, "width": 28}},
			"loss_function": {"type": "crossentropyloss", "parameters": {}},
			"optimizer": {"type": "sgd", "parameters": {"learning_rate": 0.1, "momentum": 0.9}}
		}`
		model, err := NewLoader().Load(context.Background(), []byte(input))
		require.NoError(t, err)
		assert.Equal(t, "mnist", model.Dataset.Type)
		assert.Contains(t, model.Dataset.Parameters, "shape")
		assert.Equal(t, "crossentropyloss", model.LossFunction.Type)
		assert.Equal(t, "sgd", model.Optimizer.Type)
		assert.Contains(t, model.Optimizer.Parameters, "learning_rate")
		assert.Contains(t, model.Optimizer.Parameters, "momentum")
	})

	t.Run("model section wins over envelope section", func(t *testing.T) {
		input := `{
			"packet_type": "model_params",
			"model": {"optimizer": {"type": "adam"}, "layers": []},
			"optimizer": {"type": "sgd"}
		}`
		model, err := NewLoader().Load(context.Background(), []byte(input))
		require.NoError(t, err)
		assert.Equal(t, "adam", model.Optimizer.Type)
	})

	t.Run("absent sections stay nil", func(t *testing.T) {
		input := `{"packet_type": "model_params", "model": {"layers": []}}`
		model, err := NewLoader().Load(context.Background(), []byte(input))
		require.NoError(t, err)
		assert.Nil(t, model.Dataset)
		assert.Nil(t, model.LossFunction)
		assert.Nil(t, model.Optimizer)
		assert.Empty(t, model.Layers)
	})
}

func TestLoad_PreservesLayerOrder(t *testing.T) {
	input := `{"packet_type": "model_params", "model": {"layers": [
		{"layer_type": "view", "out_shape": 784},
		{"layer_type": "linear", "in_shape": 784, "out_shape": 10},
		{"layer_type": "tanh"},
		{"layer_type": "sigmoid"}
	]}}`
	model, err := NewLoader().Load(context.Background(), []byte(input))
	require.NoError(t, err)

	var kinds []string
	for _, l := range model.Layers {
		kinds = append(kinds, l.Type)
	}
	assert.Equal(t, []string{"view", "linear", "tanh", "sigmoid"}, kinds)
}
