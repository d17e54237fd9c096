package hcl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/torchgen/internal/config"
	"github.com/zclconf/go-cty/cty"
)

func TestLoad_FullModel(t *testing.T) {
	src := `
packet_type = "model_params"

model {
  dataset "mnist" {}
  loss_function "crossentropyloss" {}
  optimizer "sgd" {
    learning_rate = 0.01
    momentum      = 0.9
  }

  layer "conv2d" {
    in_channels  = 1
    out_channels = 8
    kernel_size  = 3
  }
  layer "relu" {}
  layer "maxpool2d" {
    kernel_size = 2
  }
  layer "view" {
    out_shape = 1352
  }
  layer "linear" {
    in_shape  = 1352
    out_shape = 10
  }
  layer "log_softmax" {}
}
`
	model, err := NewLoader().Load(context.Background(), []byte(src))
	require.NoError(t, err)

	require.NotNil(t, model.Dataset)
	assert.Equal(t, "mnist", model.Dataset.Type)
	assert.Equal(t, "crossentropyloss", model.LossFunction.Type)
	assert.Equal(t, "sgd", model.Optimizer.Type)
	assert.Contains(t, model.Optimizer.Parameters, "momentum")

	var kinds []string
	for _, l := range model.Layers {
		kinds = append(kinds, l.Type)
	}
	assert.Equal(t, []string{"conv2d", "relu", "maxpool2d", "view", "linear", "log_softmax"}, kinds)
	assert.True(t, model.Layers[0].Parameters["out_channels"].RawEquals(cty.NumberIntVal(8)))
	assert.True(t, model.Layers[3].Parameters["out_shape"].RawEquals(cty.NumberIntVal(1352)))
}

func TestLoad_SectionsAtRootAndParametersObject(t *testing.T) {
	src := `
packet_type = "model_params"

optimizer "adam" {
  parameters = {
    learning_rate = 0.005
  }
}

model {
  layer "relu" {}
}
`
	model, err := NewLoader().Load(context.Background(), []byte(src))
	require.NoError(t, err)
	require.NotNil(t, model.Optimizer)
	assert.Equal(t, "adam", model.Optimizer.Type)
	assert.Contains(t, model.Optimizer.Parameters, "learning_rate")
	assert.NotContains(t, model.Optimizer.Parameters, "parameters")
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		src    string
		assert func(t *testing.T, err error)
	}{
		{
			name: "syntax error",
			src:  "model {\n  layer \"relu\" {\n",
			assert: func(t *testing.T, err error) {
				var target *config.MalformedDocumentError
				require.ErrorAs(t, err, &target)
				assert.Contains(t, err.Error(), "failed to parse")
			},
		},
		{
			name: "missing packet_type",
			src:  "model {\n  layer \"relu\" {}\n}\n",
			assert: func(t *testing.T, err error) {
				var target *config.MissingFieldError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "packet_type", target.Field)
			},
		},
		{
			name: "wrong packet_type",
			src:  "packet_type = \"results\"\nmodel {}\n",
			assert: func(t *testing.T, err error) {
				var target *config.UnrecognizedPacketError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "results", target.PacketType)
			},
		},
		{
			name: "missing model",
			src:  "packet_type = \"model_params\"\n",
			assert: func(t *testing.T, err error) {
				var target *config.MissingFieldError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "model", target.Field)
			},
		},
		{
			name: "model without layers",
			src:  "packet_type = \"model_params\"\nmodel {\n  dataset \"mnist\" {}\n}\n",
			assert: func(t *testing.T, err error) {
				var target *config.MissingFieldError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "model.layers", target.Field)
			},
		},
		{
			name: "duplicate optimizer",
			src:  "packet_type = \"model_params\"\nmodel {\n  optimizer \"adam\" {}\n  optimizer \"sgd\" {}\n}\n",
			assert: func(t *testing.T, err error) {
				var target *config.MalformedDocumentError
				require.ErrorAs(t, err, &target)
			},
		},
		{
			name: "variable reference in parameter",
			src:  "packet_type = \"model_params\"\nmodel {\n  layer \"linear\" {\n    in_shape = var.width\n  }\n}\n",
			assert: func(t *testing.T, err error) {
				var target *config.MalformedDocumentError
				require.ErrorAs(t, err, &target)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			model, err := NewLoader().Load(context.Background(), []byte(tc.src))
			require.Error(t, err)
			assert.Nil(t, model)
			tc.assert(t, err)
		})
	}
}
