// Package hcl provides the HCL implementation of config.Loader. It accepts
// the same model_params envelope as the JSON loader, written as blocks:
//
//	packet_type = "model_params"
//
//	model {
//	  dataset "mnist" {}
//	  loss_function "crossentropyloss" {}
//	  optimizer "adam" {
//	    learning_rate = 0.001
//	  }
//	  layer "linear" {
//	    in_shape  = 64
//	    out_shape = 5
//	  }
//	  layer "relu" {}
//	}
package hcl
