package config

import "fmt"

// MalformedDocumentError reports input that is not a parseable structured
// document, or whose top level is not an object.
type MalformedDocumentError struct {
	Err error
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed document: %v", e.Err)
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }

// MissingFieldError reports a required key that is absent or null. Field is a
// dotted path such as "model.layers[2].layer_type".
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// UnrecognizedPacketError reports an envelope whose packet_type is present
// but is not model_params.
type UnrecognizedPacketError struct {
	PacketType string
}

func (e *UnrecognizedPacketError) Error() string {
	return fmt.Sprintf("unrecognized packet type %q: expected %q", e.PacketType, PacketTypeModelParams)
}
