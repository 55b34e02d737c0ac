package handler

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dtroode/academia-moderation/internal/model"
)

// decode unmarshals a Struct request into v through its JSON form.
func decode(in *structpb.Struct, v any) error {
	raw, err := protojson.Marshal(in)
	if err != nil {
		return model.NewErrValidation("invalid request")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return model.NewErrValidation("invalid request")
	}
	return nil
}

// encode converts v into a Struct through its JSON form.
func encode(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("failed to convert response: %w", err)
	}
	return out, nil
}
